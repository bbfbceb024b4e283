// cmd/build.go
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/post"
	"github.com/Bitlatte/folio/internal/route"
	"github.com/Bitlatte/folio/internal/view"
)

const conventionalStaticDir = "static"

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Exports the blog as static HTML",
	Long: `The build command renders the list page to <outputDir>/posts/index.html and
one detail page per slug to <outputDir>/post/<slug>/index.html. The root
index.html and 404.html redirect to /posts. Files in './static/' are copied
to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openRepository(cmd.Context(), appConfig, 0, appLog)
		if err != nil {
			return err
		}
		defer closeRepo()
		return runBuildProcess(cmd.Context(), appConfig, route.Default(), repo, conventionalStaticDir, appLog)
	},
}

// runBuildProcess writes one file per page. Every page path goes through the
// route table, so the export mounts the same views the server does.
func runBuildProcess(ctx context.Context, cfg config.Config, routes route.Table, repo post.Repository, staticDir string, log logger.Logger) error {
	if err := routes.Validate(); err != nil {
		return fmt.Errorf("invalid route table: %w", err)
	}
	listRoute, err := resolveView(routes, listPath, route.ViewPostList)
	if err != nil {
		return err
	}

	outputDir := cfg.OutputDir
	log.Info("Starting build", logger.String("outputDir", outputDir), logger.String("baseURL", cfg.BaseURL))

	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if _, err := os.Stat(staticDir); err == nil {
		if err := copyDirContents(staticDir, outputDir); err != nil {
			return fmt.Errorf("failed to copy static assets: %w", err)
		}
		log.Info("Static assets copied", logger.String("from", staticDir))
	}

	list := view.NewListBinding(ctx, repo, log)
	list.Activate()
	listState, err := list.Wait(ctx)
	if err != nil {
		return err
	}
	if listState.Status == view.StatusUnavailable {
		return fmt.Errorf("cannot list posts: %w", listState.Err)
	}
	if err := writePage(pageFile(outputDir, listPath), func(w io.Writer) error {
		return renderer.List(w, listRoute.Route.Title, listState)
	}); err != nil {
		return err
	}

	detail := view.NewDetailBinding(ctx, repo, log)
	defer detail.Close()
	pages := 0
	for _, p := range listState.Posts {
		if !p.HasSlug() {
			log.Debug("Post has no slug, skipping detail page", logger.String("id", p.ID.String()))
			continue
		}
		pagePath := p.Permalink()
		m, err := resolveView(routes, pagePath, route.ViewPostDetail)
		if err != nil {
			log.Warn("Slug does not map to a detail page, skipping",
				logger.String("slug", p.Slug), logger.Error(err))
			continue
		}
		detail.SetSlug(m.Param("slug"))
		state, err := detail.Wait(ctx)
		if err != nil {
			return err
		}
		if state.Status != view.StatusReady {
			return fmt.Errorf("post %q listed but not resolvable (%s)", p.Slug, state.Status)
		}
		if err := writePage(pageFile(outputDir, pagePath), func(w io.Writer) error {
			return renderer.Detail(w, state)
		}); err != nil {
			return err
		}
		pages++
	}

	// "/" and the catch-all become static redirect stubs.
	stubs := map[string]string{"index.html": "/", "404.html": "/404"}
	for name, pagePath := range stubs {
		m, ok := routes.Resolve(pagePath)
		if !ok || !m.Route.IsRedirect() {
			log.Debug("No redirect for stub", logger.String("file", name), logger.String("path", pagePath))
			continue
		}
		if err := writePage(filepath.Join(outputDir, name), func(w io.Writer) error {
			return renderer.Redirect(w, m.RedirectTo)
		}); err != nil {
			return err
		}
	}

	log.Info("Build completed", logger.Int("posts", len(listState.Posts)), logger.Int("detailPages", pages))
	return nil
}

const listPath = "/posts"

func resolveView(routes route.Table, pagePath, want string) (route.Match, error) {
	m, ok := routes.Resolve(pagePath)
	if !ok || m.View != want {
		return m, fmt.Errorf("route table maps %s to %q, want %q", pagePath, m.View, want)
	}
	return m, nil
}

// pageFile maps a page path to <outputDir>/<path>/index.html.
func pageFile(outputDir, pagePath string) string {
	return filepath.Join(outputDir, filepath.FromSlash(strings.Trim(pagePath, "/")), "index.html")
}

// writePage renders into memory and writes the file only on success.
func writePage(outputPath string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("failed to render '%s': %w", outputPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}
	return nil
}

// copyDirContents recursively copies contents from src to dst.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(path, dstPath); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", path, dstPath, err)
		}
		return nil
	})
}

// copyFile copies a single file, keeping its mode.
func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	info, err := srcF.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", srcFile, err)
	}

	dstF, err := os.OpenFile(dstFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
