// cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/post"
	"github.com/Bitlatte/folio/internal/route"
	"github.com/Bitlatte/folio/internal/web"
)

const reloadDebounce = 500 * time.Millisecond

var serverPort int
var serveLatency time.Duration

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the blog over HTTP",
	Long: `The serve command loads the configured posts and serves the list page at
/posts and a detail page per slug at /post/{slug}. Any other path redirects
to /posts. With content.source=dir the content directory is watched and the
posts are reloaded after changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := appConfig
		if serverPort > 0 {
			cfg.Server.Address = fmt.Sprintf(":%d", serverPort)
		}

		repo, closeRepo, err := openRepository(ctx, cfg, serveLatency, appLog)
		if err != nil {
			return fmt.Errorf("initial load failed: %w", err)
		}
		defer closeRepo()
		holder := post.NewHolder(repo)

		if cfg.Content.Source == content.SourceDir {
			watcher, err := watchContent(ctx, cfg.Content.Dir, func() error {
				return reloadContent(holder, cfg.Content, appLog)
			}, appLog)
			if err != nil {
				return err
			}
			defer watcher.Close()
		}

		renderer, err := newRenderer(cfg)
		if err != nil {
			return err
		}
		srv, err := web.NewServer(cfg.Server, route.Default(), holder, renderer, appLog)
		if err != nil {
			return err
		}
		appLog.Info("Press Ctrl+C to stop the server.")
		return srv.Run(ctx)
	},
}

// reloadContent rebuilds the repository from cfg and swaps it in. On failure
// the previous repository keeps serving.
func reloadContent(holder *post.Holder, cfg content.Config, log logger.Logger) error {
	posts, err := content.Load(cfg, log)
	if err != nil {
		return err
	}
	mem, err := post.NewMemoryRepository(posts, post.WithLatency(serveLatency))
	if err != nil {
		return err
	}
	holder.Swap(mem)
	log.Info("Posts reloaded", logger.Int("count", mem.Len()))
	return nil
}

// watchContent calls reload, debounced, whenever something under dir changes.
func watchContent(ctx context.Context, dir string, reload func() error, log logger.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn("Error walking content", logger.String("path", path), logger.Error(err))
			return nil
		}
		if d.IsDir() {
			if watchErr := watcher.Add(path); watchErr != nil {
				log.Warn("Failed to watch directory", logger.String("path", path), logger.Error(watchErr))
			}
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("error during initial directory walk for watching %s: %w", dir, err)
	}

	go func() {
		var reloadTimer *time.Timer
		defer func() {
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				log.Debug("Change detected", logger.String("path", event.Name), logger.String("op", event.Op.String()))

				if event.Has(fsnotify.Create) && isDir(event.Name) {
					if err := watcher.Add(event.Name); err != nil {
						log.Warn("Failed to watch new directory", logger.String("path", event.Name), logger.Error(err))
					}
				}

				if reloadTimer != nil {
					reloadTimer.Stop()
				}
				reloadTimer = time.AfterFunc(reloadDebounce, func() {
					if err := reload(); err != nil {
						log.Error("Reload failed, keeping previous posts", logger.Error(err))
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("Watcher error", logger.Error(err))
			}
		}
	}()

	log.Info("Watching content", logger.String("dir", dir))
	return watcher, nil
}

func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Port to serve on (overrides server.address)")
	serveCmd.Flags().DurationVar(&serveLatency, "latency", 0, "Artificial delay added to every post read")
	rootCmd.AddCommand(serveCmd)
}
