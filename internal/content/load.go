package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/model"
)

// Sources accepted by Config.Source.
const (
	SourceBuiltin = "builtin"
	SourceDir     = "dir"
	SourceFile    = "file"
	SourceRedis   = "redis"
)

// ErrUnknownSource is returned for a Config.Source folio does not know.
var ErrUnknownSource = errors.New("unknown content source")

// Config selects where the seed comes from.
type Config struct {
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"`
	File   string `mapstructure:"file"`
}

var dateFormats = []string{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// Load reads the seed for cfg.Source. For redis it returns the built-in
// posts, which the caller writes to Redis when seeding is enabled.
func Load(cfg Config, log logger.Logger) ([]model.Post, error) {
	switch cfg.Source {
	case "", SourceBuiltin:
		return Builtin(time.Now()), nil
	case SourceDir:
		return LoadDir(cfg.Dir, log)
	case SourceFile:
		return LoadFile(cfg.File)
	case SourceRedis:
		return Builtin(time.Now()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

type seedFile struct {
	Posts []model.Post `yaml:"posts"`
}

// LoadFile reads a YAML document with a top-level posts list.
func LoadFile(path string) ([]model.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file %s: %w", path, err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("error unmarshalling seed file %s: %w", path, err)
	}
	for i := range sf.Posts {
		if sf.Posts[i].Format == "" {
			sf.Posts[i].Format = model.FormatHTML
		}
	}
	return sf.Posts, nil
}

type postMatter struct {
	ID     model.PostID `yaml:"id"`
	Title  string       `yaml:"title"`
	Slug   string       `yaml:"slug"`
	Author string       `yaml:"author"`
	Date   string       `yaml:"date"`
	Format string       `yaml:"format"`
	Draft  bool         `yaml:"draft"`
}

// LoadDir reads every .md file under dir in lexical path order. Frontmatter
// is optional; title and slug fall back to the file name and the id falls
// back to the slug. Drafts are skipped.
func LoadDir(dir string, log logger.Logger) ([]model.Post, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content directory '%s': %w", dir, err)
	}

	titleCaser := cases.Title(language.English)
	var posts []model.Post
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path '%s': %w", path, err)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		fileBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file '%s': %w", path, err)
		}

		var fm postMatter
		body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fm)
		if err != nil {
			log.Warn("No usable frontmatter, treating as pure markdown",
				logger.String("path", path), logger.Error(err))
			body = fileBytes
			fm = postMatter{}
		}
		if fm.Draft {
			log.Debug("Skipping draft", logger.String("path", path))
			return nil
		}

		base := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		p := model.Post{
			ID:      fm.ID,
			Title:   fm.Title,
			Slug:    fm.Slug,
			Author:  fm.Author,
			Content: strings.TrimSpace(string(body)),
			Format:  model.FormatMarkdown,
		}
		if fm.Format == string(model.FormatHTML) {
			p.Format = model.FormatHTML
		}
		if p.Slug == "" {
			p.Slug = Slugify(base)
		}
		if p.Title == "" {
			p.Title = titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(base))
		}
		if p.ID.IsZero() {
			p.ID = model.StringID(p.Slug)
		}
		if fm.Date != "" {
			t, ok := parseDate(fm.Date)
			if !ok {
				log.Warn("Could not parse date, use YYYY-MM-DD or RFC3339",
					logger.String("path", path), logger.String("date", fm.Date))
			} else {
				p.PublishDate = &t
			}
		}

		posts = append(posts, p)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("error during content walk: %w", walkErr)
	}
	log.Info("Loaded content", logger.String("dir", dir), logger.Int("posts", len(posts)))
	return posts, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Slugify strips accents, lowercases s and collapses every run of
// non-alphanumeric characters into a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if plain, _, err := transform.String(t, s); err == nil {
		s = plain
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
