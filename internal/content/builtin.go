// Package content produces the seed collection the post repositories are
// built from: the built-in posts, a YAML seed file, or a directory of
// markdown files with frontmatter.
package content

import (
	"time"

	"github.com/Bitlatte/folio/internal/model"
)

// Builtin returns the default seed. The last post is dated now.
func Builtin(now time.Time) []model.Post {
	return []model.Post{
		{
			ID:          model.IntID(1),
			Slug:        "primeiro-post",
			Title:       "Meu Primeiro Post",
			Content:     "<p>Este é o conteúdo do <strong>primeiro post</strong> escrito em HTML.</p><p>Podemos ter múltiplos parágrafos.</p>",
			Format:      model.FormatHTML,
			PublishDate: date(2025, time.March, 28),
		},
		{
			ID:          model.IntID(2),
			Slug:        "angular-19",
			Title:       "Novidades do Angular 19+",
			Content:     "<h2>Standalone APIs como Padrão</h2><p>Angular continua focando em simplificar a experiência do desenvolvedor com Standalone Components, Directives e Pipes.</p><blockquote>Isso torna NgModules opcionais para muitas aplicações.</blockquote>",
			Format:      model.FormatHTML,
			PublishDate: date(2025, time.March, 30),
		},
		{
			ID:          model.IntID(3),
			Slug:        "markdown-no-blog",
			Title:       "Usando Markdown no Blog",
			Content:     "É possível usar Markdown para escrever posts e depois convertê-lo para HTML no frontend usando bibliotecas como `ngx-markdown`. \n\n`npm install ngx-markdown`\n\nIsso facilita a escrita!",
			Format:      model.FormatMarkdown,
			PublishDate: &now,
		},
	}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
