package model

import "html/template"

// PageData is what the shell layout receives for every rendered page.
type PageData struct {
	SiteTitle string
	PageTitle string
	BaseURL   string
	Year      int
}

// PostView is a post prepared for a template: the body converted to HTML
// and the publish date formatted.
type PostView struct {
	Post
	Body template.HTML
	Date string
}
