package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ContentFormat tells the renderer how to treat a post body.
type ContentFormat string

const (
	FormatHTML     ContentFormat = "html"
	FormatMarkdown ContentFormat = "markdown"
)

// Post represents a single blog entry.
type Post struct {
	ID          PostID        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Content     string        `json:"content" yaml:"content"`
	Format      ContentFormat `json:"format,omitempty" yaml:"format,omitempty"`
	Author      string        `json:"author,omitempty" yaml:"author,omitempty"`
	PublishDate *time.Time    `json:"publishDate,omitempty" yaml:"publishDate,omitempty"`
	Slug        string        `json:"slug,omitempty" yaml:"slug,omitempty"`
}

// HasSlug reports whether the post can be reached through the detail route.
func (p Post) HasSlug() bool {
	return p.Slug != ""
}

// Permalink is the detail route for the post, or "" when it has no slug.
func (p Post) Permalink() string {
	if !p.HasSlug() {
		return ""
	}
	return "/post/" + p.Slug
}

// PostID identifies a post. It holds either a number or a string.
type PostID struct {
	num   int64
	str   string
	isNum bool
}

// IntID returns a numeric identifier.
func IntID(n int64) PostID {
	return PostID{num: n, isNum: true}
}

// StringID returns a textual identifier.
func StringID(s string) PostID {
	return PostID{str: s}
}

// IsZero reports whether the identifier was never set.
func (id PostID) IsZero() bool {
	return !id.isNum && id.str == ""
}

// IsNumeric reports whether the identifier is a number.
func (id PostID) IsNumeric() bool {
	return id.isNum
}

// Int returns the numeric value and whether the identifier is numeric.
func (id PostID) Int() (int64, bool) {
	return id.num, id.isNum
}

// Key is the canonical text form used for uniqueness checks and storage keys.
// Numeric and textual identifiers never collide: 1 and "1" are distinct keys.
func (id PostID) Key() string {
	if id.isNum {
		return "n:" + strconv.FormatInt(id.num, 10)
	}
	return "s:" + id.str
}

func (id PostID) String() string {
	if id.isNum {
		return strconv.FormatInt(id.num, 10)
	}
	return id.str
}

func (id PostID) MarshalJSON() ([]byte, error) {
	if id.isNum {
		return []byte(strconv.FormatInt(id.num, 10)), nil
	}
	return json.Marshal(id.str)
}

func (id *PostID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode post id: %w", err)
		}
		*id = StringID(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode post id: %w", err)
	}
	*id = IntID(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler (gopkg.in/yaml.v2).
func (id PostID) MarshalYAML() (interface{}, error) {
	if id.isNum {
		return id.num, nil
	}
	return id.str, nil
}

// UnmarshalYAML implements yaml.Unmarshaler (gopkg.in/yaml.v2).
func (id *PostID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int64
	if err := unmarshal(&n); err == nil {
		*id = IntID(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("decode post id: %w", err)
	}
	*id = StringID(s)
	return nil
}
