// Package route holds the static table that maps URL paths to views.
package route

import (
	"errors"
	"fmt"
	"strings"
)

// View identifiers.
const (
	ViewPostList   = "post-list"
	ViewPostDetail = "post-detail"
)

// CatchAll is the pattern that matches every path.
const CatchAll = "/**"

// Route is one entry of the table.
type Route struct {
	Path       string
	View       string
	RedirectTo string
	Exact      bool
	Title      string
}

// IsRedirect reports whether the entry redirects instead of mounting a view.
func (r Route) IsRedirect() bool {
	return r.RedirectTo != ""
}

// Table is an ordered, read-only list of routes. The first match wins.
type Table []Route

// Default is the blog's route table.
func Default() Table {
	return Table{
		{Path: "/", RedirectTo: "/posts", Exact: true},
		{Path: "/posts", View: ViewPostList, Title: "Posts"},
		{Path: "/post/{slug}", View: ViewPostDetail},
		{Path: CatchAll, RedirectTo: "/posts"},
	}
}

// Match is the outcome of resolving a path.
type Match struct {
	Route      Route
	View       string
	Params     map[string]string
	RedirectTo string
}

// Param returns a captured route parameter, or "".
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Resolve finds the first entry matching path. Trailing slashes and query
// strings are ignored. Segment patterns must match the whole path; Exact only
// matters for "/", which otherwise matches every path. ok is false only if
// nothing matched, which a valid table prevents with its catch-all.
func (t Table) Resolve(path string) (Match, bool) {
	path = normalize(path)
	for _, r := range t {
		params, ok := match(r, path)
		if !ok {
			continue
		}
		return Match{Route: r, View: r.View, Params: params, RedirectTo: r.RedirectTo}, true
	}
	return Match{}, false
}

// Validate checks that paths are unique, every entry either mounts a view
// or redirects, and the table ends with exactly one catch-all.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("route table is empty")
	}
	seen := make(map[string]struct{}, len(t))
	for i, r := range t {
		if _, ok := seen[r.Path]; ok {
			return fmt.Errorf("duplicate route path %q", r.Path)
		}
		seen[r.Path] = struct{}{}
		if (r.View == "") == (r.RedirectTo == "") {
			return fmt.Errorf("route %q must set exactly one of view or redirect", r.Path)
		}
		if r.Path == CatchAll && i != len(t)-1 {
			return fmt.Errorf("catch-all route must be last, found at %d", i)
		}
	}
	if t[len(t)-1].Path != CatchAll {
		return errors.New("route table has no catch-all")
	}
	return nil
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func match(r Route, path string) (map[string]string, bool) {
	if r.Path == CatchAll {
		return nil, true
	}
	if r.Path == "/" {
		return nil, path == "/" || !r.Exact
	}

	want := strings.Split(strings.Trim(r.Path, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(got) != len(want) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range want {
		if name, ok := paramName(seg); ok {
			if got[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func paramName(seg string) (string, bool) {
	if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2 {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
