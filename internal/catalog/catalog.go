// Package catalog provides the hierarchical policy category catalog used
// for autocomplete. Categories are free text in the store; the catalog only
// suggests well-known "main > sub > item" paths.
package catalog

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// PathSeparator joins the levels of a category path.
const PathSeparator = " > "

// Catalog holds the flattened category paths.
type Catalog struct {
	paths []string
}

// Load parses the embedded category catalog.
func Load() (*Catalog, error) {
	var tree map[string]map[string][]string
	if err := yaml.Unmarshal(categoriesYAML, &tree); err != nil {
		return nil, eris.Wrap(err, "catalog: parse categories")
	}

	var paths []string
	for main, subs := range tree {
		for sub, items := range subs {
			for _, item := range items {
				paths = append(paths, strings.Join([]string{main, sub, item}, PathSeparator))
			}
		}
	}
	sort.Strings(paths)

	return &Catalog{paths: paths}, nil
}

// Paths returns every known category path in sorted order.
func (c *Catalog) Paths() []string {
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

// Suggest returns up to limit category paths containing the query as a
// substring. Matching is case-insensitive and NFC-normalized so decomposed
// Hangul input (common from macOS filenames and some IMEs) still matches.
// An empty query matches nothing.
func (c *Catalog) Suggest(query string, limit int) []string {
	query = normalize(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	var matches []string
	for _, path := range c.paths {
		if strings.Contains(normalize(path), query) {
			matches = append(matches, path)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
