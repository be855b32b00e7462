package filter

import (
	"github.com/gobwas/glob"
)

// Filter matches file base names against a list of glob patterns.
type Filter struct {
	globs []glob.Glob
}

// New creates a Filter from a list of glob patterns. An empty pattern list
// matches every name.
func New(patterns []string) (*Filter, error) {
	var globs []glob.Glob
	for _, pat := range patterns {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return &Filter{globs: globs}, nil
}

// Match returns true if name matches any pattern, or if no patterns were
// configured.
func (f *Filter) Match(name string) bool {
	if len(f.globs) == 0 {
		return true
	}
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
