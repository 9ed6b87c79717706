package mustache

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Partials resolves the templates named by {{>name}} tags.
type Partials interface {
	// Partial returns the template text for name, or false if there is none.
	Partial(name string) (string, bool)
}

// PartialLister is implemented by partial sources that can enumerate their
// names. It is used to suggest the intended name when a lookup misses.
type PartialLister interface {
	Names() []string
}

// PartialMap is a fixed set of partials keyed by name.
type PartialMap map[string]string

// Partial implements Partials.
func (m PartialMap) Partial(name string) (string, bool) {
	text, ok := m[name]
	return text, ok
}

// Names implements PartialLister.
func (m PartialMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PartialFunc loads partials on demand.
type PartialFunc func(name string) (string, bool)

// Partial implements Partials.
func (f PartialFunc) Partial(name string) (string, bool) {
	return f(name)
}

// FSPartials loads the partial "name" from the file name+Ext in FS.
type FSPartials struct {
	FS  fs.FS
	Ext string
}

// NewFSPartials returns a partial source reading name+ext files from fsys.
func NewFSPartials(fsys fs.FS, ext string) *FSPartials {
	return &FSPartials{FS: fsys, Ext: ext}
}

// Partial implements Partials. Unreadable files count as missing.
func (p *FSPartials) Partial(name string) (string, bool) {
	if !fs.ValidPath(name + p.Ext) {
		return "", false
	}
	b, err := fs.ReadFile(p.FS, name+p.Ext)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			GetLogger().WithField("partial", name).Warn("Failed to read partial: %v", err)
		}
		return "", false
	}
	return string(b), true
}

// Names implements PartialLister. It lists every file with the configured
// extension, by path relative to the root and without the extension.
func (p *FSPartials) Names() []string {
	var names []string
	_ = fs.WalkDir(p.FS, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if p.Ext != "" && path.Ext(name) != p.Ext {
			return nil
		}
		names = append(names, strings.TrimSuffix(name, p.Ext))
		return nil
	})
	sort.Strings(names)
	return names
}

// suggestPartial returns the known partial name closest to name, or "" when
// partials cannot list names or nothing is close.
func suggestPartial(name string, partials Partials) string {
	lister, ok := partials.(PartialLister)
	if !ok {
		return ""
	}
	return closestMatch(name, lister.Names())
}

// closestMatch finds the closest string match using fuzzy matching
func closestMatch(target string, candidates []string) string {
	if len(candidates) == 0 || target == "" {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		// Also accept a candidate whose letters all appear in the target.
		for _, candidate := range candidates {
			if fuzzy.MatchFold(candidate, target) {
				return candidate
			}
		}
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
