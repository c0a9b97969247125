// Package coverage tracks which functions, statements and branches of the
// instrumented scripts executed during a run.
package coverage

import (
	"fmt"
	"sort"
	"sync"

	m "gest.dev/pkg/gest/internal/model"
)

// UnregisteredSiteError is returned when a runtime callback reports a site
// that was never registered by the instrumenter.
type UnregisteredSiteError struct {
	Key m.SiteKey
}

func (e *UnregisteredSiteError) Error() string {
	if e.Key.Label != "" {
		return fmt.Sprintf("%s site %q at %s:%d was never registered", e.Key.Kind, e.Key.Label, e.Key.Source, e.Key.Line)
	}

	return fmt.Sprintf("%s site at %s:%d was never registered", e.Key.Kind, e.Key.Source, e.Key.Line)
}

// Registry stores coverage sites per source file. It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	sites map[m.SiteKey]*m.CoverageSite
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sites: make(map[m.SiteKey]*m.CoverageSite)}
}

// AddFunction registers a function site. Registering an existing site is a no-op.
func (r *Registry) AddFunction(label, source string, line int) {
	r.add(m.SiteKey{Kind: m.SiteFunction, Label: label, Source: source, Line: line})
}

// AddStatement registers a statement site.
func (r *Registry) AddStatement(source string, line int) {
	r.add(m.SiteKey{Kind: m.SiteStatement, Source: source, Line: line})
}

// AddBranch registers a branch site.
func (r *Registry) AddBranch(source string, line int) {
	r.add(m.SiteKey{Kind: m.SiteBranch, Source: source, Line: line})
}

// FunctionCalled marks a function site as executed.
func (r *Registry) FunctionCalled(label, source string, line int) error {
	return r.hit(m.SiteKey{Kind: m.SiteFunction, Label: label, Source: source, Line: line})
}

// StatementCalled marks a statement site as executed.
func (r *Registry) StatementCalled(source string, line int) error {
	return r.hit(m.SiteKey{Kind: m.SiteStatement, Source: source, Line: line})
}

// BranchCalled marks a branch site as executed.
func (r *Registry) BranchCalled(source string, line int) error {
	return r.hit(m.SiteKey{Kind: m.SiteBranch, Source: source, Line: line})
}

func (r *Registry) add(key m.SiteKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sites[key]; ok {
		return
	}

	r.sites[key] = &m.CoverageSite{SiteKey: key}
}

func (r *Registry) hit(key m.SiteKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	site, ok := r.sites[key]
	if !ok {
		return &UnregisteredSiteError{Key: key}
	}

	site.Hit = true

	return nil
}

// Sites returns a snapshot of the sites registered for source, ordered by
// line and kind.
func (r *Registry) Sites(source string) []m.CoverageSite {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sites []m.CoverageSite

	for key, site := range r.sites {
		if key.Source == source {
			sites = append(sites, *site)
		}
	}

	sortSites(sites)

	return sites
}

// Sources returns every source with at least one registered site, sorted.
func (r *Registry) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	for key := range r.sites {
		seen[key.Source] = struct{}{}
	}

	sources := make([]string, 0, len(seen))
	for source := range seen {
		sources = append(sources, source)
	}

	sort.Strings(sources)

	return sources
}

func sortSites(sites []m.CoverageSite) {
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Line != sites[j].Line {
			return sites[i].Line < sites[j].Line
		}

		if sites[i].Kind != sites[j].Kind {
			return sites[i].Kind < sites[j].Kind
		}

		return sites[i].Label < sites[j].Label
	})
}
