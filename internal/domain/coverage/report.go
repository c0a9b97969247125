package coverage

import (
	m "gest.dev/pkg/gest/internal/model"
)

// Report summarizes the registry into one row per source file, sorted by source.
func (r *Registry) Report() []m.FileCoverage {
	sources := r.Sources()
	report := make([]m.FileCoverage, 0, len(sources))

	for _, source := range sources {
		report = append(report, summarize(source, r.Sites(source)))
	}

	return report
}

func summarize(source string, sites []m.CoverageSite) m.FileCoverage {
	row := m.FileCoverage{Source: source}

	for _, site := range sites {
		ratio := ratioFor(&row, site.Kind)
		ratio.Total++

		if site.Hit {
			ratio.Hit++
			continue
		}

		if site.Kind == m.SiteStatement {
			row.UncoveredLines = append(row.UncoveredLines, site.Line)
		}
	}

	return row
}

func ratioFor(row *m.FileCoverage, kind m.SiteKind) *m.Ratio {
	switch kind {
	case m.SiteFunction:
		return &row.Functions
	case m.SiteBranch:
		return &row.Branches
	default:
		return &row.Statements
	}
}
