package model

// SiteKind distinguishes the three kinds of coverage sites.
type SiteKind int

const (
	// SiteFunction marks the entry of a named function.
	SiteFunction SiteKind = iota
	// SiteStatement marks a call statement, assignment or throw.
	SiteStatement
	// SiteBranch marks the entry of an if/else-if/else block.
	SiteBranch
)

func (k SiteKind) String() string {
	switch k {
	case SiteFunction:
		return "function"
	case SiteStatement:
		return "statement"
	case SiteBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// SiteKey identifies a coverage site. Label is the function name for
// function sites and empty otherwise.
type SiteKey struct {
	Kind   SiteKind
	Label  string
	Source string
	Line   int
}

// CoverageSite is a registered site and whether it executed.
type CoverageSite struct {
	SiteKey
	Hit bool
}

// Band classifies a coverage percentage for display.
type Band int

const (
	// BandGood is 80% and above.
	BandGood Band = iota
	// BandWarn is 50% up to 80%.
	BandWarn
	// BandCritical is below 50%.
	BandCritical
)

// Ratio counts hit sites against registered sites.
type Ratio struct {
	Hit   int `yaml:"hit"`
	Total int `yaml:"total"`
}

// Percent returns the hit percentage. A kind without sites is fully covered.
func (r Ratio) Percent() float64 {
	if r.Total == 0 {
		return 100
	}

	return float64(r.Hit) / float64(r.Total) * 100
}

// Band returns the display band of the ratio.
func (r Ratio) Band() Band {
	percent := r.Percent()

	switch {
	case percent >= 80:
		return BandGood
	case percent >= 50:
		return BandWarn
	default:
		return BandCritical
	}
}

// FileCoverage is one row of the coverage report.
type FileCoverage struct {
	Source         string `yaml:"source"`
	Statements     Ratio  `yaml:"statements"`
	Branches       Ratio  `yaml:"branches"`
	Functions      Ratio  `yaml:"functions"`
	UncoveredLines []int  `yaml:"uncovered_lines,omitempty"`
}
