package controller

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	m "gest.dev/pkg/gest/internal/model"
)

var (
	passBadge   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2"))
	failBadge   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	boldStyle   = lipgloss.NewStyle().Bold(true)
	reasonStyle = lipgloss.NewStyle().PaddingLeft(6)
)

func renderSuite(result m.SuiteResult) string {
	var b strings.Builder

	badge := passBadge.Render(" PASS ")
	if !result.Passed {
		badge = failBadge.Render(" FAIL ")
	}

	fmt.Fprintf(&b, "%s %s %s\n", badge, result.File, dimStyle.Render(formatDuration(result.Duration)))

	if result.Error != "" {
		b.WriteString(reasonStyle.Render(failStyle.Render(result.Error)))
		b.WriteString("\n")
	}

	for _, test := range result.Tests {
		if test.Status == m.Passed {
			fmt.Fprintf(&b, "  %s %s %s\n", passStyle.Render("✓"), test.Name, dimStyle.Render(formatDuration(test.Duration)))
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render("✗"), test.Name)

		if test.Reason != "" {
			b.WriteString(reasonStyle.Render(test.Reason))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderSummary(summary m.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", boldStyle.Render("Test Suites:"),
		countLine(summary.SuitesPassed, summary.SuitesFailed, summary.SuitesTotal()))
	fmt.Fprintf(&b, "%s       %s\n", boldStyle.Render("Tests:"),
		countLine(summary.TestsPassed, summary.TestsFailed, summary.TestsTotal()))
	fmt.Fprintf(&b, "%s        %s\n", boldStyle.Render("Time:"), formatDuration(summary.Elapsed))

	return b.String()
}

func countLine(passed, failed, total int) string {
	return fmt.Sprintf("%s, %s, %d total",
		passStyle.Render(fmt.Sprintf("%d passed", passed)),
		failStyle.Render(fmt.Sprintf("%d failed", failed)),
		total)
}

func renderCoverageTable(rows []m.FileCoverage) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Source", "% Stmts", "% Branch", "% Funcs", "Uncovered Line #s"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})

	var statements, branches, functions m.Ratio

	for _, row := range rows {
		table.Append([]string{
			row.Source,
			formatRatio(row.Statements),
			formatRatio(row.Branches),
			formatRatio(row.Functions),
			joinLines(row.UncoveredLines),
		})

		statements = addRatio(statements, row.Statements)
		branches = addRatio(branches, row.Branches)
		functions = addRatio(functions, row.Functions)
	}

	table.SetFooter([]string{
		fmt.Sprintf("All files (%d)", len(rows)),
		formatRatio(statements),
		formatRatio(branches),
		formatRatio(functions),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func formatRatio(ratio m.Ratio) string {
	text := fmt.Sprintf("%.2f", ratio.Percent())

	switch ratio.Band() {
	case m.BandGood:
		return passStyle.Render(text)
	case m.BandWarn:
		return warnStyle.Render(text)
	default:
		return failStyle.Render(text)
	}
}

func addRatio(a, b m.Ratio) m.Ratio {
	return m.Ratio{Hit: a.Hit + b.Hit, Total: a.Total + b.Total}
}

func joinLines(lines []int) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, strconv.Itoa(line))
	}

	return strings.Join(parts, ",")
}

func formatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.3f s", d.Seconds())
	}

	return fmt.Sprintf("%d ms", d.Milliseconds())
}
