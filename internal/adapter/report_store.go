package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "gest.dev/pkg/gest/internal/model"
)

// LastRunFileName is the file the most recent run report is stored in.
const LastRunFileName = "last-run.yaml"

// ErrNoReport is returned when no run report has been stored yet.
var ErrNoReport = errors.New("no stored run report")

// ReportStore persists run reports between invocations.
type ReportStore interface {
	SaveReport(path m.Path, report m.RunReport) error
	LoadReport(path m.Path) (m.RunReport, error)
}

// YAMLReportStore stores reports as YAML inside a reports directory.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes report to path/last-run.yaml, creating the directory if needed.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.RunReport) error {
	if err := os.MkdirAll(string(path), 0o750); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	target := filepath.Join(string(path), LastRunFileName)
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// LoadReport reads the report stored under path.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.RunReport, error) {
	data, err := os.ReadFile(filepath.Join(string(path), LastRunFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.RunReport{}, fmt.Errorf("%w in %s", ErrNoReport, path)
		}

		return m.RunReport{}, fmt.Errorf("failed to read report: %w", err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("failed to decode report: %w", err)
	}

	return report, nil
}
