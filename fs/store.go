package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docgraph"
)

// Ensure ReportStore implements docgraph.ReportStore at compile time.
var _ docgraph.ReportStore = (*ReportStore)(nil)

// ReportStore implements docgraph.ReportStore with atomic update semantics.
// Files are written to baseDir/name.tmp and moved to baseDir/name on Commit.
type ReportStore struct {
	baseDir string
	name    string

	// Now returns the export timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewReportStore creates a new ReportStore.
// baseDir is the parent directory, name is the output directory name.
func NewReportStore(baseDir, name string) *ReportStore {
	return &ReportStore{
		baseDir: baseDir,
		name:    name,
		Now:     time.Now,
	}
}

// DirName derives an output directory name from a report file name.
// Example: scraped_github_specialized_repo.txt → scraped-github-specialized-repo
func DirName(reportName string) string {
	base := strings.TrimSuffix(reportName, filepath.Ext(reportName))
	if slug := Slug(base); slug != "" {
		return slug
	}
	return "report"
}

func (s *ReportStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ReportStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes IndexFile and one file per structure section into the
// temporary directory. A second Save replaces the first.
func (s *ReportStore) Save(ctx context.Context, report *docgraph.Report) error {
	if report == nil {
		return docgraph.Errorf(docgraph.EINVALID, "report required")
	}
	if s.name == "" || s.name != filepath.Base(s.name) || s.name == "." || s.name == ".." {
		return docgraph.Errorf(docgraph.EINVALID, "invalid output name %q: path traversal", s.name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.RemoveAll(s.tempDir()); err != nil {
		return err
	}
	sectionsDir := filepath.Join(s.tempDir(), SectionsDir)
	if err := os.MkdirAll(sectionsDir, 0755); err != nil {
		return err
	}

	index, err := FormatIndex(report, s.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.tempDir(), IndexFile), []byte(index), 0644); err != nil {
		return err
	}

	if report.Structure == nil {
		return nil
	}
	for _, sec := range report.Structure.Sections {
		content, err := FormatSection(report, sec)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(sectionsDir, SectionFile(sec)), []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// Commit replaces the final directory with the temporary one.
func (s *ReportStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the temporary directory.
func (s *ReportStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
