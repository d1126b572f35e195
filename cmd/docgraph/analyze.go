package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docgraph"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	report, err := deps.Reports.AnalyzeFile(deps.Ctx, filepath.Base(c.File), data)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgraph.ErrorMessage(err))
		return err
	}
	return writeReport(deps, report, c.ReportOptions)
}

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	report, err := deps.Reports.AnalyzeURL(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgraph.ErrorMessage(err))
		return err
	}
	return writeReport(deps, report, c.ReportOptions)
}

// writeReport prints the report, exports it when --out is set and turns a
// failed report into an error.
func writeReport(deps *Dependencies, report *docgraph.Report, opts ReportOptions) error {
	if opts.JSON {
		if err := writeJSON(deps.Stdout, report); err != nil {
			return err
		}
	} else {
		printReport(deps.Stdout, report)
	}

	if report.Failed() {
		fmt.Fprintf(deps.Stderr, "error: %s\n", report.Message)
		return docgraph.Errorf(docgraph.EINVALID, "%s", report.Message)
	}

	if opts.Out != "" {
		if err := exportReport(deps, report, opts.Out); err != nil {
			fmt.Fprintf(deps.Stderr, "error: exporting report: %v\n", err)
			return err
		}
	}
	return nil
}

func exportReport(deps *Dependencies, report *docgraph.Report, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	store := deps.NewReportStore(dir, report.Name)
	if err := store.Save(deps.Ctx, report); err != nil {
		_ = store.Abort()
		return err
	}
	if err := store.Commit(); err != nil {
		_ = store.Abort()
		return err
	}
	fmt.Fprintf(deps.Stderr, "Exported report to %s\n", dir)
	return nil
}

func printReport(w io.Writer, r *docgraph.Report) {
	fmt.Fprintf(w, "Status:   %s\n", r.Status)
	if r.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", r.Message)
	}
	if r.Failed() {
		return
	}
	fmt.Fprintf(w, "Source:   %s\n", r.Source)
	fmt.Fprintf(w, "Name:     %s\n", r.Name)
	fmt.Fprintf(w, "Kind:     %s (%s)\n", r.Kind, r.Route)
	fmt.Fprintf(w, "Quality:  %.2f (%s)\n", r.Quality.Overall, r.Grade)
	if r.Stats.Total > 0 {
		fmt.Fprintf(w, "Units:    %d/%d extracted, %d empty, %d failed\n",
			r.Stats.Successful, r.Stats.Total, r.Stats.Empty, r.Stats.Failed)
	}
	if s := r.Structure; s != nil {
		fmt.Fprintf(w, "Sections: %d (%s)\n", len(s.Sections), s.Type)
	}
	if a := r.Analysis; a != nil {
		fmt.Fprintf(w, "Entities: %s\n", joinOrNone(a.Entities))
		fmt.Fprintf(w, "Concepts: %s\n", joinOrNone(a.Concepts))
		fmt.Fprintf(w, "Relationships: %d, confidence %.2f\n", len(a.Relationships), a.Confidence)
	}
	if v := r.Validation; v != nil {
		fmt.Fprintf(w, "Accuracy: %.2f\n", v.AccuracyScore)
	}
	if r.TokenCount > 0 {
		fmt.Fprintf(w, "Tokens:   %d\n", r.TokenCount)
	}
	if r.DocumentID != "" {
		fmt.Fprintf(w, "Document: %s\n", r.DocumentID)
	}
	if g := r.Graph; g != nil {
		fmt.Fprintf(w, "Graph:    +%d entities, +%d concepts, +%d relationships\n",
			g.EntityNodes, g.ConceptNodes, g.Relationships)
	}
	for _, rec := range r.QualityRecommendations {
		fmt.Fprintf(w, "  * %s\n", rec)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warning)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
