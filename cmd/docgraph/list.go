package main

import (
	"fmt"

	"github.com/fwojciec/docgraph"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := docgraph.DocumentFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Kind != "" && c.Kind != "all" {
		kind := docgraph.SourceKind(c.Kind)
		filter.Kind = &kind
	}

	docs, err := deps.Documents.FindDocuments(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgraph.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'docgraph analyze' or 'docgraph scrape' to add one.")
		return nil
	}

	for _, d := range docs {
		fmt.Fprintf(deps.Stdout, "%s  %-10s  %.2f  %s  %s\n", d.ID, d.Kind, d.QualityScore, d.Name, d.Source)
	}

	return nil
}
