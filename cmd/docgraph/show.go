package main

import (
	"fmt"

	"github.com/fwojciec/docgraph"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	doc, err := deps.Documents.FindDocumentByID(deps.Ctx, c.ID)
	if err != nil {
		if docgraph.ErrorCode(err) == docgraph.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: document %q not found. Use 'docgraph list' to see stored documents.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docgraph.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "ID:       %s\n", doc.ID)
	fmt.Fprintf(deps.Stdout, "Name:     %s\n", doc.Name)
	fmt.Fprintf(deps.Stdout, "Source:   %s\n", doc.Source)
	fmt.Fprintf(deps.Stdout, "Kind:     %s\n", doc.Kind)
	fmt.Fprintf(deps.Stdout, "Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(deps.Stdout, "Chars:    %d\n", doc.CharCount)
	fmt.Fprintf(deps.Stdout, "Entities: %d\n", doc.EntityCount)
	fmt.Fprintf(deps.Stdout, "Concepts: %d\n", doc.ConceptCount)
	fmt.Fprintf(deps.Stdout, "Quality:  %.2f (%s)\n", doc.QualityScore, docgraph.Grade(doc.QualityScore))
	fmt.Fprintf(deps.Stdout, "Hash:     %s\n", doc.ContentHash)

	if c.Content {
		fmt.Fprintf(deps.Stdout, "\n%s\n", doc.Content)
	}
	return nil
}
