package main

import (
	"fmt"

	"github.com/fwojciec/docgraph"
	dghttp "github.com/fwojciec/docgraph/http"
)

// Run executes the reason command.
func (c *ReasonCmd) Run(deps *Dependencies) error {
	hops := c.Hops
	if hops <= 0 {
		hops = dghttp.DefaultReasonHops
	}
	if hops > dghttp.MaxReasonHops {
		fmt.Fprintf(deps.Stderr, "error: --hops must be between 1 and %d\n", dghttp.MaxReasonHops)
		return docgraph.Errorf(docgraph.EINVALID, "hops must be between 1 and %d", dghttp.MaxReasonHops)
	}

	path, err := deps.Graph.FindPaths(deps.Ctx, c.Entities, hops)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgraph.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, path)
	}

	if len(path.Hops) == 0 {
		fmt.Fprintln(deps.Stdout, "No connections found.")
		return nil
	}
	for _, h := range path.Hops {
		fmt.Fprintf(deps.Stdout, "%d. %s -[%s]-> %s\n", h.Step, h.Source, h.Type, h.Target)
	}
	fmt.Fprintf(deps.Stdout, "Visited %d nodes in %d steps\n", len(path.Visited), path.StepsCompleted)
	return nil
}
