package main

import (
	"fmt"
	"sort"

	"github.com/fwojciec/docgraph"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Graph.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgraph.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, stats)
	}

	fmt.Fprintf(deps.Stdout, "Nodes: %d\n", stats.Nodes)
	printCounts(deps, stats.NodesByLabel)
	fmt.Fprintf(deps.Stdout, "Edges: %d\n", stats.Edges)
	printCounts(deps, stats.EdgesByType)
	return nil
}

func printCounts(deps *Dependencies, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(deps.Stdout, "  %-16s %d\n", k, counts[k])
	}
}
