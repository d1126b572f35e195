package main

import (
	"fmt"

	dghttp "github.com/fwojciec/docgraph/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stderr, "Serving docgraph API on %s\n", c.Addr)

	s := dghttp.NewServer()
	s.Addr = c.Addr
	s.Reports = deps.Reports
	s.Documents = deps.Documents
	s.Graph = deps.Graph
	s.Logger = deps.Logger

	return s.ListenAndServe(deps.Ctx)
}
