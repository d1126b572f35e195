package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docgraph"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Reports   docgraph.ReportService
	Documents docgraph.DocumentService
	Graph     docgraph.GraphService

	// NewReportStore opens the export directory for --out.
	NewReportStore func(dir, name string) docgraph.ReportStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB           string `name:"db" env:"DOCGRAPH_DB" default:"${db_path}" help:"SQLite database path"`
	GeminiAPIKey string `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key; without it documents get a basic analysis"`
	Model        string `env:"DOCGRAPH_MODEL" default:"${default_model}" help:"Gemini model used for analysis"`
	Verbose      bool   `short:"v" help:"Log debug output to stderr"`

	Analyze AnalyzeCmd `cmd:"" help:"Analyze a local file"`
	Scrape  ScrapeCmd  `cmd:"" help:"Analyze a web page, GitHub repository or video URL"`
	List    ListCmd    `cmd:"" help:"List stored documents"`
	Show    ShowCmd    `cmd:"" help:"Show a stored document"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a document and its graph nodes"`
	Stats   StatsCmd   `cmd:"" help:"Show knowledge graph statistics"`
	Reason  ReasonCmd  `cmd:"" help:"Explore the knowledge graph from one or more entities"`
	Serve   ServeCmd   `cmd:"" help:"Serve the JSON API"`
}

// ReportOptions control how a report is printed and stored.
type ReportOptions struct {
	JSON    bool   `help:"Print the full report as JSON"`
	NoStore bool   `name:"no-store" help:"Do not store the document or its graph"`
	Out     string `type:"path" placeholder:"DIR" help:"Export the report as markdown into DIR"`
}

// ScrapeOptions configure web scraping.
type ScrapeOptions struct {
	Browser       bool     `help:"Render pages with a headless browser when plain fetching falls short"`
	Extractor     string   `enum:"trafilatura,readability,none" default:"trafilatura" help:"Sub-page main-content extractor (${enum})"`
	MaxSubpages   int      `name:"max-subpages" default:"${max_subpages}" help:"Maximum number of sub-pages fetched per site"`
	RespectRobots bool     `name:"respect-robots" help:"Skip sub-pages disallowed by robots.txt"`
	RateLimit     float64  `name:"rate-limit" default:"2" help:"Requests per second per domain"`
	Include       []string `short:"I" help:"Only follow sub-pages matching regex (repeatable)"`
	Exclude       []string `short:"X" help:"Never follow sub-pages matching regex (repeatable)"`
}

// defaultRateLimit applies when no --rate-limit was parsed, as for
// analyze re-dispatching a file that holds a URL.
const defaultRateLimit = 2.0

func (o ScrapeOptions) withDefaults() ScrapeOptions {
	if o.Extractor == "" {
		o.Extractor = "trafilatura"
	}
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	return o
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	File string `arg:"" type:"existingfile" help:"File to analyze (PDF, text, markdown or a file holding a URL)"`
	ReportOptions
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL string `arg:"" help:"Web page, GitHub repository or video URL"`
	ReportOptions
	ScrapeOptions
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Kind   string `enum:"all,file,web,repository,video" default:"all" help:"Only list documents of this kind (${enum})"`
	Limit  int    `default:"50" help:"Maximum number of documents"`
	Offset int    `help:"Number of documents to skip"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID      string `arg:"" help:"Document ID"`
	Content bool   `help:"Print the full document content"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Document ID"`
	Force bool   `help:"Confirm deletion"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	JSON bool `help:"Print statistics as JSON"`
}

// ReasonCmd is the "reason" subcommand.
type ReasonCmd struct {
	Entities []string `arg:"" help:"Entity or concept names to start from"`
	Hops     int      `default:"3" help:"Maximum number of hops (1-5)"`
	JSON     bool     `help:"Print the path as JSON"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `env:"DOCGRAPH_ADDR" default:":8080" help:"Listen address"`
	ScrapeOptions
}
