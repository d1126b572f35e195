package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docgraph"
	"github.com/fwojciec/docgraph/crawl"
	"github.com/fwojciec/docgraph/fs"
	"github.com/fwojciec/docgraph/gemini"
	"github.com/fwojciec/docgraph/github"
	"github.com/fwojciec/docgraph/goquery"
	"github.com/fwojciec/docgraph/htmltomarkdown"
	dghttp "github.com/fwojciec/docgraph/http"
	"github.com/fwojciec/docgraph/pdf"
	"github.com/fwojciec/docgraph/pipeline"
	"github.com/fwojciec/docgraph/readability"
	"github.com/fwojciec/docgraph/rod"
	dgslog "github.com/fwojciec/docgraph/slog"
	"github.com/fwojciec/docgraph/sqlite"
	"github.com/fwojciec/docgraph/trafilatura"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor DOCGRAPH_DB is set.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	DocumentService docgraph.DocumentService
	GraphService    docgraph.GraphService

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:            ctx,
		Stdout:         stdout,
		Stderr:         stderr,
		NewReportStore: newReportStore,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docgraph"),
		kong.Description("Extract, score and analyze documents, web pages, repositories and videos into a knowledge graph"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Vars{
			"db_path":       m.DBPath,
			"default_model": gemini.DefaultModel,
			"max_subpages":  fmt.Sprint(docgraph.DefaultMaxSubpages),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docgraph --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)
	defer m.Close()

	if needsStorage(cmd, cli) {
		if err := m.openDB(cli.DB); err != nil {
			fmt.Fprintf(stderr, "Hint: Set DOCGRAPH_DB to use a different database path\n")
			return err
		}
		deps.Documents = m.DocumentService
		deps.Graph = m.GraphService
	}

	switch cmd {
	case "analyze", "scrape", "serve":
		opts := cli.Scrape.ScrapeOptions
		if cmd == "serve" {
			opts = cli.Serve.ScrapeOptions
		}
		reports, err := m.newPipeline(ctx, cli, opts, deps, stderr)
		if err != nil {
			return err
		}
		deps.Reports = reports
	}

	return kongCtx.Run(deps)
}

// needsStorage reports whether cmd reads or writes the database.
func needsStorage(cmd string, cli *CLI) bool {
	switch cmd {
	case "analyze":
		return !cli.Analyze.NoStore
	case "scrape":
		return !cli.Scrape.NoStore
	default:
		return true
	}
}

func (m *Main) openDB(path string) error {
	if path == "" {
		path = m.DBPath
	}
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, ":memory:") {
		_ = os.MkdirAll(dir, 0755)
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		m.DB = nil
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	if m.DocumentService == nil {
		m.DocumentService = sqlite.NewDocumentService(m.DB)
	}
	if m.GraphService == nil {
		m.GraphService = sqlite.NewGraphService(m.DB)
	}
	return nil
}

// newPipeline wires the extraction, analysis and storage stages. Every
// adapter is wrapped in its logging decorator.
func (m *Main) newPipeline(ctx context.Context, cli *CLI, opts ScrapeOptions, deps *Dependencies, stderr io.Writer) (docgraph.ReportService, error) {
	logger := deps.Logger
	opts = opts.withDefaults()

	httpFetcher := dgslog.NewLoggingFetcher(dghttp.NewFetcher(), logger)

	var render docgraph.Fetcher
	if opts.Browser {
		fetcher, err := rod.NewFetcher(rod.WithLogger(logger))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, fetcher)
		render = dgslog.NewLoggingFetcher(fetcher, logger)
	}

	filter, err := parseFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	sites := &crawl.SiteScraper{
		Fetcher:       httpFetcher,
		RenderFetcher: render,
		PageReader:    goquery.NewPageReader(),
		SubpageReader: goquery.NewPageReader(),
		LinkSelector: dgslog.NewLoggingLinkSelector(
			goquery.NewSubpageSelector(goquery.WithMaxPages(opts.MaxSubpages)), logger),
		Extractor: newExtractor(opts.Extractor),
		Converter: htmltomarkdown.NewConverter(),
		Repositories: dgslog.NewLoggingRepositoryCollector(
			github.NewCollector(nil, github.WithLogger(logger)), logger),
		RateLimiter: crawl.NewDomainLimiter(opts.RateLimit),
		Filter:      filter,
		MaxSubpages: opts.MaxSubpages,
		Logger:      logger,
	}
	if opts.RespectRobots {
		sites.Robots = crawl.NewRobotsPolicy(nil, "")
	}

	videos := &crawl.VideoScraper{
		Fetchers: map[docgraph.Platform]docgraph.Fetcher{
			docgraph.PlatformGeneric: httpFetcher,
			docgraph.PlatformBilibili: dgslog.NewLoggingFetcher(dghttp.NewFetcher(
				dghttp.WithTimeout(docgraph.VideoPageTimeout),
				dghttp.WithHeader("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8"),
				dghttp.WithHeader("Referer", "https://www.bilibili.com/"),
			), logger),
			docgraph.PlatformYouTube: dgslog.NewLoggingFetcher(dghttp.NewFetcher(
				dghttp.WithTimeout(docgraph.VideoPageTimeout),
				dghttp.WithHeader("Accept-Language", "en-US,en;q=0.9"),
			), logger),
		},
		Extractors: map[docgraph.Platform]docgraph.VideoMetadataExtractor{
			docgraph.PlatformYouTube:  goquery.NewVideoExtractor(docgraph.PlatformYouTube),
			docgraph.PlatformBilibili: goquery.NewVideoExtractor(docgraph.PlatformBilibili),
			docgraph.PlatformVimeo:    goquery.NewVideoExtractor(docgraph.PlatformVimeo),
			docgraph.PlatformGeneric:  goquery.NewVideoExtractor(docgraph.PlatformGeneric),
		},
		Transcripts: dgslog.NewLoggingTranscripts(dghttp.NewTranscriptService(&http.Client{Timeout: docgraph.TranscriptTimeout}), logger),
		Logger:      logger,
	}

	p := &pipeline.Pipeline{
		Parser:    dgslog.NewLoggingParser(pdf.NewParser(pdf.WithLogger(logger)), logger),
		Sites:     dgslog.NewLoggingSiteScraper(sites, logger),
		Videos:    dgslog.NewLoggingVideoScraper(videos, logger),
		Documents: deps.Documents,
		Graph:     deps.Graph,
		Logger:    logger,
	}
	if cli.GeminiAPIKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY not set; using basic analysis. Get a key at https://aistudio.google.com/apikey")
	} else {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cli.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		analyzer := gemini.NewAnalyzer(client, gemini.WithModel(cli.Model))
		logger.Debug("gemini analyzer enabled", "model", analyzer.Model())
		p.Analyzer = dgslog.NewLoggingAnalyzer(analyzer, logger)
	}

	if tokens, err := gemini.NewTokenCounter(tokenizerModel); err != nil {
		logger.Warn("token counting disabled", "model", tokenizerModel, "error", err)
	} else {
		p.Tokens = tokens
	}

	return dgslog.NewLoggingReportService(p, logger), nil
}

// tokenizerModel is the model whose local tokenizer counts tokens. The
// analysis model may be one the local tokenizer does not know.
const tokenizerModel = gemini.DefaultModel

func newExtractor(name string) docgraph.Extractor {
	switch name {
	case "trafilatura":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	default:
		return nil
	}
}

func parseFilter(include, exclude []string) (*docgraph.URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	filter := &docgraph.URLFilter{}
	for _, pattern := range include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, docgraph.Errorf(docgraph.EINVALID, "invalid include pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, docgraph.Errorf(docgraph.EINVALID, "invalid exclude pattern %q: %v", pattern, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}
	return filter, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newReportStore(dir, name string) docgraph.ReportStore {
	return fs.NewReportStore(dir, fs.DirName(name))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docgraph.db"
	}
	return filepath.Join(home, ".docgraph", "docgraph.db")
}
