// Package pipeline runs the extraction and analysis stages for uploaded
// files and URLs and assembles their report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/docgraph"
	"golang.org/x/sync/errgroup"
)

// DefaultAnalyzerTimeout bounds a single analyzer call.
const DefaultAnalyzerTimeout = 10 * time.Second

// minNormalizeLength is the length above which file text is normalized.
const minNormalizeLength = 10

// transcriptBonus is added to the analysis confidence of videos with a
// transcript.
const transcriptBonus = 0.1

var _ docgraph.ReportService = (*Pipeline)(nil)

// Pipeline implements docgraph.ReportService. Every collaborator except
// Parser, Sites and Videos is optional.
type Pipeline struct {
	Parser docgraph.DocumentParser
	Sites  docgraph.SiteScraper
	Videos docgraph.VideoScraper

	// Analyzer extracts entities and concepts. Without it every document
	// gets a basic analysis.
	Analyzer        docgraph.Analyzer
	AnalyzerTimeout time.Duration

	Tokens docgraph.TokenCounter

	// Documents and Graph persist analyzed documents. Graph is only used
	// together with Documents.
	Documents docgraph.DocumentService
	Graph     docgraph.GraphService

	Logger *slog.Logger
}

// extraction is the output of the extract stage of one run.
type extraction struct {
	source string
	name   string
	kind   docgraph.SourceKind
	route  docgraph.Route
	doc    *docgraph.ExtractedDocument

	// normalize applies the normalizer to the text. URL content is kept
	// as combined.
	normalize bool

	video *docgraph.VideoInfo
	site  *docgraph.SiteScrape
}

// AnalyzeFile processes an uploaded document. A text file that holds
// nothing but a URL is processed as that URL; if that fails, the text
// itself is analyzed.
func (p *Pipeline) AnalyzeFile(ctx context.Context, name string, data []byte) (*docgraph.Report, error) {
	if strings.TrimSpace(name) == "" {
		name = "document.txt"
	}
	if len(data) == 0 {
		return failedReport(name, name, "empty file"), nil
	}

	route := docgraph.ResolveFile(name)
	var doc *docgraph.ExtractedDocument
	switch route {
	case docgraph.RouteBinary:
		if p.Parser == nil {
			return failedReport(name, name, "no parser configured for binary documents"), nil
		}
		doc = p.Parser.Parse(ctx, name, data)
	default:
		text := docgraph.DecodeText(data)
		if u, ok := docgraph.BareURL(text); ok {
			report, err := p.AnalyzeURL(ctx, u)
			if err != nil {
				return nil, err
			}
			if !report.Failed() {
				return report, nil
			}
			p.logger().Warn("uploaded URL could not be processed, analyzing text", "name", name, "url", u, "reason", report.Message)
		}
		doc = textDocument(name, text)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return failedReport(name, name, "no text could be extracted"), nil
	}

	return p.process(ctx, &extraction{
		source:    name,
		name:      name,
		kind:      docgraph.KindFile,
		route:     route,
		doc:       doc,
		normalize: true,
	})
}

func textDocument(name, text string) *docgraph.ExtractedDocument {
	doc := &docgraph.ExtractedDocument{Source: name, Text: text, Stats: docgraph.ExtractionStats{Total: 1}}
	if strings.TrimSpace(text) == "" {
		doc.Stats.Empty = 1
		doc.Outcome = docgraph.Failed("file contains no text")
		return doc
	}
	doc.Stats.Successful = 1
	doc.Outcome = docgraph.Succeeded()
	return doc
}

// AnalyzeURL processes a web page, repository or video URL.
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*docgraph.Report, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return failedReport("", "", "URL required"), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return failedReport(rawURL, "", fmt.Sprintf("invalid URL %q", rawURL)), nil
	}

	route := docgraph.ClassifyURL(rawURL)
	var ext *extraction
	switch route {
	case docgraph.RouteVideo:
		ext, err = p.extractVideo(ctx, rawURL)
	default:
		ext, err = p.extractSite(ctx, rawURL, route)
	}
	if err != nil {
		p.logger().Warn("extraction failed", "url", rawURL, "route", route, "error", err)
		return failedReport(rawURL, "", err.Error()), nil
	}
	return p.process(ctx, ext)
}

func (p *Pipeline) extractVideo(ctx context.Context, rawURL string) (*extraction, error) {
	if p.Videos == nil {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "no video scraper configured")
	}
	info, err := p.Videos.Scrape(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch video page: %w", err)
	}

	outcome := docgraph.Succeeded()
	if len(info.Missing) > 0 {
		outcome = docgraph.Degraded("video fields not found: " + strings.Join(info.Missing, ", "))
	}
	return &extraction{
		source: rawURL,
		name:   info.VirtualName(),
		kind:   docgraph.KindVideo,
		route:  docgraph.RouteVideo,
		doc: &docgraph.ExtractedDocument{
			Source:  rawURL,
			Text:    info.CombinedContent(),
			Stats:   docgraph.ExtractionStats{Total: 1, Successful: 1},
			Outcome: outcome,
		},
		video: info,
	}, nil
}

func (p *Pipeline) extractSite(ctx context.Context, rawURL string, route docgraph.Route) (*extraction, error) {
	if p.Sites == nil {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "no site scraper configured")
	}
	scrape, err := p.Sites.Scrape(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch page: %w", err)
	}

	kind := docgraph.KindWebPage
	if scrape.Mode == docgraph.ModeRepository {
		kind = docgraph.KindRepository
	}
	return &extraction{
		source: rawURL,
		name:   scrape.VirtualName(),
		kind:   kind,
		route:  route,
		doc: &docgraph.ExtractedDocument{
			Source:  rawURL,
			Text:    scrape.Content,
			Stats:   scrape.Stats,
			Outcome: scrape.Outcome,
		},
		site: scrape,
	}, nil
}

// process runs the stages after extraction and assembles the report.
func (p *Pipeline) process(ctx context.Context, ext *extraction) (*docgraph.Report, error) {
	start := time.Now()
	doc := ext.doc

	report := &docgraph.Report{
		Source:         ext.source,
		Name:           ext.name,
		Kind:           ext.kind,
		Route:          ext.route,
		Stats:          doc.Stats.Clamp(),
		OriginalLength: utf8.RuneCountInString(doc.Text),
		Video:          ext.video,
		Site:           ext.site,
	}
	// The run continues past an extraction failure that still left text,
	// so it only degrades the report.
	extracted := doc.Outcome
	if extracted.Status == docgraph.StatusFailed {
		extracted.Status = docgraph.StatusDegraded
	}
	outcome := docgraph.Succeeded().Merge(extracted)

	text := doc.Text
	if ext.normalize && utf8.RuneCountInString(text) > minNormalizeLength {
		text = docgraph.Normalize(text, docgraph.ScoreQuality(text))
	}
	report.Content = text

	report.Quality = docgraph.ScoreQuality(text)
	report.Grade = docgraph.Grade(report.Quality.Overall)
	report.QualityRecommendations = docgraph.QualityRecommendations(report.Quality)

	// Structure and analysis read the same text independently.
	var (
		g               errgroup.Group
		analysis        *docgraph.AnalysisResult
		analysisOutcome docgraph.Outcome
	)
	g.Go(func() error {
		report.Structure = docgraph.Structure(text, ext.name)
		return nil
	})
	g.Go(func() error {
		analysis, analysisOutcome = p.analyze(ctx, text, ext.name)
		return nil
	})
	g.Go(func() error {
		report.TokenCount = p.countTokens(ctx, text)
		return nil
	})
	_ = g.Wait()
	outcome = outcome.Merge(analysisOutcome)

	report.AnalysisSummary = analysis.Content
	if docgraph.IsBoilerplate(analysis.Content) {
		analysis.Content = text
	}
	if ext.video != nil && ext.video.HasTranscript() {
		analysis.Confidence = docgraph.ClampConfidence(analysis.Confidence + transcriptBonus)
	}
	analysis = docgraph.SyncGraphData(analysis)
	report.Analysis = analysis
	report.Validation = docgraph.ValidateExtraction(analysis, text)

	if err := p.store(ctx, report); err != nil {
		return nil, err
	}

	report.Status = outcome.Status
	report.Warnings = append([]string{}, outcome.Reasons...)
	report.Message = message(report)

	p.logger().Info("pipeline complete",
		"source", ext.source,
		"route", ext.route,
		"status", report.Status,
		"chars", utf8.RuneCountInString(text),
		"quality", report.Quality.Overall,
		"entities", len(analysis.Entities),
		"duration", time.Since(start),
	)
	return report, nil
}

// analyze consults the analyzer for texts long enough to be worth it and
// falls back to a basic analysis on any error or timeout.
func (p *Pipeline) analyze(ctx context.Context, text, name string) (*docgraph.AnalysisResult, docgraph.Outcome) {
	if p.Analyzer == nil || utf8.RuneCountInString(text) <= docgraph.MinAnalyzableLength {
		return docgraph.BasicAnalysis(text, name), docgraph.Succeeded()
	}

	ctx, cancel := context.WithTimeout(ctx, p.analyzerTimeout())
	defer cancel()

	type answer struct {
		result *docgraph.AnalysisResult
		err    error
	}
	done := make(chan answer, 1)
	go func() {
		result, err := p.Analyzer.Analyze(ctx, text, name)
		done <- answer{result, err}
	}()

	var err error
	select {
	case a := <-done:
		if a.err == nil && a.result != nil {
			return a.result, docgraph.Succeeded()
		}
		err = a.err
		if err == nil {
			err = errors.New("analyzer returned no result")
		}
	case <-ctx.Done():
		err = ctx.Err()
	}

	p.logger().Warn("analysis failed, using basic analysis", "name", name, "error", err)
	return docgraph.BasicAnalysis(text, name), docgraph.Degraded("AI analysis unavailable, basic analysis used: " + err.Error())
}

func (p *Pipeline) countTokens(ctx context.Context, text string) int {
	if p.Tokens == nil || strings.TrimSpace(text) == "" {
		return 0
	}
	n, err := p.Tokens.CountTokens(ctx, text)
	if err != nil {
		p.logger().Debug("token count unavailable", "error", err)
		return 0
	}
	return n
}

// store persists the document and its graph. Storage errors abort the run.
func (p *Pipeline) store(ctx context.Context, report *docgraph.Report) error {
	if p.Documents == nil {
		return nil
	}

	doc := &docgraph.Document{
		Name:         report.Name,
		Source:       report.Source,
		Kind:         report.Kind,
		Content:      report.Content,
		EntityCount:  len(report.Analysis.Entities),
		ConceptCount: len(report.Analysis.Concepts),
		QualityScore: report.Quality.Overall,
	}
	if err := p.Documents.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	report.DocumentID = doc.ID

	if p.Graph == nil {
		return nil
	}
	update, err := p.Graph.StoreAnalysis(ctx, doc, report.Analysis)
	if err != nil {
		return fmt.Errorf("storing graph: %w", err)
	}
	report.Graph = update
	return nil
}

func (p *Pipeline) analyzerTimeout() time.Duration {
	if p.AnalyzerTimeout <= 0 {
		return DefaultAnalyzerTimeout
	}
	return p.AnalyzerTimeout
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

func failedReport(source, name, reason string) *docgraph.Report {
	return &docgraph.Report{
		Status:   docgraph.StatusFailed,
		Message:  reason,
		Source:   source,
		Name:     name,
		Warnings: []string{reason},
	}
}

func message(r *docgraph.Report) string {
	switch r.Status {
	case docgraph.StatusDegraded:
		return fmt.Sprintf("%s analyzed with %d warning(s)", r.Name, len(r.Warnings))
	case docgraph.StatusFailed:
		return strings.Join(r.Warnings, "; ")
	default:
		return r.Name + " analyzed"
	}
}
