// Package pdf extracts text from PDF documents page by page, falling back to
// a raw content-stream scan for pages the text layer does not cover.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/docgraph"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// SecondaryThreshold is the trimmed length under which the primary page text
// is considered too thin and the content stream is scanned instead.
const SecondaryThreshold = 50

// Limits of the content-stream scan.
const (
	maxScanSegments  = 9
	maxSegmentLength = 100
)

// ContentStartMarker separates the statistics banner from the page texts.
const ContentStartMarker = "=== Document content start ==="

var _ docgraph.DocumentParser = (*Parser)(nil)

// Parser implements docgraph.DocumentParser for PDF files.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for per-page diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts the text of every page. Each page is an independent
// failure domain; a page that cannot be read becomes a placeholder line.
// The result always starts with a statistics banner.
func (p *Parser) Parse(ctx context.Context, name string, data []byte) *docgraph.ExtractedDocument {
	doc := &docgraph.ExtractedDocument{Source: name}

	reader, err := open(data)
	if err != nil {
		p.logger.Warn("cannot open PDF", "name", name, "error", err)
		doc.Text = banner(name, doc.Stats) + fmt.Sprintf("PDF extraction failed: %v\nThe file may be damaged or encrypted.", err)
		doc.Outcome = docgraph.Failed("cannot open PDF: " + err.Error())
		return doc
	}

	streams := &contentStreams{data: data}
	pages := reader.NumPage()
	doc.Stats.Total = pages

	var body strings.Builder
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(&body, "[page %d failed: %v]\n\n", n, err)
			doc.Stats.Failed++
			continue
		}

		text, err := p.page(reader, streams, n)
		switch {
		case err != nil:
			p.logger.Warn("page extraction failed", "name", name, "page", n, "error", err)
			fmt.Fprintf(&body, "[page %d failed: %v]\n\n", n, err)
			doc.Stats.Failed++
		case strings.TrimSpace(text) == "":
			fmt.Fprintf(&body, "[page %d: no extractable text]\n\n", n)
			doc.Stats.Empty++
		default:
			body.WriteString(docgraph.CleanPage(text, n))
			fmt.Fprintf(&body, "\n\n--- end of page %d ---\n\n", n)
			doc.Stats.Successful++
		}
	}

	doc.Text = banner(name, doc.Stats) + strings.TrimSpace(body.String())
	doc.Outcome = outcome(doc.Stats)
	p.logger.Debug("PDF extracted", "name", name, "pages", pages, "successful", doc.Stats.Successful)
	return doc
}

// page extracts one page, converting panics in either library into errors.
func (p *Parser) page(r *pdf.Reader, streams *contentStreams, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	pg := r.Page(n)
	if !pg.V.IsNull() {
		text, err = pg.GetPlainText(nil)
		if err != nil {
			p.logger.Debug("text layer unreadable", "page", n, "error", err)
			text = ""
		}
	}

	if len(strings.TrimSpace(text)) < SecondaryThreshold {
		if scanned := streams.scan(n); scanned != "" {
			text = scanned
		}
	}
	return text, nil
}

func open(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// contentStreams opens the document with pdfcpu on first use for the raw
// content-stream scan.
type contentStreams struct {
	data   []byte
	ctx    *model.Context
	opened bool
}

func (c *contentStreams) scan(page int) string {
	if !c.opened {
		c.opened = true
		ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(c.data), model.NewDefaultConfiguration())
		if err == nil {
			c.ctx = ctx
		}
	}
	if c.ctx == nil {
		return ""
	}

	r, err := pdfcpu.ExtractPageContent(c.ctx, page)
	if err != nil || r == nil {
		return ""
	}
	stream, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return ScanStrings(stream)
}

// ScanStrings recovers text from a raw content stream by reading the string
// literals between parentheses. Only the first few literals are read and
// overly long ones are skipped, since they are usually binary data.
func ScanStrings(stream []byte) string {
	s := string(stream)
	if !strings.Contains(s, "(") || !strings.Contains(s, ")") {
		return ""
	}
	segments := strings.Split(s, "(")
	var parts []string
	for _, seg := range segments[1:min(len(segments), maxScanSegments+1)] {
		end := strings.Index(seg, ")")
		if end < 0 {
			continue
		}
		if lit := seg[:end]; len(lit) < maxSegmentLength {
			parts = append(parts, lit)
		}
	}
	return docgraph.DecodeText([]byte(strings.Join(parts, " ")))
}

func banner(name string, s docgraph.ExtractionStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PDF extraction report - %s:\n", name)
	fmt.Fprintf(&sb, "- Total pages: %d\n", s.Total)
	fmt.Fprintf(&sb, "- Successful: %d\n", s.Successful)
	fmt.Fprintf(&sb, "- Empty: %d\n", s.Empty)
	fmt.Fprintf(&sb, "- Failed: %d\n", s.Failed)
	fmt.Fprintf(&sb, "Completeness: %.1f%%\n\n", s.Completeness())
	sb.WriteString(ContentStartMarker + "\n\n")
	return sb.String()
}

func outcome(s docgraph.ExtractionStats) docgraph.Outcome {
	switch {
	case s.Total == 0:
		return docgraph.Failed("PDF has no pages")
	case s.Successful == 0:
		return docgraph.Failed("no page yielded text")
	case s.Empty+s.Failed > 0:
		return docgraph.Degraded(fmt.Sprintf("%d of %d pages without text", s.Empty+s.Failed, s.Total))
	default:
		return docgraph.Succeeded()
	}
}
