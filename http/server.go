package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/docgraph"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// MaxUploadSize bounds multipart uploads accepted by /api/analyze.
const MaxUploadSize = 50 << 20

// DefaultReasonHops is used when a reasoning request names no hop count.
const DefaultReasonHops = 3

// MaxReasonHops caps the hop count of a reasoning request.
const MaxReasonHops = 5

const shutdownTimeout = 10 * time.Second

// Server exposes the pipeline, document store and graph over a JSON API.
// Storage services are optional; their routes answer 503 when unset.
type Server struct {
	server *http.Server
	router chi.Router

	// Addr is the TCP address to listen on.
	Addr string

	Reports   docgraph.ReportService
	Documents docgraph.DocumentService
	Graph     docgraph.GraphService
	Logger    *slog.Logger
}

// NewServer returns a server with its routes registered.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{ReadHeaderTimeout: 10 * time.Second},
		router: chi.NewRouter(),
		Logger: slog.New(slog.DiscardHandler),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/scrape", s.handleScrape)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleDocumentList)
			r.Get("/{id}", s.handleDocumentView)
			r.Delete("/{id}", s.handleDocumentDelete)
		})

		r.Get("/graph/stats", s.handleGraphStats)
		r.Post("/graph/reason", s.handleGraphReason)
	})

	s.server.Handler = s.router
	return s
}

// ServeHTTP routes a single request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.Logger.Info("listening", "addr", ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.Documents != nil,
		"graph":     s.Graph != nil,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "invalid upload: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "no file uploaded"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "no file selected"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "reading upload: %v", err))
		return
	}

	report, err := s.Reports.AnalyzeFile(r.Context(), header.Filename, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeReport(w, report)
}

// scrapeRequest accepts the URL under any of the field names clients use.
type scrapeRequest struct {
	URL        string `json:"url"`
	WebsiteURL string `json:"website_url"`
	Link       string `json:"link"`
}

func (req scrapeRequest) target() string {
	for _, v := range []string{req.URL, req.WebsiteURL, req.Link} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "invalid JSON body"))
		return
	}

	target := req.target()
	if target == "" {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "url required"))
		return
	}

	report, err := s.Reports.AnalyzeURL(r.Context(), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeReport(w, report)
}

func (s *Server) handleDocumentList(w http.ResponseWriter, r *http.Request) {
	if s.Documents == nil {
		writeUnavailable(w, "document storage")
		return
	}

	var filter docgraph.DocumentFilter
	q := r.URL.Query()
	if v := q.Get("kind"); v != "" {
		kind := docgraph.SourceKind(v)
		filter.Kind = &kind
	}
	if v := q.Get("name"); v != "" {
		filter.Name = &v
	}
	filter.Limit = queryInt(q.Get("limit"))
	filter.Offset = queryInt(q.Get("offset"))

	docs, err := s.Documents.FindDocuments(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*docgraph.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDocumentView(w http.ResponseWriter, r *http.Request) {
	if s.Documents == nil {
		writeUnavailable(w, "document storage")
		return
	}

	doc, err := s.Documents.FindDocumentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDocumentDelete(w http.ResponseWriter, r *http.Request) {
	if s.Documents == nil {
		writeUnavailable(w, "document storage")
		return
	}

	if err := s.Documents.DeleteDocument(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGraphStats(w http.ResponseWriter, r *http.Request) {
	if s.Graph == nil {
		writeUnavailable(w, "graph storage")
		return
	}

	stats, err := s.Graph.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type reasonRequest struct {
	Entities []string `json:"entities"`
	MaxHops  int      `json:"max_hops"`
}

func (s *Server) handleGraphReason(w http.ResponseWriter, r *http.Request) {
	if s.Graph == nil {
		writeUnavailable(w, "graph storage")
		return
	}

	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "invalid JSON body"))
		return
	}
	if len(req.Entities) == 0 {
		s.writeError(w, r, docgraph.Errorf(docgraph.EINVALID, "at least one entity required"))
		return
	}

	hops := req.MaxHops
	if hops <= 0 {
		hops = DefaultReasonHops
	}
	hops = min(hops, MaxReasonHops)

	path, err := s.Graph.FindPaths(r.Context(), req.Entities, hops)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

// writeError maps an application error code to an HTTP status. Internal
// errors are logged and their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := docgraph.ErrorCode(err), docgraph.ErrorMessage(err)
	if code == docgraph.EINTERNAL {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, errorStatus(code), map[string]string{"error": message})
}

func errorStatus(code string) int {
	switch code {
	case docgraph.EINVALID:
		return http.StatusBadRequest
	case docgraph.ENOTFOUND:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeReport answers 200 for usable reports and 400 for terminal pipeline
// failures, returning the report in both cases.
func writeReport(w http.ResponseWriter, report *docgraph.Report) {
	status := http.StatusOK
	if report.Failed() {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, report)
}

func writeUnavailable(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": what + " is not configured"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
