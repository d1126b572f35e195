// Package github collects the metadata, README and key files of GitHub
// repositories through the REST API and raw.githubusercontent.com.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/fwojciec/docgraph"
)

// Default endpoints.
const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"
)

// InfoUnitName is the name of the unit holding repository metadata.
const InfoUnitName = "github_info.txt"

// KeyFiles are the build and entry-point files collected when present.
var KeyFiles = []string{
	"package.json",
	"requirements.txt",
	"setup.py",
	"Cargo.toml",
	"pom.xml",
	"pyproject.toml",
	"Dockerfile",
	"docker-compose.yml",
	"main.py",
	"app.py",
}

var _ docgraph.RepositoryCollector = (*Collector)(nil)

// Collector gathers repository content for the site scraper.
type Collector struct {
	client *http.Client
	apiURL string
	rawURL string
	logger *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithAPIURL overrides DefaultAPIURL.
func WithAPIURL(u string) Option {
	return func(c *Collector) {
		c.apiURL = strings.TrimRight(u, "/")
	}
}

// WithRawURL overrides DefaultRawURL.
func WithRawURL(u string) Option {
	return func(c *Collector) {
		c.rawURL = strings.TrimRight(u, "/")
	}
}

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = l
	}
}

// NewCollector creates a Collector. If client is nil, a client with
// docgraph.RepositoryTimeout is used.
func NewCollector(client *http.Client, opts ...Option) *Collector {
	if client == nil {
		client = &http.Client{Timeout: docgraph.RepositoryTimeout}
	}
	c := &Collector{
		client: client,
		apiURL: DefaultAPIURL,
		rawURL: DefaultRawURL,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// repository is the subset of the repos API response that is reported.
type repository struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	Stars         int    `json:"stargazers_count"`
	Forks         int    `json:"forks_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	DefaultBranch string `json:"default_branch"`
	License       *struct {
		Name string `json:"name"`
	} `json:"license"`
}

// Collect returns the info unit, the first README found and every key file
// that exists. Missing key files are not counted. An error is returned only
// when nothing at all could be collected.
func (c *Collector) Collect(ctx context.Context, owner, repo string) ([]docgraph.ContentUnit, docgraph.ExtractionStats, error) {
	if owner == "" || repo == "" {
		return nil, docgraph.ExtractionStats{}, docgraph.Errorf(docgraph.EINVALID, "owner and repository required")
	}

	var (
		units []docgraph.ContentUnit
		stats docgraph.ExtractionStats
	)

	branch := "main"
	stats.Total++
	info, apiURL, infoErr := c.repository(ctx, owner, repo)
	if infoErr != nil {
		c.logger.Warn("repository metadata unavailable", "repo", owner+"/"+repo, "error", infoErr)
		stats.Failed++
	} else {
		if info.DefaultBranch != "" {
			branch = info.DefaultBranch
		}
		units = append(units, docgraph.ContentUnit{Name: InfoUnitName, URL: apiURL, Content: formatInfo(info)})
		stats.Successful++
	}

	stats.Total++
	if readme, ok := c.readme(ctx, owner, repo, branch); ok {
		units = append(units, readme)
		stats.Successful++
	} else {
		stats.Empty++
	}

	files, fileStats := c.keyFiles(ctx, owner, repo, branch)
	units = append(units, files...)
	stats.Total += fileStats.Total
	stats.Successful += fileStats.Successful
	stats.Empty += fileStats.Empty
	stats.Failed += fileStats.Failed

	if len(units) == 0 {
		if infoErr != nil {
			return nil, stats, infoErr
		}
		return nil, stats, docgraph.Errorf(docgraph.ENOTFOUND, "no content found for %s/%s", owner, repo)
	}
	return units, stats, nil
}

func (c *Collector) repository(ctx context.Context, owner, repo string) (*repository, string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s", c.apiURL, owner, repo)
	body, err := c.get(ctx, u, "application/vnd.github+json")
	if err != nil {
		return nil, u, err
	}
	var r repository
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, u, fmt.Errorf("decoding repository metadata: %w", err)
	}
	return &r, u, nil
}

func formatInfo(r *repository) string {
	license := "N/A"
	if r.License != nil && r.License.Name != "" {
		license = r.License.Name
	}
	var sb strings.Builder
	sb.WriteString(docgraph.LabelProjectInfo + "\n")
	fmt.Fprintf(&sb, "%s %s\n", docgraph.LabelName, orNA(r.Name))
	fmt.Fprintf(&sb, "%s %s\n", docgraph.LabelDescription, orNA(r.Description))
	fmt.Fprintf(&sb, "Language: %s\n", orNA(r.Language))
	fmt.Fprintf(&sb, "Stars: %d\n", r.Stars)
	fmt.Fprintf(&sb, "Forks: %d\n", r.Forks)
	fmt.Fprintf(&sb, "License: %s\n", license)
	fmt.Fprintf(&sb, "Created: %s\n", orNA(r.CreatedAt))
	fmt.Fprintf(&sb, "Updated: %s\n", orNA(r.UpdatedAt))
	fmt.Fprintf(&sb, "Default branch: %s\n", orNA(r.DefaultBranch))
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// readmeCandidates lists README locations in the order they are tried.
func readmeCandidates(branch string) []string {
	return []string{
		branch + "/README.md",
		"main/README.md",
		"master/README.md",
		branch + "/README.rst",
		branch + "/README.txt",
	}
}

func (c *Collector) readme(ctx context.Context, owner, repo, branch string) (docgraph.ContentUnit, bool) {
	tried := make(map[string]bool)
	for _, candidate := range readmeCandidates(branch) {
		if tried[candidate] {
			continue
		}
		tried[candidate] = true

		u := c.rawFileURL(owner, repo, candidate)
		body, err := c.get(ctx, u, "")
		if err != nil {
			if docgraph.ErrorCode(err) != docgraph.ENOTFOUND {
				c.logger.Debug("README fetch failed", "url", u, "error", err)
			}
			continue
		}
		text := docgraph.DecodeText(body)
		if strings.TrimSpace(text) == "" {
			continue
		}
		return docgraph.ContentUnit{
			Name:    "README" + path.Ext(candidate),
			URL:     u,
			Content: docgraph.LabelReadme + "\n" + text,
		}, true
	}
	return docgraph.ContentUnit{}, false
}

// keyFiles fetches KeyFiles in list order. Files that do not exist are
// skipped without being counted.
func (c *Collector) keyFiles(ctx context.Context, owner, repo, branch string) ([]docgraph.ContentUnit, docgraph.ExtractionStats) {
	var (
		units []docgraph.ContentUnit
		stats docgraph.ExtractionStats
	)
	for _, name := range KeyFiles {
		u := c.rawFileURL(owner, repo, branch+"/"+name)
		body, err := c.get(ctx, u, "")
		switch {
		case docgraph.ErrorCode(err) == docgraph.ENOTFOUND:
			continue
		case err != nil:
			c.logger.Debug("key file fetch failed", "file", name, "error", err)
			stats.Total++
			stats.Failed++
			continue
		}

		stats.Total++
		text := docgraph.DecodeText(body)
		if strings.TrimSpace(text) == "" {
			stats.Empty++
			continue
		}
		stats.Successful++
		units = append(units, docgraph.ContentUnit{Name: name, URL: u, Content: text})
	}
	return units, stats
}

func (c *Collector) rawFileURL(owner, repo, file string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.rawURL, owner, repo, file)
}

func (c *Collector) get(ctx context.Context, u, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, docgraph.RepositoryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, docgraph.Errorf(docgraph.EINVALID, "invalid URL %q: %v", u, err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("User-Agent", "docgraph")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, docgraph.Errorf(docgraph.ENOTFOUND, "HTTP 404 for %s", u)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, u)
	}
	return io.ReadAll(resp.Body)
}
