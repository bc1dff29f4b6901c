package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// ErrUnknownVersion is returned when a source has no export for a version.
var ErrUnknownVersion = errors.New("unknown OCSF version")

// maxExportSize bounds a single schema export download.
const maxExportSize = 64 << 20

// Source fetches the raw export for one schema version.
type Source interface {
	Fetch(ctx context.Context, version ocsf.Version) ([]byte, error)
	String() string
}

// FileSource reads exports from a directory. For version 1.1.0 it tries
// "1.1.0.json" and then "v1_1_0.json".
type FileSource struct {
	Dir string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context, version ocsf.Version) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := []string{
		filepath.Join(s.Dir, version.String()+".json"),
		filepath.Join(s.Dir, version.URLSafeName()+".json"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read schema export %s: %w", path, err)
		}
	}
	return nil, fmt.Errorf("%w: %s not found in %s", ErrUnknownVersion, version, s.Dir)
}

func (s FileSource) String() string {
	return "file://" + s.Dir
}

// HTTPSource fetches exports from an OCSF schema server, e.g.
// https://schema.ocsf.io.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns an HTTPSource with its own client and timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, version ocsf.Version) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/export/schema?version=%s", strings.TrimRight(s.BaseURL, "/"), url.QueryEscape(version.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema %s: %w", version, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s not served by %s", ErrUnknownVersion, version, s.BaseURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("schema server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", version, err)
	}
	return data, nil
}

func (s *HTTPSource) String() string {
	return s.BaseURL
}

// Load fetches and parses one version. A missing version field in the export
// is filled in from the request.
func Load(ctx context.Context, src Source, version ocsf.Version, strict bool) (*ocsf.Graph, error) {
	data, err := src.Fetch(ctx, version)
	if err != nil {
		return nil, err
	}
	return ParseVersion(data, version, strict)
}

// ParseVersion is Parse for an export that is known to belong to version.
func ParseVersion(data []byte, version ocsf.Version, strict bool) (*ocsf.Graph, error) {
	g, err := Parse(data, strict)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", version, err)
	}
	if g.Version() == "" {
		return ocsf.NewGraph(version.String(), g.Classes(), g.Objects())
	}
	if g.Version() != version.String() {
		return nil, fmt.Errorf("schema export version %q does not match requested %q", g.Version(), version)
	}
	return g, nil
}
