package frame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
)

// DefaultPattern is the file name pattern of sequentially numbered frames.
const DefaultPattern = "frame%d.txt"

// maxFrameBytes bounds a single frame download.
const maxFrameBytes = 1 << 20

// ErrNotFound marks a frame index with no resource behind it.
var ErrNotFound = errors.New("frame not found")

// A Source fetches the frame with the given 1-based number.
type Source interface {
	Fetch(ctx context.Context, n int) (Content, error)
}

// HTTPSource fetches frames from a static asset path.
type HTTPSource struct {
	Client  *http.Client
	BaseURL string
	Pattern string
}

// NewHTTPSource creates an HTTPSource rooted at baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	s := new(HTTPSource)
	s.Client = http.DefaultClient
	s.BaseURL = baseURL
	s.Pattern = DefaultPattern
	return s
}

// URL returns the address of frame n.
func (s *HTTPSource) URL(n int) string {
	pattern := s.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	base := s.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + fmt.Sprintf(pattern, n)
}

// Fetch implements Source. A 404 response is reported as ErrNotFound.
func (s *HTTPSource) Fetch(ctx context.Context, n int) (Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(n), nil)
	if err != nil {
		return Content{}, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Content{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Content{}, fmt.Errorf("frame %d: %w", n, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Content{}, fmt.Errorf("frame %d: unexpected status %s", n, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return Content{}, fmt.Errorf("frame %d: %w", n, err)
	}
	return Text(string(body)), nil
}

// DirSource reads frames from a file system, usually os.DirFS.
type DirSource struct {
	FS      fs.FS
	Pattern string
}

// NewDirSource creates a DirSource over fsys.
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{FS: fsys, Pattern: DefaultPattern}
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, n int) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}
	pattern := s.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	data, err := fs.ReadFile(s.FS, fmt.Sprintf(pattern, n))
	if errors.Is(err, fs.ErrNotExist) {
		return Content{}, fmt.Errorf("frame %d: %w", n, ErrNotFound)
	}
	if err != nil {
		return Content{}, err
	}
	return Text(string(data)), nil
}
