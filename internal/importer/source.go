package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
	"github.com/jtkearn/deckbox/internal/gitsource"
)

// SourceKind selects how deck content is transported.
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceHTTP SourceKind = "http"
	SourceGit  SourceKind = "git"
)

// Source describes where the deck CSV lives.
type Source struct {
	Kind     SourceKind
	Location string // file path, http(s) URL, or git clone URL
	CSVPath  string // path of the CSV inside a git working tree
	CacheDir string // where git sources are checked out
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Load resolves the source to raw CSV bytes and parses them. Transport
// failures come back as *TransportError, content failures as
// *ValidationError.
func Load(ctx context.Context, src Source) ([]domain.Row, error) {
	var data []byte
	var err error

	switch src.Kind {
	case SourceHTTP:
		data, err = fetchHTTP(ctx, src.Location)
	case SourceGit:
		data, err = fetchGit(src)
	default:
		data, err = os.ReadFile(src.Location)
		if err != nil {
			err = &TransportError{Source: src.Location, Err: err}
		}
	}
	if err != nil {
		return nil, err
	}

	return Parse(bytes.NewReader(data))
}

func fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Source: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Source: url, Err: err}
	}
	return body, nil
}

func fetchGit(src Source) ([]byte, error) {
	localPath, err := gitsource.LocalPath(src.CacheDir, src.Location)
	if err != nil {
		return nil, &TransportError{Source: src.Location, Err: err}
	}
	if err := gitsource.Sync(src.Location, localPath); err != nil {
		return nil, &TransportError{Source: src.Location, Err: err}
	}

	csvPath := src.CSVPath
	if csvPath == "" {
		csvPath = "deck.csv"
	}
	data, err := os.ReadFile(filepath.Join(localPath, csvPath))
	if err != nil {
		return nil, &TransportError{Source: src.Location, Err: err}
	}
	return data, nil
}
