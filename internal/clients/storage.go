package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// StorageClient keeps generated reports on the local disk and serves them
// under PublicPrefix.
type StorageClient struct {
	BaseDir      string // directory the files are written to
	PublicPrefix string // URL prefix the files are served under, e.g. "/files"
	BaseURL      string // optional scheme+host[:port] for absolute URLs
}

// NewLocalStorage creates the storage directory if it is missing.
func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{BaseDir: baseDir, PublicPrefix: publicPrefix, BaseURL: baseURL}, nil
}

// Save writes data under a random prefix and returns the stored name,
// "<hex>_<fileName>".
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	fileName = filepath.Base(fileName)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	final := fmt.Sprintf("%s_%s", hex.EncodeToString(randBytes), fileName)

	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return final, nil
}

// Put saves the file and returns the URL it can be downloaded from.
func (s *StorageClient) Put(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	saved, err := s.Save(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return s.GetURL(saved), nil
}

// GetURL returns BaseURL + PublicPrefix + "/" + fileName, or the relative
// path when no BaseURL is configured.
func (s *StorageClient) GetURL(fileName string) string {
	prefix := s.PublicPrefix
	if prefix == "" {
		prefix = "/files"
	}
	if prefix[0] != '/' {
		prefix = "/" + prefix
	}
	prefix = strings.TrimSuffix(prefix, "/")

	base := strings.TrimSuffix(s.BaseURL, "/")
	return fmt.Sprintf("%s%s/%s", base, prefix, fileName)
}

// OriginalName strips the random prefix added by Save.
func OriginalName(stored string) string {
	if idx := strings.IndexByte(stored, '_'); idx >= 0 {
		return stored[idx+1:]
	}
	return stored
}

// ServeFile handles GET {prefix}/{file}, offering the original file name for
// download.
func (s *StorageClient) ServeFile(w http.ResponseWriter, r *http.Request) {
	file := filepath.Base(chi.URLParam(r, "file"))
	if file == "." || file == "/" {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.BaseDir, file)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to access file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", OriginalName(file)))
	http.ServeFile(w, r, path)
}

// CleanupOlderThan deletes files older than d. Errors on single files are ignored.
func (s *StorageClient) CleanupOlderThan(d time.Duration) error {
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			_ = os.Remove(path)
		}
		return nil
	})
}
