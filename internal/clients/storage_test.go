package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestGetURL_AbsoluteAndRelative(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := NewLocalStorage(tmpDir, "/files", "http://example.com:8060/")
	if err != nil {
		t.Fatalf("failed create storage: %v", err)
	}

	if got, want := c.GetURL("a.pdf"), "http://example.com:8060/files/a.pdf"; got != want {
		t.Fatalf("expected %s; got %s", want, got)
	}

	c2, _ := NewLocalStorage(tmpDir, "files/", "")
	if got := c2.GetURL("b.pdf"); got != "/files/b.pdf" {
		t.Fatalf("expected /files/b.pdf; got %s", got)
	}
}

func TestPutAndServeFile(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := NewLocalStorage(tmpDir, "/files", "")
	if err != nil {
		t.Fatalf("storage init: %v", err)
	}

	content := []byte("%PDF-1.4 test")
	url, err := c.Put(context.Background(), "12345678 DAILs Form.pdf", "application/pdf", content)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(url, "/files/") || !strings.HasSuffix(url, "_12345678 DAILs Form.pdf") {
		t.Fatalf("unexpected url %s", url)
	}

	r := chi.NewRouter()
	r.Get("/files/{file}", c.ServeFile)
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + strings.ReplaceAll(url, " ", "%20"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bad status: %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `"12345678 DAILs Form.pdf"`) {
		t.Fatalf("expected Content-Disposition with original filename, got %s", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(content) {
		t.Fatalf("content mismatch: %s", string(body))
	}

	missing, err := http.Get(ts.URL + "/files/nope.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := NewLocalStorage(tmpDir, "", "")

	old, _ := c.Save(context.Background(), "old.pdf", []byte("a"))
	fresh, _ := c.Save(context.Background(), "fresh.pdf", []byte("b"))

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(tmpDir, old), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if err := c.CleanupOlderThan(30 * time.Minute); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, old)); !os.IsNotExist(err) {
		t.Fatal("old file should be removed")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, fresh)); err != nil {
		t.Fatal("fresh file should be kept")
	}
}

func TestOriginalName(t *testing.T) {
	if got := OriginalName("abcd_report_1.pdf"); got != "report_1.pdf" {
		t.Fatalf("got %s", got)
	}
	if got := OriginalName("plain.pdf"); got != "plain.pdf" {
		t.Fatalf("got %s", got)
	}
}
