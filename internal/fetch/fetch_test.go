package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindZipLink(t *testing.T) {
	page := `<html><body>
		<a href="/docs/manual.pdf">Manual</a>
		<a href="/storage/ITAC_Database.zip">Download database</a>
		<a href="/storage/other.zip">Other</a>
	</body></html>`

	href, err := FindZipLink(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if href != "/storage/ITAC_Database.zip" {
		t.Errorf("expected first zip link, got %q", href)
	}
}

func TestFindZipLinkNone(t *testing.T) {
	if _, err := FindZipLink(strings.NewReader(`<html><a href="/x.pdf">x</a></html>`)); err == nil {
		t.Fatal("expected error when no zip link present")
	}
}

func TestDiscoverArchiveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><a href="/storage/db.zip">db</a></html>`))
	}))
	defer srv.Close()

	c := NewClient(nil)
	got, err := c.DiscoverArchiveURL(context.Background(), srv.URL+"/download")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != srv.URL+"/storage/db.zip" {
		t.Errorf("expected resolved URL, got %q", got)
	}
}

func makeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create member: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write member: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	path := filepath.Join(t.TempDir(), "db.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return path
}

func TestExtractWorkbook(t *testing.T) {
	zipPath := makeZip(t, map[string]string{
		"readme.txt":             "ignore me",
		"ITAC_Database_2025.xls": "workbook bytes",
	})

	dest := t.TempDir()
	got, err := ExtractWorkbook(zipPath, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "ITAC_Database_2025.xls" {
		t.Errorf("unexpected extracted file: %s", got)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if string(data) != "workbook bytes" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestExtractWorkbookNoSpreadsheet(t *testing.T) {
	zipPath := makeZip(t, map[string]string{"readme.txt": "nope"})
	if _, err := ExtractWorkbook(zipPath, t.TempDir()); err == nil {
		t.Fatal("expected error when archive has no spreadsheet")
	}
}

func TestFetchDatabase(t *testing.T) {
	zipPath := makeZip(t, map[string]string{"db.xlsx": "data"})
	zipBytes, err := os.ReadFile(zipPath)
	if err != nil {
		t.Fatalf("read fixture zip: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/download":
			w.Write([]byte(`<html><a href="/storage/db.zip">db</a></html>`))
		case "/storage/db.zip":
			w.Write(zipBytes)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data", "ITAC_Database.xlsx")
	c := NewClient(nil)
	if err := c.FetchDatabase(context.Background(), "", srv.URL+"/download", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if string(data) != "data" {
		t.Errorf("unexpected workbook content: %q", data)
	}
}
