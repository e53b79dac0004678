package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParserForPlainText(t *testing.T) {
	doc := New("notes.txt", []byte("liquidity ratios measure short term solvency"), nil)

	parser, err := ParserFor(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := parser.(*TextParser); !ok {
		t.Fatalf("expected TextParser, got %T", parser)
	}

	text, err := Text(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if text != "liquidity ratios measure short term solvency" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestParserForHTML(t *testing.T) {
	body := `<html><head><title>Ratios</title></head><body><h1>Leverage</h1><p>Debt to equity compares <b>borrowed</b> capital to shareholder capital.</p></body></html>`
	doc := New("ratios.html", []byte(body), nil)

	parser, err := ParserFor(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := parser.(*HTMLParser); !ok {
		t.Fatalf("expected HTMLParser, got %T", parser)
	}

	text, err := Text(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "# Leverage") {
		t.Errorf("heading not converted: %q", text)
	}
	if !strings.Contains(text, "**borrowed**") {
		t.Errorf("bold not converted: %q", text)
	}
}

func TestParserForUnsupported(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	doc := New("chart.png", png, nil)

	if _, err := ParserFor(doc); err == nil {
		t.Fatal("expected an error for image content")
	} else if !strings.Contains(err.Error(), "unsupported document type") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glossary.md")
	if err := os.WriteFile(path, []byte("# Glossary\n\nROE: return on equity."), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path)
	if src.Name() != "glossary.md" {
		t.Errorf("unexpected name %q", src.Name())
	}

	doc, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name() != "glossary.md" {
		t.Errorf("unexpected document name %q", doc.Name())
	}
	if doc.Meta()["path"] != path {
		t.Errorf("path meta not recorded: %v", doc.Meta())
	}
	if doc.Len() == 0 {
		t.Error("empty body")
	}
}

func TestFileSourceRejectsDirectory(t *testing.T) {
	src := NewFileSource(t.TempDir())
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error for a directory")
	}
}

func TestHTTPSourceCachesBody(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("reference text"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/docs/ratios.txt", WithHTTPClient(srv.Client()))
	if src.Name() != "ratios.txt" {
		t.Errorf("unexpected name %q", src.Name())
	}

	first, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Errorf("expected a single request, got %d", hits)
	}
	if first != second {
		t.Error("second fetch did not return the cached document")
	}
	if src.ReadStatus() != ReadCompleted {
		t.Errorf("unexpected status %d", src.ReadStatus())
	}
}

func TestHTTPSourceRecoversAfterError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, WithHTTPClient(srv.Client()))
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error on the first fetch")
	}
	if src.ReadStatus() != Unread {
		t.Fatalf("status not reset after failure: %d", src.ReadStatus())
	}

	doc, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Len() == 0 {
		t.Error("empty body after recovery")
	}
}
