package images

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/research"
)

func TestGenerate(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, "fake-image-bytes")
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, srv.Client(), logging.NewNopLogger())
	data, err := g.Generate(context.Background(), "a foggy server room")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(data) != "fake-image-bytes" {
		t.Fatalf("data = %q", data)
	}
	if !strings.HasPrefix(gotPath, "/prompt/") {
		t.Fatalf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "width=1200") || !strings.Contains(gotQuery, "height=628") {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	g := NewGenerator("", nil, logging.NewNopLogger())
	if _, err := g.Generate(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, srv.Client(), logging.NewNopLogger())
	if _, err := g.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSourcePhoto(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"images":["%s/photo.jpg"],"results":[]}`, srvURL)
	})
	mux.HandleFunc("/photo.jpg", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "jpeg-bytes")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	tavily := research.NewTavily(srv.URL, "k", srv.Client(), logging.NewNopLogger())
	s := NewSearcher(tavily, srv.Client(), rand.New(rand.NewSource(1)), logging.NewNopLogger())

	data, err := s.SourcePhoto(context.Background(), "AI agents")
	if err != nil {
		t.Fatalf("SourcePhoto: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestSourcePhoto_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"images":[],"results":[]}`)
	}))
	defer srv.Close()

	tavily := research.NewTavily(srv.URL, "k", srv.Client(), logging.NewNopLogger())
	s := NewSearcher(tavily, srv.Client(), rand.New(rand.NewSource(1)), logging.NewNopLogger())

	if _, err := s.SourcePhoto(context.Background(), "AI agents"); err == nil {
		t.Fatal("expected error when no photos found")
	}
}
