package budget

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/etnz/budget/date"
)

func TestRateSource_Open(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"2025-01-02": 1.03}`)
	}))
	defer srv.Close()

	read := func(s RateSource, location string) (string, error) {
		r, err := s.Open(context.Background(), location)
		if err != nil {
			return "", err
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		return string(data), err
	}

	s := RateSource{Clock: date.At(day("2025-01-02")), CacheDir: t.TempDir()}
	for i := range 2 {
		got, err := read(s, srv.URL+"/rates")
		if err != nil {
			t.Fatalf("Open() #%d failed: %v", i, err)
		}
		if got != `{"2025-01-02": 1.03}` {
			t.Errorf("Open() #%d = %q", i, got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times the same day, want 1", n)
	}

	s.Clock = date.At(day("2025-01-03"))
	if _, err := read(s, srv.URL+"/rates"); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times over two days, want 2", n)
	}

	if _, err := read(s, srv.URL+"/missing"); err == nil {
		t.Errorf("Open(missing) succeeded")
	}

	file := filepath.Join(t.TempDir(), "rates.json")
	if err := os.WriteFile(file, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := read(s, file); err != nil || got != "[]" {
		t.Errorf("Open(file) = %q, %v", got, err)
	}
}
