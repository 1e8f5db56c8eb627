package budget

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/budget/date"
	"github.com/etnz/budget/logger"
)

// RateSource opens the documents exchange rates are imported from: a local
// file, or an http(s) URL fetched at most once a day.
type RateSource struct {
	Clock date.Clock
	// CacheDir holds the daily copies of remote documents, os.TempDir() when empty.
	CacheDir string
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Open returns the document at location.
func (s RateSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return os.Open(location)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, Wrap(ErrInvalidInput, err)
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cannot GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return resp.Body, nil
}

func (s RateSource) client() *http.Client {
	base := s.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	dir := s.CacheDir
	if dir == "" {
		dir = os.TempDir()
	}
	clock := s.Clock
	if clock == nil {
		clock = date.SystemClock{}
	}
	return &http.Client{Transport: &diskCache{base: base, dir: dir, clock: clock}}
}

// diskCache keeps successful responses on disk for the day.
type diskCache struct {
	base  http.RoundTripper
	dir   string
	clock date.Clock
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// the day is part of the key, so entries expire every day.
	key := fmt.Sprintf("%s %s %s", c.clock.Today(), req.Method, req.URL)
	key = fmt.Sprintf("budget-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		logger.Get().Debugw("rates served from cache", "url", req.URL.String())
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	logger.Get().Infow("rates fetched", "method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "status", resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		logger.Get().Warnw("cache write failed", "url", req.URL.String(), "error", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp, and leaves it readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
