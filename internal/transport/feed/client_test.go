package feed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/kailas-cloud/propsync/internal/domain"
)

const payload = `[{"id":"1","city":"Berlin"},{"id":"2"}]`

func serve(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestOpen_Identity(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != acceptEncoding {
			t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
		}
		_, _ = io.WriteString(w, payload)
	})
	rc, err := New().Open(context.Background(), url)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := readAll(t, rc); got != payload {
		t.Errorf("body = %q", got)
	}
}

func TestOpen_Decompresses(t *testing.T) {
	encoders := map[string]func(io.Writer) io.WriteCloser{
		"gzip": func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"br":   func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) },
		"zstd": func(w io.Writer) io.WriteCloser {
			zw, err := zstd.NewWriter(w)
			if err != nil {
				t.Fatalf("zstd writer: %v", err)
			}
			return zw
		},
	}
	for enc, newWriter := range encoders {
		t.Run(enc, func(t *testing.T) {
			var buf bytes.Buffer
			zw := newWriter(&buf)
			_, _ = io.WriteString(zw, payload)
			if err := zw.Close(); err != nil {
				t.Fatalf("close encoder: %v", err)
			}
			url := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Encoding", enc)
				_, _ = w.Write(buf.Bytes())
			})
			rc, err := New().Open(context.Background(), url)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if got := readAll(t, rc); got != payload {
				t.Errorf("body = %q", got)
			}
		})
	}
}

func TestOpen_StatusError(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := New().Open(context.Background(), url)
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d", fe.Status)
	}
	if err.Error() != "HTTP 503: Service Unavailable" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, domain.ErrFetch) {
		t.Error("expected ErrFetch")
	}
}

func TestOpen_EmptyBody(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	_, err := New().Open(context.Background(), url)
	if err == nil || !strings.Contains(err.Error(), "Empty response body") {
		t.Fatalf("expected empty body error, got %v", err)
	}
}

func TestOpen_UnsupportedEncoding(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "compress")
		_, _ = io.WriteString(w, payload)
	})
	_, err := New().Open(context.Background(), url)
	if err == nil || !strings.Contains(err.Error(), "unsupported Content-Encoding") {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestOpen_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New().Open(context.Background(), url)
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("ETag", `"abc"`)
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
	})
	fp, err := New(WithUserAgent("test")).Probe(context.Background(), url)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if fp.Validator != `"abc"` || fp.LastModified == "" {
		t.Errorf("fingerprint = %+v", fp)
	}
}

func TestProbe_FailureYieldsZeroFingerprint(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusForbidden)
	})
	fp, err := New().Probe(context.Background(), url)
	if err == nil {
		t.Fatal("expected error")
	}
	if !fp.IsZero() {
		t.Errorf("expected zero fingerprint, got %+v", fp)
	}
}
