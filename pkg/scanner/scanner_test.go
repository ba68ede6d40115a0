package scanner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/pdfsift/pkg/transport"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testClient() *transport.Client {
	return transport.NewWithConfig(transport.ClientConfig{
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}, testLogger())
}

func TestScannerConfig(t *testing.T) {
	s := NewWithConfig(ScannerConfig{}, testClient(), testLogger())
	assert.Equal(t, 15*time.Second, s.config.Timeout)

	s = NewWithConfig(ScannerConfig{Timeout: 3 * time.Second}, testClient(), testLogger())
	assert.Equal(t, 3*time.Second, s.config.Timeout)
}

func TestPDFLinks(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `
			<html>
				<head><title>Reports</title></head>
				<body>
					<a href="docs/a.pdf">Annual report</a>
					<a href="%s/files/b.pdf">Direct link</a>
					<a href="/REPORT.PDF">Uppercase</a>
					<a href="paper.pdf?v=2">Versioned</a>
					<a href="docs/a.pdf">Duplicate</a>
					<a href="/about.html">About</a>
					<a href="mailto:team@example.com">Contact</a>
				</body>
			</html>
		`, server.URL)
	}))
	defer server.Close()

	s := NewWithConfig(ScannerConfig{}, testClient(), testLogger())
	links := s.PDFLinks(context.Background(), server.URL)

	expected := []string{
		server.URL + "/REPORT.PDF",
		server.URL + "/docs/a.pdf",
		server.URL + "/files/b.pdf",
		server.URL + "/paper.pdf?v=2",
	}
	assert.Equal(t, expected, links.Sorted())
}

func TestPDFLinksNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := NewWithConfig(ScannerConfig{}, testClient(), testLogger())
	links := s.PDFLinks(context.Background(), server.URL)

	assert.Equal(t, 0, links.Len())
}

func TestPDFLinksTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // unreachable from here on

	s := NewWithConfig(ScannerConfig{}, testClient(), testLogger())
	links := s.PDFLinks(context.Background(), server.URL)

	assert.Equal(t, 0, links.Len())
}

func TestPDFLinksEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>No links here</p></body></html>"))
	}))
	defer server.Close()

	s := NewWithConfig(ScannerConfig{}, testClient(), testLogger())
	links := s.PDFLinks(context.Background(), server.URL)

	require.NotNil(t, links)
	assert.Equal(t, 0, links.Len())
}
