package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yardlex/lexingest/internal/config"
)

func testFetcher() *Fetcher {
	return NewFetcher(config.ScrapeConfig{
		MaxRetries:         3,
		RetryBackoffFactor: 1.0,
		TimeoutSeconds:     5,
	})
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	body, err := testFetcher().Get(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "payload", string(body))
	require.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestFetcherDoesNotRetryNotFound(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testFetcher().Get(context.Background(), server.URL)
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestFetcherGivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testFetcher().Get(context.Background(), server.URL)
	require.Error(t, err)
	require.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestExtractDocumentLinks(t *testing.T) {
	page := `
		<html><body>
			<a href="/acts/companies-act">Companies Act</a>
			<a href="/acts/companies-act">Duplicate</a>
			<a href="https://other.example/acts/labour-act">Labour Act</a>
			<a href="/about">About</a>
			<a href="#top">Top</a>
		</body></html>
	`
	links, err := extractDocumentLinks([]byte(page), "https://laws.example/index", func(href string) bool {
		return strings.Contains(href, "/acts/")
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://laws.example/acts/companies-act",
		"https://other.example/acts/labour-act",
	}, links)
}

func TestRegisteredSources(t *testing.T) {
	require.Equal(t, []string{"acts", "cases", "regulations"}, Names())
}
