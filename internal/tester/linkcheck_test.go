package tester

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aleister1102/sitecheck/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T) *LinkChecker {
	t.Helper()
	checker, err := NewLinkChecker(config.NewDefaultTesterConfig(), zerolog.Nop())
	require.NoError(t, err)
	return checker
}

func TestLinkChecker_HeadOK(t *testing.T) {
	headCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			headCount++
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestChecker(t).Check(context.Background(), server.URL)
	assert.Equal(t, LinkOK, result.Verdict)
	assert.Equal(t, 1, headCount)
}

func TestLinkChecker_HeadNotFoundIsBroken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := newTestChecker(t).Check(context.Background(), server.URL+"/missing")
	assert.Equal(t, LinkBroken, result.Verdict)
	assert.Equal(t, "Returned 404", result.Detail)
}

func TestLinkChecker_HeadRejectedFallsBackToGet(t *testing.T) {
	gets := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gets++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestChecker(t).Check(context.Background(), server.URL)
	assert.Equal(t, LinkOK, result.Verdict)
	assert.Equal(t, 1, gets)
}

func TestLinkChecker_GoneOnGetIsBroken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	result := newTestChecker(t).Check(context.Background(), server.URL)
	assert.Equal(t, LinkBroken, result.Verdict)
	assert.Equal(t, "Returned 410", result.Detail)
}

func TestLinkChecker_ForbiddenOnBothIsUncertain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	result := newTestChecker(t).Check(context.Background(), server.URL)
	assert.Equal(t, LinkUncertain, result.Verdict)
	assert.Contains(t, result.Detail, "403")
}

func TestLinkChecker_ConnectionRefusedIsBroken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	result := newTestChecker(t).Check(context.Background(), deadURL)
	assert.Equal(t, LinkBroken, result.Verdict)
	assert.Equal(t, "Domain not found or connection refused", result.Detail)
}

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		message string
		verdict LinkVerdict
	}{
		{`dial tcp: lookup nosuchdomain.invalid: no such host`, LinkBroken},
		{`dial tcp 127.0.0.1:1: connect: connection refused`, LinkBroken},
		{`net::ERR_NAME_NOT_RESOLVED`, LinkBroken},
		{`net::ERR_CONNECTION_REFUSED`, LinkBroken},
		{`context deadline exceeded`, LinkUncertain},
		{`read tcp: connection reset by peer`, LinkUncertain},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.verdict, ClassifyTransportError(tt.message).Verdict, tt.message)
	}
}

func TestCollectLinkTargets(t *testing.T) {
	pageURL, err := url.Parse("https://example.com/blog/post")
	require.NoError(t, err)

	hrefs := []string{
		"/missing",
		"https://linkedin.com/company/foo",
		"https://www.facebook.com/foo",
		"mailto:hi@example.com",
		"tel:+123",
		"javascript:void(0)",
		"#comments",
		"",
		"https://external.org/page#section",
		"https://external.org/page",
		"/missing",
	}

	targets := CollectLinkTargets(hrefs, pageURL, 50)
	assert.Equal(t, []string{
		"https://example.com/missing",
		"https://external.org/page",
	}, targets)
}

func TestCollectLinkTargets_CapsAtMax(t *testing.T) {
	pageURL, err := url.Parse("https://example.com/")
	require.NoError(t, err)

	var hrefs []string
	for i := 0; i < 80; i++ {
		hrefs = append(hrefs, "/page-"+string(rune('a'+i%26))+"-"+string(rune('0'+i%10)))
	}

	targets := CollectLinkTargets(hrefs, pageURL, 50)
	assert.LessOrEqual(t, len(targets), 50)
}
