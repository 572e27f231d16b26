package tester

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"
	"github.com/aleister1102/sitecheck/internal/urlhandler"

	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// NetworkErrorTester records failed sub-resource requests: responses with an
// error status and requests that never received a response at all.
type NetworkErrorTester struct {
	config         config.TesterConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
}

// NewNetworkErrorTester creates a new network error tester
func NewNetworkErrorTester(bm *browser.Manager, cfg config.TesterConfig, logger zerolog.Logger) *NetworkErrorTester {
	return &NetworkErrorTester{
		config:         cfg,
		logger:         logger.With().Str("component", "NetworkErrorTester").Logger(),
		browserManager: bm,
	}
}

// Type returns the defect type this tester produces.
func (t *NetworkErrorTester) Type() models.DefectType {
	return models.DefectTypeNetworkError
}

// Run navigates to the page with network listeners attached and classifies
// every captured response and loading failure.
func (t *NetworkErrorTester) Run(ctx context.Context, pageURL string) ([]models.Defect, error) {
	page, err := t.browserManager.NewPage(ctx)
	if err != nil {
		return nil, common.WrapError(err, "failed to open page")
	}
	defer func() { _ = page.Close() }()

	capture := newNetworkCapture()
	wait := page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			capture.addRequest(string(e.RequestID), e.Request.Method, e.Request.URL)
		},
		func(e *proto.NetworkResponseReceived) {
			capture.addResponse(string(e.RequestID), e.Response.Status, e.Response.URL)
		},
		func(e *proto.NetworkLoadingFailed) {
			capture.addFailure(string(e.RequestID), e.ErrorText, e.Canceled)
		},
	)
	go wait()

	if err := page.Navigate(pageURL); err != nil {
		return nil, common.WrapErrorf(err, "navigation failed for %s", pageURL)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, common.WrapErrorf(err, "page load failed for %s", pageURL)
	}
	time.Sleep(asyncSettleDelay)

	return capture.Defects(pageURL), nil
}

// networkCapture correlates requestWillBeSent, responseReceived, and
// loadingFailed events by request id.
type networkCapture struct {
	mu        sync.Mutex
	requests  map[string]requestInfo
	responses []responseInfo
	failures  []failureInfo
}

type requestInfo struct {
	method string
	url    string
}

type responseInfo struct {
	requestID string
	status    int
	url       string
}

type failureInfo struct {
	requestID string
	errorText string
}

func newNetworkCapture() *networkCapture {
	return &networkCapture{requests: make(map[string]requestInfo)}
}

func (c *networkCapture) addRequest(requestID, method, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[requestID] = requestInfo{method: method, url: url}
}

func (c *networkCapture) addResponse(requestID string, status int, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, responseInfo{requestID: requestID, status: status, url: url})
}

func (c *networkCapture) addFailure(requestID, errorText string, canceled bool) {
	if canceled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, failureInfo{requestID: requestID, errorText: errorText})
}

// Defects classifies captured network events into defect records.
func (c *networkCapture) Defects(pageURL string) []models.Defect {
	c.mu.Lock()
	defer c.mu.Unlock()

	var defects []models.Defect
	for _, resp := range c.responses {
		method := c.requests[resp.requestID].method
		if defect, ok := ResponseDefect(pageURL, method, resp.url, resp.status); ok {
			defects = append(defects, defect)
		}
	}
	for _, failure := range c.failures {
		req, known := c.requests[failure.requestID]
		if !known {
			continue
		}
		if defect, ok := FailureDefect(pageURL, req.method, req.url, failure.errorText); ok {
			defects = append(defects, defect)
		}
	}
	return defects
}

// ResponseDefect classifies one received response. Responses for the page
// itself, successful statuses, and noise-set URLs produce nothing.
func ResponseDefect(pageURL, method, resourceURL string, status int) (models.Defect, bool) {
	if status < 400 || sameResource(pageURL, resourceURL) || IsNetworkNoise(resourceURL) {
		return models.Defect{}, false
	}

	severity := models.SeverityWarning
	class := "Client error"
	if status >= 500 {
		severity = models.SeverityCritical
		class = "Server error"
	}
	if method == "" {
		method = "GET"
	}

	return models.Defect{
		Type:     models.DefectTypeNetworkError,
		Severity: severity,
		Title:    fmt.Sprintf("%s %d on %s", class, status, urlPath(resourceURL)),
		Details:  fmt.Sprintf("%s %s returned %d", method, resourceURL, status),
		Page:     pageURL,
	}, true
}

// FailureDefect classifies one request that never received a response.
func FailureDefect(pageURL, method, resourceURL, errorText string) (models.Defect, bool) {
	if IsNetworkNoise(resourceURL) {
		return models.Defect{}, false
	}
	if errorText == "" {
		errorText = "unknown error"
	}
	if method == "" {
		method = "GET"
	}

	return models.Defect{
		Type:     models.DefectTypeNetworkError,
		Severity: models.SeverityCritical,
		Title:    "Request failed: " + urlPath(resourceURL),
		Details:  fmt.Sprintf("%s %s failed: %s", method, resourceURL, errorText),
		Page:     pageURL,
	}, true
}

// sameResource compares two URLs on their normalized form, so the page's own
// document response is never reported as a sub-resource failure.
func sameResource(a, b string) bool {
	if a == b {
		return true
	}
	normalizedA, errA := urlhandler.NormalizeURL(a)
	normalizedB, errB := urlhandler.NormalizeURL(b)
	if errA != nil || errB != nil {
		return false
	}
	return normalizedA == normalizedB
}

// urlPath returns the path component of a URL, or the whole value when it
// does not parse.
func urlPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		if err != nil {
			return rawURL
		}
		return "/"
	}
	return parsed.Path
}
