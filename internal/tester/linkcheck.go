package tester

import (
	"context"
	"fmt"
	"strings"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/httpclient"

	"github.com/rs/zerolog"
)

// LinkVerdict is the outcome of checking one link target.
type LinkVerdict int

const (
	// LinkOK means the target responded successfully.
	LinkOK LinkVerdict = iota
	// LinkBroken means the target is definitively unreachable or gone.
	LinkBroken
	// LinkUncertain means the target could not be confirmed either way.
	// Uncertain results never become defects; ambiguous responses from
	// bot-hostile or flaky servers would otherwise flood reports with
	// false positives.
	LinkUncertain
)

// LinkCheckResult pairs a verdict with its human-readable detail.
type LinkCheckResult struct {
	Verdict LinkVerdict
	Detail  string
}

// LinkChecker verifies link targets with a HEAD request, falling back to GET
// when HEAD is rejected or inconclusive.
type LinkChecker struct {
	client *httpclient.HTTPClient
	config config.TesterConfig
	logger zerolog.Logger
}

// NewLinkChecker creates a link checker with its own HTTP client.
func NewLinkChecker(cfg config.TesterConfig, logger zerolog.Logger) (*LinkChecker, error) {
	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithTimeout(cfg.LinkCheckTimeout()).
		WithUserAgent(config.DefaultBrowserUserAgent).
		WithHTTP2(true).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to build link check HTTP client")
	}

	return &LinkChecker{
		client: client,
		config: cfg,
		logger: logger.With().Str("component", "LinkChecker").Logger(),
	}, nil
}

// Check runs the HEAD-then-GET ladder against one target URL. Each request
// gets its own timeout budget.
func (lc *LinkChecker) Check(ctx context.Context, target string) LinkCheckResult {
	headCtx, cancelHead := context.WithTimeout(ctx, lc.config.LinkCheckTimeout())
	response, err := lc.client.Head(headCtx, target)
	cancelHead()

	if err == nil {
		if response.StatusCode < 400 {
			return LinkCheckResult{Verdict: LinkOK}
		}
		if isGone(response.StatusCode) {
			return LinkCheckResult{Verdict: LinkBroken, Detail: fmt.Sprintf("Returned %d", response.StatusCode)}
		}
		// Many servers reject HEAD with 403/405; retry with GET.
	}

	getCtx, cancelGet := context.WithTimeout(ctx, lc.config.LinkCheckTimeout())
	response, err = lc.client.Get(getCtx, target)
	cancelGet()

	if err != nil {
		return ClassifyTransportError(err.Error())
	}
	return ClassifyGetStatus(response.StatusCode)
}

// ClassifyGetStatus maps a GET status code to a link verdict.
func ClassifyGetStatus(status int) LinkCheckResult {
	switch {
	case status < 400:
		return LinkCheckResult{Verdict: LinkOK}
	case isGone(status):
		return LinkCheckResult{Verdict: LinkBroken, Detail: fmt.Sprintf("Returned %d", status)}
	default:
		return LinkCheckResult{
			Verdict: LinkUncertain,
			Detail:  fmt.Sprintf("Returned %d — may be access-restricted or temporarily unavailable", status),
		}
	}
}

// ClassifyTransportError maps a connection-level error message to a verdict.
// Unresolvable hosts and refused connections are definitive; everything else
// (timeouts, resets, TLS issues) stays uncertain.
func ClassifyTransportError(message string) LinkCheckResult {
	lowered := strings.ToLower(message)
	definitive := strings.Contains(lowered, "no such host") ||
		strings.Contains(lowered, "connection refused") ||
		strings.Contains(lowered, "err_name_not_resolved") ||
		strings.Contains(lowered, "err_connection_refused")
	if definitive {
		return LinkCheckResult{Verdict: LinkBroken, Detail: "Domain not found or connection refused"}
	}
	return LinkCheckResult{Verdict: LinkUncertain, Detail: message}
}

// isGone reports whether a status code definitively marks a dead resource.
func isGone(status int) bool {
	return status == 404 || status == 410
}
