package tester

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// ConsoleErrorTester records uncaught page exceptions and console messages of
// level error. Handlers attach before navigation so early errors are caught.
type ConsoleErrorTester struct {
	config         config.TesterConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
}

// NewConsoleErrorTester creates a new console error tester
func NewConsoleErrorTester(bm *browser.Manager, cfg config.TesterConfig, logger zerolog.Logger) *ConsoleErrorTester {
	return &ConsoleErrorTester{
		config:         cfg,
		logger:         logger.With().Str("component", "ConsoleErrorTester").Logger(),
		browserManager: bm,
	}
}

// Type returns the defect type this tester produces.
func (t *ConsoleErrorTester) Type() models.DefectType {
	return models.DefectTypeConsoleError
}

// Run navigates to the page with exception and console listeners attached and
// returns one defect per uncaught exception and noise-filtered error message.
func (t *ConsoleErrorTester) Run(ctx context.Context, pageURL string) ([]models.Defect, error) {
	page, err := t.browserManager.NewPage(ctx)
	if err != nil {
		return nil, common.WrapError(err, "failed to open page")
	}
	defer func() { _ = page.Close() }()

	capture := &consoleCapture{}
	wait := page.EachEvent(
		func(e *proto.RuntimeExceptionThrown) {
			message, details := exceptionText(e)
			capture.addException(message, details)
		},
		func(e *proto.RuntimeConsoleAPICalled) {
			if e.Type != proto.RuntimeConsoleAPICalledTypeError {
				return
			}
			capture.addMessage(consoleArgsText(e.Args))
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

// consoleCapture accumulates events from the CDP listeners. The listeners run
// on rod's event goroutine, so access is mutex guarded.
type consoleCapture struct {
	mu         sync.Mutex
	exceptions []capturedException
	messages   []string
}

type capturedException struct {
	message string
	details string
}

func (c *consoleCapture) addException(message, details string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exceptions = append(c.exceptions, capturedException{message: message, details: details})
}

func (c *consoleCapture) addMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
}

// Defects classifies everything captured so far into defect records.
func (c *consoleCapture) Defects(pageURL string) []models.Defect {
	c.mu.Lock()
	defer c.mu.Unlock()

	var defects []models.Defect
	for _, exc := range c.exceptions {
		defects = append(defects, ExceptionDefect(pageURL, exc.message, exc.details))
	}
	for _, msg := range c.messages {
		if defect, ok := ConsoleErrorDefect(pageURL, msg); ok {
			defects = append(defects, defect)
		}
	}
	return defects
}

// ExceptionDefect builds a critical defect from an uncaught page exception.
func ExceptionDefect(pageURL, message, details string) models.Defect {
	if details == "" {
		details = message
	}
	return models.Defect{
		Type:     models.DefectTypeConsoleError,
		Severity: models.SeverityCritical,
		Title:    "Uncaught exception: " + firstLine(message),
		Details:  details,
		Page:     pageURL,
	}
}

// ConsoleErrorDefect builds a warning defect from a console error message,
// unless the message matches the noise set.
func ConsoleErrorDefect(pageURL, message string) (models.Defect, bool) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" || IsConsoleNoise(trimmed) {
		return models.Defect{}, false
	}
	return models.Defect{
		Type:     models.DefectTypeConsoleError,
		Severity: models.SeverityWarning,
		Title:    "Console error: " + truncate(trimmed, 100),
		Details:  trimmed,
		Page:     pageURL,
	}, true
}

// exceptionText extracts the human-readable message and the stack-or-message
// details from an exceptionThrown event. The exception description carries
// the stack trace when one exists.
func exceptionText(e *proto.RuntimeExceptionThrown) (message, details string) {
	d := e.ExceptionDetails
	if d == nil {
		return "unknown error", "unknown error"
	}
	if d.Exception != nil && d.Exception.Description != "" {
		return d.Exception.Description, d.Exception.Description
	}
	return d.Text, d.Text
}

// consoleArgsText renders the arguments of a console call as one line.
func consoleArgsText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if text := remoteObjectText(arg); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func remoteObjectText(obj *proto.RuntimeRemoteObject) string {
	if obj == nil {
		return ""
	}
	if obj.Type == proto.RuntimeRemoteObjectTypeString {
		return obj.Value.Str()
	}
	if obj.Description != "" {
		return obj.Description
	}
	return obj.Value.JSON("", "")
}
