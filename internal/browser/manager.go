package browser

import (
	"context"
	"sync"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// Manager owns the headless browser instance for one scan. Pages are created
// on demand; every caller is responsible for closing the pages it opens.
type Manager struct {
	config    config.BrowserConfig
	logger    zerolog.Logger
	launcher  *launcher.Launcher
	browser   *rod.Browser
	mutex     sync.Mutex
	isRunning bool
}

// NewManager creates a new browser manager
func NewManager(cfg config.BrowserConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		config: cfg,
		logger: logger.With().Str("component", "BrowserManager").Logger(),
	}
}

// Start launches the browser and connects to it.
func (m *Manager) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.isRunning {
		return nil
	}

	l := launcher.New()

	if m.config.ChromePath != "" {
		l = l.Bin(m.config.ChromePath)
	}

	l = l.
		Headless(m.config.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	controlURL, err := l.Launch()
	if err != nil {
		return common.WrapError(err, "failed to launch browser")
	}
	m.launcher = l

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		m.launcher.Cleanup()
		m.launcher = nil
		return common.WrapError(err, "failed to connect to browser")
	}

	m.browser = browser
	m.isRunning = true
	m.logger.Info().Bool("headless", m.config.Headless).Msg("Browser started")
	return nil
}

// Stop closes the browser and cleans up the launcher. Safe to call twice.
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		return
	}

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close browser")
		}
		m.browser = nil
	}

	if m.launcher != nil {
		m.launcher.Cleanup()
		m.launcher = nil
	}

	m.isRunning = false
	m.logger.Info().Msg("Browser stopped")
}

// NewPage opens a fresh page bound to ctx.
func (m *Manager) NewPage(ctx context.Context) (*rod.Page, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		return nil, common.NewError("browser manager is not running")
	}

	page, err := m.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, common.WrapError(err, "failed to create page")
	}

	m.applyUserAgent(page)
	return page, nil
}

// NewIncognitoPage opens a page inside a fresh incognito browser context.
// The returned cleanup closes both the page and its context.
func (m *Manager) NewIncognitoPage(ctx context.Context) (*rod.Page, func(), error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		return nil, nil, common.NewError("browser manager is not running")
	}

	incognito, err := m.browser.Incognito()
	if err != nil {
		return nil, nil, common.WrapError(err, "failed to create incognito context")
	}

	disposeContext := func() {
		dispose := proto.TargetDisposeBrowserContext{BrowserContextID: incognito.BrowserContextID}
		if disposeErr := dispose.Call(incognito); disposeErr != nil {
			m.logger.Warn().Err(disposeErr).Msg("Failed to dispose incognito context")
		}
	}

	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		disposeContext()
		return nil, nil, common.WrapError(err, "failed to create incognito page")
	}

	m.applyUserAgent(page)
	cleanup := func() {
		if closeErr := page.Close(); closeErr != nil {
			m.logger.Debug().Err(closeErr).Msg("Failed to close incognito page")
		}
		disposeContext()
	}
	return page, cleanup, nil
}

// applyUserAgent sets the configured user agent on a page. Failures are
// logged and ignored; the default agent still works for scanning.
func (m *Manager) applyUserAgent(page *rod.Page) {
	if m.config.UserAgent == "" {
		return
	}
	err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: m.config.UserAgent})
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to set user agent")
	}
}

// SetViewport applies fixed device metrics to a page.
func SetViewport(page *rod.Page, width, height int) error {
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  width,
		Height: height,
	})
}

// IsRunning reports whether the underlying browser is available.
func (m *Manager) IsRunning() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.isRunning
}
