package browser

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-career-hunter/internal/scraper"

	"github.com/playwright-community/playwright-go"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-accelerated-2d-canvas",
	"--disable-gpu",
	"--window-size=1920,1080",
}

// Launcher opens one browser session per batch
type Launcher struct {
	Headless    bool
	CookiesPath string
}

func NewLauncher(headless bool, cookiesPath string) *Launcher {
	return &Launcher{Headless: headless, CookiesPath: cookiesPath}
}

// Session owns the Playwright driver, browser, context and single page of a batch
type Session struct {
	pm      *PlaywrightManager
	context playwright.BrowserContext
	page    *Page
}

// Open starts Playwright and prepares a page with a desktop user agent,
// a 1920x1080 viewport and any cookies found under CookiesPath.
func (l *Launcher) Open(ctx context.Context) (*Session, error) {
	log.Println("🌙 Initializing browser...")

	pm, err := NewPlaywright(ctx, l.Headless)
	if err != nil {
		return nil, err
	}

	cookies, err := LoadCookieDir(l.CookiesPath)
	if err != nil {
		log.Printf("⚠️ Could not load cookies: %v. Continuing.", err)
	}

	browserCtx, err := pm.NewContext(cookies)
	if err != nil {
		pm.Close()
		return nil, err
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		pm.Close()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	log.Println("✅ Browser initialized")
	return &Session{pm: pm, context: browserCtx, page: &Page{page: page}}, nil
}

func (s *Session) Page() scraper.Page {
	return s.page
}

// Close tears down context, browser and driver; every step runs even if an earlier one fails
func (s *Session) Close() error {
	var errs []error
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if err := s.pm.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("⚠️ Error closing browser: %v", err)
		return err
	}
	log.Println("🔒 Browser closed")
	return nil
}

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywright(ctx context.Context, headless bool) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     launchArgs,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	return &PlaywrightManager{pw: pw, browser: browser}, nil
}

func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	browserCtx, err := pm.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := browserCtx.AddCookies(cookies); err != nil {
			browserCtx.Close()
			return nil, fmt.Errorf("failed to add cookies: %w", err)
		}
		log.Printf("🍪 Loaded %d cookies", len(cookies))
	}
	return browserCtx, nil
}

func (pm *PlaywrightManager) Close() error {
	var errs []error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}
