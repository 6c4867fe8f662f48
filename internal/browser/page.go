package browser

import (
	"context"
	"fmt"
	"time"

	"go-career-hunter/internal/scraper"

	"github.com/playwright-community/playwright-go"
)

const clickTimeout = 10 * time.Second

// Page adapts a playwright.Page to scraper.Page
type Page struct {
	page playwright.Page
}

func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	//Goto takes no ctx; closing the page is what aborts it
	stop := context.AfterFunc(ctx, func() { _ = p.page.Close() })
	defer stop()

	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	//cosmetic, failures don't matter
	_ = MouseJiggle(ctx, p.page)
	return nil
}

func (p *Page) WaitForSelector(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *Page) Evaluate(expression string) (any, error) {
	return p.page.Evaluate(expression)
}

func (p *Page) Query(selector string) ([]scraper.Element, error) {
	locators, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	elements := make([]scraper.Element, len(locators))
	for i, l := range locators {
		elements[i] = element{locator: l}
	}
	return elements, nil
}

func (p *Page) ScrollHeight() (int, error) {
	v, err := p.page.Evaluate("document.body.scrollHeight")
	if err != nil {
		return 0, err
	}
	switch h := v.(type) {
	case int:
		return h, nil
	case int64:
		return int(h), nil
	case float64:
		return int(h), nil
	default:
		return 0, fmt.Errorf("unexpected scrollHeight type %T", v)
	}
}

func (p *Page) ScrollToBottom() error {
	_, err := p.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	return err
}

func (p *Page) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(false),
	})
	return err
}

type element struct {
	locator playwright.Locator
}

func (e element) Attribute(name string) (string, bool, error) {
	v, err := e.locator.Evaluate("(el, name) => el.getAttribute(name)", name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (e element) Visible() (bool, error) {
	return e.locator.IsVisible()
}

func (e element) Click() error {
	return e.locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(clickTimeout.Milliseconds())),
	})
}
