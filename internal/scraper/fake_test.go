package scraper

import (
	"context"
	"errors"
	"os"
	"time"
)

type fakeElement struct {
	attrs   map[string]string
	hidden  bool
	clicked int
	onClick func()
}

func (e *fakeElement) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Visible() (bool, error) { return !e.hidden, nil }

func (e *fakeElement) Click() error {
	e.clicked++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

// fakePage serves canned evaluate results per "view" and records calls
type fakePage struct {
	navigateErr error
	views       [][]any
	view        int
	elements    map[string][]Element
	heights     []int
	heightCalls int
	scrolls     int
	evaluations int
	evalErrAt   int
	screenshots []string
}

func (p *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return p.navigateErr
}

func (p *fakePage) WaitForSelector(selector string, timeout time.Duration) error {
	return errors.New("timeout")
}

func (p *fakePage) Evaluate(expression string) (any, error) {
	p.evaluations++
	if p.evalErrAt > 0 && p.evaluations == p.evalErrAt {
		return nil, errors.New("execution context was destroyed")
	}
	if len(p.views) == 0 {
		return []any{}, nil
	}
	idx := p.view
	if idx >= len(p.views) {
		idx = len(p.views) - 1
	}
	return p.views[idx], nil
}

func (p *fakePage) Query(selector string) ([]Element, error) {
	return p.elements[selector], nil
}

func (p *fakePage) ScrollHeight() (int, error) {
	if len(p.heights) == 0 {
		return 1000, nil
	}
	idx := p.heightCalls
	if idx >= len(p.heights) {
		idx = len(p.heights) - 1
	}
	p.heightCalls++
	return p.heights[idx], nil
}

func (p *fakePage) ScrollToBottom() error {
	p.scrolls++
	return nil
}

func (p *fakePage) Screenshot(path string) error {
	p.screenshots = append(p.screenshots, path)
	return os.WriteFile(path, []byte("png"), 0644)
}

func item(title, link, location string) map[string]any {
	return map[string]any{"title": title, "link": link, "location": location}
}
