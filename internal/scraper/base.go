// Page automation contract consumed by the crawl pipeline.
// internal/browser implements it on top of Playwright; tests use fakes.

package scraper

import (
	"context"
	"time"
)

// RawPosting is a candidate job pulled off a career page, before classification
type RawPosting struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Location  string `json:"location"`
	SourceURL string `json:"source_url"`
	TargetID  string `json:"target_id"`
}

// Page is the subset of browser automation the crawler needs
type Page interface {
	//Navigate loads url and waits for the network to settle
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	//WaitForSelector waits until any element matches selector
	WaitForSelector(selector string, timeout time.Duration) error

	//Evaluate runs a JS expression in the page and returns its JSON-compatible result
	Evaluate(expression string) (any, error)

	//Query returns every element matching a Playwright selector
	Query(selector string) ([]Element, error)

	ScrollHeight() (int, error)
	ScrollToBottom() error
	Screenshot(path string) error
}

// Element is a handle on one DOM node
type Element interface {
	//Attribute returns the attribute value and whether it is present
	Attribute(name string) (string, bool, error)
	Visible() (bool, error)
	Click() error
}
