package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go-career-hunter/utils"
)

// Finder is one strategy for locating a "next page" control
type Finder interface {
	Find(page Page) (Element, bool)
	String() string
}

// ByLabel matches ARIA labels such as "Next" or "Next Page"
type ByLabel struct {
	Labels []string
}

// ByClass matches elements carrying one of the given class names
type ByClass struct {
	Classes []string
}

// ByText matches links and buttons whose visible text is exactly one of
// Exact, or contains one of Contains
type ByText struct {
	Exact    []string
	Contains []string
}

// ByAttribute matches elements with Name="Value"
type ByAttribute struct {
	Name  string
	Value string
}

func (f ByLabel) Find(page Page) (Element, bool) {
	var selectors []string
	for _, label := range f.Labels {
		selectors = append(selectors, fmt.Sprintf(`[aria-label=%q]`, label))
	}
	return firstUsable(page, selectors)
}

func (f ByClass) Find(page Page) (Element, bool) {
	var selectors []string
	for _, class := range f.Classes {
		selectors = append(selectors, "a."+class, "button."+class, "."+class)
	}
	return firstUsable(page, selectors)
}

func (f ByText) Find(page Page) (Element, bool) {
	var selectors []string
	for _, text := range f.Exact {
		selectors = append(selectors, fmt.Sprintf(`a:text-is(%q)`, text), fmt.Sprintf(`button:text-is(%q)`, text))
	}
	for _, text := range f.Contains {
		selectors = append(selectors, fmt.Sprintf(`a:has-text(%q)`, text), fmt.Sprintf(`button:has-text(%q)`, text))
	}
	return firstUsable(page, selectors)
}

func (f ByAttribute) Find(page Page) (Element, bool) {
	return firstUsable(page, []string{fmt.Sprintf(`[%s=%q]`, f.Name, f.Value)})
}

func (f ByLabel) String() string     { return "label" + fmt.Sprint(f.Labels) }
func (f ByClass) String() string     { return "class" + fmt.Sprint(f.Classes) }
func (f ByText) String() string      { return "text" + fmt.Sprint(f.Exact, f.Contains) }
func (f ByAttribute) String() string { return fmt.Sprintf("attr[%s=%s]", f.Name, f.Value) }

// DefaultFinders is the priority order for locating a next control
var DefaultFinders = []Finder{
	ByLabel{Labels: []string{"Next", "Next Page", "next"}},
	ByClass{Classes: []string{"next", "pagination-next"}},
	ByText{Exact: []string{">"}, Contains: []string{"Next"}},
	ByAttribute{Name: "rel", Value: "next"},
}

// firstUsable returns the first matching element that is enabled and visible
func firstUsable(page Page, selectors []string) (Element, bool) {
	for _, selector := range selectors {
		elements, err := page.Query(selector)
		if err != nil {
			continue
		}
		for _, el := range elements {
			if usable(el) {
				return el, true
			}
		}
	}
	return nil, false
}

func usable(el Element) bool {
	if _, present, err := el.Attribute("disabled"); err != nil || present {
		return false
	}
	if class, _, err := el.Attribute("class"); err != nil || hasClass(class, "disabled") {
		return false
	}
	if aria, _, err := el.Attribute("aria-disabled"); err != nil || strings.EqualFold(aria, "true") {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

func hasClass(classAttr, name string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == name {
			return true
		}
	}
	return false
}

// Paginator moves a page to its next batch of results, either by clicking
// a next control or by scrolling to trigger lazy loading.
type Paginator struct {
	Finders []Finder
	WaitMin time.Duration
	WaitMax time.Duration
}

func NewPaginator() *Paginator {
	return &Paginator{
		Finders: DefaultFinders,
		WaitMin: 2 * time.Second,
		WaitMax: 4 * time.Second,
	}
}

// Advance returns true when new content was reached (and waited for),
// false when nothing more is reachable. Errors only come from ctx.
func (p *Paginator) Advance(ctx context.Context, page Page) (bool, error) {
	log.Println("🔄 Checking for next page...")

	for _, finder := range p.Finders {
		next, ok := finder.Find(page)
		if !ok {
			continue
		}
		log.Printf("   ➡️ Found next control via %s", finder)
		if err := next.Click(); err != nil {
			log.Printf("   ❌ Error clicking next: %v", err)
			break
		}
		//pages often update via AJAX without a navigation event
		if err := utils.RandomDelay(ctx, p.WaitMin, p.WaitMax); err != nil {
			return false, err
		}
		return true, nil
	}

	log.Println("📜 No next control, attempting infinite scroll...")
	before, err := page.ScrollHeight()
	if err != nil {
		log.Printf("   ❌ Infinite scroll error: %v", err)
		return false, nil
	}
	if err := page.ScrollToBottom(); err != nil {
		log.Printf("   ❌ Infinite scroll error: %v", err)
		return false, nil
	}
	if err := utils.RandomDelay(ctx, p.WaitMin, p.WaitMax); err != nil {
		return false, err
	}
	after, err := page.ScrollHeight()
	if err != nil {
		log.Printf("   ❌ Infinite scroll error: %v", err)
		return false, nil
	}

	if after > before {
		log.Println("   📜 Infinite scroll loaded more content")
		return true, nil
	}
	return false, nil
}
