package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-career-hunter/utils"
)

const (
	MaxPages          = 20
	NavigationTimeout = 60 * time.Second
	GraceWait         = 5 * time.Second

	jobSelector = `a[href*="job"], a[href*="career"], .job`
)

// Advancer is the pagination step of the crawl loop
type Advancer interface {
	Advance(ctx context.Context, page Page) (bool, error)
}

// Crawler walks one career URL page by page, collecting postings unique by link
type Crawler struct {
	extractor *Extractor
	advancer  Advancer
	shots     *utils.ScreenShotDebugger
	maxPages  int
}

func NewCrawler(advancer Advancer, shots *utils.ScreenShotDebugger) *Crawler {
	return &Crawler{
		extractor: NewExtractor(),
		advancer:  advancer,
		shots:     shots,
		maxPages:  MaxPages,
	}
}

// Crawl navigates to url and accumulates postings for up to MaxPages pages.
// Only a navigation failure is returned as an error; problems after that
// point end the loop and the postings gathered so far are returned.
func (c *Crawler) Crawl(ctx context.Context, page Page, url, targetID string) ([]RawPosting, error) {
	log.Printf("📡 Navigating to %s", url)
	if err := page.Navigate(ctx, url, NavigationTimeout); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	if err := page.WaitForSelector(jobSelector, GraceWait); err != nil {
		log.Println("⏳ Initial wait timed out, proceeding...")
	}

	var all []RawPosting
	seen := make(map[string]bool)
	pageCount := 0

	for pageCount < c.maxPages {
		pageCount++
		log.Printf("📄 Scraping page %d of %s", pageCount, url)

		found, err := c.extractor.Extract(page, url, targetID)
		if err != nil {
			log.Printf("❌ Extraction failed on page %d: %v", pageCount, err)
			break
		}

		added := 0
		for _, p := range found {
			if seen[p.Link] {
				continue
			}
			seen[p.Link] = true
			all = append(all, p)
			added++
		}
		log.Printf("   + Found %d new postings on this page", added)

		if pageCount >= c.maxPages {
			break
		}
		more, err := c.advancer.Advance(ctx, page)
		if err != nil {
			log.Printf("⚠️ Pagination interrupted: %v", err)
			break
		}
		if !more {
			log.Println("🛑 No more pages detected")
			break
		}
	}

	log.Printf("✅ Total postings across %d pages: %d", pageCount, len(all))

	if len(all) == 0 && c.shots != nil {
		_, _ = c.shots.CaptureAndLog(page, "empty-"+utils.Slug(url), "No postings found, taking debug screenshot")
	}
	return all, nil
}
