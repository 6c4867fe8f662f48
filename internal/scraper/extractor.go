package scraper

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultLocation = "Not specified"

// extractScript collects two kinds of candidates in one pass:
// every anchor with visible text longer than 2 chars, and every job-ish
// container (class contains job/career/position/opening, or any li)
// that holds both a link and a heading-like element.
const extractScript = `() => {
	const results = [];

	document.querySelectorAll('a').forEach(link => {
		const href = link.href;
		const text = (link.textContent || '').trim();
		if (href && text.length > 2) {
			results.push({ title: text, link: href, location: '' });
		}
	});

	const containers = document.querySelectorAll(
		'[class*="job"], [class*="career"], [class*="position"], [class*="opening"], li'
	);
	containers.forEach(container => {
		const link = container.querySelector('a');
		const titleEl = container.querySelector('h1, h2, h3, h4, .title, [class*="title"], [role="heading"]');
		if (!link || !titleEl) {
			return;
		}
		const locationEl = container.querySelector('[class*="location"]');
		results.push({
			title: (titleEl.textContent || '').trim(),
			link: link.href,
			location: locationEl ? (locationEl.textContent || '').trim() : ''
		});
	});

	return results;
}`

type extractedItem struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Location string `json:"location"`
}

// Extractor reads candidate postings from the current page view.
// It does no ranking; the classifier decides precision.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns postings unique by link, in page order
func (e *Extractor) Extract(page Page, sourceURL, targetID string) ([]RawPosting, error) {
	raw, err := page.Evaluate(extractScript)
	if err != nil {
		return nil, fmt.Errorf("evaluate extract script: %w", err)
	}

	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}
	return normalize(items, sourceURL, targetID), nil
}

// decodeItems converts the untyped evaluate result via a JSON round trip
func decodeItems(raw any) ([]extractedItem, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal extract result: %w", err)
	}
	var items []extractedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode extract result: %w", err)
	}
	return items, nil
}

// normalize trims fields and dedups by link. When the same link shows up
// as both a bare anchor and a card, the card wins because it carries a
// heading title and a location.
func normalize(items []extractedItem, sourceURL, targetID string) []RawPosting {
	index := make(map[string]int, len(items))
	postings := make([]RawPosting, 0, len(items))

	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		title := collapseSpace(item.Title)
		if link == "" || title == "" {
			continue
		}
		location := collapseSpace(item.Location)

		if i, seen := index[link]; seen {
			if location != "" && postings[i].Location == defaultLocation {
				postings[i].Title = title
				postings[i].Location = location
			}
			continue
		}

		if location == "" {
			location = defaultLocation
		}
		index[link] = len(postings)
		postings = append(postings, RawPosting{
			Title:     title,
			Link:      link,
			Location:  location,
			SourceURL: sourceURL,
			TargetID:  targetID,
		})
	}
	return postings
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
