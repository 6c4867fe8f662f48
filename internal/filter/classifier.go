package filter

import (
	"context"
	"errors"
	"log"

	"go-career-hunter/internal/ai"
	"go-career-hunter/internal/scraper"
)

const BatchSize = 30

type Strategy string

const (
	StrategyAI      Strategy = "ai"
	StrategyKeyword Strategy = "keyword"
)

// Request is one classify call for a single career URL
type Request struct {
	Postings     []scraper.RawPosting
	Persona      string
	CompanyName  string
	FallbackTags []string
}

// Result is the accepted subset plus which strategy produced it
type Result struct {
	Accepted []scraper.RawPosting
	Strategy Strategy
	//MalformedBatches counts sub-batches whose response could not be decoded
	MalformedBatches int
}

// Classifier filters raw postings against a persona with the AI client,
// falling back to tag matching when the AI is unavailable or every call fails
type Classifier struct {
	client    ai.Client
	batchSize int
}

func NewClassifier(client ai.Client) *Classifier {
	return &Classifier{client: client, batchSize: BatchSize}
}

func (c *Classifier) Classify(ctx context.Context, req Request) Result {
	if len(req.Postings) == 0 {
		return Result{Strategy: StrategyAI}
	}

	res, err := c.classifyAI(ctx, req)
	if err == nil {
		log.Printf("   🤖 AI Filter approved: %d/%d", len(res.Accepted), len(req.Postings))
		return res
	}

	log.Printf("   ❌ AI Filter failed, falling back to keywords: %v", err)
	accepted := FilterByTags(req.Postings, req.FallbackTags)
	log.Printf("   ⚠️ Keyword fallback %v approved: %d/%d", req.FallbackTags, len(accepted), len(req.Postings))
	return Result{Accepted: accepted, Strategy: StrategyKeyword}
}

// classifyAI returns an error only when the AI path is unusable for the
// whole call: no credential, or every sub-batch call failed
func (c *Classifier) classifyAI(ctx context.Context, req Request) (Result, error) {
	if c.client == nil || !c.client.Available() {
		return Result{}, ai.ErrUnavailable
	}

	res := Result{Strategy: StrategyAI}
	var callErrs []error
	batches := 0

	for start := 0; start < len(req.Postings); start += c.batchSize {
		end := min(start+c.batchSize, len(req.Postings))
		batch := req.Postings[start:end]
		batches++
		log.Printf("   Processing batch %d (%d postings)...", batches, len(batch))

		matches, err := c.classifyBatch(ctx, batch, req)
		if err != nil {
			if errors.Is(err, ErrMalformedResponse) {
				log.Printf("      ⚠️ %v", err)
				res.MalformedBatches++
				continue
			}
			log.Printf("      ❌ Batch failed: %v", err)
			callErrs = append(callErrs, err)
			continue
		}
		log.Printf("      Selected %d/%d", len(matches), len(batch))
		res.Accepted = append(res.Accepted, matches...)
	}

	if len(callErrs) == batches {
		return Result{}, errors.Join(callErrs...)
	}
	return res, nil
}

func (c *Classifier) classifyBatch(ctx context.Context, batch []scraper.RawPosting, req Request) ([]scraper.RawPosting, error) {
	lines := make([]ai.ListingLine, len(batch))
	for i, p := range batch {
		lines[i] = ai.ListingLine{Title: p.Title, Location: p.Location, Company: req.CompanyName}
	}

	content, err := c.client.CompleteJSON(ctx, ai.RecruiterSystemPrompt(), ai.BuildMatchPrompt(req.Persona, lines))
	if err != nil {
		return nil, err
	}

	indices, err := decodeMatchIDs(content, len(batch))
	if err != nil {
		return nil, err
	}

	matches := make([]scraper.RawPosting, len(indices))
	for i, idx := range indices {
		matches[i] = batch[idx]
	}
	return matches, nil
}
