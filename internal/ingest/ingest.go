// Package ingest fetches press-release and news feeds and turns their
// entries into raw documents for the extractor. All network I/O for the
// pipeline lives here, on the caller side.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/dealgraph/dealgraph/pkg/errors"
	"github.com/dealgraph/dealgraph/pkg/extract"
	"github.com/dealgraph/dealgraph/pkg/logging"
	"github.com/dealgraph/dealgraph/pkg/pipeline"
	"github.com/dealgraph/dealgraph/pkg/reliability"
)

// Fetcher pulls feed entries and converts them into extractor input.
type Fetcher struct {
	parser  *gofeed.Parser
	limiter *rate.Limiter
	maxAge  time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRateLimit replaces the default one-request-per-second limiter.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(f *Fetcher) {
		if limiter != nil {
			f.limiter = limiter
		}
	}
}

// WithMaxAge drops feed entries older than the given duration. Zero keeps
// everything.
func WithMaxAge(maxAge time.Duration) Option {
	return func(f *Fetcher) {
		f.maxAge = maxAge
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch pulls a single feed and converts each entry into a raw document.
// The entry's link domain becomes the document source, so reliability
// weighting keys off the publisher rather than the aggregator.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]pipeline.RawDocument, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, errors.WrapIO("fetch", url, err)
	}

	now := time.Now().UTC()
	docs := make([]pipeline.RawDocument, 0, len(feed.Items))
	for _, entry := range feed.Items {
		published := now
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}
		if f.maxAge > 0 && now.Sub(published) > f.maxAge {
			continue
		}

		text := entryText(entry)
		if text == "" {
			continue
		}

		source := entry.Link
		if source == "" {
			source = url
		}
		docs = append(docs, pipeline.RawDocument{
			Text: text,
			Meta: extract.SourceMetadata{
				Source:       reliability.Normalize(source),
				URL:          entry.Link,
				DiscoveredAt: published,
			},
		})
	}
	return docs, nil
}

// FetchAll pulls every feed, collecting per-feed failures instead of
// aborting the run.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]pipeline.RawDocument, []error) {
	log := logging.FromContext(ctx)

	var docs []pipeline.RawDocument
	var errs []error
	for _, url := range urls {
		fetched, err := f.Fetch(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("feed", url).Msg("Feed fetch failed")
			errs = append(errs, err)
			continue
		}
		log.Debug().Str("feed", url).Int("documents", len(fetched)).Msg("Fetched feed")
		docs = append(docs, fetched...)
	}
	return docs, errs
}

// entryText flattens an entry into one document: title, then description or
// content, whichever is present.
func entryText(entry *gofeed.Item) string {
	parts := make([]string, 0, 2)
	if title := strings.TrimSpace(entry.Title); title != "" {
		parts = append(parts, title)
	}
	body := strings.TrimSpace(entry.Description)
	if body == "" {
		body = strings.TrimSpace(entry.Content)
	}
	if body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, ". ")
}
