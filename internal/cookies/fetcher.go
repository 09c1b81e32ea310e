package cookies

import (
	"context"

	"github.com/chromedp/cdproto/network"
	"go.uber.org/zap"
)

// Source returns the raw cookies the browser would expose for a hostname.
type Source interface {
	Cookies(ctx context.Context, host string) ([]*network.Cookie, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, host string) ([]*network.Cookie, error)

// Cookies calls f.
func (f SourceFunc) Cookies(ctx context.Context, host string) ([]*network.Cookie, error) {
	return f(ctx, host)
}

// Fetcher requests cookies for a hostname and normalizes them into records.
type Fetcher struct {
	source Source
	log    *zap.Logger
}

// NewFetcher creates a Fetcher. A nil logger disables logging.
func NewFetcher(source Source, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{source: source, log: log}
}

// Fetch returns the normalized cookies for host. It never fails: an empty host
// skips the source entirely, and source errors are logged and yield no records.
func (f *Fetcher) Fetch(ctx context.Context, host string) []Record {
	if host == "" {
		f.log.Debug("no hostname, skipping cookie query")
		return []Record{}
	}

	raw, err := f.source.Cookies(ctx, host)
	if err != nil {
		f.log.Warn("cookie query failed", zap.String("host", host), zap.Error(err))
		return []Record{}
	}

	records := Normalize(raw)
	f.log.Debug("fetched cookies", zap.String("host", host), zap.Int("count", len(records)))
	return records
}
