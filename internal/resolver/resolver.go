package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajsharma/tab_cookies/internal/cdp"
)

// TabLister lists open page targets, most recently activated first.
type TabLister interface {
	ListTabs(ctx context.Context) ([]*cdp.Tab, error)
}

// Target is the resolved active tab.
type Target struct {
	TargetID string
	Title    string
	URL      string
	Hostname string
}

// Resolver picks the active tab from a TabLister.
type Resolver struct {
	tabs     TabLister
	targetID string
	log      *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTargetID pins resolution to a specific target instead of the most
// recently activated one.
func WithTargetID(id string) Option {
	return func(r *Resolver) {
		r.targetID = id
	}
}

// WithLogger sets the logger used for lister failures.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Resolver.
func New(tabs TabLister, opts ...Option) *Resolver {
	r := &Resolver{
		tabs: tabs,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the active tab. When no tab is open, the pinned target is
// missing, or the lister fails, the zero Target is returned; a tab on an
// internal or unparsable URL is returned with an empty Hostname.
func (r *Resolver) Resolve(ctx context.Context) Target {
	tabs, err := r.tabs.ListTabs(ctx)
	if err != nil {
		r.log.Warn("active tab query failed", zap.Error(err))
		return Target{}
	}

	tab := r.pick(tabs)
	if tab == nil {
		r.log.Debug("no active tab", zap.Int("tabs", len(tabs)), zap.String("target_id", r.targetID))
		return Target{}
	}

	return Target{
		TargetID: tab.TargetID,
		Title:    tab.Title,
		URL:      tab.URL,
		Hostname: Hostname(tab.URL),
	}
}

func (r *Resolver) pick(tabs []*cdp.Tab) *cdp.Tab {
	for _, tab := range tabs {
		if tab == nil {
			continue
		}
		if r.targetID == "" || tab.TargetID == r.targetID {
			return tab
		}
	}
	return nil
}
