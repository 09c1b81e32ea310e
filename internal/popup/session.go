// Package popup models one activation of the cookie popup: a single
// asynchronous load of the active tab's cookies followed by any number of
// synchronous filter and copy operations.
package popup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajsharma/tab_cookies/internal/clipboard"
	"github.com/ajsharma/tab_cookies/internal/cookies"
	"github.com/ajsharma/tab_cookies/internal/resolver"
)

// State is the session lifecycle state.
type State int

const (
	// StateLoading means the cookie list has not been committed yet.
	StateLoading State = iota
	// StateReady means the cookie list is available and read-only.
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// TabResolver resolves the active tab.
type TabResolver interface {
	Resolve(ctx context.Context) resolver.Target
}

// CookieFetcher fetches normalized cookies for a hostname.
type CookieFetcher interface {
	Fetch(ctx context.Context, host string) []cookies.Record
}

// Part selects what Copy puts on the clipboard.
type Part int

const (
	// PartValue copies the cookie value.
	PartValue Part = iota
	// PartName copies the cookie name.
	PartName
	// PartPair copies "name=value".
	PartPair
)

// Parts lists every Part.
var Parts = []Part{PartValue, PartName, PartPair}

func (p Part) String() string {
	switch p {
	case PartName:
		return "name"
	case PartPair:
		return "pair"
	default:
		return "value"
	}
}

// ParsePart parses "value", "name" or "pair" (case-insensitive).
func ParsePart(s string) (Part, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "value":
		return PartValue, nil
	case "name":
		return PartName, nil
	case "pair":
		return PartPair, nil
	}
	return PartValue, fmt.Errorf("unknown copy part %q (want value, name or pair)", s)
}

// CopyKey identifies a copied cookie part. Index refers to the position in the
// session's full record list.
type CopyKey struct {
	Index int
	Part  Part
}

// Session is one popup activation.
type Session struct {
	id       string
	resolver TabResolver
	fetcher  CookieFetcher
	clip     clipboard.Writer
	log      *zap.Logger

	loadOnce sync.Once
	ready    chan struct{}

	mu      sync.RWMutex
	state   State
	closed  bool
	target  resolver.Target
	records []cookies.Record
	memo    *cookies.Memo
	copied  map[CopyKey]bool
}

// New creates a session in the Loading state. A nil logger disables logging.
func New(res TabResolver, fetcher CookieFetcher, clip clipboard.Writer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		id:       id,
		resolver: res,
		fetcher:  fetcher,
		clip:     clip,
		log:      log.With(zap.String("session", id)),
		ready:    make(chan struct{}),
		copied:   make(map[CopyKey]bool),
	}
}

// ID returns the session identifier used in log entries.
func (s *Session) ID() string {
	return s.id
}

// Open starts loading in the background and returns immediately.
// Only the first call to Open or Load has any effect.
func (s *Session) Open(ctx context.Context) {
	s.loadOnce.Do(func() {
		go s.load(ctx)
	})
}

// Load loads synchronously and returns the committed records.
func (s *Session) Load(ctx context.Context) []cookies.Record {
	s.loadOnce.Do(func() {
		s.load(ctx)
	})
	_ = s.Wait(ctx)
	return s.Records()
}

// load resolves the active tab and fetches its cookies, committing the result
// only if the session is still open.
func (s *Session) load(ctx context.Context) {
	defer close(s.ready)

	target := s.resolver.Resolve(ctx)
	records := s.fetcher.Fetch(ctx, target.Hostname)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.log.Debug("session closed before load finished, discarding result",
			zap.Int("count", len(records)))
		return
	}

	s.target = target
	s.records = records
	s.memo = cookies.NewMemo(records)
	s.state = StateReady
	s.log.Debug("session ready",
		zap.String("host", target.Hostname),
		zap.Int("count", len(records)))
}

// Wait blocks until the load finishes or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the load finishes, whether or not it was committed.
func (s *Session) Done() <-chan struct{} {
	return s.ready
}

// Close tears the session down. A load still in flight will not commit.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Target returns the resolved tab. It is the zero value until Ready.
func (s *Session) Target() resolver.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// Records returns the full record list, nil until Ready.
func (s *Session) Records() []cookies.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Match is a filtered record with its position in the full list.
type Match struct {
	Index int
	cookies.Record
}

// View returns the records matching query on field, in source order.
// It returns nil while the session is loading.
func (s *Session) View(query string, field cookies.Field) []Match {
	s.mu.RLock()
	memo := s.memo
	records := s.records
	s.mu.RUnlock()

	if memo == nil {
		return nil
	}

	filtered := memo.Filter(query, field)
	out := make([]Match, 0, len(filtered))
	// filtered is an ordered subsequence of records, so one forward pass
	// recovers the source indexes.
	i := 0
	for _, r := range filtered {
		for i < len(records) && records[i] != r {
			i++
		}
		out = append(out, Match{Index: i, Record: r})
		i++
	}
	return out
}

// Find returns the index of the first record named name. A non-empty domain
// must also match exactly, ignoring a leading dot.
func (s *Session) Find(name, domain string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	domain = strings.TrimPrefix(domain, ".")
	for i, r := range s.records {
		if r.Name != name {
			continue
		}
		if domain != "" && !strings.EqualFold(strings.TrimPrefix(r.Domain, "."), domain) {
			continue
		}
		return i, true
	}
	return -1, false
}

// Copy writes one part of the record at index to the clipboard. Failures are
// logged and reported as false; only successful copies are marked as copied.
func (s *Session) Copy(ctx context.Context, index int, part Part) bool {
	s.mu.RLock()
	closed := s.closed
	var rec cookies.Record
	ok := index >= 0 && index < len(s.records)
	if ok {
		rec = s.records[index]
	}
	s.mu.RUnlock()

	if closed || !ok {
		return false
	}

	var text string
	switch part {
	case PartName:
		text = rec.Name
	case PartPair:
		text = rec.Pair()
	default:
		text = rec.Value
	}

	if err := s.clip.WriteText(ctx, text); err != nil {
		s.log.Warn("clipboard write failed",
			zap.String("cookie", rec.Name),
			zap.Stringer("part", part),
			zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.copied[CopyKey{Index: index, Part: part}] = true
	return true
}

// Copied reports whether the given part of a record has been copied.
func (s *Session) Copied(key CopyKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copied[key]
}

// ResetCopied clears a copied marker, e.g. once a confirmation has been shown.
func (s *Session) ResetCopied(key CopyKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.copied, key)
}
