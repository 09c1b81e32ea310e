package cookies

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// Filter returns the records matching query on the selected field, in input order.
// An empty query returns every record. The input slice is never modified.
func Filter(records []Record, query string, field Field) []Record {
	out := make([]Record, 0, len(records))
	if query == "" {
		return append(out, records...)
	}

	q := strings.ToLower(query)
	for _, r := range records {
		if matches(r, q, field) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record satisfies query on field.
func Matches(r Record, query string, field Field) bool {
	if query == "" {
		return true
	}
	return matches(r, strings.ToLower(query), field)
}

// matches expects q to be lowercased already.
func matches(r Record, q string, field Field) bool {
	switch field {
	case FieldName:
		return containsFold(r.Name, q)
	case FieldValue:
		return containsFold(r.Value, q)
	default:
		return containsFold(r.Name, q) || containsFold(r.Value, q) || containsFold(r.Domain, q)
	}
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// Segment is a run of text that either matched the query or did not.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text into alternating unmatched/matched segments for display.
// Matching is literal and case-insensitive; the returned segments concatenate
// back to text exactly.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if query == "" {
		return []Segment{{Text: text}}
	}

	var segments []Segment
	q := []rune(strings.ToLower(query))
	start := 0 // byte offset of the pending unmatched run
	i := 0
	for i < len(text) {
		if n := matchAt(text, i, q); n > 0 {
			if start < i {
				segments = append(segments, Segment{Text: text[start:i]})
			}
			segments = append(segments, Segment{Text: text[i : i+n], Match: true})
			i += n
			start = i
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	if start < len(text) {
		segments = append(segments, Segment{Text: text[start:]})
	}
	return segments
}

// matchAt returns the byte length of the match of q at text[i:], or 0.
// Comparison is rune-by-rune on lowercased runes so byte offsets stay valid
// even when case mapping changes the encoded width.
func matchAt(text string, i int, q []rune) int {
	j := i
	for _, want := range q {
		if j >= len(text) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(text[j:])
		if lowerRune(r) != want {
			return 0
		}
		j += size
	}
	return j - i
}

func lowerRune(r rune) rune {
	lower := []rune(strings.ToLower(string(r)))
	if len(lower) != 1 {
		return r
	}
	return lower[0]
}

type memoKey struct {
	query string
	field Field
}

// Memo caches the most recent Filter result for a fixed record list.
// Safe for concurrent use.
type Memo struct {
	records []Record

	mu     sync.Mutex
	key    memoKey
	result []Record
	valid  bool
	misses int
}

// NewMemo creates a Memo over records. The slice must not be modified afterwards.
func NewMemo(records []Record) *Memo {
	return &Memo{records: records}
}

// Filter returns Filter(records, query, field), reusing the last result when the
// inputs are unchanged.
func (m *Memo) Filter(query string, field Field) []Record {
	key := memoKey{query: query, field: field}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.key == key {
		return m.result
	}
	m.result = Filter(m.records, query, field)
	m.key = key
	m.valid = true
	m.misses++
	return m.result
}

// Misses returns how many times the memo had to recompute.
func (m *Memo) Misses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misses
}
