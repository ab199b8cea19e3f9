package enrichment

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

var (
	// ErrNoHistory is returned when reverting past the first term list.
	ErrNoHistory = errors.New("no earlier terms to revert to")
	// ErrUnknownCategory is returned by Filter for keys not in Categories.
	ErrUnknownCategory = errors.New("unknown term category")
)

// Browser holds the term lists of every subset the user has drilled into, the first
// one belonging to the full graph, along with the current category filter and search.
// It is safe for concurrent use.
type Browser struct {
	mu       sync.RWMutex
	history  [][]Term
	category string
	search   *regexp.Regexp
}

func NewBrowser() *Browser {
	return &Browser{}
}

// Push sorts terms by FDR and makes them the current list.
func (b *Browser) Push(terms []Term) {
	sorted := make([]Term, len(terms))
	copy(sorted, terms)
	SortByFDR(sorted)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, sorted)
}

// Revert drops the current list and goes back to the previous one, unfiltered.
func (b *Browser) Revert() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) < 2 {
		return ErrNoHistory
	}
	b.history = b.history[:len(b.history)-1]
	b.category = ""
	return nil
}

// Reset goes back to the first list, unfiltered.
func (b *Browser) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.category = ""
	if len(b.history) > 1 {
		b.history = b.history[:1]
	}
}

// Depth is the number of lists held.
func (b *Browser) Depth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.history)
}

// Filter restricts Terms to one category. ResetCategory or "" removes the filter.
func (b *Browser) Filter(category string) error {
	if category == "" {
		category = ResetCategory
	}
	if _, ok := LookupCategory(category); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if category == ResetCategory {
		b.category = ""
	} else {
		b.category = category
	}
	return nil
}

// Search restricts Terms to names matching pattern, ignoring case. An empty pattern
// removes the search.
func (b *Browser) Search(pattern string) error {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile("(?i)" + pattern)
		if err != nil {
			return fmt.Errorf("invalid search %q: %w", pattern, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = re
	return nil
}

// Category returns the active category filter, "" if there is none.
func (b *Browser) Category() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.category
}

// Terms returns the current list with the category filter and search applied.
func (b *Browser) Terms() []Term {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.history) == 0 {
		return []Term{}
	}

	current := b.history[len(b.history)-1]
	terms := make([]Term, 0, len(current))
	for _, t := range current {
		if b.category != "" && t.Category != b.category {
			continue
		}
		if b.search != nil && !b.search.MatchString(t.Name) {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

func (b *Browser) Count() int {
	return len(b.Terms())
}
