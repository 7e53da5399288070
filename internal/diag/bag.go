package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics for one file, up to an optional limit.
type Bag struct {
	items   []Diagnostic
	limit   int // 0 = без ограничения
	dropped int
}

// NewBag keeps at most limit diagnostics; limit <= 0 keeps everything.
func NewBag(limit int) *Bag {
	hint := limit
	if hint <= 0 || hint > 64 {
		hint = 64
	}
	return &Bag{items: make([]Diagnostic, 0, hint), limit: max(limit, 0)}
}

// Add stores d unless the limit is reached, in which case d is counted as
// dropped and Add returns false.
func (b *Bag) Add(d Diagnostic) bool {
	if b.limit > 0 && len(b.items) == b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped is the number of diagnostics refused by the limit.
func (b *Bag) Dropped() int { return b.dropped }

// AddDropped counts n diagnostics refused earlier, e.g. by a cached run.
func (b *Bag) AddDropped(n int) { b.dropped += max(n, 0) }

func (b *Bag) Len() int { return len(b.items) }

// Items shares the backing array; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

// Merge appends other's diagnostics under b's limit and carries over its
// dropped count.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		b.Add(d)
	}
	b.dropped += other.dropped
}

// Filter drops every diagnostic keep rejects.
func (b *Bag) Filter(keep func(*Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(&d) })
}

// Transform edits diagnostics in place.
func (b *Bag) Transform(fn func(*Diagnostic)) {
	for i := range b.items {
		fn(&b.items[i])
	}
}

// Sort orders by file, start, end, then severity (errors first), then code.
// Ties keep insertion order, so several awaits of one return stay in the
// order the rule found them.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			x.Primary.Compare(y.Primary),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}
