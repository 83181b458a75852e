package market

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// HistoricalRecord is the opening price of one past trading day.
// Records are values and never modified once appended.
type HistoricalRecord struct {
	Date time.Time       `json:"date"`
	Open decimal.Decimal `json:"open"`
}

// Ledger is the append-only history of one stock, ordered by date ascending.
// Queries walk it newest-first through binary search, so lookups stay
// O(log n) however long the simulation runs.
type Ledger struct {
	records []HistoricalRecord
}

// NewLedger builds a ledger from records in any order.
func NewLedger(records ...HistoricalRecord) (*Ledger, error) {
	l := &Ledger{records: make([]HistoricalRecord, 0, len(records))}
	for _, r := range records {
		if err := l.Append(r); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Append adds a record, normalised to day granularity. Appending a date that
// is already present fails with *DuplicateDateError.
func (l *Ledger) Append(r HistoricalRecord) error {
	r.Date = Day(r.Date)

	n := len(l.records)
	// Fast path: the engine always appends the newest day.
	if n == 0 || l.records[n-1].Date.Before(r.Date) {
		l.records = append(l.records, r)
		return nil
	}

	i := sort.Search(n, func(i int) bool {
		return !l.records[i].Date.Before(r.Date)
	})
	if l.records[i].Date.Equal(r.Date) {
		return &DuplicateDateError{Date: r.Date}
	}

	l.records = append(l.records, HistoricalRecord{})
	copy(l.records[i+1:], l.records[i:])
	l.records[i] = r
	return nil
}

// FindAnchor returns the most recent record that is at least minDaysAgo whole
// days older than current. ok is false when the history is younger than the
// window.
func (l *Ledger) FindAnchor(current time.Time, minDaysAgo int) (HistoricalRecord, bool) {
	i := l.anchorIndex(current, minDaysAgo)
	if i < 0 {
		return HistoricalRecord{}, false
	}
	return l.records[i], true
}

// anchorIndex is the index of the newest record with Date <= day(current) - minDaysAgo, or -1.
func (l *Ledger) anchorIndex(current time.Time, minDaysAgo int) int {
	cutoff := Day(current).AddDate(0, 0, -minDaysAgo)
	i := sort.Search(len(l.records), func(i int) bool {
		return l.records[i].Date.After(cutoff)
	})
	return i - 1
}

// Prune drops records that can no longer anchor a window of keepDays. The
// newest record at least keepDays old is kept, so FindAnchor(current, w)
// answers the same for every w <= keepDays. Returns the number dropped.
func (l *Ledger) Prune(current time.Time, keepDays int) int {
	i := l.anchorIndex(current, keepDays)
	if i <= 0 {
		return 0
	}

	kept := make([]HistoricalRecord, len(l.records)-i)
	copy(kept, l.records[i:])
	l.records = kept
	return i
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Last returns the newest record.
func (l *Ledger) Last() (HistoricalRecord, bool) {
	if len(l.records) == 0 {
		return HistoricalRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

// Records returns a copy of all records, oldest first.
func (l *Ledger) Records() []HistoricalRecord {
	out := make([]HistoricalRecord, len(l.records))
	copy(out, l.records)
	return out
}
