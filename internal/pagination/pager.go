// Package pagination windows the registry's ordered stocks into fixed-size
// display pages.
package pagination

import (
	"sync"

	"github.com/wonny/stockmarket/internal/market"
)

// DefaultPageSize is the number of display slots per page
const DefaultPageSize = 5

// Source is anything that lists stocks in a stable order
type Source interface {
	All() []*market.Stock
}

// Page is one window of stocks. Slots always has the pager's size; a nil
// entry is an empty slot past the last stock.
type Page struct {
	Index int             `json:"index"`
	Count int             `json:"count"`
	Slots []*market.Stock `json:"-"`
}

// Len returns the number of occupied slots
func (p Page) Len() int {
	n := 0
	for _, s := range p.Slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Pager holds a cursor over a Source.
//
// Boundary policy is wraparound: Next on the last page returns page 0 and
// Previous on page 0 returns the last page. The source is read on every
// call, so stocks added later show up without resetting the cursor.
type Pager struct {
	mu     sync.Mutex
	source Source
	size   int
	cursor int
}

// New creates a pager on page 0. A size below 1 falls back to DefaultPageSize.
func New(source Source, size int) *Pager {
	if size < 1 {
		size = DefaultPageSize
	}
	return &Pager{source: source, size: size}
}

// Size returns the number of slots per page
func (p *Pager) Size() int { return p.size }

// Current returns the page under the cursor
func (p *Pager) Current() Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page(p.source.All(), 0)
}

// Next moves the cursor forward one page and returns it
func (p *Pager) Next() Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page(p.source.All(), 1)
}

// Previous moves the cursor back one page and returns it
func (p *Pager) Previous() Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page(p.source.All(), -1)
}

// Seek moves the cursor to index, wrapped into range, and returns the page
func (p *Pager) Seek(index int) Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = index
	return p.page(p.source.All(), 0)
}

// page moves the cursor by delta pages and slices stocks at the result.
func (p *Pager) page(stocks []*market.Stock, delta int) Page {
	count := PageCount(len(stocks), p.size)
	p.cursor = wrap(p.cursor+delta, count)

	slots := make([]*market.Stock, p.size)
	from := p.cursor * p.size
	for i := 0; i < p.size && from+i < len(stocks); i++ {
		slots[i] = stocks[from+i]
	}

	return Page{Index: p.cursor, Count: count, Slots: slots}
}

// PageCount is the number of pages n stocks fill. An empty source still has
// one (empty) page.
func PageCount(n, size int) int {
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
