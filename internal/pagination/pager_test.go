package pagination

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockmarket/internal/market"
)

type fakeSource struct {
	stocks []*market.Stock
}

func (f *fakeSource) All() []*market.Stock { return f.stocks }

func (f *fakeSource) add(n int) {
	for i := 0; i < n; i++ {
		sym := fmt.Sprintf("S%02d", len(f.stocks))
		f.stocks = append(f.stocks, market.NewStock(sym, decimal.NewFromInt(10), 0, time.Time{}))
	}
}

func symbols(p Page) []string {
	out := make([]string, len(p.Slots))
	for i, s := range p.Slots {
		if s != nil {
			out[i] = s.Symbol
		}
	}
	return out
}

func TestPager_SevenStocksPageSizeFive(t *testing.T) {
	src := &fakeSource{}
	src.add(7)
	p := New(src, 5)

	first := p.Current()
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, []string{"S00", "S01", "S02", "S03", "S04"}, symbols(first))
	assert.Equal(t, 5, first.Len())

	second := p.Next()
	assert.Equal(t, 1, second.Index)
	require.Len(t, second.Slots, 5)
	assert.Equal(t, []string{"S05", "S06", "", "", ""}, symbols(second))
	assert.Nil(t, second.Slots[2])
	assert.Nil(t, second.Slots[3])
	assert.Nil(t, second.Slots[4])
	assert.Equal(t, 2, second.Len())
}

func TestPager_Wraparound(t *testing.T) {
	src := &fakeSource{}
	src.add(7)
	p := New(src, 5)

	assert.Equal(t, 1, p.Previous().Index, "previous from page 0 wraps to the last page")
	assert.Equal(t, 0, p.Next().Index, "next from the last page wraps to page 0")
	assert.Equal(t, 1, p.Next().Index)
	assert.Equal(t, 0, p.Next().Index)
}

func TestPager_EmptySource(t *testing.T) {
	p := New(&fakeSource{}, 3)

	for _, page := range []Page{p.Current(), p.Next(), p.Previous()} {
		assert.Equal(t, 0, page.Index)
		assert.Equal(t, 1, page.Count)
		assert.Equal(t, []*market.Stock{nil, nil, nil}, page.Slots)
	}
}

func TestPager_ExactMultiple(t *testing.T) {
	src := &fakeSource{}
	src.add(10)
	p := New(src, 5)

	assert.Equal(t, 2, p.Current().Count)
	last := p.Previous()
	assert.Equal(t, 1, last.Index)
	assert.Equal(t, 5, last.Len())
}

func TestPager_SourceGrows(t *testing.T) {
	src := &fakeSource{}
	src.add(4)
	p := New(src, 5)

	assert.Equal(t, 0, p.Next().Index)

	src.add(3)
	page := p.Next()
	assert.Equal(t, 1, page.Index)
	assert.Equal(t, 2, page.Count)
	assert.Equal(t, []string{"S05", "S06", "", "", ""}, symbols(page))
}

func TestPager_Seek(t *testing.T) {
	src := &fakeSource{}
	src.add(12)
	p := New(src, 5)

	assert.Equal(t, 2, p.Seek(2).Index)
	assert.Equal(t, 0, p.Seek(3).Index)
	assert.Equal(t, 2, p.Seek(-1).Index)
	assert.Equal(t, []string{"S10", "S11", "", "", ""}, symbols(p.Current()))
}

func TestNew_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, New(&fakeSource{}, 0).Size())
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{7, 5, 2},
		{11, 5, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.n, tt.size), "PageCount(%d, %d)", tt.n, tt.size)
	}
}
