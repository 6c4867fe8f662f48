package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantPaginator() *Paginator {
	p := NewPaginator()
	p.WaitMin, p.WaitMax = 0, 0
	return p
}

func TestAdvance_ClicksFirstUsableInPriorityOrder(t *testing.T) {
	disabled := &fakeElement{attrs: map[string]string{"disabled": ""}}
	ariaDisabled := &fakeElement{attrs: map[string]string{"aria-disabled": "true"}}
	hidden := &fakeElement{attrs: map[string]string{}, hidden: true}
	classNext := &fakeElement{attrs: map[string]string{"class": "btn next"}}
	relNext := &fakeElement{attrs: map[string]string{"rel": "next"}}

	page := &fakePage{elements: map[string][]Element{
		`[aria-label="Next"]`:      {disabled, ariaDisabled},
		`[aria-label="Next Page"]`: {hidden},
		`a.next`:                   {classNext},
		`[rel="next"]`:             {relNext},
	}}

	more, err := instantPaginator().Advance(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 1, classNext.clicked)
	assert.Zero(t, relNext.clicked)
	assert.Zero(t, disabled.clicked+ariaDisabled.clicked+hidden.clicked)
	assert.Zero(t, page.scrolls)
}

func TestAdvance_DisabledClassIsSkipped(t *testing.T) {
	el := &fakeElement{attrs: map[string]string{"class": "pagination-next disabled"}}
	page := &fakePage{
		elements: map[string][]Element{`a.pagination-next`: {el}},
		heights:  []int{1000, 1000},
	}

	more, err := instantPaginator().Advance(context.Background(), page)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Zero(t, el.clicked)
	assert.Equal(t, 1, page.scrolls)
}

func TestAdvance_TextFinder(t *testing.T) {
	arrow := &fakeElement{attrs: map[string]string{}}
	page := &fakePage{elements: map[string][]Element{`a:text-is(">")`: {arrow}}}

	more, err := instantPaginator().Advance(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 1, arrow.clicked)
}

func TestAdvance_InfiniteScroll(t *testing.T) {
	tests := []struct {
		name    string
		heights []int
		want    bool
	}{
		{name: "page grew", heights: []int{1000, 1800}, want: true},
		{name: "page stable", heights: []int{1000, 1000}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &fakePage{heights: tt.heights}
			more, err := instantPaginator().Advance(context.Background(), page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, more)
			assert.Equal(t, 1, page.scrolls)
		})
	}
}

func TestAdvance_CancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPaginator()
	more, err := p.Advance(ctx, &fakePage{heights: []int{1, 2}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, more)
}
