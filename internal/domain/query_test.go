package domain_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/domain"
)

func TestParseListQuery(t *testing.T) {
	v := url.Values{
		"select":       {"name, description"},
		"sort":         {"-cost,name"},
		"page":         {"2"},
		"limit":        {"500"},
		"cost[lte]":    {"100"},
		"roomType[in]": {"Single, Double"},
		"available":    {"true"},
	}
	q := domain.ParseListQuery(v)

	assert.Equal(t, []string{"name", "description"}, q.Select)
	assert.Equal(t, []domain.SortKey{{Field: "cost", Desc: true}, {Field: "name"}}, q.Sort)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, domain.MaxLimit, q.Limit)
	require.Len(t, q.Filters, 3)
	assert.Equal(t, domain.Filter{Field: "available", Op: domain.OpEq, Values: []string{"true"}}, q.Filters[0])
	assert.Equal(t, domain.Filter{Field: "cost", Op: domain.OpLte, Values: []string{"100"}}, q.Filters[1])
	assert.Equal(t, domain.Filter{Field: "roomType", Op: domain.OpIn, Values: []string{"Single", "Double"}}, q.Filters[2])
}

func TestParseListQuery_Defaults(t *testing.T) {
	q := domain.ParseListQuery(url.Values{"page": {"-3"}, "limit": {"abc"}})
	assert.Equal(t, domain.DefaultPage, q.Page)
	assert.Equal(t, domain.DefaultLimit, q.Limit)
	assert.Empty(t, q.Filters)
	assert.Equal(t, 0, q.Offset())
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		name       string
		page, lim  int
		total      int
		next, prev *domain.PageRef
	}{
		{"single page", 1, 25, 10, nil, nil},
		{"first of many", 1, 10, 25, &domain.PageRef{Page: 2, Limit: 10}, nil},
		{"middle", 2, 10, 25, &domain.PageRef{Page: 3, Limit: 10}, &domain.PageRef{Page: 1, Limit: 10}},
		{"exact last", 3, 10, 30, nil, &domain.PageRef{Page: 2, Limit: 10}},
		{"past the end", 5, 10, 30, nil, &domain.PageRef{Page: 4, Limit: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := domain.Paginate(domain.ListQuery{Page: tc.page, Limit: tc.lim}, tc.total)
			assert.Equal(t, tc.next, p.Next)
			assert.Equal(t, tc.prev, p.Prev)
		})
	}
}
