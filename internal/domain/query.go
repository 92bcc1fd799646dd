package domain

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

type Filter struct {
	Field  string
	Op     Op
	Values []string
}

type SortKey struct {
	Field string
	Desc  bool
}

// ListQuery is the parsed form of the advanced-results query string.
type ListQuery struct {
	Select  []string
	Sort    []SortKey
	Filters []Filter
	Page    int
	Limit   int
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

type Page[T any] struct {
	Items []T
	Total int
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Paginate derives the next/prev links for a page of total rows.
func Paginate(q ListQuery, total int) Pagination {
	var p Pagination
	if q.Page*q.Limit < total {
		p.Next = &PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Offset() > 0 {
		p.Prev = &PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

var (
	reserved = map[string]bool{"select": true, "sort": true, "page": true, "limit": true}
	opKey    = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_.]*)\[(gt|gte|lt|lte|in)\]$`)
)

// ParseListQuery reads select/sort/page/limit and field filters such as
// cost[lte]=100 or roomType[in]=Single,Double from a query string.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{Page: DefaultPage, Limit: DefaultLimit}
	if s := v.Get("select"); s != "" {
		q.Select = splitList(s)
	}
	if s := v.Get("sort"); s != "" {
		for _, f := range splitList(s) {
			if strings.HasPrefix(f, "-") {
				q.Sort = append(q.Sort, SortKey{Field: f[1:], Desc: true})
			} else {
				q.Sort = append(q.Sort, SortKey{Field: f})
			}
		}
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		q.Limit = min(n, MaxLimit)
	}

	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if reserved[k] {
			continue
		}
		val := v.Get(k)
		if m := opKey.FindStringSubmatch(k); m != nil {
			op := Op(m[2])
			vals := []string{val}
			if op == OpIn {
				vals = splitList(val)
			}
			q.Filters = append(q.Filters, Filter{Field: m[1], Op: op, Values: vals})
			continue
		}
		q.Filters = append(q.Filters, Filter{Field: k, Op: OpEq, Values: []string{val}})
	}
	return q
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
