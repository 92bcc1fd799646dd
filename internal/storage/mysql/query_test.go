package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/domain"
)

func TestBuildWhere(t *testing.T) {
	where, args, err := buildWhere(roomColumns, []domain.Filter{
		{Field: "cost", Op: domain.OpLte, Values: []string{"100"}},
		{Field: "roomType", Op: domain.OpIn, Values: []string{"Single", "Double"}},
		{Field: "available", Op: domain.OpEq, Values: []string{"true"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		" WHERE r.cost <= ? AND (JSON_CONTAINS(r.room_type, JSON_QUOTE(?)) OR JSON_CONTAINS(r.room_type, JSON_QUOTE(?))) AND r.available = ?",
		where)
	assert.Equal(t, []any{100.0, "Single", "Double", true}, args)
}

func TestBuildWhere_In(t *testing.T) {
	where, args, err := buildWhere(hotelColumns, []domain.Filter{
		{Field: "averageCost", Op: domain.OpIn, Values: []string{"100", "200"}},
	})
	require.NoError(t, err)
	assert.Equal(t, " WHERE h.average_cost IN (?,?)", where)
	assert.Equal(t, []any{100.0, 200.0}, args)
}

func TestBuildWhere_SkipsUnknownFields(t *testing.T) {
	where, args, err := buildWhere(hotelColumns, []domain.Filter{
		{Field: "_", Op: domain.OpEq, Values: []string{"1700000000"}},
		{Field: "password", Op: domain.OpEq, Values: []string{"x"}},
	})
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args, err = buildWhere(hotelColumns, []domain.Filter{
		{Field: "_", Op: domain.OpEq, Values: []string{"1"}},
		{Field: "averageCost", Op: domain.OpGte, Values: []string{"100"}},
	})
	require.NoError(t, err)
	assert.Equal(t, " WHERE h.average_cost >= ?", where)
	assert.Equal(t, []any{100.0}, args)
}

func TestBuildWhere_Rejects(t *testing.T) {
	_, _, err := buildWhere(roomColumns, []domain.Filter{{Field: "cost", Op: domain.OpGt, Values: []string{"cheap"}}})
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestBuildOrder(t *testing.T) {
	o, err := buildOrder(hotelColumns, nil)
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY h.created_at DESC, h.id ASC", o)

	o, err = buildOrder(roomColumns, []domain.SortKey{{Field: "cost", Desc: true}, {Field: "title"}})
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY r.cost DESC, r.title ASC, r.id ASC", o)

	_, err = buildOrder(reviewColumns, []domain.SortKey{{Field: "nope"}})
	assert.Error(t, err)
}
