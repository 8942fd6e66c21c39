package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"aspen/shared/constant"
	"aspen/shared/dto"
	"aspen/shared/model"
	"aspen/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_FromModel(t *testing.T) {
	timezone.Load("UTC")

	createdAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	metadata := dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: createdAt.Add(time.Hour),
		CreatedBy:  "frontdesk@aspen.test",
		ModifiedBy: "system",
	})

	assert.Equal(t, dto.Metadata{
		CreatedAt:  "2024-03-01T09:30:00Z",
		ModifiedAt: "2024-03-01T10:30:00Z",
		CreatedBy:  "frontdesk@aspen.test",
		ModifiedBy: "system",
	}, metadata)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		withDefaults bool
		expected     dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=name&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: dto.SortDirAsc},
		},
		{
			name:         "defaults when empty",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "no defaults when empty",
		},
		{
			name:         "garbage page and limit fall back",
			query:        "page=abc&limit=-10",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:         "zero page falls back",
			query:        "page=0",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "limit is capped",
			query:    "limit=5000",
			expected: dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:     "unknown sort direction ignored",
			query:    "sort_by=email&sort_dir=sideways",
			expected: dto.QueryParams{SortBy: "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/guests?"+tt.query, nil)

			params := dto.QueryParams{}
			params.FromRequest(req, tt.withDefaults)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_RestrictSort(t *testing.T) {
	tests := []struct {
		name        string
		params      dto.QueryParams
		expectedBy  string
		expectedDir string
	}{
		{
			name:        "allowed column is qualified",
			params:      dto.QueryParams{SortBy: "check_in_date", SortDir: dto.SortDirDesc},
			expectedBy:  "bookings.check_in_date",
			expectedDir: dto.SortDirDesc,
		},
		{
			name:        "allowed column without direction defaults to ascending",
			params:      dto.QueryParams{SortBy: "created_at"},
			expectedBy:  "bookings.created_at",
			expectedDir: dto.SortDirAsc,
		},
		{
			name:        "unknown column falls back to newest first",
			params:      dto.QueryParams{SortBy: "id; DROP TABLE bookings", SortDir: dto.SortDirAsc},
			expectedBy:  "bookings.created_at",
			expectedDir: dto.SortDirDesc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.params
			params.RestrictSort("bookings", "check_in_date", "created_at")

			assert.Equal(t, tt.expectedBy, params.SortBy)
			assert.Equal(t, tt.expectedDir, params.SortDir)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, dto.QueryParams{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 3}.Offset())
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equality",
			filter:    dto.Filter{Table: "bookings", Field: "status", Operator: dto.FilterOperatorEq, Value: "booked"},
			wantWhere: "bookings.status = :status",
			wantArgs:  map[string]any{"status": "booked"},
		},
		{
			name:      "like escapes wildcards",
			filter:    dto.Filter{Table: "guests", Field: "name", ArgName: "q", Operator: dto.FilterOperatorLike, Value: "50%_off"},
			wantWhere: "guests.name ILIKE :q",
			wantArgs:  map[string]any{"q": `%50\%\_off%`},
		},
		{
			name:      "in expands slices",
			filter:    dto.Filter{Field: "booking_id", Operator: dto.FilterOperatorIn, Value: []string{"A", "B"}},
			wantWhere: "booking_id IN (:booking_id_0, :booking_id_1)",
			wantArgs:  map[string]any{"booking_id_0": "A", "booking_id_1": "B"},
		},
		{
			name:      "in with empty slice matches nothing",
			filter:    dto.Filter{Field: "booking_id", Operator: dto.FilterOperatorIn, Value: []string{}},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "in with a scalar is equality",
			filter:    dto.Filter{Field: "room_id", Operator: dto.FilterOperatorIn, Value: "r-1"},
			wantWhere: "room_id = :room_id",
			wantArgs:  map[string]any{"room_id": "r-1"},
		},
		{
			name:      "unknown operator renders nothing",
			filter:    dto.Filter{Field: "id", Operator: "raw", Value: "1=1"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_AddIfPresent(t *testing.T) {
	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}

	group.AddIfPresent("bookings", "status", dto.FilterOperatorEq, "booked")
	group.AddIfPresent("bookings", "guest_id", dto.FilterOperatorEq, "")
	group.AddIfPresent("bookings", "check_in_date", dto.FilterOperatorGreaterEq, "2024-03-01")
	group.AddIfPresent("bookings", "check_in_date", dto.FilterOperatorLessEq, "2024-03-31")

	require.Len(t, group.Filters, 3)

	where, args := group.GetWhereClause()
	assert.Len(t, args, 3)
	assert.Equal(t,
		"(bookings.status = :status_eq_0 AND bookings.check_in_date >= :check_in_date_greater_eq_1 AND bookings.check_in_date <= :check_in_date_less_eq_2)",
		where,
	)
}

func TestFilterGroup_NestedAndEmpty(t *testing.T) {
	inner := dto.FilterGroup{Operator: dto.FilterGroupOperatorOr}
	inner.Add("rooms", "status", dto.FilterOperatorEq, "available")
	inner.Add("rooms", "status", dto.FilterOperatorEq, "cleaning")

	outer := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}, inner},
	}

	where, args := outer.GetWhereClause()
	assert.Equal(t, "((rooms.status = :status_eq_0 OR rooms.status = :status_eq_1))", where)
	assert.Len(t, args, 2)

	empty := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}
	where, args = empty.GetWhereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)
}
