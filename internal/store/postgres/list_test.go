package postgres

import (
	"reflect"
	"testing"

	"campusboard/internal/domain"
)

func TestBuildListQueryDefaults(t *testing.T) {
	q, args := buildListQuery(`SELECT id FROM users`, []string{"active"}, nil, userFilterColumns, "created_at", domain.ListParams{})

	want := `SELECT id FROM users WHERE active ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
	if !reflect.DeepEqual(args, []any{100, 0}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildListQueryFiltersAndSort(t *testing.T) {
	params := domain.ListParams{
		Filters: []domain.Filter{
			{Field: "role", Op: domain.FilterEq, Value: "student"},
			{Field: "createdAt", Op: domain.FilterGte, Value: "2026-01-01"},
			{Field: "nope", Op: domain.FilterEq, Value: "x"},
		},
		Sort: []domain.SortField{
			{Field: "name"},
			{Field: "createdAt", Desc: true},
		},
		Page:  3,
		Limit: 20,
	}

	q, args := buildListQuery(`SELECT id FROM users`, []string{"active"}, nil, userFilterColumns, "created_at", params)

	want := `SELECT id FROM users WHERE active AND role = $1 AND created_at >= $2::timestamptz ORDER BY name ASC, created_at DESC LIMIT $3 OFFSET $4`
	if q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
	if !reflect.DeepEqual(args, []any{"student", "2026-01-01", 20, 40}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildListQueryBaseArgs(t *testing.T) {
	params := domain.ListParams{
		Filters: []domain.Filter{{Field: "title", Op: domain.FilterEq, Value: "Orientation"}},
	}

	q, args := buildListQuery(`SELECT id FROM posts`, []string{"kind = $1"}, []any{"event"}, postFilterColumns, "created_at", params)

	want := `SELECT id FROM posts WHERE kind = $1 AND title = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	if q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
	if !reflect.DeepEqual(args, []any{"event", "Orientation", 100, 0}) {
		t.Fatalf("args = %v", args)
	}
}
