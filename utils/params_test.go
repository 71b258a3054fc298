package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParseQueryOptionsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/orders", nil)
	opts := ParseQueryOptions(r)
	if opts.Page != 1 || opts.Limit != 10 {
		t.Fatalf("defaults = page %d limit %d", opts.Page, opts.Limit)
	}

	r = httptest.NewRequest("GET", "/api/orders?page=-3&limit=0", nil)
	opts = ParseQueryOptions(r)
	if opts.Page != 1 || opts.Limit != 10 {
		t.Fatalf("bad inputs not clamped: page %d limit %d", opts.Page, opts.Limit)
	}

	r = httptest.NewRequest("GET", "/api/orders?page=4&limit=25&status=active", nil)
	opts = ParseQueryOptions(r)
	if opts.Page != 4 || opts.Limit != 25 || opts.Status != "active" {
		t.Fatalf("parsed = %+v", opts)
	}
}

func TestPaginate(t *testing.T) {
	p := Paginate(45, 2, 10)
	if p.TotalPages != 5 || !p.HasNext || !p.HasPrev {
		t.Fatalf("mid page: %+v", p)
	}

	p = Paginate(45, 5, 10)
	if p.HasNext || !p.HasPrev {
		t.Fatalf("last page: %+v", p)
	}

	p = Paginate(0, 1, 10)
	if p.TotalPages != 1 || p.HasNext || p.HasPrev {
		t.Fatalf("empty set: %+v", p)
	}
}
