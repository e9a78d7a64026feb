package search

import (
	"context"
	"errors"
	"testing"
	"time"

	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/request"
)

func advancedReq(t *testing.T, keywords []string, page, limit int) *request.Advanced {
	t.Helper()
	r, err := request.NewAdvanced(keywords, nil, nil, nil, nil, page, limit, "", "")
	if err != nil {
		t.Fatalf("NewAdvanced: %v", err)
	}
	return &r
}

func TestResolveAdvanced_FirstPage(t *testing.T) {
	page1 := make([]domrec.Record, 20)
	for i := range page1 {
		page1[i] = note("r")
	}
	recs := &mockRecords{findResults: [][]domrec.Record{page1}, countResult: 45}
	svc := New(recs, &mockOracle{})

	res, err := svc.ResolveAdvanced(context.Background(), "u1", advancedReq(t, nil, 1, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := res.Page()
	if p.CurrentPage() != 1 || p.TotalPages() != 3 || p.TotalRecords() != 45 {
		t.Errorf("page = %d/%d of %d", p.CurrentPage(), p.TotalPages(), p.TotalRecords())
	}
	if !p.HasNext() || p.HasPrevious() {
		t.Errorf("hasNext = %v hasPrevious = %v", p.HasNext(), p.HasPrevious())
	}
	if recs.lastSkip != 0 || recs.lastLimit != 20 {
		t.Errorf("skip/limit = %d/%d", recs.lastSkip, recs.lastLimit)
	}
	if recs.countCalls != 1 {
		t.Errorf("count calls = %d", recs.countCalls)
	}
}

func TestResolveAdvanced_LastPage(t *testing.T) {
	recs := &mockRecords{
		findResults: [][]domrec.Record{{note("a"), note("b"), note("c"), note("d"), note("e")}},
		countResult: 45,
	}
	svc := New(recs, &mockOracle{})

	res, err := svc.ResolveAdvanced(context.Background(), "u1", advancedReq(t, nil, 3, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := res.Page()
	if p.HasNext() {
		t.Error("page 3 of 45/20 has no next page")
	}
	if !p.HasPrevious() {
		t.Error("page 3 has a previous page")
	}
	if recs.lastSkip != 40 {
		t.Errorf("skip = %d, want 40", recs.lastSkip)
	}
}

func TestResolveAdvanced_Empty(t *testing.T) {
	recs := &mockRecords{}
	svc := New(recs, &mockOracle{})

	res, err := svc.ResolveAdvanced(context.Background(), "u1", advancedReq(t, nil, 1, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := res.Page()
	if p.TotalPages() != 0 || p.TotalRecords() != 0 || p.HasNext() || p.HasPrevious() {
		t.Errorf("page = %+v, want empty", p)
	}
	if len(res.Records()) != 0 {
		t.Errorf("records = %d", len(res.Records()))
	}
}

func TestResolveAdvanced_FilterMapping(t *testing.T) {
	recs := &mockRecords{}
	svc := New(recs, &mockOracle{})

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	req, err := request.NewAdvanced(
		[]string{"a.b", "trip"}, []string{"image"}, &from, &to,
		[]string{"travel"}, 1, 20, "createdAt", "asc",
	)
	if err != nil {
		t.Fatalf("NewAdvanced: %v", err)
	}

	if _, err := svc.ResolveAdvanced(context.Background(), "u1", &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := recs.seenFilters[0]
	if !sameStrings(f.Patterns(), []string{`a\.b`, "trip"}) {
		t.Errorf("patterns = %v, want keywords quoted", f.Patterns())
	}
	if len(f.Fields()) != 3 {
		t.Errorf("fields = %v, want the three text fields", f.Fields())
	}
	if len(f.Types()) != 1 || f.Types()[0] != domrec.Image {
		t.Errorf("types = %v", f.Types())
	}
	if f.CreatedFrom() == nil || !f.CreatedFrom().Equal(from) {
		t.Errorf("from = %v", f.CreatedFrom())
	}
	if !sameStrings(f.TagsAll(), []string{"travel"}) {
		t.Errorf("tags = %v", f.TagsAll())
	}
	if recs.lastSort.Descending() {
		t.Error("sort must be ascending")
	}
}

func TestResolveAdvanced_CountError(t *testing.T) {
	recs := &mockRecords{countErr: errors.New("connection reset")}
	svc := New(recs, &mockOracle{})

	_, err := svc.ResolveAdvanced(context.Background(), "u1", advancedReq(t, nil, 1, 20))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveAdvanced_FindError(t *testing.T) {
	recs := &mockRecords{findErr: errors.New("connection reset")}
	svc := New(recs, &mockOracle{})

	_, err := svc.ResolveAdvanced(context.Background(), "u1", advancedReq(t, []string{"x"}, 1, 20))
	if err == nil {
		t.Fatal("expected error")
	}
}
