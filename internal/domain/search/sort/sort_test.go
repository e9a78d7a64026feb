package sort

import "testing"

func TestNew_Defaults(t *testing.T) {
	s, err := New("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ByField() != CreatedAt {
		t.Errorf("ByField() = %q", s.ByField())
	}
	if !s.Descending() {
		t.Error("default order must be descending")
	}
}

func TestNew_InvalidField(t *testing.T) {
	if _, err := New("score", ""); err == nil {
		t.Fatal("expected error for unsupported field")
	}
}

func TestNew_InvalidOrder(t *testing.T) {
	if _, err := New(Title, "sideways"); err == nil {
		t.Fatal("expected error for unsupported order")
	}
}

func TestNew_Explicit(t *testing.T) {
	s, err := New(UpdatedAt, Asc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ByField() != UpdatedAt || s.Descending() {
		t.Errorf("Sort = %v %v", s.ByField(), s.Direction())
	}
}

func TestRecency(t *testing.T) {
	s := Recency()
	if s.ByField() != CreatedAt || !s.Descending() {
		t.Errorf("Recency() = %v %v", s.ByField(), s.Direction())
	}
}
