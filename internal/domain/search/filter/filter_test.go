package filter

import (
	"testing"
	"time"

	"github.com/keepson/keepson/internal/domain/record"
)

func TestNew_RequiresOwner(t *testing.T) {
	_, err := New("")
	if err == nil {
		t.Fatal("expected error for empty owner")
	}
}

func TestNew_OwnerScoped(t *testing.T) {
	f, err := New("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Owner() != "user-1" {
		t.Errorf("Owner() = %q", f.Owner())
	}
}

func TestWithPatterns(t *testing.T) {
	f, _ := New("user-1")

	f, err := f.WithPatterns([]string{"alpha", "beta"}, NaturalFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Patterns()) != 2 {
		t.Errorf("Patterns() = %v", f.Patterns())
	}
	if len(f.Fields()) != 4 {
		t.Errorf("Fields() = %v", f.Fields())
	}
}

func TestWithPatterns_TooMany(t *testing.T) {
	f, _ := New("user-1")

	patterns := make([]string, MaxPatterns+1)
	for i := range patterns {
		patterns[i] = "p"
	}

	if _, err := f.WithPatterns(patterns, NaturalFields()); err == nil {
		t.Fatal("expected error for too many patterns")
	}
}

func TestWith_Composition(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)

	f, _ := New("user-1")
	f = f.WithTypes([]record.Type{record.Note}).
		WithCreatedRange(&from, &to).
		WithTagsAll([]string{"work"})

	if len(f.Types()) != 1 || f.Types()[0] != record.Note {
		t.Errorf("Types() = %v", f.Types())
	}
	if f.CreatedFrom() == nil || !f.CreatedFrom().Equal(from) {
		t.Errorf("CreatedFrom() = %v", f.CreatedFrom())
	}
	if f.CreatedTo() == nil || !f.CreatedTo().Equal(to) {
		t.Errorf("CreatedTo() = %v", f.CreatedTo())
	}
	if len(f.TagsAll()) != 1 || f.TagsAll()[0] != "work" {
		t.Errorf("TagsAll() = %v", f.TagsAll())
	}
}

func TestWith_CopiesNotMutates(t *testing.T) {
	base, _ := New("user-1")
	derived := base.WithTypes([]record.Type{record.Image})

	if len(base.Types()) != 0 {
		t.Error("WithTypes mutated the base filter")
	}
	if len(derived.Types()) != 1 {
		t.Error("WithTypes lost the type restriction")
	}
}

func TestFieldSets(t *testing.T) {
	natural := NaturalFields()
	if len(natural) != 4 {
		t.Errorf("NaturalFields() = %v", natural)
	}

	keyword := KeywordFields()
	for _, f := range keyword {
		if f == FieldTags {
			t.Error("KeywordFields must not include tags")
		}
	}
}
