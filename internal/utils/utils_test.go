package utils

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

type row struct {
	ID       string  `db:"id"`
	Name     *string `db:"name"`
	Skipped  string  `db:"-"`
	Untagged string
	hidden   string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	got := StructTagValues(&row{})
	want := []string{"id", "name"}
	if !slices.Equal(got, want) {
		t.Fatalf("StructTagValues() = %v, want %v", got, want)
	}

	if !slices.Equal(StructTagValues(row{}), want) {
		t.Fatal("value and pointer inputs should agree")
	}
}

func TestStructToMap(t *testing.T) {
	r := row{ID: "abc", Name: StringPtr("n"), Skipped: "x", Untagged: "y", hidden: "z"}

	m := StructToMap(&r)
	if len(m) != 2 {
		t.Fatalf("StructToMap() = %v, want two columns", m)
	}
	if m["id"] != "abc" {
		t.Fatalf("id = %v", m["id"])
	}
	if PtrString(m["name"].(*string)) != "n" {
		t.Fatalf("name = %v", m["name"])
	}
}

func TestStructTagValuesPanicsOnNonStruct(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a non-struct input")
		}
	}()
	StructTagValues(42)
}

func TestErrorWrapOrNil(t *testing.T) {
	if ErrorWrapOrNil(nil, "msg") != nil {
		t.Fatal("nil error should stay nil")
	}

	base := errors.New("boom")
	if ErrorWrapOrNil(base, "") != base {
		t.Fatal("empty message should return the error unchanged")
	}

	err := ErrorWrapOrNil(base, "failed to create case")
	if !errors.Is(err, base) || err.Error() != "failed to create case: boom" {
		t.Fatalf("err = %v", err)
	}
}

func TestNanoID(t *testing.T) {
	code, err := NanoID("", 12)
	if err != nil {
		t.Fatalf("NanoID() error = %v", err)
	}
	if len(code) != 12 {
		t.Fatalf("len = %d, want 12", len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			t.Fatalf("code %q has symbol %q outside the alphabet", code, r)
		}
	}
}
