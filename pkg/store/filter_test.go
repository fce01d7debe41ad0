package store

import (
	"errors"
	"testing"

	"github.com/moorberry/gridline/pkg/model"
)

func TestMatches_AllColumnsSubstring(t *testing.T) {
	headers := model.Header{"name", "city"}
	row := model.Record{"Alice", "Amsterdam"}

	var fe FilterEngine
	ok, err := fe.Matches(headers, row, model.FilterConfig{Text: "sterd", Column: model.AllColumns})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if !ok {
		t.Error("expected substring match across all columns")
	}

	ok, err = fe.Matches(headers, row, model.FilterConfig{Text: "zurich", Column: model.AllColumns})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if ok {
		t.Error("expected no match for absent text")
	}
}

func TestMatches_CaseFolding(t *testing.T) {
	headers := model.Header{"name"}
	row := model.Record{"ALICE"}
	var fe FilterEngine

	ok, err := fe.Matches(headers, row, model.FilterConfig{Text: "alice", Column: model.AllColumns})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if !ok {
		t.Error("case-insensitive match should fold both sides")
	}

	ok, err = fe.Matches(headers, row, model.FilterConfig{Text: "alice", Column: model.AllColumns, CaseSensitive: true})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if ok {
		t.Error("case-sensitive match should not fold")
	}
}

func TestMatches_SpecificColumn(t *testing.T) {
	headers := model.Header{"name", "city"}
	row := model.Record{"Alice", "Amsterdam"}
	var fe FilterEngine

	ok, err := fe.Matches(headers, row, model.FilterConfig{Text: "alice", Column: "name"})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if !ok {
		t.Error("expected match in the name column")
	}

	// Text present in the row but not in the named column.
	ok, err = fe.Matches(headers, row, model.FilterConfig{Text: "amsterdam", Column: "name"})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if ok {
		t.Error("match must be confined to the named column")
	}
}

func TestMatches_UnknownColumn(t *testing.T) {
	headers := model.Header{"name"}
	var fe FilterEngine

	_, err := fe.Matches(headers, model.Record{"x"}, model.FilterConfig{Text: "x", Column: "nope"})
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err=%v, want ErrColumnNotFound", err)
	}
}

func TestMatches_EmptyFilterMatchesEverything(t *testing.T) {
	var fe FilterEngine
	ok, err := fe.Matches(model.Header{"a"}, model.Record{"anything"}, model.FilterConfig{})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want true and nil", ok, err)
	}
}

func TestMatches_ShortRowReadsEmptyCell(t *testing.T) {
	headers := model.Header{"a", "b"}
	short := model.Record{"only-a"}
	var fe FilterEngine

	ok, err := fe.Matches(headers, short, model.FilterConfig{Text: "x", Column: "b"})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if ok {
		t.Error("missing cell reads as empty string and cannot contain text")
	}

	// Empty text with a column still matches: empty filter config.
	ok, err = fe.Matches(headers, short, model.FilterConfig{Text: "", Column: "b"})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want true and nil", ok, err)
	}
}

func TestMatches_DuplicateHeaderUsesFirst(t *testing.T) {
	headers := model.Header{"id", "id"}
	row := model.Record{"left", "right"}
	var fe FilterEngine

	ok, err := fe.Matches(headers, row, model.FilterConfig{Text: "right", Column: "id"})
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if ok {
		t.Error("duplicate header must resolve to the first occurrence")
	}
}
