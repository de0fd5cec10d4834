package ot

import (
	"testing"

	"github.com/halissimsek/edit-text/text"
)

func TestDocument_Apply(t *testing.T) {
	doc := NewDocument("hello")
	if doc.Content() != "hello" || doc.Version != 0 {
		t.Fatalf("initial state: content=%q version=%d", doc.Content(), doc.Version)
	}

	// Insert " world"
	if err := doc.Apply(insertText(5, " world", 5)); err != nil {
		t.Fatal(err)
	}
	if doc.Content() != "hello world" {
		t.Errorf("after insert: %q", doc.Content())
	}
	if doc.Version != 1 {
		t.Errorf("version = %d, want 1", doc.Version)
	}

	// Delete "world"
	if err := doc.Apply(NewDelete(6, 5, 11)); err != nil {
		t.Fatal(err)
	}
	if doc.Content() != "hello " {
		t.Errorf("after delete: %q", doc.Content())
	}
	if doc.Version != 2 {
		t.Errorf("version = %d, want 2", doc.Version)
	}

	if len(doc.History) != 2 {
		t.Errorf("history length = %d, want 2", len(doc.History))
	}
}

func TestDocument_CharLen(t *testing.T) {
	doc := NewDocument("日本語")
	if doc.CharLen() != 3 {
		t.Errorf("CharLen() = %d, want 3", doc.CharLen())
	}
	if err := doc.Apply(insertText(3, "!", 3)); err != nil {
		t.Fatal(err)
	}
	if doc.CharLen() != 4 {
		t.Errorf("CharLen() = %d, want 4", doc.CharLen())
	}
}

func TestDocument_StyledRunsSurviveEdits(t *testing.T) {
	doc := NewDocument("plain")
	styled := text.NewStyledDocString("BOLD", text.NewStyleMap(text.StyleBold))
	if err := doc.Apply(NewInsert(5, styled, 5)); err != nil {
		t.Fatal(err)
	}
	if err := doc.Apply(NewDelete(0, 1, 9)); err != nil {
		t.Fatal(err)
	}
	if doc.Content() != "lainBOLD" {
		t.Fatalf("content = %q", doc.Content())
	}
	if len(doc.Runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(doc.Runs))
	}
	if !doc.Runs[1].Styles().Equal(text.NewStyleMap(text.StyleBold)) {
		t.Errorf("styled run lost its styles: %v", doc.Runs[1].Styles())
	}
}

func TestDocument_ApplyNoop(t *testing.T) {
	doc := NewDocument("test")
	if err := doc.Apply(Operation{[]Component{{Retain: 4}}}); err != nil {
		t.Fatal(err)
	}
	// Noop should not change version
	if doc.Version != 0 {
		t.Errorf("version = %d, want 0 after noop", doc.Version)
	}
}

func TestDocument_ApplyError(t *testing.T) {
	doc := NewDocument("hi")
	err := doc.Apply(insertText(0, "x", 10)) // wrong base length
	if err == nil {
		t.Error("expected error for length mismatch")
	}
	// Document should be unchanged
	if doc.Content() != "hi" || doc.Version != 0 {
		t.Errorf("document modified after error: %q v%d", doc.Content(), doc.Version)
	}
}
