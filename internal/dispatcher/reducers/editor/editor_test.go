package editor

import (
	"testing"

	"github.com/dshills/radix/internal/dispatcher"
	"github.com/dshills/radix/internal/state"
)

func TestReducer_Name(t *testing.T) {
	if got := New().Name(); got != "editor" {
		t.Errorf("Name() = %q, want %q", got, "editor")
	}
}

func TestReduce_InsertText(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.InsertText{Text: "hello"})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeApplied {
		t.Fatalf("Reduce() kind = %v, want applied", out.Kind)
	}

	buf, ok := out.State.ActiveBuffer()
	if !ok {
		t.Fatal("no active buffer in applied state")
	}
	data, ok := buf.Data()
	if !ok || data != "hello" {
		t.Errorf("active buffer data = %q (present %v), want %q", data, ok, "hello")
	}

	// The input snapshot is untouched.
	orig, ok := s.ActiveBuffer()
	if !ok {
		t.Fatal("no active buffer in original state")
	}
	if _, ok := orig.Data(); ok {
		t.Error("original snapshot was mutated")
	}
}

func TestReduce_InsertText_Empty(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.InsertText{Text: ""})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(empty insert) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_InsertText_ReadOnly(t *testing.T) {
	r := New()
	s := state.New("scratch")

	buf, ok := s.ActiveBuffer()
	if !ok {
		t.Fatal("no active buffer")
	}
	s, err := s.ReplaceBuffer(buf.WithReadOnly(true))
	if err != nil {
		t.Fatalf("ReplaceBuffer() failed: %v", err)
	}

	out, err := r.Reduce(s, dispatcher.InsertText{Text: "nope"})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(read-only insert) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_SetCursor(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.InsertText{Text: "abc\ndef"})
	if err != nil {
		t.Fatalf("Reduce(insert) failed: %v", err)
	}
	s = out.State

	out, err = r.Reduce(s, dispatcher.SetCursor{Line: 2, Column: 2})
	if err != nil {
		t.Fatalf("Reduce(set_cursor) failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeApplied {
		t.Fatalf("Reduce(set_cursor) kind = %v, want applied", out.Kind)
	}

	buf, ok := out.State.ActiveBuffer()
	if !ok {
		t.Fatal("no active buffer in applied state")
	}
	cur := buf.Cursor()
	if cur.Line != 2 || cur.Column != 2 {
		t.Errorf("cursor = %s, want (2,2)", cur)
	}
}

func TestReduce_SetCursor_Unmoved(t *testing.T) {
	r := New()
	s := state.New("scratch")

	// The fresh buffer's cursor is already at the origin; a clamped move
	// back to it produces no new state.
	out, err := r.Reduce(s, dispatcher.SetCursor{Line: 9, Column: 9})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(clamped cursor) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_SetScroll(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.SetScroll{Rows: 12, Cols: 4})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeApplied {
		t.Fatalf("Reduce(set_scroll) kind = %v, want applied", out.Kind)
	}

	buf, ok := out.State.ActiveBuffer()
	if !ok {
		t.Fatal("no active buffer in applied state")
	}
	if got := buf.Scroll(); got.Rows != 12 || got.Cols != 4 {
		t.Errorf("scroll = %+v, want {12 4}", got)
	}
}

func TestReduce_EmptyWorkspace(t *testing.T) {
	r := New()
	s := state.Empty()

	out, err := r.Reduce(s, dispatcher.InsertText{Text: "x"})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(no active buffer) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_WorkspaceActionsNotApplicable(t *testing.T) {
	r := New()
	s := state.New("scratch")

	actions := []dispatcher.Action{
		dispatcher.OpenBuffer{Name: "x"},
		dispatcher.CloseBuffer{},
		dispatcher.ActivateBuffer{},
		dispatcher.SetReadOnly{},
	}
	for _, action := range actions {
		out, err := r.Reduce(s, action)
		if err != nil {
			t.Fatalf("Reduce(%s) failed: %v", action.Kind(), err)
		}
		if out.Kind != dispatcher.OutcomeNotApplicable {
			t.Errorf("Reduce(%s) kind = %v, want not-applicable", action.Kind(), out.Kind)
		}
	}
}
