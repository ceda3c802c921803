package workspace

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/radix/internal/dispatcher"
	"github.com/dshills/radix/internal/state"
)

func TestReducer_Name(t *testing.T) {
	if got := New().Name(); got != "workspace" {
		t.Errorf("Name() = %q, want %q", got, "workspace")
	}
}

func TestReduce_OpenBuffer(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.OpenBuffer{Name: "notes"})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeApplied {
		t.Fatalf("Reduce(open_buffer) kind = %v, want applied", out.Kind)
	}
	if got := out.State.BufferCount(); got != 2 {
		t.Errorf("BufferCount() = %d, want 2", got)
	}

	active, ok := out.State.ActiveBuffer()
	if !ok {
		t.Fatal("no active buffer in applied state")
	}
	if active.Name() != "notes" {
		t.Errorf("active buffer = %q, want %q", active.Name(), "notes")
	}
	if s.BufferCount() != 1 {
		t.Error("original snapshot was mutated")
	}
}

func TestReduce_CloseBuffer(t *testing.T) {
	r := New()
	s := state.New("scratch")
	s, opened := s.OpenBuffer("notes")

	out, err := r.Reduce(s, dispatcher.CloseBuffer{ID: opened.ID()})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeApplied {
		t.Fatalf("Reduce(close_buffer) kind = %v, want applied", out.Kind)
	}
	if got := out.State.BufferCount(); got != 1 {
		t.Errorf("BufferCount() = %d, want 1", got)
	}

	// Closing the active buffer activated its neighbor.
	active, ok := out.State.ActiveBuffer()
	if !ok {
		t.Fatal("no active buffer in applied state")
	}
	if active.Name() != "scratch" {
		t.Errorf("active buffer = %q, want %q", active.Name(), "scratch")
	}
}

func TestReduce_CloseBuffer_Missing(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.CloseBuffer{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(missing close) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_ActivateBuffer(t *testing.T) {
	r := New()
	s := state.New("scratch")
	first := s.ActiveID()
	s, _ = s.OpenBuffer("notes")

	out, err := r.Reduce(s, dispatcher.ActivateBuffer{ID: first})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeApplied {
		t.Fatalf("Reduce(activate) kind = %v, want applied", out.Kind)
	}
	if out.State.ActiveID() != first {
		t.Error("activation did not switch the active buffer")
	}
}

func TestReduce_ActivateBuffer_AlreadyActive(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.ActivateBuffer{ID: s.ActiveID()})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(already active) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_ActivateBuffer_Missing(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.ActivateBuffer{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(missing activate) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_SetReadOnly(t *testing.T) {
	r := New()
	s := state.New("scratch")
	id := s.ActiveID()

	out, err := r.Reduce(s, dispatcher.SetReadOnly{ID: id, ReadOnly: true})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeApplied {
		t.Fatalf("Reduce(set_read_only) kind = %v, want applied", out.Kind)
	}

	buf, ok := out.State.Buffer(id)
	if !ok || !buf.ReadOnly() {
		t.Error("buffer is not read-only after the action")
	}

	// Setting the same flag again is a matched no-op.
	out, err = r.Reduce(out.State, dispatcher.SetReadOnly{ID: id, ReadOnly: true})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(same flag) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_SetReadOnly_Missing(t *testing.T) {
	r := New()
	s := state.New("scratch")

	out, err := r.Reduce(s, dispatcher.SetReadOnly{ID: uuid.New(), ReadOnly: true})
	if err != nil {
		t.Fatalf("Reduce() failed: %v", err)
	}
	if out.Kind != dispatcher.OutcomeUnchanged {
		t.Errorf("Reduce(missing buffer) kind = %v, want unchanged", out.Kind)
	}
}

func TestReduce_EditorActionsNotApplicable(t *testing.T) {
	r := New()
	s := state.New("scratch")

	actions := []dispatcher.Action{
		dispatcher.InsertText{Text: "x"},
		dispatcher.SetCursor{Line: 1, Column: 1},
		dispatcher.SetScroll{Rows: 1},
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
