package dispatcher

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Action is the closed union of editor actions. Every action names its
// kind; the envelope names the reducer it targets. New kinds are added
// here, never routed by bare strings.
type Action interface {
	// Kind returns the wire name of the action.
	Kind() string

	// isAction seals the union.
	isAction()
}

// Action kind wire names.
const (
	KindInsertText     = "insert_text"
	KindSetCursor      = "set_cursor"
	KindSetScroll      = "set_scroll"
	KindOpenBuffer     = "open_buffer"
	KindCloseBuffer    = "close_buffer"
	KindActivateBuffer = "activate_buffer"
	KindSetReadOnly    = "set_read_only"
)

// InsertText inserts text at the active buffer's primary cursor.
type InsertText struct {
	Text string
}

func (InsertText) Kind() string { return KindInsertText }
func (InsertText) isAction()    {}

// SetCursor moves the active buffer's primary cursor.
type SetCursor struct {
	Line   int
	Column int
}

func (SetCursor) Kind() string { return KindSetCursor }
func (SetCursor) isAction()    {}

// SetScroll replaces the active buffer's scroll offset.
type SetScroll struct {
	Rows int
	Cols int
}

func (SetScroll) Kind() string { return KindSetScroll }
func (SetScroll) isAction()    {}

// OpenBuffer opens a new named buffer and makes it active.
type OpenBuffer struct {
	Name string
}

func (OpenBuffer) Kind() string { return KindOpenBuffer }
func (OpenBuffer) isAction()    {}

// CloseBuffer removes a buffer from the workspace.
type CloseBuffer struct {
	ID uuid.UUID
}

func (CloseBuffer) Kind() string { return KindCloseBuffer }
func (CloseBuffer) isAction()    {}

// ActivateBuffer makes an existing buffer active.
type ActivateBuffer struct {
	ID uuid.UUID
}

func (ActivateBuffer) Kind() string { return KindActivateBuffer }
func (ActivateBuffer) isAction()    {}

// SetReadOnly sets a buffer's read-only flag.
type SetReadOnly struct {
	ID       uuid.UUID
	ReadOnly bool
}

func (SetReadOnly) Kind() string { return KindSetReadOnly }
func (SetReadOnly) isAction()    {}

// ActionEnvelope is the wire shape between input collaborators and the
// dispatch core: the payload names its intended reducer.
type ActionEnvelope struct {
	// Target is the name of the reducer the action is addressed to.
	Target string

	// Action is the tagged action value.
	Action Action
}

// DecodeEnvelope parses the JSON wire form of an action envelope:
//
//	{"target_reducer": "editor", "action": {"kind": "insert_text", "text": "x"}}
func DecodeEnvelope(data []byte) (ActionEnvelope, error) {
	if !gjson.ValidBytes(data) {
		return ActionEnvelope{}, fmt.Errorf("%w: invalid JSON", ErrMalformedEnvelope)
	}

	target := gjson.GetBytes(data, "target_reducer")
	if !target.Exists() || target.String() == "" {
		return ActionEnvelope{}, fmt.Errorf("%w: missing target_reducer", ErrMalformedEnvelope)
	}

	action := gjson.GetBytes(data, "action")
	if !action.Exists() {
		return ActionEnvelope{}, fmt.Errorf("%w: missing action", ErrMalformedEnvelope)
	}

	decoded, err := decodeAction(action)
	if err != nil {
		return ActionEnvelope{}, err
	}

	return ActionEnvelope{Target: target.String(), Action: decoded}, nil
}

// decodeAction maps a JSON action object onto the closed union.
func decodeAction(action gjson.Result) (Action, error) {
	kind := action.Get("kind").String()

	switch kind {
	case KindInsertText:
		return InsertText{Text: action.Get("text").String()}, nil
	case KindSetCursor:
		return SetCursor{
			Line:   int(action.Get("line").Int()),
			Column: int(action.Get("column").Int()),
		}, nil
	case KindSetScroll:
		return SetScroll{
			Rows: int(action.Get("rows").Int()),
			Cols: int(action.Get("cols").Int()),
		}, nil
	case KindOpenBuffer:
		return OpenBuffer{Name: action.Get("name").String()}, nil
	case KindCloseBuffer:
		id, err := uuid.Parse(action.Get("id").String())
		if err != nil {
			return nil, fmt.Errorf("%w: close_buffer id: %v", ErrMalformedEnvelope, err)
		}
		return CloseBuffer{ID: id}, nil
	case KindActivateBuffer:
		id, err := uuid.Parse(action.Get("id").String())
		if err != nil {
			return nil, fmt.Errorf("%w: activate_buffer id: %v", ErrMalformedEnvelope, err)
		}
		return ActivateBuffer{ID: id}, nil
	case KindSetReadOnly:
		id, err := uuid.Parse(action.Get("id").String())
		if err != nil {
			return nil, fmt.Errorf("%w: set_read_only id: %v", ErrMalformedEnvelope, err)
		}
		return SetReadOnly{ID: id, ReadOnly: action.Get("read_only").Bool()}, nil
	case "":
		return nil, fmt.Errorf("%w: missing action kind", ErrMalformedEnvelope)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionKind, kind)
	}
}

// EncodeEnvelope renders the JSON wire form of an action envelope.
func EncodeEnvelope(env ActionEnvelope) ([]byte, error) {
	if env.Action == nil {
		return nil, fmt.Errorf("%w: nil action", ErrMalformedEnvelope)
	}

	out, err := sjson.SetBytes([]byte(`{}`), "target_reducer", env.Target)
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetBytes(out, "action.kind", env.Action.Kind())
	if err != nil {
		return nil, err
	}

	switch a := env.Action.(type) {
	case InsertText:
		out, err = sjson.SetBytes(out, "action.text", a.Text)
	case SetCursor:
		if out, err = sjson.SetBytes(out, "action.line", a.Line); err == nil {
			out, err = sjson.SetBytes(out, "action.column", a.Column)
		}
	case SetScroll:
		if out, err = sjson.SetBytes(out, "action.rows", a.Rows); err == nil {
			out, err = sjson.SetBytes(out, "action.cols", a.Cols)
		}
	case OpenBuffer:
		out, err = sjson.SetBytes(out, "action.name", a.Name)
	case CloseBuffer:
		out, err = sjson.SetBytes(out, "action.id", a.ID.String())
	case ActivateBuffer:
		out, err = sjson.SetBytes(out, "action.id", a.ID.String())
	case SetReadOnly:
		if out, err = sjson.SetBytes(out, "action.id", a.ID.String()); err == nil {
			out, err = sjson.SetBytes(out, "action.read_only", a.ReadOnly)
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
