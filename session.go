package slots

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/strager/slots/internal/log"
)

// Session is the state of one editor: its frame tree and the errors the
// syntax checker attached to slots. Sessions share nothing.
type Session struct {
	ID     string
	tree   *Tree
	logger log.Logger
	errors map[slotKey]SlotError
}

// SlotError is a message attached to one slot of a frame label.
type SlotError struct {
	FrameID int
	Label   int
	Slot    SlotID
	Message string
}

type slotKey struct {
	frameID int
	label   int
	slot    string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger. The default is log.Default.
func WithLogger(l log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithTree starts the session from an existing frame tree.
func WithTree(t *Tree) Option {
	return func(s *Session) {
		s.tree = t
	}
}

// NewSession returns a session with an empty program.
func NewSession(opts ...Option) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		tree:   NewTree(),
		logger: log.Default,
		errors: map[slotKey]SlotError{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tree returns the session's frame tree.
func (s *Session) Tree() *Tree {
	return s.tree
}

// EditSlot replaces the content of a label slot with the parse of literal
// and returns the new cursor position in the label's display text. A
// negative cursor is not tracked. Errors attached to the label are cleared.
func (s *Session) EditSlot(frameID, label int, literal string, cursor int) (int, error) {
	f, err := s.tree.Frame(frameID)
	if err != nil {
		return 0, err
	}
	slots, err := s.tree.LabelSlots(frameID, label)
	if err != nil {
		return 0, err
	}
	if f.Type == FrameComment {
		*slots = parseLabel(f.Type, literal)
		s.clearLabelErrors(frameID, label)
		return cursor, nil
	}
	res := Parse(literal, ParseOptions{FrameType: f.Type, CursorPos: cursor, HasCursor: cursor >= 0})
	*slots = res.Slots
	s.clearLabelErrors(frameID, label)
	s.logger.Debugf("session %s: frame %d label %d: %q -> %s (cursor %+d)",
		s.ID, frameID, label, literal, State(res.Slots, res.NewCursor(cursor)), res.CursorOffset)
	if cursor < 0 {
		return cursor, nil
	}
	return res.NewCursor(cursor), nil
}

// SlotCode returns the source text of a label slot.
func (s *Session) SlotCode(frameID, label int) (string, error) {
	slots, err := s.tree.LabelSlots(frameID, label)
	if err != nil {
		return "", err
	}
	return Code(*slots), nil
}

// SetSlotError attaches a message to a slot, replacing any previous one.
func (s *Session) SetSlotError(e SlotError) error {
	slots, err := s.tree.LabelSlots(e.FrameID, e.Label)
	if err != nil {
		return err
	}
	if len(e.Slot) > 0 && At(*slots, e.Slot) == nil {
		return fmt.Errorf("%w: frame %d label %d slot %s", ErrNoLabel, e.FrameID, e.Label, e.Slot)
	}
	s.errors[slotKey{e.FrameID, e.Label, e.Slot.String()}] = e
	s.logger.Debugf("session %s: error on frame %d label %d slot %s: %s", s.ID, e.FrameID, e.Label, e.Slot, e.Message)
	return nil
}

// ClearSlotErrors removes the errors of a frame, or of every frame when
// frameID is negative.
func (s *Session) ClearSlotErrors(frameID int) {
	for k := range s.errors {
		if frameID < 0 || k.frameID == frameID {
			delete(s.errors, k)
		}
	}
}

func (s *Session) clearLabelErrors(frameID, label int) {
	for k := range s.errors {
		if k.frameID == frameID && k.label == label {
			delete(s.errors, k)
		}
	}
}

// SlotErrors returns the attached errors ordered by frame, label and slot.
func (s *Session) SlotErrors() []SlotError {
	errs := make([]SlotError, 0, len(s.errors))
	for _, e := range s.errors {
		errs = append(errs, e)
	}
	slices.SortFunc(errs, func(a, b SlotError) int {
		return cmp.Or(
			cmp.Compare(a.FrameID, b.FrameID),
			cmp.Compare(a.Label, b.Label),
			slices.Compare(a.Slot, b.Slot),
		)
	})
	return errs
}

// LoadProgram replaces the session's program. Errors of the previous
// program are dropped.
func (s *Session) LoadProgram(src string) error {
	tree, err := LoadProgram(src)
	if err != nil {
		s.logger.Warnf("session %s: load failed: %v", s.ID, err)
		return err
	}
	s.tree = tree
	s.ClearSlotErrors(-1)
	s.logger.Debugf("session %s: loaded %d frames", s.ID, tree.Len())
	return nil
}

// Program renders the session's program as source.
func (s *Session) Program() string {
	return Program(s.tree)
}
