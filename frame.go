package slots

import (
	"errors"
	"fmt"
	"slices"
)

// FrameType identifies a kind of frame. The zero value is a frame outside
// any statement context.
type FrameType string

const (
	FrameRoot       FrameType = "root"
	FrameIf         FrameType = "if"
	FrameElif       FrameType = "elif"
	FrameElse       FrameType = "else"
	FrameFor        FrameType = "for"
	FrameWhile      FrameType = "while"
	FrameTry        FrameType = "try"
	FrameExcept     FrameType = "except"
	FrameFinally    FrameType = "finally"
	FrameFuncDef    FrameType = "funcdef"
	FrameWith       FrameType = "with"
	FrameReturn     FrameType = "return"
	FrameVarAssign  FrameType = "varassign"
	FrameImport     FrameType = "import"
	FrameFromImport FrameType = "fromimport"
	FrameComment    FrameType = "comment"
	FrameFuncCall   FrameType = "funccall"
	FrameBlank      FrameType = "blank"
)

// IsImport reports whether "as" is an operator in the frame's slots.
func (t FrameType) IsImport() bool {
	return t == FrameImport || t == FrameFromImport
}

var (
	ErrUnknownFrameType = errors.New("unknown frame type")
	ErrNoFrame          = errors.New("no such frame")
	ErrNoLabel          = errors.New("no such label slot")
	ErrChildNotAllowed  = errors.New("frame cannot hold this child")
	ErrJointNotAllowed  = errors.New("frame cannot take this joint")
)

// ParseFrameType parses a frame type name. The empty name is the zero
// frame type.
func ParseFrameType(name string) (FrameType, error) {
	if name == "" {
		return "", nil
	}
	t := FrameType(name)
	if _, ok := definitions[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFrameType, name)
	}
	return t, nil
}

// FrameLabel is a keyword shown on a frame, optionally followed by an
// editable slot.
type FrameLabel struct {
	Label string
	Slot  bool
}

// FrameDefinition describes the shape of a frame type.
type FrameDefinition struct {
	Type              FrameType
	Labels            []FrameLabel
	AllowChildren     bool
	JointTypes        []FrameType
	ForbiddenChildren []FrameType
}

// SlotCount returns the number of editable label slots.
func (d *FrameDefinition) SlotCount() int {
	n := 0
	for _, l := range d.Labels {
		if l.Slot {
			n++
		}
	}
	return n
}

var jointOnly = []FrameType{FrameElif, FrameElse, FrameExcept, FrameFinally}

func block(t FrameType, joints []FrameType, labels ...FrameLabel) *FrameDefinition {
	return &FrameDefinition{Type: t, Labels: labels, AllowChildren: true, JointTypes: joints, ForbiddenChildren: jointOnly}
}

func statement(t FrameType, labels ...FrameLabel) *FrameDefinition {
	return &FrameDefinition{Type: t, Labels: labels}
}

var definitions = map[FrameType]*FrameDefinition{
	FrameRoot:       block(FrameRoot, nil),
	FrameIf:         block(FrameIf, []FrameType{FrameElif, FrameElse}, FrameLabel{"if", true}, FrameLabel{":", false}),
	FrameElif:       block(FrameElif, nil, FrameLabel{"elif", true}, FrameLabel{":", false}),
	FrameElse:       block(FrameElse, nil, FrameLabel{"else:", false}),
	FrameFor:        block(FrameFor, []FrameType{FrameElse}, FrameLabel{"for", true}, FrameLabel{"in", true}, FrameLabel{":", false}),
	FrameWhile:      block(FrameWhile, []FrameType{FrameElse}, FrameLabel{"while", true}, FrameLabel{":", false}),
	FrameTry:        block(FrameTry, []FrameType{FrameExcept, FrameElse, FrameFinally}, FrameLabel{"try:", false}),
	FrameExcept:     block(FrameExcept, nil, FrameLabel{"except", true}, FrameLabel{":", false}),
	FrameFinally:    block(FrameFinally, nil, FrameLabel{"finally:", false}),
	FrameFuncDef:    block(FrameFuncDef, nil, FrameLabel{"def", true}, FrameLabel{"(", true}, FrameLabel{"):", false}),
	FrameWith:       block(FrameWith, nil, FrameLabel{"with", true}, FrameLabel{"as", true}, FrameLabel{":", false}),
	FrameReturn:     statement(FrameReturn, FrameLabel{"return", true}),
	FrameVarAssign:  statement(FrameVarAssign, FrameLabel{"", true}, FrameLabel{"=", true}),
	FrameImport:     statement(FrameImport, FrameLabel{"import", true}),
	FrameFromImport: statement(FrameFromImport, FrameLabel{"from", true}, FrameLabel{"import", true}),
	FrameComment:    statement(FrameComment, FrameLabel{"#", true}),
	FrameFuncCall:   statement(FrameFuncCall, FrameLabel{"", true}),
	FrameBlank:      statement(FrameBlank),
}

// Definition returns the definition of a frame type, or nil.
func Definition(t FrameType) *FrameDefinition {
	return definitions[t]
}

// jointRank orders the joints of a frame. Joints of a repeatable rank may
// follow each other.
func jointRank(t FrameType) (rank int, repeatable bool) {
	switch t {
	case FrameElif, FrameExcept:
		return 1, true
	case FrameElse:
		return 2, false
	case FrameFinally:
		return 3, false
	}
	return 0, false
}

// Frame is a node of the frame tree. A joint frame has no parent; it hangs
// off its JointParent.
type Frame struct {
	ID          int
	Type        FrameType
	Parent      int
	Children    []int
	JointParent int
	Joints      []int
	// Labels holds one slot structure per editable label.
	Labels []SlotsStructure
}

// Definition returns the frame's definition.
func (f *Frame) Definition() *FrameDefinition {
	return definitions[f.Type]
}

// Tree is a frame tree rooted at frame 0.
type Tree struct {
	frames map[int]*Frame
	nextID int
}

// RootID is the id of the root frame of every tree.
const RootID = 0

// NewTree returns a tree holding only the root frame.
func NewTree() *Tree {
	t := &Tree{frames: map[int]*Frame{}}
	t.newFrame(FrameRoot)
	t.frames[RootID].Parent = -1
	return t
}

func (t *Tree) newFrame(typ FrameType) *Frame {
	def := definitions[typ]
	f := &Frame{ID: t.nextID, Type: typ, JointParent: -1}
	for range def.SlotCount() {
		f.Labels = append(f.Labels, emptyStructure())
	}
	t.frames[f.ID] = f
	t.nextID++
	return f
}

// Frame returns the frame with the given id.
func (t *Tree) Frame(id int) (*Frame, error) {
	f, ok := t.frames[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoFrame, id)
	}
	return f, nil
}

// Len returns the number of frames, root included.
func (t *Tree) Len() int {
	return len(t.frames)
}

// AddChild appends a new frame of type typ to the body of parent.
func (t *Tree) AddChild(parent int, typ FrameType) (*Frame, error) {
	p, err := t.Frame(parent)
	if err != nil {
		return nil, err
	}
	if _, ok := definitions[typ]; !ok || typ == FrameRoot {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrameType, typ)
	}
	def := p.Definition()
	if !def.AllowChildren || slices.Contains(def.ForbiddenChildren, typ) {
		return nil, fmt.Errorf("%w: %s in %s", ErrChildNotAllowed, typ, p.Type)
	}
	f := t.newFrame(typ)
	f.Parent = parent
	p.Children = append(p.Children, f.ID)
	return f, nil
}

// AddJoint appends a joint frame to owner, which must not be a joint
// itself. Joints keep their order: "elif" before "else" after "if", and
// "except" before "else" before "finally" after "try".
func (t *Tree) AddJoint(owner int, typ FrameType) (*Frame, error) {
	o, err := t.Frame(owner)
	if err != nil {
		return nil, err
	}
	if o.JointParent >= 0 || !slices.Contains(o.Definition().JointTypes, typ) {
		return nil, fmt.Errorf("%w: %s after %s", ErrJointNotAllowed, typ, o.Type)
	}
	if n := len(o.Joints); n > 0 {
		last := t.frames[o.Joints[n-1]].Type
		lastRank, _ := jointRank(last)
		rank, repeatable := jointRank(typ)
		if rank < lastRank || rank == lastRank && !repeatable {
			return nil, fmt.Errorf("%w: %s after %s", ErrJointNotAllowed, typ, last)
		}
	}
	if o.Type == FrameTry && typ == FrameElse && !t.hasJoint(o, FrameExcept) {
		return nil, fmt.Errorf("%w: else without except", ErrJointNotAllowed)
	}
	f := t.newFrame(typ)
	f.Parent = -1
	f.JointParent = owner
	o.Joints = append(o.Joints, f.ID)
	return f, nil
}

func (t *Tree) hasJoint(o *Frame, typ FrameType) bool {
	for _, id := range o.Joints {
		if t.frames[id].Type == typ {
			return true
		}
	}
	return false
}

// Remove deletes a frame with its body and joints. The root cannot be
// removed.
func (t *Tree) Remove(id int) error {
	if id == RootID {
		return fmt.Errorf("%w: the root frame is permanent", ErrNoFrame)
	}
	f, err := t.Frame(id)
	if err != nil {
		return err
	}
	if f.JointParent >= 0 {
		o := t.frames[f.JointParent]
		o.Joints = slices.DeleteFunc(o.Joints, func(j int) bool { return j == id })
	} else {
		p := t.frames[f.Parent]
		p.Children = slices.DeleteFunc(p.Children, func(c int) bool { return c == id })
	}
	t.drop(f)
	return nil
}

func (t *Tree) drop(f *Frame) {
	for _, c := range f.Children {
		t.drop(t.frames[c])
	}
	for _, j := range f.Joints {
		t.drop(t.frames[j])
	}
	delete(t.frames, f.ID)
}

// Walk visits the frames below the root in program order. A joint is
// visited after its owner's body, at the owner's depth.
func (t *Tree) Walk(fn func(f *Frame, depth int) error) error {
	return t.walkBody(t.frames[RootID], 0, fn)
}

func (t *Tree) walkBody(parent *Frame, depth int, fn func(*Frame, int) error) error {
	for _, id := range parent.Children {
		if err := t.walkFrame(t.frames[id], depth, fn); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) walkFrame(f *Frame, depth int, fn func(*Frame, int) error) error {
	if err := fn(f, depth); err != nil {
		return err
	}
	if err := t.walkBody(f, depth+1, fn); err != nil {
		return err
	}
	for _, j := range f.Joints {
		if err := t.walkFrame(t.frames[j], depth, fn); err != nil {
			return err
		}
	}
	return nil
}

// LabelSlots returns the structure of an editable label of a frame.
func (t *Tree) LabelSlots(id, label int) (*SlotsStructure, error) {
	f, err := t.Frame(id)
	if err != nil {
		return nil, err
	}
	if label < 0 || label >= len(f.Labels) {
		return nil, fmt.Errorf("%w: frame %d label %d", ErrNoLabel, id, label)
	}
	return &f.Labels[label], nil
}
