package slots

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotID addresses a field by its index at each level of nesting, from the
// top-level structure down.
type SlotID []int

// String returns the editor's comma-separated form, e.g. "0,6,2".
func (id SlotID) String() string {
	parts := make([]string, len(id))
	for i, n := range id {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Equal reports whether two ids address the same slot.
func (id SlotID) Equal(other SlotID) bool {
	if len(id) != len(other) {
		return false
	}
	for i := range id {
		if id[i] != other[i] {
			return false
		}
	}
	return true
}

// ParseSlotID parses the comma-separated form of a slot id.
func ParseSlotID(s string) (SlotID, error) {
	var id SlotID
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid slot id %q", s)
		}
		id = append(id, n)
	}
	return id, nil
}

// SameLevelAncestorIndex returns the index, at the level of ref, of the
// ancestor of id. For id "0,6,2,3,7" and ref "4,1" it is 6. id must be at
// least as deep as ref.
func SameLevelAncestorIndex(id, ref SlotID) int {
	return id[len(ref)-1]
}

// At returns the field addressed by id, or nil.
func At(s SlotsStructure, id SlotID) Field {
	cur := &s
	for depth, i := range id {
		f := cur.Field(i)
		if depth == len(id)-1 || f == nil {
			return f
		}
		switch f := f.(type) {
		case *BracketedField:
			cur = &f.Slots
		case *BaseSlot, *StringSlot:
			return nil
		default:
			panic(unknownField(f))
		}
	}
	return nil
}

// Locate maps a position in the display text to the editable slot holding
// it and the offset inside that slot. At the boundary between two slots,
// the earlier slot wins.
func Locate(s SlotsStructure, pos int) (SlotID, int) {
	var found SlotID
	offset, at := 0, 0
	pos = max(pos, 0)
	walkDisplay(s, nil, func(e displayElem) {
		n := len([]rune(e.text))
		if e.editable && found == nil && pos >= at && pos <= at+n {
			found, offset = e.id, pos-at
		}
		at += n
	})
	if found == nil {
		// Past the end: the last slot at its end.
		walkDisplay(s, nil, func(e displayElem) {
			if e.editable {
				found, offset = e.id, len([]rune(e.text))
			}
		})
	}
	return found, offset
}
