package datum

import "fmt"

type (
	// Change describes a mutation that is about to be applied to a Value.
	Change struct {
		value    *Value
		op       Op
		index    int
		proposed any
	}

	// ChangeHandler validates a mutation before it commits. Returning false
	// rejects the mutation, leaving the Value untouched. Handlers run
	// synchronously inside the mutating call and must not mutate the same
	// Value.
	ChangeHandler func(chg *Change) bool

	Op int
)

const (
	OpNone   Op = 0
	OpSet    Op = 1 // overwrite an existing element
	OpPush   Op = 2 // append an element
	OpAssign Op = 3 // replace the whole value
)

func (chg *Change) Value() *Value {
	return chg.value
}

// Owner returns the opaque owner handle of the Value being changed.
func (chg *Change) Owner() any {
	return chg.value.owner
}
func (chg *Change) Op() Op {
	return chg.op
}

// Index returns the element being written, or -1 for whole-value
// assignments from another Value.
func (chg *Change) Index() int {
	return chg.index
}

// Proposed returns the new element (as its element type, e.g. int32 for
// KindInteger), or the source *Value for whole-value assignments.
func (chg *Change) Proposed() any {
	return chg.proposed
}

func (v *Value) approve(op Op, index int, proposed any) bool {
	if v.onChange == nil {
		return true
	}
	return v.onChange(&Change{v, op, index, proposed})
}

func (v Op) String() string {
	switch v {
	case OpNone:
		return "none"
	case OpSet:
		return "set"
	case OpPush:
		return "push"
	case OpAssign:
		return "assign"
	default:
		return fmt.Sprintf("invalid op %d", int(v))
	}
}
