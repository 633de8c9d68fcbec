package ssa

import (
	"fmt"
	"math"
)

// Value represents an SSA value with a type information.
//
// Higher 32-bit is used to store Type for this value.
type Value uint64

// ValueID is the lower 32bit of Value, which is the pure identifier of Value without type info.
type ValueID uint32

const (
	valueIDInvalid ValueID = math.MaxUint32
	ValueInvalid           = Value(valueIDInvalid)
)

// String implements fmt.Stringer.
func (v Value) String() string {
	return fmt.Sprintf("v%d", v.ID())
}

// formatWithType returns the debug string of this Value with its type.
func (v Value) formatWithType() string {
	return fmt.Sprintf("v%d:%s", v.ID(), v.Type())
}

// Valid returns true if this value is valid.
func (v Value) Valid() bool {
	return v.ID() != valueIDInvalid
}

// Type returns the Type of this value.
func (v Value) Type() Type {
	return Type(v >> 32)
}

// ID returns the ValueID of this value.
func (v Value) ID() ValueID {
	return ValueID(v)
}

// setType sets a type of this Value and returns the updated Value.
func (v Value) setType(typ Type) Value {
	return v | Value(typ)<<32
}
