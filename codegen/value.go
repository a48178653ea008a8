package codegen

import (
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Op names the binary operations the façade can build.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op Op) isComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Value is an opaque handle over a backend scalar.  It is only meaningful
// for the Builder that produced it and must not outlive it.
type Value struct {
	v value.Value
}

func wrap(v value.Value) Value {
	return Value{v: v}
}

// IsInt reports whether the value has integer type.
func (v Value) IsInt() bool {
	if v.v == nil {
		return false
	}
	_, ok := v.v.Type().(*types.IntType)
	return ok
}

// IsFloat reports whether the value has floating-point type.
func (v Value) IsFloat() bool {
	if v.v == nil {
		return false
	}
	_, isFloat := v.v.Type().(*types.FloatType)
	return isFloat
}
