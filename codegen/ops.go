package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// EnsureI64 coerces v to i64: narrower integers sign-extend, floats truncate
// toward zero via a signed conversion.
func (b *Builder) EnsureI64(v Value) (Value, error) {
	if err := b.check(); err != nil {
		return Value{}, err
	}
	switch {
	case v.IsInt():
		it := v.v.Type().(*types.IntType)
		if it.BitSize < 64 {
			if b.cur == nil {
				return Value{}, ErrNoCurrentFunction
			}
			return wrap(b.cur.NewSExt(v.v, types.I64)), nil
		}
		return v, nil
	case v.IsFloat():
		if b.cur == nil {
			return Value{}, ErrNoCurrentFunction
		}
		return wrap(b.cur.NewFPToSI(v.v, types.I64)), nil
	}
	return Value{}, fmt.Errorf("%w: cannot convert to i64", ErrNotNumeric)
}

// BuildReturn coerces v to i64 and returns it from the current function.
func (b *Builder) BuildReturn(v Value) error {
	iv, err := b.EnsureI64(v)
	if err != nil {
		return err
	}
	return b.BuildReturnI64(iv)
}

// BuildReturnI64 returns an integer value; non-integers are rejected.
func (b *Builder) BuildReturnI64(v Value) error {
	if err := b.check(); err != nil {
		return err
	}
	if !v.IsInt() {
		return fmt.Errorf("%w: return value must be an integer", ErrNotNumeric)
	}
	if b.cur == nil {
		return ErrNoCurrentFunction
	}
	b.cur.NewRet(v.v)
	return nil
}

// BuildBinop builds op over a and b with the mixed-numeric coercion algebra:
// int/int stays integral (signed ops), float/float stays floating (ordered
// ops), and a mixed pair promotes the integer side to f64 and retries.
// Comparisons yield an i64 holding 0 or 1.  Modulo is integer-only.
func (b *Builder) BuildBinop(op Op, a, c Value) (Value, error) {
	if err := b.check(); err != nil {
		return Value{}, err
	}
	if b.cur == nil {
		return Value{}, ErrNoCurrentFunction
	}

	switch {
	case a.IsInt() && c.IsInt():
		return b.intBinop(op, a, c)
	case a.IsFloat() && c.IsFloat():
		return b.floatBinop(op, a, c)
	case a.IsInt() && c.IsFloat():
		af := wrap(b.cur.NewSIToFP(a.v, types.Double))
		return b.BuildBinop(op, af, c)
	case a.IsFloat() && c.IsInt():
		cf := wrap(b.cur.NewSIToFP(c.v, types.Double))
		return b.BuildBinop(op, a, cf)
	}
	return Value{}, fmt.Errorf("%w: binop operands", ErrNotNumeric)
}

func (b *Builder) intBinop(op Op, a, c Value) (Value, error) {
	if op.isComparison() {
		var pred enum.IPred
		switch op {
		case OpEq:
			pred = enum.IPredEQ
		case OpNe:
			pred = enum.IPredNE
		case OpLt:
			pred = enum.IPredSLT
		case OpLe:
			pred = enum.IPredSLE
		case OpGt:
			pred = enum.IPredSGT
		case OpGe:
			pred = enum.IPredSGE
		}
		cmp := b.cur.NewICmp(pred, a.v, c.v)
		return wrap(b.cur.NewZExt(cmp, types.I64)), nil
	}

	switch op {
	case OpAdd:
		return wrap(b.cur.NewAdd(a.v, c.v)), nil
	case OpSub:
		return wrap(b.cur.NewSub(a.v, c.v)), nil
	case OpMul:
		return wrap(b.cur.NewMul(a.v, c.v)), nil
	case OpDiv:
		return wrap(b.cur.NewSDiv(a.v, c.v)), nil
	case OpMod:
		return wrap(b.cur.NewSRem(a.v, c.v)), nil
	}
	return Value{}, fmt.Errorf("codegen: unsupported integer op %d", op)
}

func (b *Builder) floatBinop(op Op, a, c Value) (Value, error) {
	if op.isComparison() {
		var pred enum.FPred
		switch op {
		case OpEq:
			pred = enum.FPredOEQ
		case OpNe:
			pred = enum.FPredONE
		case OpLt:
			pred = enum.FPredOLT
		case OpLe:
			pred = enum.FPredOLE
		case OpGt:
			pred = enum.FPredOGT
		case OpGe:
			pred = enum.FPredOGE
		}
		cmp := b.cur.NewFCmp(pred, a.v, c.v)
		return wrap(b.cur.NewZExt(cmp, types.I64)), nil
	}

	switch op {
	case OpAdd:
		return wrap(b.cur.NewFAdd(a.v, c.v)), nil
	case OpSub:
		return wrap(b.cur.NewFSub(a.v, c.v)), nil
	case OpMul:
		return wrap(b.cur.NewFMul(a.v, c.v)), nil
	case OpDiv:
		return wrap(b.cur.NewFDiv(a.v, c.v)), nil
	}
	return Value{}, fmt.Errorf("codegen: unsupported float op %d", op)
}
