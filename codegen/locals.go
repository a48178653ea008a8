package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// ConstI64 produces a 64-bit signed integer constant.
func (b *Builder) ConstI64(v int64) Value {
	return wrap(constant.NewInt(types.I64, v))
}

// ConstF64 produces a 64-bit float constant.
func (b *Builder) ConstF64(v float64) Value {
	return wrap(constant.NewFloat(types.Double, v))
}

// AllocLocalI64 allocates an i64 local in the entry block of the current
// function and optionally stores init at the current insertion point.
func (b *Builder) AllocLocalI64(name string, init *Value) error {
	return b.allocLocal(name, types.I64, init)
}

// AllocLocalF64 allocates an f64 local in the entry block of the current
// function and optionally stores init at the current insertion point.
func (b *Builder) AllocLocalF64(name string, init *Value) error {
	return b.allocLocal(name, types.Double, init)
}

func (b *Builder) allocLocal(name string, typ types.Type, init *Value) error {
	if err := b.check(); err != nil {
		return err
	}
	if b.curFn == nil {
		return ErrNoCurrentFunction
	}
	if len(b.curFn.Blocks) == 0 {
		return fmt.Errorf("codegen: function %s has no entry block", b.curFnName)
	}
	entry := b.curFn.Blocks[0]

	// The alloca goes ahead of whatever the entry block already holds so
	// every local lives for the whole function.
	alloca := entry.NewAlloca(typ)
	alloca.SetName(name)
	if n := len(entry.Insts); n > 1 {
		copy(entry.Insts[1:], entry.Insts[:n-1])
		entry.Insts[0] = alloca
	}
	b.locals[name] = alloca

	if init != nil {
		if b.cur == nil {
			return ErrNoCurrentFunction
		}
		b.cur.NewStore(init.v, alloca)
	}
	return nil
}

// StoreLocalI64 stores an integer value into a local.
func (b *Builder) StoreLocalI64(name string, val Value) error {
	return b.storeLocal(name, val)
}

// StoreLocalF64 stores a float value into a local.
func (b *Builder) StoreLocalF64(name string, val Value) error {
	return b.storeLocal(name, val)
}

func (b *Builder) storeLocal(name string, val Value) error {
	if err := b.check(); err != nil {
		return err
	}
	ptr, ok := b.locals[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocal, name)
	}
	if b.cur == nil {
		return ErrNoCurrentFunction
	}
	b.cur.NewStore(val.v, ptr)
	return nil
}

// LoadLocalI64 loads a local as i64.
func (b *Builder) LoadLocalI64(name string) (Value, error) {
	return b.loadLocal(name, types.I64)
}

// LoadLocalF64 loads a local as f64.
func (b *Builder) LoadLocalF64(name string) (Value, error) {
	return b.loadLocal(name, types.Double)
}

func (b *Builder) loadLocal(name string, typ types.Type) (Value, error) {
	if err := b.check(); err != nil {
		return Value{}, err
	}
	ptr, ok := b.locals[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownLocal, name)
	}
	if b.cur == nil {
		return Value{}, ErrNoCurrentFunction
	}
	return wrap(b.cur.NewLoad(typ, ptr)), nil
}

// localPtr exposes a local's alloca for tests.
func (b *Builder) localPtr(name string) *ir.InstAlloca {
	return b.locals[name]
}
