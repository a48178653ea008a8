package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// AddFunction declares a function returning i64 whose parameters are f64 or
// i64 according to paramIsFloat.
func (b *Builder) AddFunction(name string, paramIsFloat []bool) error {
	if err := b.check(); err != nil {
		return err
	}
	params := make([]*ir.Param, len(paramIsFloat))
	for i, isFloat := range paramIsFloat {
		if isFloat {
			params[i] = ir.NewParam(fmt.Sprintf("p%d", i), types.Double)
		} else {
			params[i] = ir.NewParam(fmt.Sprintf("p%d", i), types.I64)
		}
	}
	b.funcs[name] = b.mod.NewFunc(name, types.I64, params...)
	return nil
}

// SetCurrentFunction switches block and local operations to a previously
// declared function.
func (b *Builder) SetCurrentFunction(name string) error {
	if err := b.check(); err != nil {
		return err
	}
	f, ok := b.funcs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	b.curFn = f
	b.curFnName = name
	return nil
}

// CurrentFunction returns the name of the current function ("" if unset).
func (b *Builder) CurrentFunction() string {
	return b.curFnName
}

// BuildCall emits a call to a declared function.  Void callees yield a
// constant i64 zero so expression lowering always has a value.
func (b *Builder) BuildCall(name string, args []Value) (Value, error) {
	if err := b.check(); err != nil {
		return Value{}, err
	}
	f, ok := b.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if b.cur == nil {
		return Value{}, ErrNoCurrentFunction
	}
	callArgs := make([]value.Value, len(args))
	for i, a := range args {
		callArgs[i] = a.v
	}
	call := b.cur.NewCall(f, callArgs...)
	if f.Sig.RetType.Equal(types.Void) {
		return wrap(constant.NewInt(types.I64, 0)), nil
	}
	return wrap(call), nil
}

// StoreParamIntoLocal stores the idx-th parameter of fn into a previously
// allocated local.
func (b *Builder) StoreParamIntoLocal(fn string, idx int, local string) error {
	if err := b.check(); err != nil {
		return err
	}
	f, ok := b.funcs[fn]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, fn)
	}
	if idx < 0 || idx >= len(f.Params) {
		return fmt.Errorf("codegen: function %s has no parameter %d", fn, idx)
	}
	ptr, ok := b.locals[local]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocal, local)
	}
	if b.cur == nil {
		return ErrNoCurrentFunction
	}
	b.cur.NewStore(f.Params[idx], ptr)
	return nil
}
