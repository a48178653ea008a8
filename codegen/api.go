// Package codegen wraps an LLVM IR builder in a small, lifetime-free surface
// for the lowering passes.  All values are 64-bit signed integers or 64-bit
// floats; the façade owns the module and every handle it mints.
package codegen

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
)

var (
	ErrClosed            = errors.New("codegen: builder is closed")
	ErrNoCurrentFunction = errors.New("codegen: no current function")
	ErrUnknownFunction   = errors.New("codegen: unknown function")
	ErrUnknownBlock      = errors.New("codegen: unknown block")
	ErrUnknownLocal      = errors.New("codegen: unknown local")
	ErrNotNumeric        = errors.New("codegen: value is not numeric")
)

// Builder owns one module under construction.  Blocks are registered under
// "fn::block" keys, so block names are scoped per function.  The insertion
// point is the end of cur; Save/RestoreInsertBlock nest LIFO.
type Builder struct {
	mod *ir.Module

	funcs  map[string]*ir.Func
	blocks map[string]*ir.Block
	locals map[string]*ir.InstAlloca

	curFn     *ir.Func
	curFnName string
	cur       *ir.Block
	saved     []*ir.Block

	printf  *ir.Func
	formats map[string]*ir.Global

	closed bool
}

// New creates a builder for a fresh module.
func New(moduleName string) *Builder {
	m := ir.NewModule()
	m.SourceFilename = moduleName
	return &Builder{
		mod:     m,
		funcs:   map[string]*ir.Func{},
		blocks:  map[string]*ir.Block{},
		locals:  map[string]*ir.InstAlloca{},
		formats: map[string]*ir.Global{},
	}
}

// Close invalidates the builder.  Handles minted from it must not be used
// afterwards; module, function, and block state is released together.
func (b *Builder) Close() {
	b.mod = nil
	b.funcs = nil
	b.blocks = nil
	b.locals = nil
	b.curFn = nil
	b.cur = nil
	b.saved = nil
	b.printf = nil
	b.formats = nil
	b.closed = true
}

func (b *Builder) check() error {
	if b.closed {
		return ErrClosed
	}
	return nil
}

func (b *Builder) blockKey(name string) (string, error) {
	if b.curFnName == "" {
		return "", ErrNoCurrentFunction
	}
	return b.curFnName + "::" + name, nil
}

func (b *Builder) namedBlock(name string) (*ir.Block, error) {
	key, err := b.blockKey(name)
	if err != nil {
		return nil, err
	}
	blk, ok := b.blocks[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, key)
	}
	return blk, nil
}
