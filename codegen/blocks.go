package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// CreateEntry creates (or replaces) a function named main returning i64 with
// no parameters, appends its entry block, and positions the insertion point
// there.
func (b *Builder) CreateEntry() error {
	if err := b.check(); err != nil {
		return err
	}
	if old, ok := b.funcs["main"]; ok {
		for i, f := range b.mod.Funcs {
			if f == old {
				b.mod.Funcs = append(b.mod.Funcs[:i], b.mod.Funcs[i+1:]...)
				break
			}
		}
	}
	f := b.mod.NewFunc("main", types.I64)
	blk := f.NewBlock("entry")
	b.funcs["main"] = f
	b.blocks["main::entry"] = blk
	b.curFn = f
	b.curFnName = "main"
	b.cur = blk
	return nil
}

// AppendBasicBlock appends a named block to the current function.
func (b *Builder) AppendBasicBlock(name string) error {
	if err := b.check(); err != nil {
		return err
	}
	if b.curFn == nil {
		return ErrNoCurrentFunction
	}
	key, err := b.blockKey(name)
	if err != nil {
		return err
	}
	b.blocks[key] = b.curFn.NewBlock(name)
	return nil
}

// PositionAtEnd moves the insertion point to the end of a named block in the
// current function.
func (b *Builder) PositionAtEnd(name string) error {
	if err := b.check(); err != nil {
		return err
	}
	blk, err := b.namedBlock(name)
	if err != nil {
		return err
	}
	b.cur = blk
	return nil
}

// SaveInsertBlock pushes the current insertion block onto a stack.
func (b *Builder) SaveInsertBlock() {
	if b.closed || b.cur == nil {
		return
	}
	b.saved = append(b.saved, b.cur)
}

// RestoreInsertBlock pops the most recently saved insertion block.
func (b *Builder) RestoreInsertBlock() {
	if b.closed || len(b.saved) == 0 {
		return
	}
	b.cur = b.saved[len(b.saved)-1]
	b.saved = b.saved[:len(b.saved)-1]
}

// CurrentBlockHasTerminator reports whether the insertion block already ends
// in a terminator.
func (b *Builder) CurrentBlockHasTerminator() bool {
	return !b.closed && b.cur != nil && b.cur.Term != nil
}

// BuildConditionalBranch compares cond against zero (signed-integer NE, or
// ordered float NE) and branches to the named blocks.
func (b *Builder) BuildConditionalBranch(cond Value, thenName, elseName string) error {
	if err := b.check(); err != nil {
		return err
	}
	thenBlk, err := b.namedBlock(thenName)
	if err != nil {
		return fmt.Errorf("then: %w", err)
	}
	elseBlk, err := b.namedBlock(elseName)
	if err != nil {
		return fmt.Errorf("else: %w", err)
	}
	if b.cur == nil {
		return ErrNoCurrentFunction
	}

	switch {
	case cond.IsInt():
		it := cond.v.Type().(*types.IntType)
		cmp := b.cur.NewICmp(enum.IPredNE, cond.v, constant.NewInt(it, 0))
		b.cur.NewCondBr(cmp, thenBlk, elseBlk)
	case cond.IsFloat():
		cmp := b.cur.NewFCmp(enum.FPredONE, cond.v, constant.NewFloat(types.Double, 0))
		b.cur.NewCondBr(cmp, thenBlk, elseBlk)
	default:
		return fmt.Errorf("%w: branch condition", ErrNotNumeric)
	}
	return nil
}

// BuildUnconditionalBranch branches to a named block in the current
// function.
func (b *Builder) BuildUnconditionalBranch(name string) error {
	if err := b.check(); err != nil {
		return err
	}
	blk, err := b.namedBlock(name)
	if err != nil {
		return err
	}
	if b.cur == nil {
		return ErrNoCurrentFunction
	}
	b.cur.NewBr(blk)
	return nil
}
