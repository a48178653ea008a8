package lang

import (
	"fmt"

	"github.com/saba78600/hyperlight/codegen"
)

type varKind int

const (
	varInt varKind = iota
	varFloat
)

// Lowerer walks typed statements and drives the codegen façade.
type Lowerer struct {
	b        *codegen.Builder
	reg      *Registry
	kinds    map[string]varKind
	blockSeq int
}

// NewLowerer wraps a codegen builder.
func NewLowerer(b *codegen.Builder) *Lowerer {
	return &Lowerer{b: b, reg: DefaultRegistry(), kinds: map[string]varKind{}}
}

// LowerProgram creates main, lowers every top-level statement into it, and
// finishes main with return 0.
func (l *Lowerer) LowerProgram(stmts []Stmt) error {
	if err := l.b.CreateEntry(); err != nil {
		return err
	}
	for _, s := range stmts {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	if !l.b.CurrentBlockHasTerminator() {
		return l.b.BuildReturnI64(l.b.ConstI64(0))
	}
	return nil
}

// freshBlock appends a uniquely named block derived from base.
func (l *Lowerer) freshBlock(base string) (string, error) {
	l.blockSeq++
	name := fmt.Sprintf("%s.%d", base, l.blockSeq)
	return name, l.b.AppendBasicBlock(name)
}

func (l *Lowerer) lowerStmt(s Stmt) error {
	switch st := s.(type) {
	case *LetStmt:
		val, err := l.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		switch {
		case val.IsInt():
			if err := l.b.AllocLocalI64(st.Name, &val); err != nil {
				return err
			}
			l.kinds[st.Name] = varInt
		case val.IsFloat():
			if err := l.b.AllocLocalF64(st.Name, &val); err != nil {
				return err
			}
			l.kinds[st.Name] = varFloat
		default:
			return fmt.Errorf("let %s: initializer is not numeric", st.Name)
		}
		return nil

	case *AssignStmt:
		val, err := l.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		kind, ok := l.kinds[st.Name]
		if !ok {
			return fmt.Errorf("unknown local %s", st.Name)
		}
		if kind == varFloat {
			return l.b.StoreLocalF64(st.Name, val)
		}
		return l.b.StoreLocalI64(st.Name, val)

	case *IfStmt:
		return l.lowerIf(st)

	case *WhileStmt:
		return l.lowerWhile(st)

	case *FnDefStmt:
		return l.lowerFnDef(st)

	case *ReturnStmt:
		if st.Value == nil {
			return l.b.BuildReturn(l.b.ConstI64(0))
		}
		v, err := l.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		return l.b.BuildReturn(v)

	case *ExprStmt:
		_, err := l.lowerExpr(st.X)
		return err
	}
	return fmt.Errorf("cannot lower statement %T", s)
}

func (l *Lowerer) lowerIf(st *IfStmt) error {
	thenName, err := l.freshBlock("then")
	if err != nil {
		return err
	}
	elseName, err := l.freshBlock("else")
	if err != nil {
		return err
	}
	contName, err := l.freshBlock("ifcont")
	if err != nil {
		return err
	}

	cond, err := l.lowerExpr(st.Cond)
	if err != nil {
		return err
	}
	if err := l.b.BuildConditionalBranch(cond, thenName, elseName); err != nil {
		return err
	}

	if err := l.b.PositionAtEnd(thenName); err != nil {
		return err
	}
	for _, s := range st.Then {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	if !l.b.CurrentBlockHasTerminator() {
		if err := l.b.BuildUnconditionalBranch(contName); err != nil {
			return err
		}
	}

	if err := l.b.PositionAtEnd(elseName); err != nil {
		return err
	}
	for _, s := range st.Else {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	if !l.b.CurrentBlockHasTerminator() {
		if err := l.b.BuildUnconditionalBranch(contName); err != nil {
			return err
		}
	}

	return l.b.PositionAtEnd(contName)
}

func (l *Lowerer) lowerWhile(st *WhileStmt) error {
	condName, err := l.freshBlock("loop")
	if err != nil {
		return err
	}
	bodyName, err := l.freshBlock("loopbody")
	if err != nil {
		return err
	}
	contName, err := l.freshBlock("loopcont")
	if err != nil {
		return err
	}

	if err := l.b.BuildUnconditionalBranch(condName); err != nil {
		return err
	}
	if err := l.b.PositionAtEnd(condName); err != nil {
		return err
	}
	cond, err := l.lowerExpr(st.Cond)
	if err != nil {
		return err
	}
	if err := l.b.BuildConditionalBranch(cond, bodyName, contName); err != nil {
		return err
	}

	if err := l.b.PositionAtEnd(bodyName); err != nil {
		return err
	}
	for _, s := range st.Body {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	if !l.b.CurrentBlockHasTerminator() {
		if err := l.b.BuildUnconditionalBranch(condName); err != nil {
			return err
		}
	}

	return l.b.PositionAtEnd(contName)
}

func (l *Lowerer) lowerFnDef(st *FnDefStmt) error {
	paramIsFloat := make([]bool, len(st.Params))
	for i, p := range st.Params {
		paramIsFloat[i] = p.Type != nil && *p.Type == TypeFloat
	}
	if err := l.b.AddFunction(st.Name, paramIsFloat); err != nil {
		return err
	}

	// Lower the body in its own scope, then come back to where we were.
	callerFn := l.b.CurrentFunction()
	callerKinds := l.kinds
	l.b.SaveInsertBlock()
	l.kinds = map[string]varKind{}
	defer func() {
		l.kinds = callerKinds
		if callerFn != "" {
			_ = l.b.SetCurrentFunction(callerFn)
		}
		l.b.RestoreInsertBlock()
	}()

	if err := l.b.SetCurrentFunction(st.Name); err != nil {
		return err
	}
	if err := l.b.AppendBasicBlock("entry"); err != nil {
		return err
	}
	if err := l.b.PositionAtEnd("entry"); err != nil {
		return err
	}

	for i, p := range st.Params {
		if paramIsFloat[i] {
			if err := l.b.AllocLocalF64(p.Name, nil); err != nil {
				return err
			}
			l.kinds[p.Name] = varFloat
		} else {
			if err := l.b.AllocLocalI64(p.Name, nil); err != nil {
				return err
			}
			l.kinds[p.Name] = varInt
		}
		if err := l.b.StoreParamIntoLocal(st.Name, i, p.Name); err != nil {
			return err
		}
	}

	for _, s := range st.Body {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	if !l.b.CurrentBlockHasTerminator() {
		if err := l.b.BuildReturnI64(l.b.ConstI64(0)); err != nil {
			return err
		}
	}
	return nil
}

var binopTable = map[BinOp]codegen.Op{
	OpAdd: codegen.OpAdd,
	OpSub: codegen.OpSub,
	OpMul: codegen.OpMul,
	OpDiv: codegen.OpDiv,
	OpMod: codegen.OpMod,
	OpEq:  codegen.OpEq,
	OpNe:  codegen.OpNe,
	OpLt:  codegen.OpLt,
	OpLe:  codegen.OpLe,
	OpGt:  codegen.OpGt,
	OpGe:  codegen.OpGe,
}

func (l *Lowerer) lowerExpr(x Expr) (codegen.Value, error) {
	switch e := x.(type) {
	case *NumberExpr:
		if e.Value.IsFloat {
			return l.b.ConstF64(e.Value.Float), nil
		}
		return l.b.ConstI64(e.Value.Int), nil

	case *BoolExpr:
		if e.Value {
			return l.b.ConstI64(1), nil
		}
		return l.b.ConstI64(0), nil

	case *IdentExpr:
		kind, ok := l.kinds[e.Name]
		if !ok {
			return codegen.Value{}, fmt.Errorf("unknown local %s", e.Name)
		}
		if kind == varFloat {
			return l.b.LoadLocalF64(e.Name)
		}
		return l.b.LoadLocalI64(e.Name)

	case *CallExpr:
		if e.Callee == "print" {
			if len(e.Args) != 1 {
				return codegen.Value{}, fmt.Errorf("print expects 1 argument")
			}
			arg, err := l.lowerExpr(e.Args[0])
			if err != nil {
				return codegen.Value{}, err
			}
			return l.b.CallPrintf(arg)
		}
		args := make([]codegen.Value, len(e.Args))
		for i, a := range e.Args {
			v, err := l.lowerExpr(a)
			if err != nil {
				return codegen.Value{}, err
			}
			args[i] = v
		}
		return l.b.BuildCall(e.Callee, args)

	case *BinaryExpr:
		lv, err := l.lowerExpr(e.Left)
		if err != nil {
			return codegen.Value{}, err
		}
		rv, err := l.lowerExpr(e.Right)
		if err != nil {
			return codegen.Value{}, err
		}
		return l.b.BuildBinop(binopTable[e.Op], lv, rv)
	}
	return codegen.Value{}, fmt.Errorf("cannot lower expression %T", x)
}
