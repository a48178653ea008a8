package lang

import "fmt"

// TypeError is a semantic error found before lowering.
type TypeError struct {
	Message string
}

func (e TypeError) Error() string { return e.Message }

func typeErrorf(format string, args ...any) TypeError {
	return TypeError{Message: fmt.Sprintf(format, args...)}
}

// TypeEnv maps names to types within one checking scope.
type TypeEnv struct {
	vars map[string]Type
}

func NewTypeEnv() *TypeEnv {
	return &TypeEnv{vars: map[string]Type{}}
}

func (e *TypeEnv) Insert(name string, ty Type) { e.vars[name] = ty }

func (e *TypeEnv) Get(name string) (Type, bool) {
	t, ok := e.vars[name]
	return t, ok
}

// checker carries the syntax registry and the set of declared functions.
type checker struct {
	reg *Registry
	fns map[string]*FnDefStmt
}

// Check validates a program: every name resolves, conditions are boolean,
// and numeric mixing follows the promotion rules.
func Check(stmts []Stmt) error {
	c := &checker{reg: DefaultRegistry(), fns: map[string]*FnDefStmt{}}
	for _, s := range stmts {
		if fn, ok := s.(*FnDefStmt); ok {
			c.fns[fn.Name] = fn
		}
	}
	return c.checkBlock(stmts, NewTypeEnv())
}

func (c *checker) checkBlock(stmts []Stmt, env *TypeEnv) error {
	for _, s := range stmts {
		if err := c.checkStmt(s, env); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkStmt(s Stmt, env *TypeEnv) error {
	switch st := s.(type) {
	case *LetStmt:
		valTy, err := c.infer(st.Value, env)
		if err != nil {
			return err
		}
		if st.Type != nil {
			if !isAssignable(valTy, *st.Type) {
				return typeErrorf("cannot initialize %s %s with %s", *st.Type, st.Name, valTy)
			}
			env.Insert(st.Name, *st.Type)
		} else {
			env.Insert(st.Name, valTy)
		}
		return nil

	case *AssignStmt:
		valTy, err := c.infer(st.Value, env)
		if err != nil {
			return err
		}
		varTy, ok := env.Get(st.Name)
		if !ok {
			return typeErrorf("unknown identifier %s", st.Name)
		}
		if !isAssignable(valTy, varTy) {
			return typeErrorf("cannot assign %s to %s %s", valTy, varTy, st.Name)
		}
		return nil

	case *IfStmt:
		if err := c.checkCond(st.Cond, env); err != nil {
			return err
		}
		if err := c.checkBlock(st.Then, env); err != nil {
			return err
		}
		return c.checkBlock(st.Else, env)

	case *WhileStmt:
		if err := c.checkCond(st.Cond, env); err != nil {
			return err
		}
		return c.checkBlock(st.Body, env)

	case *FnDefStmt:
		fnEnv := NewTypeEnv()
		for _, p := range st.Params {
			ty := TypeInt
			if p.Type != nil {
				ty = *p.Type
			}
			fnEnv.Insert(p.Name, ty)
		}
		return c.checkBlock(st.Body, fnEnv)

	case *ReturnStmt:
		if st.Value == nil {
			return nil
		}
		ty, err := c.infer(st.Value, env)
		if err != nil {
			return err
		}
		if !isNumeric(ty) && ty != TypeBool {
			return typeErrorf("cannot return %s", ty)
		}
		return nil

	case *ExprStmt:
		_, err := c.infer(st.X, env)
		return err
	}
	return typeErrorf("unsupported statement %T", s)
}

func (c *checker) checkCond(cond Expr, env *TypeEnv) error {
	ty, err := c.infer(cond, env)
	if err != nil {
		return err
	}
	if ty != TypeBool {
		return typeErrorf("condition must be bool, found %s", ty)
	}
	return nil
}

func (c *checker) infer(x Expr, env *TypeEnv) (Type, error) {
	switch e := x.(type) {
	case *NumberExpr:
		if e.Value.IsFloat {
			return TypeFloat, nil
		}
		return TypeInt, nil

	case *BoolExpr:
		return TypeBool, nil

	case *IdentExpr:
		ty, ok := env.Get(e.Name)
		if !ok {
			return 0, typeErrorf("unknown identifier %s", e.Name)
		}
		return ty, nil

	case *CallExpr:
		if sig, ok := c.reg.Builtin(e.Callee); ok {
			if len(e.Args) != sig.Params {
				return 0, typeErrorf("%s expects %d argument(s), got %d", e.Callee, sig.Params, len(e.Args))
			}
			for _, a := range e.Args {
				if _, err := c.infer(a, env); err != nil {
					return 0, err
				}
			}
			if sig.ReturnsVoid {
				return TypeVoid, nil
			}
			return TypeInt, nil
		}
		fn, ok := c.fns[e.Callee]
		if !ok {
			return 0, typeErrorf("unknown function %s", e.Callee)
		}
		if len(e.Args) != len(fn.Params) {
			return 0, typeErrorf("%s expects %d argument(s), got %d", e.Callee, len(fn.Params), len(e.Args))
		}
		for _, a := range e.Args {
			if _, err := c.infer(a, env); err != nil {
				return 0, err
			}
		}
		// User functions return i64.
		return TypeInt, nil

	case *BinaryExpr:
		lt, err := c.infer(e.Left, env)
		if err != nil {
			return 0, err
		}
		rt, err := c.infer(e.Right, env)
		if err != nil {
			return 0, err
		}
		return binaryType(e.Op, lt, rt)
	}
	return 0, typeErrorf("unsupported expression %T", x)
}

func binaryType(op BinOp, lt, rt Type) (Type, error) {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		switch {
		case lt == TypeInt && rt == TypeInt:
			return TypeInt, nil
		case lt == TypeFloat && rt == TypeFloat,
			lt == TypeInt && rt == TypeFloat,
			lt == TypeFloat && rt == TypeInt:
			return TypeFloat, nil
		}
		return 0, typeErrorf("operands %s and %s do not mix", lt, rt)

	case OpMod:
		if lt == TypeInt && rt == TypeInt {
			return TypeInt, nil
		}
		return 0, typeErrorf("%% requires integers, found %s and %s", lt, rt)

	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		if isNumeric(lt) && isNumeric(rt) && (lt == rt || lt != TypeUInt && rt != TypeUInt) {
			return TypeBool, nil
		}
		return 0, typeErrorf("cannot compare %s with %s", lt, rt)
	}
	return 0, typeErrorf("unsupported operator")
}

func isNumeric(t Type) bool {
	return t == TypeInt || t == TypeUInt || t == TypeFloat
}

func isAssignable(src, dst Type) bool {
	if src == dst {
		return true
	}
	return dst == TypeFloat && (src == TypeInt || src == TypeUInt)
}
