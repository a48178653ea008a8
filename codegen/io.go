package codegen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// EmitIR renders the module as textual LLVM IR.
func (b *Builder) EmitIR() string {
	if b.closed {
		return ""
	}
	return b.mod.String()
}

// WriteIRTo writes the textual IR to path.
func (b *Builder) WriteIRTo(path string) error {
	if err := b.check(); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.EmitIR()), 0644)
}

// EmitObjectForPath produces a native object file for the host target.  The
// textual IR is handed to the host clang, which selects the default triple
// and CPU and emits position-independent code; the object lands at path.
func (b *Builder) EmitObjectForPath(path string) error {
	if err := b.check(); err != nil {
		return err
	}
	clang, err := exec.LookPath("clang")
	if err != nil {
		return fmt.Errorf("codegen: no native code generator available: %w", err)
	}

	tmp, err := os.CreateTemp("", "hyperlight-*.ll")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(b.EmitIR()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	cmd := exec.Command(clang, "-x", "ir", "-c", tmp.Name(), "-fPIC", "-o", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("codegen: failed to write object file %s: %v: %s",
			filepath.Base(path), err, out)
	}
	return nil
}

// CallPrintf declares libc's variadic printf lazily and emits a call with a
// format-string global matching the argument's type.  Returns a constant i64
// zero, the value of the surface language's print.
func (b *Builder) CallPrintf(v Value) (Value, error) {
	if err := b.check(); err != nil {
		return Value{}, err
	}
	if b.cur == nil {
		return Value{}, ErrNoCurrentFunction
	}

	var fmtPtr constant.Constant
	switch {
	case v.IsInt():
		fmtPtr = b.formatString("fmt_i64", "%lld\n")
	case v.IsFloat():
		fmtPtr = b.formatString("fmt_f64", "%f\n")
	default:
		return Value{}, fmt.Errorf("%w: print argument", ErrNotNumeric)
	}

	b.cur.NewCall(b.printfFunc(), fmtPtr, v.v)
	return wrap(constant.NewInt(types.I64, 0)), nil
}

func (b *Builder) printfFunc() *ir.Func {
	if b.printf == nil {
		f := b.mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
		f.Sig.Variadic = true
		b.printf = f
	}
	return b.printf
}

// formatString interns one NUL-terminated format global per name and returns
// a pointer to its first byte.
func (b *Builder) formatString(name, contents string) constant.Constant {
	g, ok := b.formats[name]
	if !ok {
		g = b.mod.NewGlobalDef(name, constant.NewCharArrayFromString(contents+"\x00"))
		b.formats[name] = g
	}
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}
