package lang

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/saba78600/hyperlight/codegen"
)

const moduleName = "hyperlight_module"

// CompileToIR lowers statements into a fresh module and returns its textual
// IR.
func CompileToIR(stmts []Stmt) (string, error) {
	b := codegen.New(moduleName)
	if err := NewLowerer(b).LowerProgram(stmts); err != nil {
		return "", err
	}
	return b.EmitIR(), nil
}

// CompileAndWriteIR writes the textual IR to outPath.
func CompileAndWriteIR(stmts []Stmt, outPath string) error {
	ir, err := CompileToIR(stmts)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(ir), 0644)
}

// CompileAndLinkExecutable lowers the program, emits a native object next to
// outPath, and links it with the host cc.
func CompileAndLinkExecutable(stmts []Stmt, outPath string) error {
	b := codegen.New(moduleName)
	if err := NewLowerer(b).LowerProgram(stmts); err != nil {
		return err
	}

	objPath := outPath + ".o"
	if err := b.EmitObjectForPath(objPath); err != nil {
		return err
	}
	defer os.Remove(objPath)

	cmd := exec.Command("cc", objPath, "-o", outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("linker failed: %v: %s", err, out)
	}
	return nil
}
