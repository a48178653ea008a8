package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saba78600/hyperlight/lang"
)

var buildCmd = &cobra.Command{
	Use:   "build <source.hl>",
	Short: "Compile a source file into a native executable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		log := logger()

		src, err := os.ReadFile(input)
		if err != nil {
			return usageErr(fmt.Errorf("failed to read %s: %w", input, err))
		}

		stmts, err := frontend(string(src))
		if err != nil {
			return semanticErr(err)
		}

		out := strings.TrimSuffix(input, filepath.Ext(input))
		if out == input || out == "" {
			out = input + ".out"
		}
		log.Debug("compiling", "input", input, "output", out)
		if err := lang.CompileAndLinkExecutable(stmts, out); err != nil {
			return semanticErr(fmt.Errorf("codegen error: %w", err))
		}
		fmt.Printf("wrote executable to %s\n", out)
		return nil
	},
}

// frontend runs lex, parse, and typecheck.
func frontend(src string) ([]lang.Stmt, error) {
	toks, err := lang.Tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("lex error: %w", err)
	}
	stmts, err := lang.NewParser(toks).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := lang.Check(stmts); err != nil {
		return nil, fmt.Errorf("typecheck error: %w", err)
	}
	return stmts, nil
}
