package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saba78600/hyperlight/lang"
)

var irOut string

var emitIRCmd = &cobra.Command{
	Use:   "emit-ir <source.hl>",
	Short: "Lower a source file and print its LLVM IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return usageErr(fmt.Errorf("failed to read %s: %w", args[0], err))
		}
		stmts, err := frontend(string(src))
		if err != nil {
			return semanticErr(err)
		}
		if irOut != "" {
			if err := lang.CompileAndWriteIR(stmts, irOut); err != nil {
				return semanticErr(err)
			}
			return nil
		}
		ir, err := lang.CompileToIR(stmts)
		if err != nil {
			return semanticErr(err)
		}
		fmt.Print(ir)
		return nil
	},
}

func init() {
	emitIRCmd.Flags().StringVarP(&irOut, "output", "o", "", "Write IR to a file instead of stdout")
}
