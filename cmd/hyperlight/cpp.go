package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saba78600/hyperlight/cpp"
)

var cppDefines []string

var cppCmd = &cobra.Command{
	Use:   "cpp <source.c>",
	Short: "Preprocess a C-dialect file and print the token stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		p := cpp.New()
		p.SetBaseFile(input)
		p.SetSink(cpp.LogSink{Logger: logger()})
		for _, d := range cppDefines {
			name, body, _ := strings.Cut(d, "=")
			p.DefineMacro(name, body)
		}

		tok := cpp.TokenizeFile(input)
		if tok == nil {
			return usageErr(fmt.Errorf("failed to read %s", input))
		}

		var sb strings.Builder
		line := 0
		for t := p.Preprocess(tok); t != nil && t.Kind != cpp.TokenEOF; t = t.Next {
			if t.AtBOL && line > 0 {
				sb.WriteByte('\n')
			} else if t.HasSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.Loc)
			line++
		}
		fmt.Println(sb.String())
		return nil
	},
}

func init() {
	cppCmd.Flags().StringArrayVarP(&cppDefines, "define", "D", nil, "Predefine an object-like macro (NAME or NAME=body)")
}
