/*
Copyright © 2018-2023 blacktop
*/
package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcmd "github.com/blacktop/machomodel/internal/commands/macho"
	"github.com/blacktop/machomodel/internal/reconstruct"
)

func init() {
	diffCmd.Flags().Float64("min-confidence", 0.3, "minimum match confidence to consider two functions the same")
	viper.BindPFlag("diff.min-confidence", diffCmd.Flags().Lookup("min-confidence"))
}

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:           "diff <old-macho> <new-macho>",
	Short:         "Reconstruct two binaries and report function-level differences",
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		color.NoColor = !viper.GetBool("color")

		oldModel, err := reconstruct.Reconstruct(args[0])
		if err != nil {
			return fmt.Errorf("diff: reconstruct %s: %w", args[0], err)
		}
		newModel, err := reconstruct.Reconstruct(args[1])
		if err != nil {
			return fmt.Errorf("diff: reconstruct %s: %w", args[1], err)
		}

		oldFuncs := mcmd.FunctionRefsFromModel(oldModel)
		newFuncs := mcmd.FunctionRefsFromModel(newModel)

		log.WithFields(log.Fields{
			"old_functions": len(oldFuncs),
			"new_functions": len(newFuncs),
		}).Debug("aligning function lists")

		matcher := mcmd.NewFunctionMatcher()
		matcher.MinConfidence = viper.GetFloat64("diff.min-confidence")
		_, deltas := matcher.Align(oldFuncs, newFuncs)

		printDeltas(deltas)
		return nil
	},
}

func printDeltas(deltas []mcmd.FunctionDelta) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	modified := color.New(color.FgYellow)
	dim := color.New(color.Faint)

	for _, d := range deltas {
		switch d.Type {
		case "add":
			if d.BlockSize > 0 {
				added.Printf("+ %d new functions (index %d..%d)\n", d.BlockSize, d.StartIdx, d.EndIdx)
			} else {
				added.Printf("+ %s\n", describeFunc(d.Function))
			}
		case "remove":
			if d.BlockSize > 0 {
				removed.Printf("- %d removed functions (index %d..%d)\n", d.BlockSize, d.StartIdx, d.EndIdx)
			} else {
				removed.Printf("- %s\n", describeFunc(d.Function))
			}
		case "modify":
			modified.Printf("~ %s\n", describeFunc(d.OldFunc))
			dim.Printf("    size 0x%x -> 0x%x\n", d.OldFunc.EndAddr-d.OldFunc.StartAddr, d.NewFunc.EndAddr-d.NewFunc.StartAddr)
		}
	}

	if len(deltas) == 0 {
		fmt.Println("no differences found")
	}
}

func describeFunc(f mcmd.FuncRef) string {
	if f.Name != "" {
		return fmt.Sprintf("%s (0x%x)", f.Name, f.StartAddr)
	}
	return fmt.Sprintf("sub_%x", f.StartAddr)
}
