/*
Copyright © 2018-2023 blacktop
*/
package cmd

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blacktop/machomodel/internal/reconstruct"
	"github.com/blacktop/machomodel/internal/utils"
	"github.com/blacktop/machomodel/pkg/cpptypes"
)

func init() {
	dumpCmd.Flags().StringP("class", "c", "", "only dump classes whose fully qualified name matches this regex")
	dumpCmd.Flags().Bool("vtables", false, "include vtable layout in class output")
	dumpCmd.Flags().Bool("free-functions", false, "also dump free functions grouped by namespace")
	viper.BindPFlag("dump.class", dumpCmd.Flags().Lookup("class"))
	viper.BindPFlag("dump.vtables", dumpCmd.Flags().Lookup("vtables"))
	viper.BindPFlag("dump.free-functions", dumpCmd.Flags().Lookup("free-functions"))
}

var (
	classHeaderColor  = color.New(color.FgHiCyan, color.Bold)
	baseClassColor    = color.New(color.FgYellow)
	memberFuncColor   = color.New(color.FgGreen)
	overrideColor     = color.New(color.FgHiMagenta)
	pureVirtualColor  = color.New(color.FgRed)
	namespaceColor    = color.New(color.FgHiBlue, color.Bold)
	dimColor          = color.New(color.Faint)
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:           "dump <macho>",
	Short:         "Reconstruct and print a binary's C++ class model",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		color.NoColor = !viper.GetBool("color")

		model, err := reconstruct.Reconstruct(args[0])
		if err != nil {
			return fmt.Errorf("dump %s: %w", args[0], err)
		}

		var classFilter *regexp.Regexp
		if pattern := viper.GetString("dump.class"); pattern != "" {
			classFilter, err = regexp.Compile(pattern)
			if err != nil {
				return fmt.Errorf("--class pattern: %w", err)
			}
		}

		log.WithFields(log.Fields{
			"namespaces": len(model.Namespaces),
			"classes":    len(model.Classes),
			"functions":  len(model.Functions),
		}).Debug("reconstruction complete")

		printClasses(model, classFilter, viper.GetBool("dump.vtables"))

		if viper.GetBool("dump.free-functions") {
			printFreeFunctions(model)
		}

		return nil
	},
}

func printClasses(model *cpptypes.Model, filter *regexp.Regexp, showVTables bool) {
	names := make([]string, 0, len(model.Classes))
	for _, c := range model.Classes {
		names = append(names, c.Name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := &model.Classes[model.NameToClassIndex[name]]
		if filter != nil && !filter.MatchString(c.Name) {
			continue
		}
		printClass(model, c, showVTables)
	}
}

func printClass(model *cpptypes.Model, c *cpptypes.Class, showVTables bool) {
	classHeaderColor.Printf("class %s", c.Name)
	if len(c.DirectBaseClasses) > 0 {
		fmt.Print(" : ")
		for i, b := range c.DirectBaseClasses {
			if i > 0 {
				fmt.Print(", ")
			}
			baseClassColor.Printf("%s", model.Classes[b.ClassIndex].Name)
			dimColor.Printf(" (+%d)", b.BaseOffset)
		}
	}
	fmt.Println(" {")

	for _, fnIdx := range c.FunctionIndices {
		f := &model.Functions[fnIdx]
		memberFuncColor.Printf("%s%s(%s)", utils.Pad(4), f.FunctionBaseName, f.FunctionParameters)
		if f.FunctionReturnType != "" {
			dimColor.Printf(" -> %s", f.FunctionReturnType)
		}
		fmt.Println()
	}

	if showVTables && len(c.VTables) > 0 {
		for vi, vt := range c.VTables {
			dimColor.Printf("    // vtable[%d] offset=%d entries=%d\n", vi, vt.Offset, vt.Size())
			for _, entry := range vt.Entries {
				printVTableEntry(entry)
			}
		}
	}

	fmt.Println("};")
	fmt.Println()
}

func printVTableEntry(entry cpptypes.VTableEntry) {
	switch {
	case entry.IsPureVirtual:
		pureVirtualColor.Printf("      %s = 0\n", orUnknown(entry.Name))
	case entry.IsOverride:
		overrideColor.Printf("      %s [override]\n", orUnknown(entry.Name))
	case entry.IsImplicit:
		dimColor.Printf("      %s [inherited]\n", orUnknown(entry.Name))
	default:
		fmt.Printf("      %s\n", orUnknown(entry.Name))
	}
}

func orUnknown(name string) string {
	if name == "" {
		return "<unknown>"
	}
	return name
}

func printFreeFunctions(model *cpptypes.Model) {
	names := make([]string, 0, len(model.Namespaces))
	for _, ns := range model.Namespaces {
		names = append(names, ns.Name)
	}
	sort.Strings(names)

	for _, name := range names {
		ns := &model.Namespaces[model.NameToNamespaceIndex[name]]
		if len(ns.FunctionIndices) == 0 {
			continue
		}
		label := ns.Name
		if label == "" {
			label = "::"
		}
		namespaceColor.Printf("namespace %s {\n", label)
		for _, fnIdx := range ns.FunctionIndices {
			f := &model.Functions[fnIdx]
			memberFuncColor.Printf("    %s(%s)\n", f.FunctionBaseName, f.FunctionParameters)
		}
		fmt.Println("}")
		fmt.Println()
	}
}
