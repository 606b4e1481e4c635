/*
Copyright © 2018-2023 blacktop
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blacktop/machomodel/internal/config"
)

var (
	cfgFile string
	// Verbose enables debug-level logging for every reconstruction pass.
	Verbose bool
	// Color forces colorized dump/diff output even when not attached to a tty.
	Color bool
	// AppVersion stores the binary's version, set at build time via -ldflags.
	AppVersion string
	// AppBuildTime stores the binary's build time, set at build time via -ldflags.
	AppBuildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "machomodel",
	Short: "Reconstruct a C++ program model from a 32-bit Mach-O binary with STABS debug symbols",
	Long: `machomodel reads a 32-bit Mach-O binary built by an early-2000s GCC
toolchain (legacy STABS debug symbols, Itanium C++ ABI RTTI) and
reconstructs its namespace/class/function model: base classes, vtables,
non-virtual thunks, and source/header layout.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihandler.Default)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/machomodel/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&Color, "color", false, "colorize output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindEnv("color", "CLICOLOR")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(diffCmd)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "machomodel"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("machomodel")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if _, err := config.LoadConfig(); err != nil {
		log.WithError(err).Warn("ignoring invalid config file settings")
	}
}
