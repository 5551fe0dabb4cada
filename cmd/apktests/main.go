// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool
var signerFlag bool

func main() {
	var rootCmd = &cobra.Command{
		Use:   "apktests",
		Short: "Extracts instrumentation test method names from an APK",
		Long: "apktests parses the DEX files inside an Android application " +
			"package and lists its xUnit-3 and xUnit-4 instrumentation test methods.",
		Run: func(cmd *cobra.Command, args []string) {},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump <apk-path>",
		Short: "Lists instrumentation test methods found in an APK",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if signerFlag {
				return printSigners(args[0])
			}
			return dump(args[0])
		},
	}
	dumpCmd.Flags().BoolVar(&signerFlag, "signer", false, "print JAR-signing certificate info instead of test names")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
