// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/saferwall/apktests/apk"
	"github.com/saferwall/apktests/dex"
	"github.com/saferwall/apktests/internal/log"
)

// dump extracts every *.dex member of the APK at apkPath, runs Q1 and
// Q2 over each, and prints the union of results - one "Class#method"
// per line - to standard output. A parse failure on any member aborts
// the whole run, per spec.md §4.6's "abort to avoid silent truncation".
func dump(apkPath string) error {
	logger := log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(verboseLevel())))

	dir, members, err := apk.Extract(apkPath)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", apkPath, err)
	}
	defer apk.Cleanup(dir)

	if len(members) == 0 {
		logger.Warnf("no .dex members found in %s", apkPath)
	}

	union := make(map[string]struct{})

	for _, m := range members {
		logger.Debugf("parsing %s", m.Name)

		f, err := dex.Open(m.Path, &dex.Options{})
		if err != nil {
			return fmt.Errorf("parsing %s: %w", m.Name, err)
		}

		inherited, err := f.FindInheritedTests(append([]string(nil), dex.DefaultJUnit3Descriptors...))
		if err != nil {
			f.Close()
			return fmt.Errorf("running inheritance query on %s: %w", m.Name, err)
		}
		annotated, err := f.FindAnnotatedTests(dex.DefaultJUnit4AnnotationDescriptor)
		if err != nil {
			f.Close()
			return fmt.Errorf("running annotation query on %s: %w", m.Name, err)
		}
		f.Close()

		for name := range inherited {
			union[name] = struct{}{}
		}
		for name := range annotated {
			union[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(union))
	for name := range union {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func verboseLevel() log.Level {
	if verbose {
		return log.LevelDebug
	}
	return log.LevelWarn
}
