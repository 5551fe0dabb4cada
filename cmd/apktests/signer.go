// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/saferwall/apktests/apk"
	"github.com/saferwall/apktests/dex"
)

// printSigners extracts the APK's JAR-signing blocks and prints each
// attached certificate's subject, issuer, and serial number. Purely
// informational, per dex.SignerInfo's own doc comment - it never
// validates trust.
func printSigners(apkPath string) error {
	blobs, err := apk.ExtractSignerBlobs(apkPath)
	if err != nil {
		return fmt.Errorf("extracting signer blocks from %s: %w", apkPath, err)
	}
	if len(blobs) == 0 {
		fmt.Println("no JAR signing blocks found")
		return nil
	}

	for _, blob := range blobs {
		infos, err := dex.ParseSignerCertificates(blob)
		if err != nil {
			return fmt.Errorf("parsing signer block: %w", err)
		}
		for _, info := range infos {
			fmt.Printf("subject=%s issuer=%s serial=%s\n", info.Subject, info.Issuer, info.SerialNumber)
		}
	}
	return nil
}
