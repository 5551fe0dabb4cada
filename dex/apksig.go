// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import (
	"crypto/x509/pkix"
	"encoding/hex"
	"math/big"

	"go.mozilla.org/pkcs7"
)

// SignerInfo is the informational subset of an APK v1 (JAR) signing
// block's certificate this module surfaces. It is never used to
// validate trust or checksums - that stays a non-goal per spec.md §1 -
// it exists purely so a caller can report which key(s) produced the
// test-bearing APK alongside the test list.
type SignerInfo struct {
	SerialNumber string
	Issuer       pkix.Name
	Subject      pkix.Name
}

// ParseSignerCertificates parses a PKCS#7 SignedData blob - the
// contents of a JAR-signed APK's META-INF/*.RSA or META-INF/*.DSA
// entry - and returns the certificates attached to its signer(s).
//
// Mirrors the teacher's parseSecurityDirectory matching each signer's
// IssuerAndSerialNumber against the attached certificate list, minus
// the Authenticode-specific hash/trust verification that function
// goes on to do (out of scope here).
func ParseSignerCertificates(blob []byte) ([]SignerInfo, error) {
	p7, err := pkcs7.Parse(blob)
	if err != nil {
		return nil, err
	}

	var infos []SignerInfo
	for _, signer := range p7.Signers {
		serial := signer.IssuerAndSerialNumber.SerialNumber
		for _, cert := range p7.Certificates {
			if !sameSerial(cert.SerialNumber, serial) {
				continue
			}
			infos = append(infos, SignerInfo{
				SerialNumber: hex.EncodeToString(cert.SerialNumber.Bytes()),
				Issuer:       cert.Issuer,
				Subject:      cert.Subject,
			})
		}
	}
	return infos, nil
}

func sameSerial(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
