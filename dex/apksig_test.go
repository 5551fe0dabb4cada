// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"go.mozilla.org/pkcs7"
)

func generateTestSigner(t *testing.T) (*x509.Certificate, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed, reason: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(12345),
		Subject: pkix.Name{
			CommonName:   "apktests-test-signer",
			Organization: []string{"apktests"},
		},
		NotBefore:             time.Unix(0, 0),
		NotAfter:              time.Unix(0, 0).Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("x509.CreateCertificate failed, reason: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("x509.ParseCertificate failed, reason: %v", err)
	}
	return cert, key
}

func TestParseSignerCertificatesRoundTrip(t *testing.T) {
	cert, key := generateTestSigner(t)

	sd, err := pkcs7.NewSignedData([]byte("signed content placeholder"))
	if err != nil {
		t.Fatalf("pkcs7.NewSignedData failed, reason: %v", err)
	}
	if err := sd.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		t.Fatalf("AddSigner failed, reason: %v", err)
	}
	blob, err := sd.Finish()
	if err != nil {
		t.Fatalf("Finish failed, reason: %v", err)
	}

	infos, err := ParseSignerCertificates(blob)
	if err != nil {
		t.Fatalf("ParseSignerCertificates failed, reason: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d signer infos, want 1", len(infos))
	}
	if infos[0].Subject.CommonName != "apktests-test-signer" {
		t.Errorf("got subject CN %q, want %q", infos[0].Subject.CommonName, "apktests-test-signer")
	}
	if infos[0].SerialNumber != "3039" {
		t.Errorf("got serial %q, want %q (12345 in hex)", infos[0].SerialNumber, "3039")
	}
}

func TestParseSignerCertificatesInvalidBlob(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not a pkcs7 blob")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSignerCertificates(tt.blob); err == nil {
				t.Fatal("expected an error, got nil")
			}
		})
	}
}
