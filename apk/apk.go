// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package apk demultiplexes an Android application package (a ZIP
// archive) down to its *.dex members. It is explicitly out of THE
// CORE per spec.md §1 - a thin collaborator around the dex parser,
// not a binary-format parser itself.
package apk

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DexMember is one extracted *.dex entry: its in-archive name and the
// scratch-directory path it was written to.
type DexMember struct {
	Name string
	Path string
}

// Extract unzips every *.dex member of the APK at apkPath into a
// freshly created scratch directory and returns their paths. The
// scratch directory is the caller's responsibility to remove (see
// Cleanup), mirroring the teacher's own acquire-before/release-after
// resource discipline for the mapped file in dex.Open/Close.
func Extract(apkPath string) (dir string, members []DexMember, err error) {
	zr, err := zip.OpenReader(apkPath)
	if err != nil {
		return "", nil, err
	}
	defer zr.Close()

	dir, err = os.MkdirTemp("", "apktests-*")
	if err != nil {
		return "", nil, err
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".dex") {
			continue
		}
		path, err := extractOne(dir, f)
		if err != nil {
			os.RemoveAll(dir)
			return "", nil, err
		}
		members = append(members, DexMember{Name: f.Name, Path: path})
	}

	return dir, members, nil
}

// Cleanup removes the scratch directory returned by Extract.
func Cleanup(dir string) error {
	return os.RemoveAll(dir)
}

// ExtractSignerBlobs reads every META-INF/*.RSA and META-INF/*.DSA
// entry of the APK at apkPath into memory - the PKCS#7 SignedData
// blobs dex.ParseSignerCertificates expects. Unlike Extract, these are
// read straight into memory rather than staged to a scratch directory:
// JAR signing blocks are a handful of kilobytes at most, nowhere near
// the size that justifies the mmap-backed path dex.Open takes for
// classes.dex.
func ExtractSignerBlobs(apkPath string) ([][]byte, error) {
	zr, err := zip.OpenReader(apkPath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var blobs [][]byte
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}
		if !strings.HasSuffix(f.Name, ".RSA") && !strings.HasSuffix(f.Name, ".DSA") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		blob, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}
	return blobs, nil
}

func extractOne(dir string, f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	// ZIP entry names are archive-relative and may contain '/'; flatten
	// to a safe, collision-resistant basename in the scratch directory.
	destName := strings.ReplaceAll(f.Name, string(filepath.Separator), "_")
	destName = strings.ReplaceAll(destName, "/", "_")
	destPath := filepath.Join(dir, destName)

	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return "", err
	}
	return destPath, nil
}
