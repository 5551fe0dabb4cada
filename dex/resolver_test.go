// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import (
	"testing"

	"github.com/saferwall/apktests/dex/dextest"
)

func TestDescriptorIsMemoized(t *testing.T) {
	b := dextest.NewBuilder()
	strOff := b.WriteString("Lcom/ex/FooTest;")

	stringIDsOffset := b.Offset()
	b.WriteStringID(strOff)

	typeIDsOffset := b.Offset()
	b.WriteTypeID(0)

	b.WriteHeader(dextest.HeaderFields{
		StringIDsSize: 1, StringIDsOffset: stringIDsOffset,
		TypeIDsSize: 1, TypeIDsOffset: typeIDsOffset,
	})

	f, err := OpenBytes(b.Bytes(), &Options{})
	if err != nil {
		t.Fatalf("OpenBytes failed, reason: %v", err)
	}
	defer f.Close()

	got1, err := f.typeDescriptor(f.Types[0])
	if err != nil {
		t.Fatalf("typeDescriptor failed, reason: %v", err)
	}
	if got1 != "Lcom/ex/FooTest;" {
		t.Fatalf("got %q, want %q", got1, "Lcom/ex/FooTest;")
	}

	if _, ok := f.descriptorCache[f.Strings[0].DataOffset]; !ok {
		t.Fatalf("descriptor was not cached after first resolution")
	}

	got2, err := f.typeDescriptor(f.Types[0])
	if err != nil {
		t.Fatalf("typeDescriptor (cached) failed, reason: %v", err)
	}
	if got2 != got1 {
		t.Fatalf("cached resolution %q != first resolution %q", got2, got1)
	}
}

func TestTypeDescriptorIndexOutOfRange(t *testing.T) {
	b := dextest.NewBuilder()
	b.WriteHeader(dextest.HeaderFields{})

	f, err := OpenBytes(b.Bytes(), &Options{})
	if err != nil {
		t.Fatalf("OpenBytes failed, reason: %v", err)
	}
	defer f.Close()

	_, err = f.typeDescriptor(TypeID{DescriptorIdx: 0})
	if err != ErrIndexOutOfRange {
		t.Fatalf("got error %v, want %v", err, ErrIndexOutOfRange)
	}
}
