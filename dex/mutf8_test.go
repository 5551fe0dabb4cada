// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import "testing"

func TestDecodeMUTF8ASCIIFastPath(t *testing.T) {
	got := decodeMUTF8([]byte("Lcom/ex/FooTest;"))
	want := "Lcom/ex/FooTest;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodeMUTF8EmbeddedNUL(t *testing.T) {
	// 0xC0 0x80 is the two-byte MUTF-8 encoding of NUL.
	got := decodeMUTF8([]byte{'a', 0xC0, 0x80, 'b'})
	want := "a\x00b"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodeMUTF8CESU8SurrogatePair(t *testing.T) {
	// U+10000 encoded as a CESU-8 surrogate pair: high D800 -> ED A0 80,
	// low DC00 -> ED B0 80.
	in := []byte{0xED, 0xA0, 0x80, 0xED, 0xB0, 0x80}
	got := decodeMUTF8(in)
	want := string(rune(0x10000))
	if got != want {
		t.Errorf("got %q (%U), want %q (%U)", got, []rune(got), want, []rune(want))
	}
}

func TestDecodeMUTF8TwoByteSequence(t *testing.T) {
	// U+00E9 (e acute) encoded as a standard two-byte UTF-8/MUTF-8
	// sequence: 1100_0011 1010_1001.
	in := []byte{0xC3, 0xA9}
	got := decodeMUTF8(in)
	want := "é"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
