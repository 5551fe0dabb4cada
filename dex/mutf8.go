// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

// decodeMUTF8 decodes a DEX "modified UTF-8" byte string into a Go
// string. DEX-modified UTF-8 differs from standard UTF-8 in two ways
// that matter here: NUL is encoded as the two-byte sequence 0xC0 0x80
// (never as a literal 0x00, which is why readNulTerminatedString can
// use a literal NUL as the terminator), and code points above U+FFFF
// are encoded as a CESU-8 surrogate pair - two three-byte sequences,
// one per UTF-16 surrogate half - rather than a single four-byte
// UTF-8 sequence.
//
// Descriptors are 7-bit ASCII, so callers resolving class/method
// descriptors never hit anything past the fast path below; this
// exists for completeness when resolving arbitrary string pool
// entries, e.g. annotation element string values.
func decodeMUTF8(b []byte) string {
	if isASCII(b) {
		return string(b)
	}

	out := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			out = append(out, rune(c))
			i++

		case c == 0xC0 && i+1 < len(b) && b[i+1] == 0x80:
			out = append(out, 0)
			i += 2

		case c&0xE0 == 0xC0 && i+1 < len(b):
			out = append(out, (rune(c&0x1F)<<6)|rune(b[i+1]&0x3F))
			i += 2

		case c&0xF0 == 0xE0 && i+2 < len(b):
			hi := (rune(c&0x0F) << 12) | (rune(b[i+1]&0x3F) << 6) | rune(b[i+2]&0x3F)
			if utf16.IsSurrogate(hi) && i+5 < len(b) && b[i+3]&0xF0 == 0xE0 {
				lo := (rune(b[i+3]&0x0F) << 12) | (rune(b[i+4]&0x3F) << 6) | rune(b[i+5]&0x3F)
				if r := utf16.DecodeRune(hi, lo); r != 0xFFFD {
					out = append(out, r)
					i += 6
					continue
				}
			}
			out = append(out, hi)
			i += 3

		default:
			// Unrecognized lead byte; hand the remainder to the x/text
			// UTF-16 decoder rather than silently dropping bytes - this
			// only triggers on malformed input past the ASCII fast path.
			decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
			rest, err := decoder.Bytes(b[i:])
			if err != nil {
				return string(out)
			}
			return string(out) + string(rest)
		}
	}
	return string(out)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
