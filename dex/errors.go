// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import "errors"

// Errors
var (
	// ErrInvalidSize is returned when the buffer is smaller than a DEX header.
	ErrInvalidSize = errors.New("not a dex file, smaller than the header size")

	// ErrInvalidMagic is returned when the leading 8 bytes are not "dex\n035\0".
	ErrInvalidMagic = errors.New("Invalid dex magic in dex file")

	// ErrInvalidEndianTag is returned when endian_tag is not 0x12345678.
	// Big-endian DEX (the byte-swapped tag) is not supported.
	ErrInvalidEndianTag = errors.New("Invalid endian-ness/tag in dex file")

	// ErrOutsideBoundary is reported when attempting to read past the end
	// of the mapped buffer.
	ErrOutsideBoundary = errors.New("reading data outside dex file boundary")

	// ErrInvalidLEB128 is reported when a LEB128-unsigned sequence carries
	// a continuation bit on its fifth byte.
	ErrInvalidLEB128 = errors.New("invalid uleb128 encoding, too many continuation bytes")

	// ErrIndexOutOfRange is reported when a stored table index is not
	// smaller than the size of the table it indexes.
	ErrIndexOutOfRange = errors.New("table index out of range")

	// ErrUnknownEncodedValueTag is reported when an encoded_value header
	// byte carries a value_type outside the DEX specification.
	ErrUnknownEncodedValueTag = errors.New("unknown encoded_value type tag")
)
