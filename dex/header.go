// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import "bytes"

// EndianConstant is the only endian_tag value this parser accepts.
// The byte-swapped value (0x78563412) marks a big-endian DEX, which
// is explicitly out of scope (spec.md Non-goals).
const EndianConstant = 0x12345678

// dexMagic is the fixed 8-byte DEX file signature: "dex\n035\0".
var dexMagic = []byte{0x64, 0x65, 0x78, 0x0a, 0x30, 0x33, 0x35, 0x00}

const headerSize = 0x70

// tableSpec is the (size, offset) pair the header declares for one of
// the six id tables plus ClassDefData.
type tableSpec struct {
	size   uint32
	offset uint32
}

// Header holds every field of the fixed 0x70-byte DEX header.
type Header struct {
	Magic      [8]byte
	Checksum   uint32
	Signature  [20]byte
	FileSize   uint32
	HeaderSize uint32
	EndianTag  uint32
	LinkSize   uint32
	LinkOffset uint32
	MapOffset  uint32

	StringIDs    tableSpec
	TypeIDs      tableSpec
	ProtoIDs     tableSpec
	FieldIDs     tableSpec
	MethodIDs    tableSpec
	ClassDefs    tableSpec
	ClassDefData tableSpec
}

// decodeHeader parses the header at the reader's current position
// (always offset 0 for a well-formed DEX), validating magic and
// endian tag as it goes.
func decodeHeader(r *reader) (Header, error) {
	if r.size() < headerSize {
		return Header{}, ErrInvalidSize
	}

	var h Header

	magic, err := r.readBytes(8)
	if err != nil {
		return Header{}, err
	}
	copy(h.Magic[:], magic)
	if !bytes.Equal(magic, dexMagic) {
		return Header{}, ErrInvalidMagic
	}

	h.Checksum, err = r.readU32()
	if err != nil {
		return Header{}, err
	}

	sig, err := r.readBytes(20)
	if err != nil {
		return Header{}, err
	}
	copy(h.Signature[:], sig)

	rest, err := r.readU32s(6)
	if err != nil {
		return Header{}, err
	}
	h.FileSize, h.HeaderSize, h.EndianTag = rest[0], rest[1], rest[2]
	h.LinkSize, h.LinkOffset, h.MapOffset = rest[3], rest[4], rest[5]

	if h.EndianTag != EndianConstant {
		return Header{}, ErrInvalidEndianTag
	}

	specs := make([]*tableSpec, 7)
	specs[0] = &h.StringIDs
	specs[1] = &h.TypeIDs
	specs[2] = &h.ProtoIDs
	specs[3] = &h.FieldIDs
	specs[4] = &h.MethodIDs
	specs[5] = &h.ClassDefs
	specs[6] = &h.ClassDefData

	for _, spec := range specs {
		pair, err := r.readU32s(2)
		if err != nil {
			return Header{}, err
		}
		spec.size, spec.offset = pair[0], pair[1]
	}

	return h, nil
}
