// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package dextest builds minimal, well-formed DEX byte buffers for use
// in dex package tests, in place of shipping sample .dex fixture files
// (the teacher ships binary fixtures under test/; this module instead
// synthesizes the (much smaller) DEX records it needs byte-by-byte,
// since a DEX header/table layout is simple enough to hand-assemble
// and doing so keeps every test self-contained and readable).
package dextest

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Builder assembles a DEX file's bytes incrementally: a header
// followed by appended records, each returning the absolute offset it
// was written at so callers can wire offsets into the header or into
// other records.
type Builder struct {
	buf bytes.Buffer
}

// NewBuilder returns a Builder with headerSize zero bytes already
// reserved for the DEX header, to be overwritten by WriteHeader once
// every other offset is known.
func NewBuilder() *Builder {
	b := &Builder{}
	b.buf.Write(make([]byte, 0x70))
	return b
}

// Offset returns the current write position - the offset the next
// appended record will land at.
func (b *Builder) Offset() uint32 {
	return uint32(b.buf.Len())
}

func (b *Builder) u8(v uint8)   { b.buf.WriteByte(v) }
func (b *Builder) u16(v uint16) { binary.Write(&b.buf, binary.LittleEndian, v) }
func (b *Builder) u32(v uint32) { binary.Write(&b.buf, binary.LittleEndian, v) }

func (b *Builder) uleb128(v uint32) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b.buf.WriteByte(c | 0x80)
		} else {
			b.buf.WriteByte(c)
			break
		}
	}
}

// WriteString appends a string payload (uleb128 utf16 length + bytes +
// NUL) and returns its data_offset.
func (b *Builder) WriteString(s string) uint32 {
	off := b.Offset()
	b.uleb128(uint32(len(utf16.Encode([]rune(s)))))
	b.buf.WriteString(s)
	b.buf.WriteByte(0x00)
	return off
}

// WriteStringID appends a StringId record (the data_offset u32).
func (b *Builder) WriteStringID(dataOffset uint32) {
	b.u32(dataOffset)
}

// WriteTypeID appends a TypeId record.
func (b *Builder) WriteTypeID(descriptorIdx uint32) {
	b.u32(descriptorIdx)
}

// WriteProtoID appends a ProtoId record.
func (b *Builder) WriteProtoID(shortyIdx, returnTypeIdx, paramsOffset uint32) {
	b.u32(shortyIdx)
	b.u32(returnTypeIdx)
	b.u32(paramsOffset)
}

// WriteMethodID appends a MethodId record.
func (b *Builder) WriteMethodID(classIdx, protoIdx uint16, nameIdx uint32) {
	b.u16(classIdx)
	b.u16(protoIdx)
	b.u32(nameIdx)
}

// WriteFieldID appends a FieldId record.
func (b *Builder) WriteFieldID(classIdx, typeIdx uint16, nameIdx uint32) {
	b.u16(classIdx)
	b.u16(typeIdx)
	b.u32(nameIdx)
}

// WriteClassDef appends a ClassDef record.
func (b *Builder) WriteClassDef(classIdx, accessFlags, superClassIdx, interfacesOffset,
	sourceFileIdx, annotationsOffset, classDataOffset, staticValuesOffset uint32) {
	b.u32(classIdx)
	b.u32(accessFlags)
	b.u32(superClassIdx)
	b.u32(interfacesOffset)
	b.u32(sourceFileIdx)
	b.u32(annotationsOffset)
	b.u32(classDataOffset)
	b.u32(staticValuesOffset)
}

// EncodedMember is one (idxDiff, accessFlags) pair, optionally
// carrying a code_offset for methods.
type EncodedMember struct {
	IdxDiff     uint32
	AccessFlags uint32
	CodeOffset  uint32
}

// WriteClassData appends a ClassDefData record and returns its offset.
func (b *Builder) WriteClassData(staticFields, instanceFields, directMethods, virtualMethods []EncodedMember) uint32 {
	off := b.Offset()
	b.uleb128(uint32(len(staticFields)))
	b.uleb128(uint32(len(instanceFields)))
	b.uleb128(uint32(len(directMethods)))
	b.uleb128(uint32(len(virtualMethods)))
	for _, f := range staticFields {
		b.uleb128(f.IdxDiff)
		b.uleb128(f.AccessFlags)
	}
	for _, f := range instanceFields {
		b.uleb128(f.IdxDiff)
		b.uleb128(f.AccessFlags)
	}
	for _, m := range directMethods {
		b.uleb128(m.IdxDiff)
		b.uleb128(m.AccessFlags)
		b.uleb128(m.CodeOffset)
	}
	for _, m := range virtualMethods {
		b.uleb128(m.IdxDiff)
		b.uleb128(m.AccessFlags)
		b.uleb128(m.CodeOffset)
	}
	return off
}

// WriteAnnotationsDirectory appends an AnnotationsDirectory with no
// field/parameter annotations and the given method annotation
// (methodIdx, setOffset) pairs, returning the directory's offset.
func (b *Builder) WriteAnnotationsDirectory(methodAnnotations [][2]uint32) uint32 {
	off := b.Offset()
	b.u32(0) // class_annotations_offset
	b.u32(0) // field_count
	b.u32(uint32(len(methodAnnotations)))
	b.u32(0) // parameter_count
	for _, ref := range methodAnnotations {
		b.u32(ref[0])
		b.u32(ref[1])
	}
	return off
}

// WriteAnnotationSet appends an AnnotationSetItem referencing the
// given AnnotationItem offsets, returning the set's own offset.
func (b *Builder) WriteAnnotationSet(itemOffsets []uint32) uint32 {
	off := b.Offset()
	b.u32(uint32(len(itemOffsets)))
	for _, o := range itemOffsets {
		b.u32(o)
	}
	return off
}

// WriteAnnotationItem appends a visibility byte + minimal
// EncodedAnnotation (typeIdx, zero elements), returning its offset.
func (b *Builder) WriteAnnotationItem(visibility uint8, typeIdx uint32) uint32 {
	off := b.Offset()
	b.u8(visibility)
	b.uleb128(typeIdx)
	b.uleb128(0) // element count
	return off
}

// HeaderFields carries every value WriteHeader needs; StringIDs
// through ClassData are the seven (size, offset) pairs in header
// declaration order.
type HeaderFields struct {
	StringIDsSize, StringIDsOffset uint32
	TypeIDsSize, TypeIDsOffset     uint32
	ProtoIDsSize, ProtoIDsOffset   uint32
	FieldIDsSize, FieldIDsOffset   uint32
	MethodIDsSize, MethodIDsOffset uint32
	ClassDefsSize, ClassDefsOffset uint32
	ClassDataSize, ClassDataOffset uint32
	EndianTag                      uint32 // defaults to the valid tag when zero
}

// WriteHeader overwrites the reserved header bytes at the front of the
// buffer with a valid DEX header carrying f's table sizes/offsets.
func (b *Builder) WriteHeader(f HeaderFields) {
	out := b.buf.Bytes()
	h := bytes.NewBuffer(nil)
	h.Write([]byte{0x64, 0x65, 0x78, 0x0a, 0x30, 0x33, 0x35, 0x00}) // "dex\n035\0"
	binary.Write(h, binary.LittleEndian, uint32(0))                // checksum
	h.Write(make([]byte, 20))                                      // signature

	fileSize := uint32(len(out))
	endian := f.EndianTag
	if endian == 0 {
		endian = 0x12345678
	}
	binary.Write(h, binary.LittleEndian, fileSize)
	binary.Write(h, binary.LittleEndian, uint32(0x70)) // header_size
	binary.Write(h, binary.LittleEndian, endian)
	binary.Write(h, binary.LittleEndian, uint32(0)) // link_size
	binary.Write(h, binary.LittleEndian, uint32(0)) // link_offset
	binary.Write(h, binary.LittleEndian, uint32(0)) // map_offset

	pairs := [][2]uint32{
		{f.StringIDsSize, f.StringIDsOffset},
		{f.TypeIDsSize, f.TypeIDsOffset},
		{f.ProtoIDsSize, f.ProtoIDsOffset},
		{f.FieldIDsSize, f.FieldIDsOffset},
		{f.MethodIDsSize, f.MethodIDsOffset},
		{f.ClassDefsSize, f.ClassDefsOffset},
		{f.ClassDataSize, f.ClassDataOffset},
	}
	for _, p := range pairs {
		binary.Write(h, binary.LittleEndian, p[0])
		binary.Write(h, binary.LittleEndian, p[1])
	}

	copy(out[:0x70], h.Bytes())
}

// Bytes returns the assembled buffer.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}
