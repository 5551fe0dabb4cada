// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

// NoIndex is the sentinel value (all-ones) used for ClassDef.SuperClassIdx
// and similar fields to mean "absent".
const NoIndex = 0xffffffff

// StringID is a fixed-stride record: the absolute offset of a string's
// encoded payload (uleb128 length + MUTF-8 bytes + NUL).
type StringID struct {
	DataOffset uint32
}

func decodeStringID(r *reader) (StringID, error) {
	off, err := r.readU32()
	if err != nil {
		return StringID{}, err
	}
	return StringID{DataOffset: off}, nil
}

func decodeStringIDs(r *reader, count int) ([]StringID, error) {
	out := make([]StringID, count)
	for i := 0; i < count; i++ {
		id, err := decodeStringID(r)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// TypeID references the StringID holding a type's descriptor.
type TypeID struct {
	DescriptorIdx uint32
}

func decodeTypeID(r *reader) (TypeID, error) {
	idx, err := r.readU32()
	if err != nil {
		return TypeID{}, err
	}
	return TypeID{DescriptorIdx: idx}, nil
}

func decodeTypeIDs(r *reader, count int) ([]TypeID, error) {
	out := make([]TypeID, count)
	for i := 0; i < count; i++ {
		id, err := decodeTypeID(r)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// ProtoID describes a method prototype: shorty string, return type,
// and an offset to the parameter type list (unused by this module's
// queries, kept for completeness).
type ProtoID struct {
	ShortyIdx        uint32
	ReturnTypeIdx    uint32
	ParametersOffset uint32
}

func decodeProtoID(r *reader) (ProtoID, error) {
	vals, err := r.readU32s(3)
	if err != nil {
		return ProtoID{}, err
	}
	return ProtoID{ShortyIdx: vals[0], ReturnTypeIdx: vals[1], ParametersOffset: vals[2]}, nil
}

func decodeProtoIDs(r *reader, count int) ([]ProtoID, error) {
	out := make([]ProtoID, count)
	for i := 0; i < count; i++ {
		id, err := decodeProtoID(r)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// FieldID identifies a field by declaring class, type, and name.
type FieldID struct {
	ClassIdx uint16
	TypeIdx  uint16
	NameIdx  uint32
}

func decodeFieldID(r *reader) (FieldID, error) {
	classIdx, err := r.readU16()
	if err != nil {
		return FieldID{}, err
	}
	typeIdx, err := r.readU16()
	if err != nil {
		return FieldID{}, err
	}
	nameIdx, err := r.readU32()
	if err != nil {
		return FieldID{}, err
	}
	return FieldID{ClassIdx: classIdx, TypeIdx: typeIdx, NameIdx: nameIdx}, nil
}

func decodeFieldIDs(r *reader, count int) ([]FieldID, error) {
	out := make([]FieldID, count)
	for i := 0; i < count; i++ {
		id, err := decodeFieldID(r)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// MethodID identifies a method by declaring class, prototype, and name.
type MethodID struct {
	ClassIdx uint16
	ProtoIdx uint16
	NameIdx  uint32
}

func decodeMethodID(r *reader) (MethodID, error) {
	classIdx, err := r.readU16()
	if err != nil {
		return MethodID{}, err
	}
	protoIdx, err := r.readU16()
	if err != nil {
		return MethodID{}, err
	}
	nameIdx, err := r.readU32()
	if err != nil {
		return MethodID{}, err
	}
	return MethodID{ClassIdx: classIdx, ProtoIdx: protoIdx, NameIdx: nameIdx}, nil
}

func decodeMethodIDs(r *reader, count int) ([]MethodID, error) {
	out := make([]MethodID, count)
	for i := 0; i < count; i++ {
		id, err := decodeMethodID(r)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// ClassDef is the 32-byte fixed-stride class definition record.
type ClassDef struct {
	ClassIdx           uint32
	AccessFlags        uint32
	SuperClassIdx      uint32
	InterfacesOffset   uint32
	SourceFileIdx      uint32
	AnnotationsOffset  uint32
	ClassDataOffset    uint32
	StaticValuesOffset uint32
}

// HasDirectSuperClass reports whether this class declares a superclass
// at all (root classes like java.lang.Object do not).
func (c ClassDef) HasDirectSuperClass() bool {
	return c.SuperClassIdx != NoIndex
}

func decodeClassDef(r *reader) (ClassDef, error) {
	vals, err := r.readU32s(8)
	if err != nil {
		return ClassDef{}, err
	}
	return ClassDef{
		ClassIdx:           vals[0],
		AccessFlags:        vals[1],
		SuperClassIdx:      vals[2],
		InterfacesOffset:   vals[3],
		SourceFileIdx:      vals[4],
		AnnotationsOffset:  vals[5],
		ClassDataOffset:    vals[6],
		StaticValuesOffset: vals[7],
	}, nil
}

func decodeClassDefs(r *reader, count int) ([]ClassDef, error) {
	out := make([]ClassDef, count)
	for i := 0; i < count; i++ {
		cd, err := decodeClassDef(r)
		if err != nil {
			return nil, err
		}
		out[i] = cd
	}
	return out, nil
}
