// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

// EncodedField is one entry of ClassDefData's static/instance field
// lists: a field index (resolved from a running index_diff sum, see
// decodeClassDefData) plus its access flags.
type EncodedField struct {
	FieldIdx    uint32
	AccessFlags uint32
}

// EncodedMethod is one entry of ClassDefData's direct/virtual method
// lists: a method index (resolved the same way as EncodedField),
// access flags, and the code item offset (unused by this module's
// queries, kept for completeness).
type EncodedMethod struct {
	MethodIdx   uint32
	AccessFlags uint32
	CodeOffset  uint32
}

// ClassDefData is the variable-length per-class body reached through
// ClassDef.ClassDataOffset when it is non-zero.
type ClassDefData struct {
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

// decodeEncodedFields reads a run of EncodedField entries, resolving
// each FieldIdx as a cumulative sum of index_diff reset to zero at the
// start of the run - per the DEX specification, not the literal
// "index_diff is the absolute index" reading some dexdump sources use
// (see spec Open Question on EncodedMethod/EncodedField indexing).
func decodeEncodedFields(r *reader, count uint32) ([]EncodedField, error) {
	out := make([]EncodedField, count)
	var runningIdx uint32
	for i := uint32(0); i < count; i++ {
		diff, err := r.readULEB128()
		if err != nil {
			return nil, err
		}
		accessFlags, err := r.readULEB128()
		if err != nil {
			return nil, err
		}
		runningIdx += diff
		out[i] = EncodedField{FieldIdx: runningIdx, AccessFlags: accessFlags}
	}
	return out, nil
}

// decodeEncodedMethods is decodeEncodedFields's method-list counterpart,
// additionally consuming the uleb128 code_offset of each entry.
func decodeEncodedMethods(r *reader, count uint32) ([]EncodedMethod, error) {
	out := make([]EncodedMethod, count)
	var runningIdx uint32
	for i := uint32(0); i < count; i++ {
		diff, err := r.readULEB128()
		if err != nil {
			return nil, err
		}
		accessFlags, err := r.readULEB128()
		if err != nil {
			return nil, err
		}
		codeOffset, err := r.readULEB128()
		if err != nil {
			return nil, err
		}
		runningIdx += diff
		out[i] = EncodedMethod{MethodIdx: runningIdx, AccessFlags: accessFlags, CodeOffset: codeOffset}
	}
	return out, nil
}

// decodeClassDefData decodes a ClassDefData record starting at the
// reader's current position. Callers following an offset seek a fresh
// reader (File.reader) to it first, as described in reader.go.
func decodeClassDefData(r *reader) (ClassDefData, error) {
	staticFieldsSize, err := r.readULEB128()
	if err != nil {
		return ClassDefData{}, err
	}
	instanceFieldsSize, err := r.readULEB128()
	if err != nil {
		return ClassDefData{}, err
	}
	directMethodsSize, err := r.readULEB128()
	if err != nil {
		return ClassDefData{}, err
	}
	virtualMethodsSize, err := r.readULEB128()
	if err != nil {
		return ClassDefData{}, err
	}

	staticFields, err := decodeEncodedFields(r, staticFieldsSize)
	if err != nil {
		return ClassDefData{}, err
	}
	instanceFields, err := decodeEncodedFields(r, instanceFieldsSize)
	if err != nil {
		return ClassDefData{}, err
	}
	directMethods, err := decodeEncodedMethods(r, directMethodsSize)
	if err != nil {
		return ClassDefData{}, err
	}
	virtualMethods, err := decodeEncodedMethods(r, virtualMethodsSize)
	if err != nil {
		return ClassDefData{}, err
	}

	return ClassDefData{
		StaticFields:   staticFields,
		InstanceFields: instanceFields,
		DirectMethods:  directMethods,
		VirtualMethods: virtualMethods,
	}, nil
}
