// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

// EncodedValue tag bits (the bottom 5 bits of the header byte).
const (
	valueByte    = 0x00
	valueShort   = 0x02
	valueChar    = 0x03
	valueInt     = 0x04
	valueLong    = 0x06
	valueFloat   = 0x10
	valueDouble  = 0x11
	valueString  = 0x17
	valueTypeTag = 0x18
	valueField   = 0x19
	valueMethod  = 0x1a
	valueEnum    = 0x1b
	valueArray   = 0x1c
	valueAnno    = 0x1d
	valueNull    = 0x1e
	valueBoolean = 0x1f
)

// AnnotationRef is one (index, annotations_offset) pair as used by
// FieldAnnotation, MethodAnnotation and ParameterAnnotation - the
// record shape is identical across the three, differing only in what
// "index" identifies.
type AnnotationRef struct {
	Index            uint32
	AnnotationsOffset uint32
}

func decodeAnnotationRef(r *reader) (AnnotationRef, error) {
	idx, err := r.readU32()
	if err != nil {
		return AnnotationRef{}, err
	}
	off, err := r.readU32()
	if err != nil {
		return AnnotationRef{}, err
	}
	return AnnotationRef{Index: idx, AnnotationsOffset: off}, nil
}

func decodeAnnotationRefs(r *reader, count uint32) ([]AnnotationRef, error) {
	out := make([]AnnotationRef, count)
	for i := uint32(0); i < count; i++ {
		ref, err := decodeAnnotationRef(r)
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}

// AnnotationsDirectory roots the annotations attached to a class: the
// class itself, its fields, its methods, and its method parameters.
// Only MethodAnnotations is consumed by query Q2.
type AnnotationsDirectory struct {
	ClassAnnotationsOffset uint32
	FieldAnnotations       []AnnotationRef
	MethodAnnotations      []AnnotationRef
	ParameterAnnotations   []AnnotationRef
}

// decodeAnnotationsDirectory decodes the directory at the reader's
// current position.
func decodeAnnotationsDirectory(r *reader) (AnnotationsDirectory, error) {
	hdr, err := r.readU32s(4)
	if err != nil {
		return AnnotationsDirectory{}, err
	}
	classAnnotationsOffset, fieldCount, methodCount, paramCount := hdr[0], hdr[1], hdr[2], hdr[3]

	fields, err := decodeAnnotationRefs(r, fieldCount)
	if err != nil {
		return AnnotationsDirectory{}, err
	}
	methods, err := decodeAnnotationRefs(r, methodCount)
	if err != nil {
		return AnnotationsDirectory{}, err
	}
	params, err := decodeAnnotationRefs(r, paramCount)
	if err != nil {
		return AnnotationsDirectory{}, err
	}

	return AnnotationsDirectory{
		ClassAnnotationsOffset: classAnnotationsOffset,
		FieldAnnotations:       fields,
		MethodAnnotations:      methods,
		ParameterAnnotations:   params,
	}, nil
}

// decodeAnnotationSetItem reads a u32 count followed by that many u32
// offsets, each pointing at an AnnotationItem.
func decodeAnnotationSetItem(r *reader) ([]uint32, error) {
	size, err := r.readU32()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return r.readU32s(int(size))
}

// AnnotationItem is one visibility-tagged encoded annotation.
type AnnotationItem struct {
	Visibility        uint8
	EncodedAnnotation EncodedAnnotation
}

func decodeAnnotationItem(r *reader) (AnnotationItem, error) {
	vis, err := r.readU8()
	if err != nil {
		return AnnotationItem{}, err
	}
	enc, err := decodeEncodedAnnotation(r)
	if err != nil {
		return AnnotationItem{}, err
	}
	return AnnotationItem{Visibility: vis, EncodedAnnotation: enc}, nil
}

// EncodedAnnotation names an annotation type and carries its
// name=value element pairs.
type EncodedAnnotation struct {
	TypeIdx  uint32
	Elements []AnnotationElement
}

func decodeEncodedAnnotation(r *reader) (EncodedAnnotation, error) {
	typeIdx, err := r.readULEB128()
	if err != nil {
		return EncodedAnnotation{}, err
	}
	size, err := r.readULEB128()
	if err != nil {
		return EncodedAnnotation{}, err
	}
	elements := make([]AnnotationElement, size)
	for i := uint32(0); i < size; i++ {
		el, err := decodeAnnotationElement(r)
		if err != nil {
			return EncodedAnnotation{}, err
		}
		elements[i] = el
	}
	return EncodedAnnotation{TypeIdx: typeIdx, Elements: elements}, nil
}

// AnnotationElement is one name=value pair inside an EncodedAnnotation.
type AnnotationElement struct {
	NameIdx uint32
	Value   EncodedValue
}

func decodeAnnotationElement(r *reader) (AnnotationElement, error) {
	nameIdx, err := r.readULEB128()
	if err != nil {
		return AnnotationElement{}, err
	}
	val, err := decodeEncodedValue(r)
	if err != nil {
		return AnnotationElement{}, err
	}
	return AnnotationElement{NameIdx: nameIdx, Value: val}, nil
}

// EncodedValue carries a tagged payload: a raw byte blob for
// primitive/string/type/field/method/enum values, a nested
// EncodedArray or EncodedAnnotation for composite values, nothing for
// NULL, or value_arg itself for BOOLEAN.
type EncodedValue struct {
	Type  uint8
	Bytes []byte
	Array *EncodedArray
	Anno  *EncodedAnnotation
	Bool  bool
}

// EncodedArray is a uleb128 size followed by that many EncodedValues.
type EncodedArray struct {
	Values []EncodedValue
}

func decodeEncodedArray(r *reader) (EncodedArray, error) {
	size, err := r.readULEB128()
	if err != nil {
		return EncodedArray{}, err
	}
	values := make([]EncodedValue, size)
	for i := uint32(0); i < size; i++ {
		v, err := decodeEncodedValue(r)
		if err != nil {
			return EncodedArray{}, err
		}
		values[i] = v
	}
	return EncodedArray{Values: values}, nil
}

func decodeEncodedValue(r *reader) (EncodedValue, error) {
	header, err := r.readU8()
	if err != nil {
		return EncodedValue{}, err
	}
	valueArg := uint32(header >> 5)
	valueType := header & 0x1f

	switch valueType {
	case valueByte, valueShort, valueChar, valueInt, valueLong,
		valueFloat, valueDouble, valueString, valueTypeTag, valueField,
		valueMethod, valueEnum:
		b, err := r.readBytes(valueArg + 1)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: valueType, Bytes: b}, nil

	case valueArray:
		arr, err := decodeEncodedArray(r)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: valueType, Array: &arr}, nil

	case valueAnno:
		anno, err := decodeEncodedAnnotation(r)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: valueType, Anno: &anno}, nil

	case valueNull:
		return EncodedValue{Type: valueType}, nil

	case valueBoolean:
		b, err := r.readBytes(valueArg)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: valueType, Bytes: b, Bool: valueArg != 0}, nil

	default:
		return EncodedValue{}, ErrUnknownEncodedValueTag
	}
}
