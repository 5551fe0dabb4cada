// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import "strings"

// descriptor resolves a StringID to its decoded payload, memoized by
// data_offset since the parser's traversal revisits identical string
// ids many times (every method in a class references the same handful
// of type descriptors).
func (d *File) descriptor(id StringID) (string, error) {
	if s, ok := d.descriptorCache[id.DataOffset]; ok {
		return s, nil
	}

	r := d.reader()
	r.seek(id.DataOffset)

	// Leading uleb128 utf16 code-unit count; unused for descriptor
	// matching since descriptors are 7-bit ASCII.
	if _, err := r.readULEB128(); err != nil {
		return "", err
	}

	raw, err := r.readNulTerminatedString()
	if err != nil {
		return "", err
	}

	s := decodeMUTF8(raw)
	d.descriptorCache[id.DataOffset] = s
	return s, nil
}

// typeDescriptor resolves a TypeID to its class/type descriptor string.
func (d *File) typeDescriptor(t TypeID) (string, error) {
	if t.DescriptorIdx >= uint32(len(d.Strings)) {
		return "", ErrIndexOutOfRange
	}
	return d.descriptor(d.Strings[t.DescriptorIdx])
}

// methodName resolves a MethodID to its simple (undecorated) name.
func (d *File) methodName(m MethodID) (string, error) {
	if m.NameIdx >= uint32(len(d.Strings)) {
		return "", ErrIndexOutOfRange
	}
	return d.descriptor(d.Strings[m.NameIdx])
}

// classDescriptor resolves a ClassDef's own type descriptor.
func (d *File) classDescriptor(c ClassDef) (string, error) {
	if c.ClassIdx >= uint32(len(d.Types)) {
		return "", ErrIndexOutOfRange
	}
	return d.typeDescriptor(d.Types[c.ClassIdx])
}

// superClassDescriptor resolves a ClassDef's direct superclass
// descriptor. Callers must first check HasDirectSuperClass.
func (d *File) superClassDescriptor(c ClassDef) (string, error) {
	if c.SuperClassIdx >= uint32(len(d.Types)) {
		return "", ErrIndexOutOfRange
	}
	return d.typeDescriptor(d.Types[c.SuperClassIdx])
}

// ClassMethodDisplay joins a class descriptor and a simple method name
// into the "Class#method" form `am instrument` expects: strip the
// surrounding "L" and ";", replace "/" with ".", then append "#name".
func ClassMethodDisplay(classDescriptor, methodName string) string {
	d := strings.TrimPrefix(classDescriptor, "L")
	d = strings.TrimSuffix(d, ";")
	d = strings.ReplaceAll(d, "/", ".")
	return d + "#" + methodName
}
