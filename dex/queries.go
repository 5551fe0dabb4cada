// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import "strings"

// DefaultJUnit3Descriptors is the built-in set of xUnit-3 style base
// class descriptors FindInheritedTests matches against when the
// caller has no more specific set of their own.
var DefaultJUnit3Descriptors = []string{
	"Ljunit/framework/TestCase;",
	"Landroid/test/InstrumentationTestCase;",
	"Landroid/test/ActivityInstrumentationTestCase2;",
	"Landroid/test/AndroidTestCase;",
}

// DefaultJUnit4AnnotationDescriptor is the well-formed @Test annotation
// descriptor (spec.md §9 resolves the ambiguity between this and the
// malformed "L/org/junit/Test;" some dexdump sources carry in favor of
// this spelling).
const DefaultJUnit4AnnotationDescriptor = "Lorg/junit/Test;"

// FindInheritedTests implements Q1: enumerate classes whose direct
// superclass descriptor belongs to descriptors (closed transitively
// within this single DEX file), then return the "test"-prefixed
// virtual method names of those classes, formatted as "Class#method".
//
// descriptors is read, not mutated - unlike the dexdump source this
// is grounded on, which appends newly matched descriptors into the
// caller's own list (spec.md §9 "Descriptor set mutation during Q1").
// The closure is computed here over an owned working set instead.
func (d *File) FindInheritedTests(descriptors []string) (map[string]struct{}, error) {
	working := make(map[string]struct{}, len(descriptors))
	for _, desc := range descriptors {
		working[desc] = struct{}{}
	}

	matched := make(map[int]struct{})

	for {
		addedAny := false
		for i, c := range d.Classes {
			if _, already := matched[i]; already {
				continue
			}
			if !c.HasDirectSuperClass() {
				continue
			}
			superDesc, err := d.superClassDescriptor(c)
			if err != nil {
				return nil, err
			}
			if _, ok := working[superDesc]; !ok {
				continue
			}

			matched[i] = struct{}{}
			addedAny = true

			classDesc, err := d.classDescriptor(c)
			if err != nil {
				return nil, err
			}
			working[classDesc] = struct{}{}
		}
		if !addedAny {
			break
		}
	}

	results := make(map[string]struct{})
	for i := range matched {
		c := d.Classes[i]
		names, err := d.virtualTestMethodNames(c)
		if err != nil {
			return nil, err
		}
		classDesc, err := d.classDescriptor(c)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			results[ClassMethodDisplay(classDesc, name)] = struct{}{}
		}
	}
	return results, nil
}

// virtualTestMethodNames decodes c's ClassDefData (if any) and returns
// the simple names of its virtual methods that start with "test".
func (d *File) virtualTestMethodNames(c ClassDef) ([]string, error) {
	if c.ClassDataOffset == 0 {
		return nil, nil
	}

	r := d.reader()
	r.seek(c.ClassDataOffset)
	data, err := decodeClassDefData(r)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range data.VirtualMethods {
		if m.MethodIdx >= uint32(len(d.Methods)) {
			return nil, ErrIndexOutOfRange
		}
		name, err := d.methodName(d.Methods[m.MethodIdx])
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(name, "test") {
			names = append(names, name)
		}
	}
	return names, nil
}

// FindAnnotatedTests implements Q2: enumerate classes with a non-zero
// annotations_offset, scan their method annotation sets for one whose
// encoded_annotation type_index resolves to annotationDescriptor, and
// return the matching methods as "Class#method".
func (d *File) FindAnnotatedTests(annotationDescriptor string) (map[string]struct{}, error) {
	results := make(map[string]struct{})

	if d.opts.Fast {
		return results, nil
	}

	for _, c := range d.Classes {
		if c.AnnotationsOffset == 0 {
			continue
		}

		r := d.reader()
		r.seek(c.AnnotationsOffset)
		dir, err := decodeAnnotationsDirectory(r)
		if err != nil {
			return nil, err
		}

		for _, ref := range dir.MethodAnnotations {
			if ref.AnnotationsOffset == 0 {
				continue
			}
			matched, err := d.methodHasAnnotation(ref.AnnotationsOffset, annotationDescriptor)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
			if ref.Index >= uint32(len(d.Methods)) {
				return nil, ErrIndexOutOfRange
			}
			name, err := d.methodName(d.Methods[ref.Index])
			if err != nil {
				return nil, err
			}
			classDesc, err := d.classDescriptor(c)
			if err != nil {
				return nil, err
			}
			results[ClassMethodDisplay(classDesc, name)] = struct{}{}
		}
	}
	return results, nil
}

// methodHasAnnotation decodes the AnnotationSetItem at setOffset and
// reports whether any listed AnnotationItem's type resolves to
// wantDescriptor. It stops at the first match, mirroring spec.md
// §4.5 Q2's "break on the first match per method".
func (d *File) methodHasAnnotation(setOffset uint32, wantDescriptor string) (bool, error) {
	r := d.reader()
	r.seek(setOffset)
	itemOffsets, err := decodeAnnotationSetItem(r)
	if err != nil {
		return false, err
	}

	for _, off := range itemOffsets {
		ir := d.reader()
		ir.seek(off)
		item, err := decodeAnnotationItem(ir)
		if err != nil {
			return false, err
		}
		if item.EncodedAnnotation.TypeIdx >= uint32(len(d.Types)) {
			return false, ErrIndexOutOfRange
		}
		desc, err := d.typeDescriptor(d.Types[item.EncodedAnnotation.TypeIdx])
		if err != nil {
			return false, err
		}
		if desc == wantDescriptor {
			return true, nil
		}
	}
	return false, nil
}
