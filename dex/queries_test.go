// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import (
	"testing"

	"github.com/saferwall/apktests/dex/dextest"
)

// buildSingleJUnit3Class assembles a DEX with one ClassDef
// ("Lcom/ex/FooTest;") directly inheriting "Ljunit/framework/TestCase;"
// with two virtual methods: "testFoo" and a sibling "helperBar" that
// must NOT be picked up by FindInheritedTests.
func buildSingleJUnit3Class(t *testing.T) []byte {
	t.Helper()
	b := dextest.NewBuilder()

	superOff := b.WriteString("Ljunit/framework/TestCase;")
	classOff := b.WriteString("Lcom/ex/FooTest;")
	testFooOff := b.WriteString("testFoo")
	helperBarOff := b.WriteString("helperBar")

	stringIDsOffset := b.Offset()
	b.WriteStringID(superOff)   // 0
	b.WriteStringID(classOff)   // 1
	b.WriteStringID(testFooOff) // 2
	b.WriteStringID(helperBarOff) // 3

	typeIDsOffset := b.Offset()
	b.WriteTypeID(0) // 0: TestCase
	b.WriteTypeID(1) // 1: FooTest

	methodIDsOffset := b.Offset()
	b.WriteMethodID(1, 0, 2) // 0: testFoo
	b.WriteMethodID(1, 0, 3) // 1: helperBar

	classDataOffset := b.WriteClassData(nil, nil, nil, []dextest.EncodedMember{
		{IdxDiff: 0, AccessFlags: 0}, // absolute idx 0 -> testFoo
		{IdxDiff: 1, AccessFlags: 0}, // absolute idx 1 -> helperBar
	})

	classDefsOffset := b.Offset()
	b.WriteClassDef(1, 0, 0, 0, 0, 0, classDataOffset, 0)

	b.WriteHeader(dextest.HeaderFields{
		StringIDsSize: 4, StringIDsOffset: stringIDsOffset,
		TypeIDsSize: 2, TypeIDsOffset: typeIDsOffset,
		MethodIDsSize: 2, MethodIDsOffset: methodIDsOffset,
		ClassDefsSize: 1, ClassDefsOffset: classDefsOffset,
	})

	return b.Bytes()
}

func TestFindInheritedTestsSingleClass(t *testing.T) {
	f, err := OpenBytes(buildSingleJUnit3Class(t), &Options{})
	if err != nil {
		t.Fatalf("OpenBytes failed, reason: %v", err)
	}
	defer f.Close()

	got, err := f.FindInheritedTests([]string{"Ljunit/framework/TestCase;"})
	if err != nil {
		t.Fatalf("FindInheritedTests failed, reason: %v", err)
	}

	want := map[string]struct{}{"com.ex.FooTest#testFoo": {}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k := range want {
		if _, ok := got[k]; !ok {
			t.Errorf("missing %q in %v", k, got)
		}
	}
}

// buildSingleJUnit4Method builds a DEX with one class
// ("Lcom/ex/FooTest;") with one method "testBaz" annotated with
// "Lorg/junit/Test;".
func buildSingleJUnit4Method(t *testing.T) []byte {
	t.Helper()
	b := dextest.NewBuilder()

	classOff := b.WriteString("Lcom/ex/FooTest;")
	testBazOff := b.WriteString("testBaz")
	annoTypeOff := b.WriteString("Lorg/junit/Test;")

	stringIDsOffset := b.Offset()
	b.WriteStringID(classOff)   // 0
	b.WriteStringID(testBazOff) // 1
	b.WriteStringID(annoTypeOff) // 2

	typeIDsOffset := b.Offset()
	b.WriteTypeID(0) // 0: FooTest
	b.WriteTypeID(2) // 1: Lorg/junit/Test;

	methodIDsOffset := b.Offset()
	b.WriteMethodID(0, 0, 1) // 0: testBaz

	itemOff := b.WriteAnnotationItem(0x01, 1) // type_index -> TypeID 1
	setOff := b.WriteAnnotationSet([]uint32{itemOff})
	dirOff := b.WriteAnnotationsDirectory([][2]uint32{{0, setOff}}) // method_index 0

	classDefsOffset := b.Offset()
	b.WriteClassDef(0, 0, NoIndex, 0, 0, dirOff, 0, 0)

	b.WriteHeader(dextest.HeaderFields{
		StringIDsSize: 3, StringIDsOffset: stringIDsOffset,
		TypeIDsSize: 2, TypeIDsOffset: typeIDsOffset,
		MethodIDsSize: 1, MethodIDsOffset: methodIDsOffset,
		ClassDefsSize: 1, ClassDefsOffset: classDefsOffset,
	})

	return b.Bytes()
}

func TestFindAnnotatedTestsSingleMethod(t *testing.T) {
	f, err := OpenBytes(buildSingleJUnit4Method(t), &Options{})
	if err != nil {
		t.Fatalf("OpenBytes failed, reason: %v", err)
	}
	defer f.Close()

	got, err := f.FindAnnotatedTests(DefaultJUnit4AnnotationDescriptor)
	if err != nil {
		t.Fatalf("FindAnnotatedTests failed, reason: %v", err)
	}

	want := "com.ex.FooTest#testBaz"
	if _, ok := got[want]; !ok || len(got) != 1 {
		t.Fatalf("got %v, want {%q}", got, want)
	}
}

// TestCumulativeIndexResolutionTwoMethods pins down the §9 open
// question: with more than one virtual method, each idx_diff is a
// delta from the previous absolute index (reset at the start of the
// virtual_methods list), not a literal absolute index.
func TestCumulativeIndexResolutionTwoMethods(t *testing.T) {
	b := dextest.NewBuilder()

	superOff := b.WriteString("Ljunit/framework/TestCase;")
	classOff := b.WriteString("Lcom/ex/MultiTest;")
	testAOff := b.WriteString("testAlpha")
	testBOff := b.WriteString("testBeta")
	setUpOff := b.WriteString("setUp")

	stringIDsOffset := b.Offset()
	b.WriteStringID(superOff) // 0
	b.WriteStringID(classOff) // 1
	b.WriteStringID(testAOff) // 2
	b.WriteStringID(testBOff) // 3
	b.WriteStringID(setUpOff) // 4

	typeIDsOffset := b.Offset()
	b.WriteTypeID(0) // 0
	b.WriteTypeID(1) // 1

	methodIDsOffset := b.Offset()
	b.WriteMethodID(1, 0, 4) // 0: setUp
	b.WriteMethodID(1, 0, 2) // 1: testAlpha
	b.WriteMethodID(1, 0, 3) // 2: testBeta

	// The direct list holds setUp (diff 0 -> 0). The virtual list
	// restarts at zero and carries diffs 1 then 1: under cumulative sum
	// they resolve to 1 (testAlpha) and 2 (testBeta); read as absolute
	// indices both would be 1, and testBeta would be missing.
	classDataOffset := b.WriteClassData(nil, nil, []dextest.EncodedMember{
		{IdxDiff: 0, AccessFlags: 0},
	}, []dextest.EncodedMember{
		{IdxDiff: 1, AccessFlags: 0},
		{IdxDiff: 1, AccessFlags: 0},
	})

	classDefsOffset := b.Offset()
	b.WriteClassDef(1, 0, 0, 0, 0, 0, classDataOffset, 0)

	b.WriteHeader(dextest.HeaderFields{
		StringIDsSize: 5, StringIDsOffset: stringIDsOffset,
		TypeIDsSize: 2, TypeIDsOffset: typeIDsOffset,
		MethodIDsSize: 3, MethodIDsOffset: methodIDsOffset,
		ClassDefsSize: 1, ClassDefsOffset: classDefsOffset,
	})

	f, err := OpenBytes(b.Bytes(), &Options{})
	if err != nil {
		t.Fatalf("OpenBytes failed, reason: %v", err)
	}
	defer f.Close()

	got, err := f.FindInheritedTests([]string{"Ljunit/framework/TestCase;"})
	if err != nil {
		t.Fatalf("FindInheritedTests failed, reason: %v", err)
	}

	want := map[string]struct{}{
		"com.ex.MultiTest#testAlpha": {},
		"com.ex.MultiTest#testBeta":  {},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k := range want {
		if _, ok := got[k]; !ok {
			t.Errorf("missing %q in %v", k, got)
		}
	}
}

func TestFindAnnotatedTestsFastModeSkips(t *testing.T) {
	f, err := OpenBytes(buildSingleJUnit4Method(t), &Options{Fast: true})
	if err != nil {
		t.Fatalf("OpenBytes failed, reason: %v", err)
	}
	defer f.Close()

	got, err := f.FindAnnotatedTests(DefaultJUnit4AnnotationDescriptor)
	if err != nil {
		t.Fatalf("FindAnnotatedTests failed, reason: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want no results under Options.Fast", got)
	}
}

// buildTransitiveJUnit3Chain assembles a three-class chain: "Lcom/ex/BaseTest;"
// directly inherits "Ljunit/framework/TestCase;", and "Lcom/ex/LeafTest;"
// inherits "Lcom/ex/BaseTest;" in turn. FindInheritedTests must recognize
// LeafTest as a descendant only by iterating its fixpoint loop to a second
// pass, once BaseTest's own descriptor has been folded into the working set.
func buildTransitiveJUnit3Chain(t *testing.T) []byte {
	t.Helper()
	b := dextest.NewBuilder()

	superOff := b.WriteString("Ljunit/framework/TestCase;")
	baseOff := b.WriteString("Lcom/ex/BaseTest;")
	leafOff := b.WriteString("Lcom/ex/LeafTest;")
	testBaseOff := b.WriteString("testBase")
	testLeafOff := b.WriteString("testLeaf")

	stringIDsOffset := b.Offset()
	b.WriteStringID(superOff)    // 0
	b.WriteStringID(baseOff)     // 1
	b.WriteStringID(leafOff)     // 2
	b.WriteStringID(testBaseOff) // 3
	b.WriteStringID(testLeafOff) // 4

	typeIDsOffset := b.Offset()
	b.WriteTypeID(0) // 0: TestCase
	b.WriteTypeID(1) // 1: BaseTest
	b.WriteTypeID(2) // 2: LeafTest

	methodIDsOffset := b.Offset()
	b.WriteMethodID(1, 0, 3) // 0: testBase, declared on BaseTest
	b.WriteMethodID(2, 0, 4) // 1: testLeaf, declared on LeafTest

	baseDataOffset := b.WriteClassData(nil, nil, nil, []dextest.EncodedMember{
		{IdxDiff: 0, AccessFlags: 0}, // testBase
	})
	leafDataOffset := b.WriteClassData(nil, nil, nil, []dextest.EncodedMember{
		{IdxDiff: 1, AccessFlags: 0}, // testLeaf
	})

	classDefsOffset := b.Offset()
	// LeafTest's ClassDef is written before BaseTest's, so a single
	// forward pass over d.Classes would miss it: LeafTest's superclass
	// (BaseTest) is only recognized as a test ancestor after BaseTest
	// itself is matched in the same or an earlier pass.
	b.WriteClassDef(2, 0, 1, 0, 0, 0, leafDataOffset, 0) // LeafTest extends BaseTest
	b.WriteClassDef(1, 0, 0, 0, 0, 0, baseDataOffset, 0) // BaseTest extends TestCase

	b.WriteHeader(dextest.HeaderFields{
		StringIDsSize: 5, StringIDsOffset: stringIDsOffset,
		TypeIDsSize: 3, TypeIDsOffset: typeIDsOffset,
		MethodIDsSize: 2, MethodIDsOffset: methodIDsOffset,
		ClassDefsSize: 2, ClassDefsOffset: classDefsOffset,
	})

	return b.Bytes()
}

func TestFindInheritedTestsTransitiveChain(t *testing.T) {
	f, err := OpenBytes(buildTransitiveJUnit3Chain(t), &Options{})
	if err != nil {
		t.Fatalf("OpenBytes failed, reason: %v", err)
	}
	defer f.Close()

	got, err := f.FindInheritedTests([]string{"Ljunit/framework/TestCase;"})
	if err != nil {
		t.Fatalf("FindInheritedTests failed, reason: %v", err)
	}

	want := map[string]struct{}{
		"com.ex.BaseTest#testBase": {},
		"com.ex.LeafTest#testLeaf": {},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k := range want {
		if _, ok := got[k]; !ok {
			t.Errorf("missing %q in %v", k, got)
		}
	}
}

func TestClassMethodDisplay(t *testing.T) {
	got := ClassMethodDisplay("Lcom/ex/FooTest;", "testBar")
	want := "com.ex.FooTest#testBar"
	if got != want {
		t.Errorf("ClassMethodDisplay = %q, want %q", got, want)
	}
}
