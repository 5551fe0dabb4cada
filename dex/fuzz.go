package dex

// Fuzz is a go-fuzz entry point: parse arbitrary bytes as a DEX file
// and, if that succeeds, exercise both queries over it. Mirrors the
// teacher's pe.Fuzz exactly.
func Fuzz(data []byte) int {
	f, err := OpenBytes(data, &Options{})
	if err != nil {
		return 0
	}
	defer f.Close()

	if _, err := f.FindInheritedTests(append([]string(nil), DefaultJUnit3Descriptors...)); err != nil {
		return 0
	}
	if _, err := f.FindAnnotatedTests(DefaultJUnit4AnnotationDescriptor); err != nil {
		return 0
	}
	return 1
}
