//go:build !debug_tagheap

package tagheap

const (
	// PoisonFreedMemory reports whether freed payload ranges are scribbled over
	// with a poison pattern. This constant is true only when the debug_tagheap
	// build tag is present.
	PoisonFreedMemory = false
)

// WritePoisonValue writes an easy-to-identify marker across size bytes of data
// beginning at offset. This method no-ops unless the debug_tagheap build tag
// is present.
func WritePoisonValue(data []byte, offset int, size int) {
}

// ValidatePoisonValue verifies that the marker written by WritePoisonValue is
// still present across size bytes of data beginning at offset. It returns true
// if the marker is intact and false otherwise. This method always returns true
// unless the debug_tagheap build tag is present.
func ValidatePoisonValue(data []byte, offset int, size int) bool {
	return true
}

// DebugValidate will call Validate on the provided object and panics if any
// errors are returned. This method no-ops unless the debug_tagheap build tag
// is present
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of
// two, and panics if it is not. This method no-ops unless the debug_tagheap
// build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
}
