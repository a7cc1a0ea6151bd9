//go:build debug_tagheap

package tagheap

const (
	// PoisonFreedMemory reports whether freed payload ranges are scribbled over
	// with poisonPattern. This constant is true only when the debug_tagheap
	// build tag is present.
	PoisonFreedMemory = true
	// poisonPattern is a 4-byte pattern copied across freed payload bytes so
	// that use-after-free reads are easy to identify in a debugger
	poisonPattern uint32 = 0x7F84E666
)

// WritePoisonValue writes an easy-to-identify marker across size bytes of data
// beginning at offset. Trailing bytes that do not fit a full 4-byte pattern are
// left untouched. This method no-ops unless the debug_tagheap build tag is
// present.
func WritePoisonValue(data []byte, offset int, size int) {
	for ; size >= 4; size -= 4 {
		data[offset] = byte(poisonPattern)
		data[offset+1] = byte(poisonPattern >> 8)
		data[offset+2] = byte(poisonPattern >> 16)
		data[offset+3] = byte(poisonPattern >> 24)
		offset += 4
	}
}

// ValidatePoisonValue verifies that the marker written by WritePoisonValue is
// still present across size bytes of data beginning at offset. It returns true
// if the marker is intact and false otherwise. This method always returns true
// unless the debug_tagheap build tag is present.
func ValidatePoisonValue(data []byte, offset int, size int) bool {
	for ; size >= 4; size -= 4 {
		value := uint32(data[offset]) | uint32(data[offset+1])<<8 |
			uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24
		if value != poisonPattern {
			return false
		}
		offset += 4
	}

	return true
}

// DebugValidate will call Validate on the provided object and panics if any
// errors are returned. This method no-ops unless the debug_tagheap build tag
// is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of
// two, and panics if it is not. This method no-ops unless the debug_tagheap
// build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
