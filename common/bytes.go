package common

import (
	"unsafe"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads or
// binary container assembly.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// BytesToSlice reinterprets a byte slice as a slice of T without copying.
// This is the inverse of SliceToBytes and is used to view accessor byte ranges
// as typed numeric sequences. The byte length must be an exact multiple of T's
// size, and the base address must satisfy T's alignment; reinterpreting a
// misaligned pointer is outside the unsafe package's contract.
// WARNING: The returned slice shares memory with the input - do not modify
// either while the other is in use.
//
// Parameters:
//   - data: source byte slice
//
// Returns:
//   - []T: typed view of the input bytes, or nil if input is empty
//   - bool: false if len(data) is not a multiple of T's size or the base
//     address is not aligned for T
func BytesToSlice[T any](data []byte) ([]T, bool) {
	if len(data) == 0 {
		return nil, true
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(data)%size != 0 {
		return nil, false
	}
	if uintptr(unsafe.Pointer(&data[0]))%unsafe.Alignof(zero) != 0 {
		return nil, false
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/size), true
}
