//go:build amd64

package jit

import (
	"errors"
	"unsafe"
)

var errEmptyProgram = errors.New("jit: cannot load an empty program")

// callNative invokes the System V AMD64 function at code with the compiled
// program's seven fixed arguments, returning its processTime. cngPtr/rngPtr
// are the addresses of the *Generator values Program.Run was called with;
// the compiled code only dereferences them if it actually lowered a SET or
// RNG opcode. Implemented in call_amd64.s: a Go function value cannot be
// called directly here, since a call through Go syntax would use Go's own
// calling convention, not the System V one Compile's generated code
// expects — the standard way to bridge that gap without cgo is a short
// Plan 9 assembly trampoline that loads the System V argument registers
// itself before CALLing the mapped code. callback_amd64.go/.s implement
// the reverse crossing, for when the mapped code itself needs to call back
// into Go.
func callNative(code uintptr, inputs *float64, inputLen int64, registers *float64, registerLen int64, maxProcessTime uint64, cngPtr, rngPtr uintptr) uint64

func firstByteAddr(mem []byte) unsafe.Pointer {
	return unsafe.Pointer(&mem[0])
}
