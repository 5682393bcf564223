//go:build amd64

package jit

import (
	"math"
	"reflect"
	"unsafe"
)

// callGenerator and callMathFn1 are implemented in callback_amd64.s. They
// are never invoked through an ordinary Go call expression — a Go call
// site would use Go's own calling convention, not the System V one
// Compile's generated code speaks — only through a CALL against their
// address, hand-encoded directly into Compile's output (see
// asm.emitCrossToGo/emitMathCall). The zero-arg, zero-return declarations
// here exist so the linker keeps both symbols reachable and
// reflect.ValueOf can recover their entry address below.
func callGenerator()
func callMathFn1()

// mathSinFn, mathCosFn, mathExpFn pin math.Sin/Cos/Exp as addressable,
// process-lifetime package-level func values. SIN_R/SIN_I, COS_R/COS_I,
// and EXP_R/EXP_I each lower to a callMathFn1 call against one of these,
// crossing from raw native code back into the Go runtime's own
// transcendental-function implementations rather than hand-rolling them
// with x87 sequences the rest of this SSE2-based register plan would then
// have to bridge to and from on every call anyway.
var (
	mathSinFn = math.Sin
	mathCosFn = math.Cos
	mathExpFn = math.Exp
)

// These addresses are fixed for the life of the process — global package
// vars and func entry points never move — so Compile bakes them directly
// into the generated code as immediates instead of threading them through
// Program.Run the way cngPtr/rngPtr must be (those vary per call).
var (
	callGeneratorAddr = reflect.ValueOf(callGenerator).Pointer()
	callMathFn1Addr   = reflect.ValueOf(callMathFn1).Pointer()

	mathSinFnAddr = uintptr(unsafe.Pointer(&mathSinFn))
	mathCosFnAddr = uintptr(unsafe.Pointer(&mathCosFn))
	mathExpFnAddr = uintptr(unsafe.Pointer(&mathExpFn))
)
