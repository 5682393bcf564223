// Package interp is the authoritative reference implementation of
// G-assembly execution: a straight-line stack machine that the JIT
// (engine/jit) is specified to agree with bit-for-bit, modulo IEEE-754
// transcendental-function implementations (SPEC_FULL.md §4.3).
//
// Structurally this mirrors the teacher's machine.run (lang/machine/
// machine.go): a flat dispatch loop over an instruction stream, a fuel
// counter (processTime/maxProcessTime here, steps/maxSteps there) checked
// once per instruction, and an explicit control-flow stack instead of
// recursion.
package interp

import (
	"fmt"
	"math"

	"github.com/komumati1/GAsm/engine/gerr"
	"github.com/komumati1/GAsm/engine/opcode"
)

// Generator supplies a single float64 on each call: cng for the SET
// opcode's constants, rng for the RNG opcode's uniform draws.
type Generator func() float64

// frame is one entry of the control stack. Every structural opener that
// does not skip its body pushes one: FOR always, LOP_A/LOP_P when the guard
// holds, JMP_I/JMP_R/JMP_P when the guard fails (so its matching END can
// tell "simply pop" apart from an enclosing loop's back-edge test).
type frame struct {
	opener opcode.Opcode
	site   int // index of the opener instruction, for the FOR back-edge
	savedP int64
}

// Run executes bytecode against inputs (mutated in place, also serving as
// output) and a scratch registers slice (zeroed at the start of every
// call, per the VM State invariants in SPEC_FULL.md §3). It returns the
// final processTime. Fuel is checked once per opcode body, including loop
// back-edges, so execution always halts within maxProcessTime+1 steps.
func Run(bytecode []byte, inputs, registers []float64, maxProcessTime uint64, cng, rng Generator) (uint64, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: inputs must be non-empty", gerr.ErrInvalidArgument)
	}
	if len(registers) == 0 {
		return 0, fmt.Errorf("%w: registers must be non-empty", gerr.ErrInvalidArgument)
	}
	for i := range registers {
		registers[i] = 0
	}

	var (
		A           float64
		P           int64
		processTime uint64
		skipToEnd   bool
		stack       []frame
		inputLen    = int64(len(inputs))
		registerLen = int64(len(registers))
	)

	modIdx := func(p, length int64) int64 {
		m := p % length
		if m < 0 {
			m += length
		}
		return m
	}

	for i := 0; i < len(bytecode); i++ {
		op := opcode.Opcode(bytecode[i])

		switch op {
		case opcode.MOV_P_A:
			P = int64(A)
		case opcode.MOV_A_P:
			A = float64(P)
		case opcode.MOV_A_R:
			A = registers[modIdx(P, registerLen)]
		case opcode.MOV_A_I:
			A = inputs[modIdx(P, inputLen)]
		case opcode.MOV_R_A:
			registers[modIdx(P, registerLen)] = A
		case opcode.MOV_I_A:
			inputs[modIdx(P, inputLen)] = A

		case opcode.ADD_R:
			A += registers[modIdx(P, registerLen)]
		case opcode.SUB_R:
			A -= registers[modIdx(P, registerLen)]
		case opcode.DIV_R:
			A /= registers[modIdx(P, registerLen)]
		case opcode.MUL_R:
			A *= registers[modIdx(P, registerLen)]
		case opcode.SIN_R:
			A = math.Sin(registers[modIdx(P, registerLen)])
		case opcode.COS_R:
			A = math.Cos(registers[modIdx(P, registerLen)])
		case opcode.EXP_R:
			A = math.Exp(registers[modIdx(P, registerLen)])

		case opcode.ADD_I:
			A += inputs[modIdx(P, inputLen)]
		case opcode.SUB_I:
			A -= inputs[modIdx(P, inputLen)]
		case opcode.DIV_I:
			A /= inputs[modIdx(P, inputLen)]
		case opcode.MUL_I:
			A *= inputs[modIdx(P, inputLen)]
		case opcode.SIN_I:
			A = math.Sin(inputs[modIdx(P, inputLen)])
		case opcode.COS_I:
			A = math.Cos(inputs[modIdx(P, inputLen)])
		case opcode.EXP_I:
			A = math.Exp(inputs[modIdx(P, inputLen)])

		case opcode.INC:
			P++
		case opcode.DEC:
			P--
		case opcode.RES:
			P = 0
		case opcode.SET:
			A = cng()

		case opcode.FOR:
			stack = append(stack, frame{opener: opcode.FOR, site: i, savedP: P})
			P = 0

		case opcode.LOP_A:
			if A < inputs[modIdx(P, inputLen)] {
				stack = append(stack, frame{opener: opcode.LOP_A, site: i})
			} else {
				skipToEnd = true
			}

		case opcode.LOP_P:
			if P < inputLen {
				stack = append(stack, frame{opener: opcode.LOP_P, site: i})
			} else {
				skipToEnd = true
			}

		case opcode.JMP_I:
			if A >= inputs[modIdx(P, inputLen)] {
				skipToEnd = true
			} else {
				stack = append(stack, frame{opener: opcode.JMP_I, site: i})
			}
		case opcode.JMP_R:
			if A >= registers[modIdx(P, registerLen)] {
				skipToEnd = true
			} else {
				stack = append(stack, frame{opener: opcode.JMP_R, site: i})
			}
		case opcode.JMP_P:
			if float64(P) >= A {
				skipToEnd = true
			} else {
				stack = append(stack, frame{opener: opcode.JMP_P, site: i})
			}

		case opcode.END:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				switch top.opener {
				case opcode.FOR:
					P = top.savedP + 1
					if P < inputLen {
						stack[len(stack)-1].savedP = P
						i = top.site
					} else {
						stack = stack[:len(stack)-1]
					}
				case opcode.LOP_A:
					if A < inputs[modIdx(P, inputLen)] {
						i = top.site
					} else {
						stack = stack[:len(stack)-1]
					}
				case opcode.LOP_P:
					if P < inputLen {
						i = top.site
					} else {
						stack = stack[:len(stack)-1]
					}
				default: // JMP_I, JMP_R, JMP_P
					stack = stack[:len(stack)-1]
				}
			}

		case opcode.RNG:
			A = rng()

		default:
			// undefined opcode: tolerated as a no-op (§7)
		}

		processTime++
		if processTime > maxProcessTime {
			break
		}

		if skipToEnd {
			i = skipToMatchingEnd(bytecode, i+1)
			skipToEnd = false
		}
	}

	return processTime, nil
}

// skipToMatchingEnd advances i to the index of the END that matches the
// structural opener just evaluated at i, counting nested openers so that
// inner loops/conditionals are skipped whole.
func skipToMatchingEnd(bytecode []byte, i int) int {
	depth := 0
	for ; i < len(bytecode); i++ {
		op := opcode.Opcode(bytecode[i])
		if isOpener(op) {
			depth++
		} else if op == opcode.END {
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return i
}

func isOpener(op opcode.Opcode) bool {
	switch op {
	case opcode.FOR, opcode.LOP_A, opcode.LOP_P, opcode.JMP_I, opcode.JMP_R, opcode.JMP_P:
		return true
	default:
		return false
	}
}
