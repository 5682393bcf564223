// Package genome implements Individual (component E of SPEC_FULL.md §4):
// one evaluable G-assembly program, paired with its fuel budget, scratch
// register file, constant/uniform generators, and a lazily-compiled native
// artifact.
//
// Grounded on lang/machine/thread.go's Thread: a MaxSteps/cancelled-atomic
// shape becomes maxProcessTime plus an owned compiled-code handle here.
// Setting a new bytecode invalidates the compiled artifact exactly as
// Thread's RunProgram refuses reentry rather than silently reusing stale
// state — the next Run recompiles instead. cng/rng do not invalidate it:
// engine/jit.Program.Run takes them per call rather than baking them into
// the compiled code, so swapping generators never forces a recompile.
package genome

import (
	"fmt"
	"sync"

	"github.com/komumati1/GAsm/engine/codec"
	"github.com/komumati1/GAsm/engine/gerr"
	"github.com/komumati1/GAsm/engine/interp"
	"github.com/komumati1/GAsm/engine/jit"
)

// Generator supplies a single float64 per call: cng for SET's constants,
// rng for RNG's uniform draws. Shared type with engine/interp.
type Generator = interp.Generator

// Individual is one evaluable program: a bytecode body plus the machinery
// (fuel budget, scratch registers, generators, compiled code) to run it.
// The zero value is not usable; construct with New or NewFromText.
type Individual struct {
	mu             sync.Mutex
	bytecode       []byte
	registerLength int
	maxProcessTime uint64
	cng, rng       Generator
	useJIT         bool

	compiled      *jit.Program
	compileFailed bool // sticky until the bytecode changes: don't retry a program the JIT has already rejected
}

// defaultGenerator is used when New is given a nil cng/rng: it always
// returns 0, matching the zero-valued behavior engine/interp's own tests
// use for zeroGen.
func defaultGenerator() float64 { return 0 }

// New constructs an Individual over bytecode with the given scratch
// register count. maxProcessTime is the fuel budget passed to every Run.
// useJIT enables the native fast path; Compile cannot fail on well-formed
// bytecode (every defined opcode lowers natively), so the engine/interp
// fallback only triggers on a genuine compilation-infrastructure error
// (e.g. the executable mapping syscalls failing).
func New(bytecode []byte, registerLength int, maxProcessTime uint64, useJIT bool) (*Individual, error) {
	if registerLength <= 0 {
		return nil, fmt.Errorf("%w: register_length must be positive", gerr.ErrInvalidArgument)
	}
	ind := &Individual{
		registerLength: registerLength,
		maxProcessTime: maxProcessTime,
		cng:            defaultGenerator,
		rng:            defaultGenerator,
		useJIT:         useJIT,
	}
	ind.setBytecodeLocked(bytecode)
	return ind, nil
}

// NewFromText parses mnemonic assembly text into an Individual, failing
// opcode.ErrUnknownMnemonic (wrapped) on the first unresolvable token.
func NewFromText(text string, registerLength int, maxProcessTime uint64, useJIT bool) (*Individual, error) {
	bc, err := codec.ParseText(text)
	if err != nil {
		return nil, err
	}
	return New(bc, registerLength, maxProcessTime, useJIT)
}

func (ind *Individual) setBytecodeLocked(bytecode []byte) {
	cp := make([]byte, len(bytecode))
	copy(cp, bytecode)
	ind.bytecode = cp
	ind.invalidateLocked()
}

func (ind *Individual) invalidateLocked() {
	if ind.compiled != nil {
		_ = ind.compiled.Close()
		ind.compiled = nil
	}
	ind.compileFailed = false
}

// SetBytecode replaces the program, invalidating any compiled artifact.
func (ind *Individual) SetBytecode(bytecode []byte) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.setBytecodeLocked(bytecode)
}

// Bytecode returns a defensive copy of the current program.
func (ind *Individual) Bytecode() []byte {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	out := make([]byte, len(ind.bytecode))
	copy(out, ind.bytecode)
	return out
}

// SetRegisterLength resizes the scratch register file used by future Run
// calls; the register contents themselves are always zeroed at the start
// of Run regardless, per SPEC_FULL.md §3's VM State invariants.
func (ind *Individual) SetRegisterLength(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: register_length must be positive", gerr.ErrInvalidArgument)
	}
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.registerLength = n
	return nil
}

// RegisterLength returns the current scratch register count.
func (ind *Individual) RegisterLength() int {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.registerLength
}

// SetMaxProcessTime changes the fuel budget for future Run calls.
func (ind *Individual) SetMaxProcessTime(n uint64) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.maxProcessTime = n
}

// MaxProcessTime returns the current fuel budget.
func (ind *Individual) MaxProcessTime() uint64 {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.maxProcessTime
}

// SetCng replaces the SET-opcode constant generator. Does not invalidate
// any compiled artifact: engine/jit.Program.Run takes cng per call rather
// than baking it in, so the next Run simply uses the new generator.
func (ind *Individual) SetCng(cng Generator) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if cng == nil {
		cng = defaultGenerator
	}
	ind.cng = cng
}

// SetRng replaces the RNG-opcode uniform generator. See SetCng.
func (ind *Individual) SetRng(rng Generator) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if rng == nil {
		rng = defaultGenerator
	}
	ind.rng = rng
}

// SetUseJIT toggles the native fast path. Disabling it does not discard an
// already-compiled artifact; re-enabling simply resumes using it.
func (ind *Individual) SetUseJIT(use bool) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.useJIT = use
}

// UseJIT reports whether Run currently prefers the native fast path.
func (ind *Individual) UseJIT() bool {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.useJIT
}

// String renders the current program as mnemonic assembly text, one
// instruction per line (Individual.to_string() in SPEC_FULL.md §4.5).
func (ind *Individual) String() string {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return codec.Disassemble(ind.bytecode)
}

// Close releases any compiled native artifact the Individual owns. Safe to
// call on an Individual with nothing compiled.
func (ind *Individual) Close() error {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if ind.compiled == nil {
		return nil
	}
	err := ind.compiled.Close()
	ind.compiled = nil
	return err
}

// Clone deep-copies the program and configuration into a fresh Individual.
// The clone never inherits a compiled artifact — SPEC_FULL.md §4.4 ("Cloning
// an Individual deep-copies its bytecode but invalidates any compiled
// artifact") — so its first Run recompiles independently and the clone
// never shares executable memory with the original.
func (ind *Individual) Clone() *Individual {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	bc := make([]byte, len(ind.bytecode))
	copy(bc, ind.bytecode)
	return &Individual{
		bytecode:       bc,
		registerLength: ind.registerLength,
		maxProcessTime: ind.maxProcessTime,
		cng:            ind.cng,
		rng:            ind.rng,
		useJIT:         ind.useJIT,
	}
}

// Run executes the program against inputs (mutated in place, also serving
// as output), returning the final processTime. Registers are zeroed at the
// start of every call. Run dispatches to the compiled native artifact when
// useJIT is set and compilation of this bytecode has not already failed;
// a JIT compilation error — not expected for well-formed bytecode, but
// possible if the executable-mapping syscalls themselves fail — is
// recorded so subsequent calls go straight to engine/interp without
// retrying the compile.
func (ind *Individual) Run(inputs []float64) (uint64, error) {
	ind.mu.Lock()
	bytecode := ind.bytecode
	registerLength := ind.registerLength
	maxProcessTime := ind.maxProcessTime
	cng, rng := ind.cng, ind.rng
	useJIT := ind.useJIT
	registers := make([]float64, registerLength)

	if useJIT && !ind.compileFailed {
		if ind.compiled == nil {
			p, err := jit.Compile(bytecode)
			if err != nil {
				ind.compileFailed = true
			} else {
				ind.compiled = p
			}
		}
	}
	compiled := ind.compiled
	ind.mu.Unlock()

	if compiled != nil {
		return compiled.Run(inputs, registers, maxProcessTime, cng, rng)
	}
	return interp.Run(bytecode, inputs, registers, maxProcessTime, cng, rng)
}
