//go:build !windows

package jit

import "syscall"

// load copies code into a fresh anonymous mapping and flips it from
// read+write to read+execute, the same two-step dance engine/jit's nearest
// pack analogue (the memcp JIT in other_examples) uses: mmap RW, copy,
// mprotect RX. syscall.Mmap/Mprotect are stdlib — no example repo wraps
// raw mmap in a third-party crate, and wrapping the two-syscall sequence
// in one would add a dependency for a single call site.
func load(code []byte) (*Program, error) {
	if len(code) == 0 {
		return nil, errEmptyProgram
	}

	page := syscall.Getpagesize()
	size := (len(code) + page - 1) &^ (page - 1)

	mem, err := syscall.Mmap(-1, 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_PRIVATE|syscall.MAP_ANON)
	if err != nil {
		return nil, err
	}
	copy(mem, code)

	if err := syscall.Mprotect(mem, syscall.PROT_READ|syscall.PROT_EXEC); err != nil {
		_ = syscall.Munmap(mem)
		return nil, err
	}

	return &Program{mem: mem}, nil
}
