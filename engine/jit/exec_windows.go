//go:build windows

package jit

// load is unimplemented on Windows: the executable-mapping path would need
// VirtualAlloc/VirtualProtect (what GAsmCompiler.cpp's #elifdef branch
// used), which no repo in the retrieval pack exercises. Callers get a
// clear error and fall back to engine/interp.
func load(code []byte) (*Program, error) {
	return nil, errPlatform
}
