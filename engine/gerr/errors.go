// Package gerr defines the four error kinds shared across the engine (see
// SPEC_FULL.md §7): UnknownMnemonic, InvalidArgument, IoError, and
// JsonFormat. Every package that can fail in one of these ways wraps the
// matching sentinel with fmt.Errorf("...: %w", ...) so callers can test
// with errors.Is regardless of which package raised it.
package gerr

import "errors"

var (
	// ErrUnknownMnemonic: the text parser saw a token it cannot resolve to
	// a defined opcode.
	ErrUnknownMnemonic = errors.New("unknown mnemonic")

	// ErrInvalidArgument: a zero-length inputs or registers slice, or a
	// missing/empty program, was passed where the invariants in
	// SPEC_FULL.md §3 require at least one element.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIoError: opening, reading, or writing a checkpoint file failed.
	ErrIoError = errors.New("io error")

	// ErrJsonFormat: a checkpoint's JSON is malformed or missing a
	// required key.
	ErrJsonFormat = errors.New("malformed checkpoint json")
)
