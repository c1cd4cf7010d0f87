// Package yategrep wires the parser, query, grep driver and writer into
// one end-to-end Run call, the shape cmd uses to implement the CLI.
package yategrep

import "errors"

// Sentinel errors so callers can branch with errors.Is instead of
// matching on message text.
var (
	ErrArgument      = errors.New("argument error")
	ErrMalformedQuery = errors.New("malformed query")
	ErrOpenInput     = errors.New("cannot open input")
	ErrOpenOutput    = errors.New("cannot open output")
)
