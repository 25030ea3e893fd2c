//go:build !cgo

package main

import "context"

func runWindow(_ context.Context, _ *options) error {
	return ErrWindowUnsupported
}
