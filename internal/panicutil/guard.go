// Package panicutil contains a panic in one unit of work so it cannot take down its neighbours.
package panicutil

import (
	"github.com/sourcegraph/conc/panics"
)

// Guard runs f and returns its error.
// If f panics, Guard recovers and returns the panic as *panics.ErrRecovered instead.
func Guard(f func() error) (err error) {
	if recovered := panics.Try(func() { err = f() }); recovered != nil {
		return recovered.AsError()
	}
	return err
}
