// Windows has no SIGTERM; the runtime maps Ctrl+C, Ctrl+Break and console
// close to os.Interrupt.

//go:build windows

package main

import (
	"os"
	"os/signal"
)

// signalChannel returns a buffered channel receiving os.Interrupt.
func signalChannel() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}
