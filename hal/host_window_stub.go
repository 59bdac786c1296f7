//go:build !cgo

package hal

import "errors"

// WindowConfig describes the desktop window host.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	Scale  int
	Depth  int
}

func NewWindow(WindowConfig) (Host, error) {
	return nil, errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
