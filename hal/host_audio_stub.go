//go:build !cgo

package hal

// Without cgo there is no sound device; streams are drained silently.
func newHostAudio() Audio { return newDrainAudio() }
