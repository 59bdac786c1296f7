package buildinfo

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for UI/logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 12 {
			return Commit[:12]
		}
		return Commit
	}
	return "dev"
}

// Title is the host window title for a running suite.
func Title(suite string) string {
	if suite == "" {
		return fmt.Sprintf("midp (%s)", Short())
	}
	return fmt.Sprintf("%s - midp (%s)", suite, Short())
}

// Platform is the value reported through microedition.platform when the
// configured phone does not override it.
func Platform() string {
	return "midp/" + Short()
}
