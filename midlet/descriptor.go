// Package midlet reads MIDlet suites: the JAR manifest and JAD descriptor
// attributes, packaged resources, and the Go entry point a suite names.
package midlet

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseDescriptor reads "Key: value" attributes from r into m. A line that
// starts with a space continues the previous value; blank lines are skipped.
// Later keys overwrite earlier ones.
func ParseDescriptor(r io.Reader, m map[string]string) error {
	var (
		key string
		val strings.Builder
	)
	flush := func() {
		if key != "" {
			m[key] = strings.TrimSpace(val.String())
		}
		val.Reset()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, " ") {
			val.WriteString(line[1:])
			continue
		}
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		flush()
		key = strings.TrimSpace(line[:i])
		val.WriteString(strings.TrimSpace(line[i+1:]))
	}
	flush()
	if err := sc.Err(); err != nil {
		return fmt.Errorf("midlet: read descriptor: %w", err)
	}
	return nil
}

// WriteManifest writes attrs as a manifest with Manifest-Version first and
// the rest in the order given. Lines longer than 72 bytes are folded.
func WriteManifest(w io.Writer, attrs [][2]string) error {
	bw := bufio.NewWriter(w)
	write := func(k, v string) {
		line := k + ": " + v
		for len(line) > 72 {
			bw.WriteString(line[:72])
			bw.WriteString("\r\n ")
			line = line[72:]
		}
		bw.WriteString(line)
		bw.WriteString("\r\n")
	}
	write("Manifest-Version", "1.0")
	for _, kv := range attrs {
		if kv[0] == "Manifest-Version" {
			continue
		}
		write(kv[0], kv[1])
	}
	bw.WriteString("\r\n")
	return bw.Flush()
}
