package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"midp/midlet"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestPackReadsBack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "META-INF", "MANIFEST.MF"), "Manifest-Version: 1.0\nMIDlet-Vendor: Old\nCustom-Key: kept\n")
	writeFile(t, filepath.Join(dir, "res", "level.dat"), "LEVEL")

	attrs, err := manifestAttrs(dir, "Demo", "midp.demo.Snake", "Acme", "2.0", "/icon.png")
	if err != nil {
		t.Fatalf("manifestAttrs() error = %v", err)
	}
	var jar bytes.Buffer
	if err := pack(&jar, dir, attrs, io.Discard); err != nil {
		t.Fatalf("pack() error = %v", err)
	}

	s, err := midlet.ReadJAR(jar.Bytes(), "")
	if err != nil {
		t.Fatalf("ReadJAR() error = %v", err)
	}
	if s.Class() != "midp.demo.Snake" || s.Name() != "Demo" {
		t.Fatalf("suite class %q name %q", s.Class(), s.Name())
	}
	for k, want := range map[string]string{"MIDlet-Vendor": "Acme", "Custom-Key": "kept", "MIDlet-Version": "2.0"} {
		if got, _ := s.Property(k); got != want {
			t.Fatalf("Property(%q) = %q, want %q", k, got, want)
		}
	}
	if data, err := s.Resource("/res/level.dat"); err != nil || string(data) != "LEVEL" {
		t.Fatalf("Resource() = %q, %v", data, err)
	}
}

func TestManifestNeedsEntryPoint(t *testing.T) {
	if _, err := manifestAttrs(t.TempDir(), "x", "", "", "1.0", ""); err == nil {
		t.Fatalf("manifestAttrs() without a class succeeded")
	}
}

func TestWriteJAD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.jad")
	if err := writeJAD(path, "demo.jar", 1234, [][2]string{{"MIDlet-1", "D, , d.Main"}}); err != nil {
		t.Fatalf("writeJAD() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	m := map[string]string{}
	if err := midlet.ParseDescriptor(f, m); err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	if m["MIDlet-Jar-Size"] != "1234" || m["MIDlet-Jar-URL"] != "demo.jar" || m["MIDlet-1"] != "D, , d.Main" {
		t.Fatalf("jad = %v", m)
	}
}
