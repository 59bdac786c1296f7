package midlet

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestParseDescriptor(t *testing.T) {
	in := "Manifest-Version: 1.0\r\n" +
		"MIDlet-1: Space Game, /icon.png, com.example.Game\n" +
		"\n" +
		"MIDlet-Description: a very long\n" +
		"  description\n" +
		"Broken line without colon\n" +
		"Nokia-MIDlet-Category :  Game  \n"
	m := map[string]string{}
	if err := ParseDescriptor(strings.NewReader(in), m); err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	want := map[string]string{
		"Manifest-Version":      "1.0",
		"MIDlet-1":              "Space Game, /icon.png, com.example.Game",
		"MIDlet-Description":    "a very long description",
		"Nokia-MIDlet-Category": "Game",
	}
	if len(m) != len(want) {
		t.Fatalf("ParseDescriptor() = %v, want %v", m, want)
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("m[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestWriteManifestRoundTrip(t *testing.T) {
	long := strings.Repeat("x", 150)
	var buf bytes.Buffer
	if err := WriteManifest(&buf, [][2]string{{"MIDlet-Name", "Demo"}, {"MIDlet-Description", long}}); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\r\n") {
		if len(line) > 73 {
			t.Fatalf("line of %d bytes not folded", len(line))
		}
	}
	m := map[string]string{}
	ParseDescriptor(&buf, m)
	if m["MIDlet-Description"] != long || m["Manifest-Version"] != "1.0" {
		t.Fatalf("parsed back %v", m)
	}
}

func TestSanitizeID(t *testing.T) {
	if got := SanitizeID(`a<b>c:d"e/f\g|h?i*j`); got != "a_b_c_d_e_f_g_h_i_j" {
		t.Fatalf("SanitizeID() = %q", got)
	}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"META-INF/MANIFEST.MF": {Data: []byte("MIDlet-1: My: Game, /img/Icon.png, demo.Main\nMIDlet-Vendor: Acme\n")},
		"img/Icon.png":         {Data: []byte("icon")},
		"data/Level1.bin":      {Data: []byte{1, 2, 3}},
	}
}

func TestSuiteManifest(t *testing.T) {
	s, err := NewSuite(testFS(), "")
	if err != nil {
		t.Fatalf("NewSuite() error = %v", err)
	}
	if s.Name() != "My: Game" || s.Class() != "demo.Main" {
		t.Fatalf("Name(), Class() = %q, %q", s.Name(), s.Class())
	}
	if s.AppID() != "My_ Game" {
		t.Fatalf("AppID() = %q, want %q", s.AppID(), "My_ Game")
	}
	if v, _ := s.Property("MIDlet-Vendor"); v != "Acme" {
		t.Fatalf("Property(MIDlet-Vendor) = %q", v)
	}
	if got := string(s.Icon()); got != "icon" {
		t.Fatalf("Icon() = %q", got)
	}

	s.SetProperties(map[string]string{"MIDlet-1": "Other, , other.Main"})
	if s.Class() != "other.Main" || s.AppID() != "Other" || s.Icon() != nil {
		t.Fatalf("after SetProperties: class %q id %q", s.Class(), s.AppID())
	}
}

func TestFixedAppIDSurvivesProperties(t *testing.T) {
	s, _ := NewSuite(testFS(), "saved")
	s.SetProperties(map[string]string{"MIDlet-1": "Renamed, , x.Y"})
	if s.AppID() != "saved" {
		t.Fatalf("AppID() = %q, want saved", s.AppID())
	}
}

func TestResourceLookup(t *testing.T) {
	s, _ := NewSuite(testFS(), "")
	for _, name := range []string{"data/Level1.bin", "/data/Level1.bin", "//data/Level1.bin", "/DATA/level1.BIN"} {
		data, err := s.Resource(name)
		if err != nil || len(data) != 3 {
			t.Fatalf("Resource(%q) = %v, %v", name, data, err)
		}
	}
	if _, err := s.Resource("missing.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resource(missing) error = %v, want ErrNotFound", err)
	}
}

func TestReadJAR(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("meta-inf/manifest.mf")
	WriteManifest(w, [][2]string{{"MIDlet-1", "Jar, , jar.Main"}})
	w, _ = zw.Create("res/a.txt")
	w.Write([]byte("hello"))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}

	s, err := ReadJAR(buf.Bytes(), "")
	if err != nil {
		t.Fatalf("ReadJAR() error = %v", err)
	}
	if s.Class() != "jar.Main" {
		t.Fatalf("Class() = %q, want jar.Main", s.Class())
	}
	if data, err := s.Resource("/res/a.txt"); err != nil || string(data) != "hello" {
		t.Fatalf("Resource() = %q, %v", data, err)
	}
}

type fakeMIDlet struct {
	started bool
	err     error
}

func (m *fakeMIDlet) StartApp() error {
	m.started = true
	return m.err
}

func TestStart(t *testing.T) {
	var got Env
	Register("test.Ok", func(env Env) (MIDlet, error) {
		got = env
		return &fakeMIDlet{}, nil
	})
	Register("test.Fails", func(Env) (MIDlet, error) { return &fakeMIDlet{err: errors.New("boom")}, nil })
	Register("test.Panics", func(Env) (MIDlet, error) { panic("nope") })

	s := Builtin("test.Ok")
	m, err := s.Start(Env{})
	if err != nil || !m.(*fakeMIDlet).started {
		t.Fatalf("Start() = %v, %v", m, err)
	}
	if got.Suite != s {
		t.Fatalf("factory saw suite %p, want %p", got.Suite, s)
	}

	if _, err := Builtin("test.Fails").Start(Env{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Start(failing) error = %v", err)
	}
	if _, err := Builtin("test.Panics").Start(Env{}); err == nil {
		t.Fatalf("Start(panicking) error = nil")
	}
	if _, err := Builtin("test.Missing").Start(Env{}); !errors.Is(err, ErrNoEntryPoint) {
		t.Fatalf("Start(missing) error = %v, want ErrNoEntryPoint", err)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	Register("test.Dup", func(Env) (MIDlet, error) { return &fakeMIDlet{}, nil })
	defer func() {
		if recover() == nil {
			t.Fatalf("second Register() did not panic")
		}
	}()
	Register("test.Dup", func(Env) (MIDlet, error) { return &fakeMIDlet{}, nil })
}
