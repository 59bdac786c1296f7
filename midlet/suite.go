package midlet

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"regexp"
	"strings"
	"sync"

	"midp/internal/logging"
)

var (
	// ErrNotFound is returned for resources missing from the suite.
	ErrNotFound = errors.New("midlet: resource not found")
	// ErrNoEntryPoint is returned by Start when the suite names no
	// registered class.
	ErrNoEntryPoint = errors.New("midlet: no entry point")
)

const manifestName = "META-INF/MANIFEST.MF"

var unsafeID = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeID makes s usable as a file or archive entry name.
func SanitizeID(s string) string {
	return unsafeID.ReplaceAllString(s, "_")
}

// Suite is one MIDlet suite: its attributes and packaged files. Files are
// read through an fs.FS, so a suite can be a JAR, an unpacked directory or
// nothing at all for built-in MIDlets.
type Suite struct {
	fsys   fs.FS
	closer io.Closer

	mu    sync.Mutex
	props map[string]string
	name  string
	icon  string
	class string
	appID string
	fixed bool

	foldOnce sync.Once
	folded   map[string]string
}

// NewSuite reads the manifest of fsys, if any. A non-empty appID is kept as
// is; otherwise the id is derived from the MIDlet-1 name.
func NewSuite(fsys fs.FS, appID string) (*Suite, error) {
	s := &Suite{fsys: fsys, props: make(map[string]string)}
	if appID != "" {
		s.appID = appID
		s.fixed = true
	}
	if fsys == nil {
		return s, nil
	}
	f, err := s.open(manifestName)
	if err != nil {
		logging.Logger().Warn("midlet: no manifest", "error", err)
		return s, nil
	}
	defer f.Close()
	if err := ParseDescriptor(f, s.props); err != nil {
		return nil, err
	}
	s.handleProperties()
	return s, nil
}

// OpenJAR opens a suite from a JAR file. Close releases the file.
func OpenJAR(name, appID string) (*Suite, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("midlet: open %q: %w", name, err)
	}
	s, err := NewSuite(zr, appID)
	if err != nil {
		zr.Close()
		return nil, err
	}
	s.closer = zr
	logging.Logger().Info("midlet: suite loaded", "jar", name, "name", s.Name(), "class", s.Class(), "app_id", s.AppID())
	return s, nil
}

// ReadJAR reads a suite from JAR bytes held in memory.
func ReadJAR(data []byte, appID string) (*Suite, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("midlet: read jar: %w", err)
	}
	return NewSuite(zr, appID)
}

// Builtin is a suite with no files whose entry point is class.
func Builtin(class string) *Suite {
	s, _ := NewSuite(nil, "")
	s.SetProperties(map[string]string{"MIDlet-1": class + ", , " + class})
	return s
}

func (s *Suite) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// SetProperties merges descriptor attributes, typically from a JAD file,
// over the manifest and re-reads MIDlet-1.
func (s *Suite) SetProperties(props map[string]string) {
	s.mu.Lock()
	maps.Copy(s.props, props)
	s.mu.Unlock()
	s.handleProperties()
}

// SetClass overrides the entry point named by MIDlet-1.
func (s *Suite) SetClass(class string) {
	s.mu.Lock()
	s.class = class
	s.mu.Unlock()
}

func (s *Suite) handleProperties() {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.props["MIDlet-1"]
	if !ok {
		return
	}
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		logging.Logger().Warn("midlet: malformed MIDlet-1", "value", v)
		return
	}
	s.name = strings.TrimSpace(parts[0])
	s.icon = strings.TrimSpace(parts[1])
	s.class = strings.TrimSpace(parts[2])
	if !s.fixed {
		s.appID = SanitizeID(s.name)
	}
}

// Property returns a descriptor attribute.
func (s *Suite) Property(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.props[key]
	return v, ok
}

func (s *Suite) Properties() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.props)
}

func (s *Suite) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Suite) Class() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.class
}

// AppID names the suite's settings and record stores.
func (s *Suite) AppID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appID
}

// Resource returns the bytes of a packaged file. One or two leading slashes
// are ignored and a case-insensitive match is tried when the exact name is
// missing.
func (s *Suite) Resource(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "/")
	f, err := s.open(name)
	if err != nil {
		logging.Logger().Debug("midlet: resource not found", "name", name)
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("midlet: read %q: %w", name, err)
	}
	return data, nil
}

// Icon returns the MIDlet-1 icon, or nil when there is none.
func (s *Suite) Icon() []byte {
	s.mu.Lock()
	icon := s.icon
	s.mu.Unlock()
	if icon == "" {
		return nil
	}
	data, err := s.Resource(icon)
	if err != nil {
		return nil
	}
	return data
}

func (s *Suite) open(name string) (fs.File, error) {
	if s.fsys == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	name = path.Clean(name)
	if f, err := s.fsys.Open(name); err == nil {
		return f, nil
	}
	if alt, ok := s.fold()[strings.ToLower(name)]; ok {
		if f, err := s.fsys.Open(alt); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// fold indexes every file by its lower-cased name. The first name in walk
// order wins.
func (s *Suite) fold() map[string]string {
	s.foldOnce.Do(func() {
		s.folded = make(map[string]string)
		fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			k := strings.ToLower(p)
			if _, dup := s.folded[k]; !dup {
				s.folded[k] = p
			}
			return nil
		})
	})
	return s.folded
}

// OpenDir opens an unpacked suite directory.
func OpenDir(dir, appID string) (*Suite, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("midlet: %w", err)
	}
	return NewSuite(os.DirFS(dir), appID)
}
