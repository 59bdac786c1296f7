// Command mkjar packs a directory into a MIDlet suite JAR, optionally with a
// matching JAD descriptor.
package main

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"

	"midp/midlet"
)

func main() {
	var (
		dir     string
		out     string
		name    string
		class   string
		vendor  string
		version string
		icon    string
		jad     bool
		quiet   bool
	)
	pflag.StringVarP(&dir, "dir", "d", "", "Directory with the suite's classes and resources.")
	pflag.StringVarP(&out, "out", "o", "", "Output JAR file.")
	pflag.StringVarP(&name, "name", "n", "", "MIDlet name (MIDlet-Name and the first MIDlet-1 field).")
	pflag.StringVarP(&class, "class", "c", "", "Entry point class for MIDlet-1.")
	pflag.StringVar(&vendor, "vendor", "", "MIDlet-Vendor.")
	pflag.StringVar(&version, "version", "1.0", "MIDlet-Version.")
	pflag.StringVar(&icon, "icon", "", "Icon resource path for MIDlet-1.")
	pflag.BoolVar(&jad, "jad", false, "Also write a .jad next to the JAR.")
	pflag.BoolVarP(&quiet, "quiet", "q", false, "Do not show progress.")
	pflag.Parse()

	if dir == "" || out == "" {
		fatalf("usage: mkjar -d dir -o out.jar [-n name -c class] [--vendor v] [--version 1.0] [--icon /i.png] [--jad]")
	}

	attrs, err := manifestAttrs(dir, name, class, vendor, version, icon)
	if err != nil {
		fatalf("manifest: %v", err)
	}

	var progress io.Writer = io.Discard
	if !quiet {
		total, err := dirSize(dir)
		if err != nil {
			fatalf("scan: %v", err)
		}
		bar := progressbar.DefaultBytes(total, "packing "+filepath.Base(out))
		defer bar.Close()
		progress = bar
	}

	size, err := packFile(dir, out, attrs, progress)
	if err != nil {
		fatalf("pack: %v", err)
	}
	if jad {
		path := strings.TrimSuffix(out, filepath.Ext(out)) + ".jad"
		if err := writeJAD(path, filepath.Base(out), size, attrs); err != nil {
			fatalf("jad: %v", err)
		}
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

const manifestPath = "META-INF/MANIFEST.MF"

// manifestAttrs starts from the directory's own manifest, if it has one,
// and sets the attributes given on the command line.
func manifestAttrs(dir, name, class, vendor, version, icon string) ([][2]string, error) {
	props := map[string]string{}
	var order []string
	if f, err := os.Open(filepath.Join(dir, filepath.FromSlash(manifestPath))); err == nil {
		err = midlet.ParseDescriptor(f, props)
		f.Close()
		if err != nil {
			return nil, err
		}
		for k := range props {
			order = append(order, k)
		}
		slices.Sort(order)
	}
	set := func(k, v string) {
		if v == "" {
			return
		}
		if _, ok := props[k]; !ok {
			order = append(order, k)
		}
		props[k] = v
	}
	set("MIDlet-Name", name)
	set("MIDlet-Vendor", vendor)
	set("MIDlet-Version", version)
	if class != "" {
		n := name
		if n == "" {
			n = class
		}
		set("MIDlet-1", fmt.Sprintf("%s, %s, %s", n, icon, class))
	}
	set("MicroEdition-Profile", "MIDP-2.0")
	set("MicroEdition-Configuration", "CLDC-1.1")

	if _, ok := props["MIDlet-1"]; !ok {
		return nil, fmt.Errorf("no MIDlet-1 attribute; pass --class")
	}
	attrs := make([][2]string, 0, len(order))
	for _, k := range order {
		attrs = append(attrs, [2]string{k, props[k]})
	}
	return attrs, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

func packFile(dir, out string, attrs [][2]string, progress io.Writer) (int64, error) {
	f, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	if err := pack(f, dir, attrs, progress); err != nil {
		f.Close()
		os.Remove(out)
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	info, err := os.Stat(out)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// pack writes the manifest first, then every file under dir in walk order.
// Any manifest inside dir is replaced.
func pack(w io.Writer, dir string, attrs [][2]string, progress io.Writer) error {
	zw := zip.NewWriter(w)
	mw, err := zw.Create(manifestPath)
	if err != nil {
		return err
	}
	if err := midlet.WriteManifest(mw, attrs); err != nil {
		return err
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.EqualFold(rel, manifestPath) {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := zw.Create(rel)
		if err != nil {
			return fmt.Errorf("add %s: %w", rel, err)
		}
		if _, err := io.Copy(io.MultiWriter(dst, progress), src); err != nil {
			return fmt.Errorf("add %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

func writeJAD(path, jarName string, jarSize int64, attrs [][2]string) error {
	jadAttrs := slices.Clone(attrs)
	jadAttrs = append(jadAttrs,
		[2]string{"MIDlet-Jar-URL", jarName},
		[2]string{"MIDlet-Jar-Size", strconv.FormatInt(jarSize, 10)},
	)
	var b strings.Builder
	for _, kv := range jadAttrs {
		fmt.Fprintf(&b, "%s: %s\n", kv[0], kv[1])
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
