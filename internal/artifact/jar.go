package artifact

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	"burger/internal/classfile"
)

var ErrNoEntry = errors.New("no such entry")

// Jar reads compiled units out of a zip container.
type Jar struct {
	path   string
	closer io.Closer
	names  []string
	files  map[string]*zip.File
}

// OpenJar opens the zip container at path. Call Close when done.
func OpenJar(path string) (*Jar, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jar %s: %w", path, err)
	}
	j := newJar(path, &rc.Reader)
	j.closer = rc
	return j, nil
}

// NewJar reads a zip container from r.
func NewJar(r io.ReaderAt, size int64) (*Jar, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read jar: %w", err)
	}
	return newJar("", zr), nil
}

func newJar(path string, zr *zip.Reader) *Jar {
	j := &Jar{
		path:  path,
		names: make([]string, 0, len(zr.File)),
		files: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := j.files[f.Name]; dup {
			continue
		}
		j.names = append(j.names, f.Name)
		j.files[f.Name] = f
	}
	return j
}

// Path returns the file the jar was opened from, if any.
func (j *Jar) Path() string { return j.path }

// Names returns entry names in central-directory order.
func (j *Jar) Names() []string {
	out := make([]string, len(j.names))
	copy(out, j.names)
	return out
}

// Open decompresses and decodes one entry.
func (j *Jar) Open(name string) (*classfile.ClassFile, error) {
	f, ok := j.files[name]
	if !ok {
		return nil, &EntryError{Name: name, Err: ErrNoEntry}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &EntryError{Name: name, Err: err}
	}
	defer rc.Close()

	cf, err := classfile.ParseReader(rc)
	if err != nil {
		return nil, &EntryError{Name: name, Err: err}
	}
	return cf, nil
}

// Close releases the underlying file.
func (j *Jar) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
