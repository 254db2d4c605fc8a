package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceKind identifies where a schema document lives.
type SourceKind string

const (
	SourceKindFile  SourceKind = "file"
	SourceKindFS    SourceKind = "fs"
	SourceKindBytes SourceKind = "bytes"
)

// Source describes a loadable schema document.
type Source interface {
	Kind() SourceKind
	Location() string
}

type fileSource struct{ path string }

func (s fileSource) Kind() SourceKind { return SourceKindFile }
func (s fileSource) Location() string { return s.path }

type fsSource struct{ name string }

func (s fsSource) Kind() SourceKind { return SourceKindFS }
func (s fsSource) Location() string { return s.name }

// SourceFromFile points at a schema document on disk.
func SourceFromFile(path string) Source { return fileSource{path: path} }

// SourceFromFS points at a schema document inside a Loader's fs.FS.
func SourceFromFS(name string) Source { return fsSource{name: name} }

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	FileSystem fs.FS
}

// Loader reads form schema documents from files or an fs.FS. Documents may be
// JSON or YAML; YAML is a superset, so one decode path covers both.
type Loader struct {
	fs fs.FS
}

// NewLoader constructs a Loader from pre-resolved options.
func NewLoader(options LoaderOptions) *Loader {
	return &Loader{fs: options.FileSystem}
}

// Load fetches, decodes, normalizes, and structurally validates a schema.
// The returned schema is ready for every downstream component; a non-nil
// error is either an I/O failure or an *InvalidError.
func (l *Loader) Load(ctx context.Context, src Source) (*FormSchema, error) {
	if src == nil {
		return nil, errors.New("schema loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	default:
		err = fmt.Errorf("schema loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes raw JSON or YAML bytes into a normalized, validated schema.
func Parse(data []byte) (*FormSchema, error) {
	if len(data) == 0 {
		return nil, errors.New("schema loader: document is empty")
	}
	var s FormSchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema loader: decode document: %w", err)
	}
	Normalize(&s)
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("schema loader: file path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func loadFromFS(ctx context.Context, files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("schema loader: fs path is required")
	}
	if files == nil {
		return nil, errors.New("schema loader: fs is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return fs.ReadFile(files, name)
}
