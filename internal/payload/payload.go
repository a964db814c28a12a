// Package payload reads payload documents from disk and converts them to
// the JSON the catalog parses. JSON is passed through; YAML is converted;
// CUE is evaluated and exported.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// DefaultMaxBytes bounds documents when no limit is given.
const DefaultMaxBytes int64 = 16 << 20

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// Document is a payload file decoded to JSON.
type Document struct {
	Path   string
	Format Format
	JSON   []byte
}

// Kind classifies load failures.
type Kind int

const (
	KindRead Kind = iota
	KindNotFound
	KindUnsupported
	KindTooLarge
	KindDecode   // not valid JSON, YAML or CUE syntax
	KindEvaluate // CUE evaluated to an error or a non-concrete value
	KindScan
	KindNoFiles
)

// Error is a document that could not be loaded.
type Error struct {
	Kind    Kind
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// FormatOf maps a file extension to its Format.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	}
	return "", false
}

// Load reads path and converts it to JSON. maxBytes <= 0 uses
// DefaultMaxBytes.
func Load(path string, maxBytes int64) (*Document, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	format, ok := FormatOf(path)
	if !ok {
		return nil, &Error{Kind: KindUnsupported, Path: path, Message: "unsupported payload file: want .json, .yaml, .yml or .cue"}
	}
	data, err := readLimited(path, maxBytes)
	if err != nil {
		return nil, err
	}
	out, err := Convert(path, format, data)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Format: format, JSON: out}, nil
}

// Convert turns data in the given format into JSON. path is used for
// error messages and CUE positions only.
func Convert(path string, format Format, data []byte) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			return nil, &Error{Kind: KindDecode, Path: path, Message: "not valid JSON"}
		}
		return data, nil
	case FormatYAML:
		return yamlToJSON(path, data)
	case FormatCUE:
		return cueToJSON(path, data)
	}
	return nil, &Error{Kind: KindUnsupported, Path: path, Message: fmt.Sprintf("unsupported format %q", format)}
}

func readLimited(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Kind: KindNotFound, Path: path, Message: "payload not found"}
	}
	if err != nil {
		return nil, &Error{Kind: KindRead, Path: path, Message: err.Error()}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, &Error{Kind: KindRead, Path: path, Message: err.Error()}
	}
	if int64(len(data)) > maxBytes {
		return nil, &Error{Kind: KindTooLarge, Path: path, Message: fmt.Sprintf("exceeds %d bytes", maxBytes)}
	}
	return data, nil
}

func yamlToJSON(path string, data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Kind: KindDecode, Path: path, Message: err.Error()}
	}
	return FromYAML(path, doc)
}

// FromYAML marshals a value decoded by yaml.v3 as JSON.
func FromYAML(path string, doc any) ([]byte, error) {
	out, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, &Error{Kind: KindDecode, Path: path, Message: err.Error()}
	}
	return out, nil
}

// stringKeys rewrites the map[any]any yaml.v3 produces for non-string keys
// (qubit indices such as `0:`) into JSON object form.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	}
	return v
}

func cueToJSON(path string, data []byte) ([]byte, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueError(KindDecode, path, err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(KindEvaluate, path, err)
	}
	out, err := value.MarshalJSON()
	if err != nil {
		return nil, cueError(KindEvaluate, path, err)
	}
	return out, nil
}

func cueError(kind Kind, path string, err error) *Error {
	e := &Error{Kind: kind, Path: path, Message: err.Error()}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		e.Pos = pos[0]
	}
	return e
}

// Expand turns directory arguments into the payload files they contain, in
// lexical order. File arguments pass through unchanged. A directory with no
// payload files is an error.
func Expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := Find(arg)
		if err != nil {
			return nil, &Error{Kind: KindScan, Path: arg, Message: err.Error()}
		}
		if len(found) == 0 {
			return nil, &Error{Kind: KindNoFiles, Path: arg, Message: "no payload files found"}
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// Find walks dir and returns every file with a payload extension.
func Find(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if _, ok := FormatOf(path); ok && !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
