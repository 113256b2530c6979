// Package loader resolves data files relative to the test source and
// decodes them into plain Go values: []any, map[string]any and scalars.
// Failures are returned as *types.Failure values rather than errors so
// callers can defer them to test execution.
package loader

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CatConfLang/ddt/types"
)

// DefaultEncoding is used when neither the loader nor the set names one.
const DefaultEncoding = "utf-8"

// FileLoader reads and decodes data files.
type FileLoader struct {
	decoders map[string]Decoder
	encoding string
	logger   *slog.Logger
}

// Option configures a FileLoader.
type Option func(*FileLoader)

// WithDecoder registers d for files with extension ext (".json", ".yaml").
func WithDecoder(ext string, d Decoder) Option {
	return func(l *FileLoader) {
		l.decoders[normalizeExt(ext)] = d
	}
}

// WithoutDecoder removes the decoder registered for ext.
func WithoutDecoder(ext string) Option {
	return func(l *FileLoader) {
		delete(l.decoders, normalizeExt(ext))
	}
}

// WithEncoding sets the text encoding used when a set does not name one.
func WithEncoding(name string) Option {
	return func(l *FileLoader) {
		if name != "" {
			l.encoding = name
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *FileLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a loader with JSON and YAML decoders registered.
func New(opts ...Option) *FileLoader {
	l := &FileLoader{
		decoders: map[string]Decoder{
			".json": JSONDecoder,
			".yaml": YAMLDecoder,
			".yml":  YAMLDecoder,
		},
		encoding: DefaultEncoding,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadOptions overrides loader defaults for a single file.
type LoadOptions struct {
	Encoding string  // text encoding; empty uses the loader default
	Decoder  Decoder // bypasses extension-based decoder selection
}

// Resolve joins rel onto baseDir and makes the result absolute. Absolute
// rel paths are returned cleaned.
func Resolve(baseDir, rel string) string {
	path := rel
	if !filepath.IsAbs(rel) {
		path = filepath.Join(baseDir, rel)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Load reads path and decodes it. The returned value has been through
// Normalize. An empty document is reported as a decode failure.
func (l *FileLoader) Load(path string, opts LoadOptions) (any, *types.Failure) {
	raw, err := os.ReadFile(path)
	if err != nil {
		f := classifyIO(path, err)
		l.logger.Debug("data file unreadable",
			slog.String("path", path),
			slog.String("kind", f.Kind.String()),
			slog.Any("error", err))
		return nil, f
	}

	dec := opts.Decoder
	if dec == nil {
		var f *types.Failure
		if dec, f = l.decoderFor(path); f != nil {
			return nil, f
		}
	}

	enc := opts.Encoding
	if enc == "" {
		enc = l.encoding
	}
	text, err := decodeText(raw, enc)
	if err != nil {
		if errors.Is(err, errUnknownEncoding) {
			return nil, types.NewFailure(types.FailureUnsupported, path, err)
		}
		return nil, types.NewFailure(types.FailureDecode, path, err)
	}

	v, err := dec.Decode(text)
	if err != nil {
		return nil, types.NewFailure(types.FailureDecode, path, err)
	}
	if v == nil {
		return nil, types.NewFailure(types.FailureDecode, path, errors.New("document is empty"))
	}

	n, err := Normalize(v)
	if err != nil {
		return nil, types.NewFailure(types.FailureDecode, path, err)
	}
	l.logger.Debug("data file loaded", slog.String("path", path), slog.String("encoding", enc))
	return n, nil
}

// decoderFor selects a decoder by extension. YAML files need a registered
// YAML decoder; every other extension is read as JSON.
func (l *FileLoader) decoderFor(path string) (Decoder, *types.Failure) {
	ext := normalizeExt(filepath.Ext(path))
	if d, ok := l.decoders[ext]; ok {
		return d, nil
	}
	if ext == ".yaml" || ext == ".yml" {
		return nil, types.NewFailure(types.FailureUnsupported, path,
			errors.New(path+" is a YAML file, but no YAML decoder is registered"))
	}
	if d, ok := l.decoders[".json"]; ok {
		return d, nil
	}
	return nil, types.NewFailure(types.FailureUnsupported, path,
		errors.New("no decoder registered for "+path))
}

func classifyIO(path string, err error) *types.Failure {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return types.NewFailure(types.FailureNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return types.NewFailure(types.FailurePermission, path, err)
	default:
		return types.NewFailure(types.FailureRead, path, err)
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
