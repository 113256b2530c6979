// Package ddt generates data-driven Go tests. A test body is registered on
// a Suite together with one or more data sets; Build expands every
// combination of the sets into a named case and Run hands each case to
// testing.T.Run.
//
//	func TestLarger(t *testing.T) {
//		ddt.New().
//			Test("larger", func(t testing.TB, a ddt.Args) {
//				if a.Int(0) <= a.Int(1) {
//					t.Errorf("%d is not larger than %d", a.Int(0), a.Int(1))
//				}
//			}, ddt.Data([]any{3, 2}, []any{4, 3}).Unpack()).
//			Run(t)
//	}
package ddt

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/CatConfLang/ddt/config"
	"github.com/CatConfLang/ddt/generator"
	"github.com/CatConfLang/ddt/loader"
	"github.com/CatConfLang/ddt/naming"
	"github.com/CatConfLang/ddt/params"
	"github.com/CatConfLang/ddt/types"
)

// Version of the ddt package
const Version = "v0.1.0"

type (
	// Func is a test body that receives one case's arguments.
	Func = generator.Func
	// Args are the arguments bound to one case.
	Args = types.Args
	// KV is a keyed data value; the key names the case.
	KV = params.KV
)

// Decorator adjusts a template as it is registered.
type Decorator interface {
	Decorate(tpl *generator.Template)
}

// DecoratorFunc adapts a function to Decorator.
type DecoratorFunc func(tpl *generator.Template)

func (f DecoratorFunc) Decorate(tpl *generator.Template) {
	f(tpl)
}

// DataSet attaches one parameter set to a template. Sets listed first vary
// slowest and contribute the leading name fragments.
type DataSet struct {
	set params.Set
}

func (d DataSet) Decorate(tpl *generator.Template) {
	tpl.Sets = append(tpl.Sets, d.set)
}

// Unpack spreads each value of the set into separate arguments: sequences
// become positional arguments and mappings become keyword arguments.
// Calling it again unpacks one level deeper.
func (d DataSet) Unpack() DataSet {
	return DataSet{set: d.set.Unpack()}
}

// Set returns the underlying parameter set.
func (d DataSet) Set() params.Set {
	return d.set
}

// From attaches any parameter set.
func From(set params.Set) DataSet {
	return DataSet{set: set}
}

// Data attaches literal values. KV values are named by their key and
// follow the other values in key order.
func Data(values ...any) DataSet {
	return DataSet{set: params.Inline(values...)}
}

// IData attaches literal values with ordinals padded to width digits.
func IData(values []any, width int) DataSet {
	return DataSet{set: params.Inline(values...).WithWidth(width)}
}

// Keyed attaches one value per map key, in key order.
func Keyed(m map[string]any) DataSet {
	return DataSet{set: params.Keyed(m)}
}

// Label gives a single data value a display name.
func Label(name string, v any) params.Labeled {
	return params.Label(name, v)
}

// FileData attaches the entries of a JSON or YAML file. Relative paths are
// resolved against the directory of the file that called New.
func FileData(path string, opts ...params.FileOption) DataSet {
	return DataSet{set: params.File(path, opts...)}
}

// Encoding sets the text encoding of a data file.
func Encoding(name string) params.FileOption {
	return params.WithEncoding(name)
}

// Decoder sets the decoder of a data file.
func Decoder(d loader.Decoder) params.FileOption {
	return params.WithDecoder(d)
}

// NamedData attaches values that carry their own names: sequences of the
// form [name, args...] or mappings with a "name" key. Malformed values are
// a defect in the test source and panic with a *params.MisuseError.
func NamedData(values ...any) DataSet {
	set, err := params.Named(values...)
	if err != nil {
		panic(err)
	}
	return DataSet{set: set}
}

// UnpackAll unpacks every set of the template one more level. It may be
// given more than once.
func UnpackAll() Decorator {
	return DecoratorFunc(func(tpl *generator.Template) {
		tpl.UnpackAll++
	})
}

// Doc sets the template documentation. Placeholders such as {0} or {name}
// are filled from each case's arguments when they all resolve.
func Doc(doc string) Decorator {
	return DecoratorFunc(func(tpl *generator.Template) {
		tpl.Doc = doc
	})
}

// Suite is an ordered registry of test templates.
type Suite struct {
	cfg       config.Config
	baseDir   string
	loader    *loader.FileLoader
	logger    *slog.Logger
	templates []generator.Template
}

// Option configures a Suite.
type Option func(*Suite)

// WithConfig replaces the suite configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Suite) {
		s.cfg = cfg
	}
}

// WithNameFormat selects default or index-only case names.
func WithNameFormat(f naming.Format) Option {
	return func(s *Suite) {
		s.cfg.NameFormat = f
	}
}

// WithUnpackAll unpacks every set of every template n more levels.
func WithUnpackAll(n int) Option {
	return func(s *Suite) {
		s.cfg.UnpackAll = n
	}
}

// WithDuplicateNames sets how cases with the same composed name are
// handled.
func WithDuplicateNames(p config.DuplicatePolicy) Option {
	return func(s *Suite) {
		s.cfg.DuplicateNames = p
	}
}

// WithCombine selects how the sets of each template combine.
func WithCombine(m config.CombineMode) Option {
	return func(s *Suite) {
		s.cfg.Combine = m
	}
}

// WithBaseDir sets the directory data file paths are resolved against.
func WithBaseDir(dir string) Option {
	return func(s *Suite) {
		s.baseDir = dir
	}
}

// WithLoader replaces the data file loader. The loader's own encoding
// applies unless the suite config names one.
func WithLoader(l *loader.FileLoader) Option {
	return func(s *Suite) {
		s.loader = l
	}
}

// WithLogger sets the logger for expansion diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suite) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty suite whose data files resolve relative to the
// caller's source directory.
func New(opts ...Option) *Suite {
	return newSuite(3, opts)
}

func newSuite(skip int, opts []Option) *Suite {
	s := &Suite{
		cfg:     config.Default(),
		baseDir: callerDir(skip),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// callerDir returns the source directory of the function skip frames up.
// Binaries built with -trimpath record paths that do not exist on disk;
// the working directory, which go test sets to the package directory, is
// used then.
func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip)
	if ok {
		dir := filepath.Dir(file)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// BaseDir returns the directory data file paths are resolved against.
func (s *Suite) BaseDir() string {
	return s.baseDir
}

// Test registers fn under name with the given data sets and decorators.
// A template without data sets becomes a single plain case.
func (s *Suite) Test(name string, fn Func, decorators ...Decorator) *Suite {
	tpl := generator.Template{Name: name, Func: fn}
	for _, d := range decorators {
		d.Decorate(&tpl)
	}
	s.templates = append(s.templates, tpl)
	return s
}

// Build expands every registered template into a new collection of cases.
// Data files are read here; one that cannot be loaded produces cases that
// fail when run.
func (s *Suite) Build() (*generator.Collection, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	l := s.loader
	if l == nil {
		l = loader.New(loader.WithLogger(s.logger))
	}
	g := generator.NewGenerator(generator.GenerateOptions{
		Env: params.Env{
			BaseDir:   s.baseDir,
			Format:    s.cfg.NameFormat,
			Loader:    l,
			NameField: s.cfg.NameField,
			Encoding:  s.cfg.Encoding,
			Logger:    s.logger,
		},
		UnpackAll:      s.cfg.UnpackAll,
		DuplicateNames: s.cfg.DuplicateNames,
		Combine:        s.cfg.Combine,
		Logger:         s.logger,
	})
	return g.GenerateAll(slices.Clone(s.templates))
}

// Run builds the suite and runs each case as a subtest of t.
func (s *Suite) Run(t *testing.T) {
	t.Helper()
	col, err := s.Build()
	if err != nil {
		t.Fatal(err)
	}
	col.Run(t)
}

// Run is the one-template shortcut for New().Test(name, fn, decorators...).Run(t).
func Run(t *testing.T, name string, fn Func, decorators ...Decorator) {
	t.Helper()
	newSuite(3, nil).Test(name, fn, decorators...).Run(t)
}
