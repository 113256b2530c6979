package generator

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CatConfLang/ddt/config"
	"github.com/CatConfLang/ddt/naming"
	"github.com/CatConfLang/ddt/params"
	"github.com/CatConfLang/ddt/types"
)

type m = map[string]any
type l = []any

func resolve(t *testing.T, sets ...params.Set) []*params.Resolved {
	t.Helper()
	out := make([]*params.Resolved, len(sets))
	for i, s := range sets {
		out[i] = s.Resolve(params.Env{BaseDir: t.TempDir()})
	}
	return out
}

func collect(t *testing.T, unpackAll int, sets ...params.Set) []types.Combination {
	t.Helper()
	return slices.Collect(Expand(resolve(t, sets...), unpackAll))
}

func combinationNames(combos []types.Combination) []string {
	out := make([]string, len(combos))
	for i, c := range combos {
		out[i] = c.Name
	}
	return out
}

func TestExpand_CartesianOrder(t *testing.T) {
	combos := collect(t, 0,
		params.Inline("a", "b"),
		params.Inline("c", "d"),
		params.Inline("e"),
	)

	assert.Equal(t, []string{
		"0_a__0_c__0_e",
		"0_a__1_d__0_e",
		"1_b__0_c__0_e",
		"1_b__1_d__0_e",
	}, combinationNames(combos))
	assert.Equal(t, l{"a", "d", "e"}, combos[1].Args.Positional)
	assert.Equal(t, l{"b", "c", "e"}, combos[2].Args.Positional)
}

func TestExpand_NoSetsYieldsIdentity(t *testing.T) {
	combos := collect(t, 0)
	require.Len(t, combos, 1)
	assert.Equal(t, "", combos[0].Name)
	assert.Empty(t, combos[0].Args.Positional)
	assert.Equal(t, 1, Count(nil))
}

func TestExpand_Unpacking(t *testing.T) {
	kv := func(key string, v any) params.KV { return params.KV{Key: key, Value: v} }

	tests := []struct {
		name      string
		unpackAll int
		sets      []params.Set
		want      types.Args
	}{
		{
			name: "unpack applies to its own set only",
			sets: []params.Set{
				params.Inline(kv("A", l{"a", "b"})),
				params.Inline(kv("B", l{"c", "d"})).Unpack(),
				params.Inline(kv("C", m{"x": "e", "y": "f"})),
			},
			want: types.Args{Positional: l{l{"a", "b"}, "c", "d", m{"x": "e", "y": "f"}}},
		},
		{
			name: "double unpack reaches nested lists",
			sets: []params.Set{
				params.Inline(kv("A", l{"a", "b"})),
				params.Inline(kv("B", l{l{"c", "d"}})).Unpack().Unpack(),
				params.Inline(kv("C", m{"x": "e", "y": "f"})),
			},
			want: types.Args{Positional: l{l{"a", "b"}, "c", "d", m{"x": "e", "y": "f"}}},
		},
		{
			name: "double unpack is idempotent on mappings",
			sets: []params.Set{
				params.Inline(kv("A", l{"a", "b"})),
				params.Inline(kv("B", m{"r": "c", "s": "d"})).Unpack().Unpack(),
				params.Inline(kv("C", m{"x": "e", "y": "f"})),
			},
			want: types.Args{
				Positional: l{l{"a", "b"}, m{"x": "e", "y": "f"}},
				Keyword:    m{"r": "c", "s": "d"},
			},
		},
		{
			name: "unpacked mappings combine",
			sets: []params.Set{
				params.Inline(kv("A", m{"a": 0, "b": 0})),
				params.Inline(kv("B", m{"b": 1, "c": 1})).Unpack(),
				params.Inline(kv("C", l{m{"c": 2, "d": 2}})).Unpack().Unpack(),
			},
			want: types.Args{
				Positional: l{m{"a": 0, "b": 0}},
				Keyword:    m{"b": 1, "c": 2, "d": 2},
			},
		},
		{
			name:      "unpack all",
			unpackAll: 1,
			sets: []params.Set{
				params.Inline(kv("A", l{"a", "b"})),
				params.Inline(kv("B", m{"a": 0, "b": 0})),
				params.Inline(kv("C", l{m{"b": 1, "c": 1}})),
				params.Inline(kv("D", l{l{"c", "d"}})),
			},
			want: types.Args{
				Positional: l{"a", "b", m{"b": 1, "c": 1}, l{"c", "d"}},
				Keyword:    m{"a": 0, "b": 0},
			},
		},
		{
			name:      "unpack all twice",
			unpackAll: 2,
			sets: []params.Set{
				params.Inline(kv("A", l{"a", "b"})),
				params.Inline(kv("B", m{"a": 0, "b": 0})),
				params.Inline(kv("C", l{m{"b": 1, "c": 1}})),
				params.Inline(kv("D", l{l{"c", "d"}})),
			},
			want: types.Args{
				Positional: l{"a", "b", "c", "d"},
				Keyword:    m{"a": 0, "b": 1, "c": 1},
			},
		},
		{
			name:      "unpack and unpack all add up",
			unpackAll: 1,
			sets: []params.Set{
				params.Inline(kv("A", l{l{"a", "b"}})),
				params.Inline(kv("B", l{m{"a": 0, "b": 0}})),
				params.Inline(kv("C", l{m{"b": 1, "c": 1}})).Unpack(),
				params.Inline(kv("D", l{l{"c", "d"}})).Unpack(),
			},
			want: types.Args{
				Positional: l{l{"a", "b"}, m{"a": 0, "b": 0}, "c", "d"},
				Keyword:    m{"b": 1, "c": 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combos := collect(t, tt.unpackAll, tt.sets...)
			require.Len(t, combos, 1)
			assert.Contains(t, combos[0].Name, "0_A__0_B")
			if diff := cmp.Diff(tt.want, combos[0].Args, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpand_UnpackAllAcrossSets(t *testing.T) {
	combos := collect(t, 1,
		params.Inline(l{"a", "b"}, m{"a": 0, "b": 0}),
		params.Inline(m{"b": 1, "c": 1}, l{"c", "d"}),
	)

	want := []types.Args{
		{Positional: l{"a", "b"}, Keyword: m{"b": 1, "c": 1}},
		{Positional: l{"a", "b", "c", "d"}},
		{Keyword: m{"a": 0, "b": 1, "c": 1}},
		{Positional: l{"c", "d"}, Keyword: m{"a": 0, "b": 0}},
	}
	got := make([]types.Args, len(combos))
	for i, c := range combos {
		got[i] = c.Args
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{
		"0_a_b__0_b_1_c_1",
		"0_a_b__1_c_d",
		"1_a_0_b_0__0_b_1_c_1",
		"1_a_0_b_0__1_c_d",
	}, combinationNames(combos))
}

func TestExpand_FailureAbsorbs(t *testing.T) {
	missing := params.File("test_no_such_file.json")

	t.Run("failing set first", func(t *testing.T) {
		combos := collect(t, 0, missing, params.Inline("a", "b"))
		assert.Equal(t, []string{"FileNotFoundError__0_a", "FileNotFoundError__1_b"}, combinationNames(combos))
		for _, c := range combos {
			require.True(t, c.Failed())
			assert.True(t, errors.Is(c.Failure, types.ErrNotFound))
			assert.Empty(t, c.Args.Positional)
		}
	})

	t.Run("failing set last", func(t *testing.T) {
		combos := collect(t, 1, params.Inline("a"), missing)
		require.Len(t, combos, 1)
		assert.Equal(t, "0_a__FileNotFoundError", combos[0].Name)
		assert.True(t, combos[0].Failed())
	})
}

func TestUnion(t *testing.T) {
	sets := resolve(t, params.Inline("a", "b"), params.Keyed(m{"k": 1}), params.Inline(l{1, 2}).Unpack())
	combos := slices.Collect(Union(sets, 0))

	assert.Equal(t, []string{"0_a", "1_b", "0_k", "0_1_2"}, combinationNames(combos))
	assert.Equal(t, l{"b"}, combos[1].Args.Positional)
	assert.Equal(t, l{1}, combos[2].Args.Positional)
	assert.Empty(t, combos[2].Args.Keyword)
	assert.Equal(t, l{1, 2}, combos[3].Args.Positional)

	none := slices.Collect(Union(nil, 0))
	require.Len(t, none, 1)
	assert.Equal(t, "", none[0].Name)

	failing := slices.Collect(Union(resolve(t, params.Inline("a"), params.File("test_no_such_file.json")), 0))
	require.Len(t, failing, 2)
	assert.False(t, failing[0].Failed())
	assert.True(t, failing[1].Failed())
	assert.Equal(t, "FileNotFoundError", failing[1].Name)
}

func TestExpand_StopsEarly(t *testing.T) {
	seq := Expand(resolve(t, params.Inline(1, 2, 3), params.Inline(4, 5)), 0)
	var n int
	for range seq {
		n++
		if n == 4 {
			break
		}
	}
	assert.Equal(t, 4, n)
}

func TestCount(t *testing.T) {
	sets := resolve(t, params.Inline(1, 2, 3), params.Inline(4, 5), params.Inline(6))
	assert.Equal(t, 6, Count(sets))
	assert.Equal(t, 0, Count(resolve(t, params.Inline(1), params.Inline())))
}

type described struct{ doc string }

func (d described) TestDoc() string { return d.doc }

func TestMaterialize(t *testing.T) {
	var got types.Args
	tpl := Template{
		Name: "test",
		Doc:  "checks {0} with {x}",
		Func: func(t testing.TB, a types.Args) { got = a },
	}

	t.Run("name and doc", func(t *testing.T) {
		combo := types.Identity().Merge(types.Entry{Name: "0_a", Args: types.Args{Positional: l{"a"}, Keyword: m{"x": 1}}})
		c := Materialize(tpl, combo)
		assert.Equal(t, "test__0_a", c.Name)
		assert.Equal(t, "checks a with 1", c.Doc)
		assert.Equal(t, "test", c.Template)

		require.NoError(t, c.Invoke(t))
		if diff := cmp.Diff(combo.Args, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("doc mismatch keeps template doc", func(t *testing.T) {
		c := Materialize(tpl, types.Identity().Merge(types.Entry{Name: "0_a", Args: types.NewArgs("a")}))
		assert.Equal(t, "checks {0} with {x}", c.Doc)
	})

	t.Run("value supplies doc", func(t *testing.T) {
		c := Materialize(tpl, types.Identity().Merge(types.Entry{Name: "0", Args: types.NewArgs(described{"from value"})}))
		assert.Equal(t, "from value", c.Doc)
	})

	t.Run("identifier safe", func(t *testing.T) {
		c := Materialize(Template{Name: "", Func: tpl.Func}, types.Identity().Merge(types.Entry{Name: "0_a"}))
		assert.Equal(t, "_0_a", c.Name)
		c = Materialize(Template{Name: "check-it", Func: tpl.Func}, types.Identity())
		assert.Equal(t, "check_it", c.Name)
	})

	t.Run("failure is returned, template not called", func(t *testing.T) {
		got = types.Args{}
		f := types.NewFailure(types.FailureDecode, "/data/x.json", errors.New("bad"))
		c := Materialize(tpl, types.Identity().Merge(types.FailureEntry(f)))
		assert.Equal(t, "test__DecodeError", c.Name)
		assert.Equal(t, tpl.Doc, c.Doc)

		err := c.Invoke(t)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrDecode))
		assert.Contains(t, err.Error(), "/data/x.json")
		assert.Nil(t, got.Positional)
	})

	t.Run("template gets a copy", func(t *testing.T) {
		mutate := Template{Name: "m", Func: func(t testing.TB, a types.Args) { a.Positional[0] = "changed" }}
		c := Materialize(mutate, types.Identity().Merge(types.Entry{Name: "0_a", Args: types.NewArgs("a")}))
		require.NoError(t, c.Invoke(t))
		require.NoError(t, c.Invoke(t))
		assert.Equal(t, l{"a"}, c.Args.Positional)
	})
}

func noop(testing.TB, types.Args) {}

func TestGenerator_GenerateAll(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "list.json"), []byte(`["Hello", "Goodbye"]`), 0644); err != nil {
		t.Fatalf("Failed to write data file: %v", err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := NewGenerator(GenerateOptions{Env: params.Env{BaseDir: dir}, Logger: logger})

	col, err := g.GenerateAll([]Template{
		{Name: "TestGreeting", Func: noop, Sets: []params.Set{params.File("list.json")}},
		{Name: "TestPlain", Func: noop},
		{Name: "TestMissing", Func: noop, Sets: []params.Set{params.File("missing.json"), params.Inline("x")}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"TestGreeting__0_Hello",
		"TestGreeting__1_Goodbye",
		"TestPlain",
		"TestMissing__FileNotFoundError__0_x",
	}, col.Names())
	assert.Equal(t, 4, col.Len())

	failures := col.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "TestMissing__FileNotFoundError__0_x", failures[0].Name)

	c, ok := col.Lookup("TestGreeting__1_Goodbye")
	require.True(t, ok)
	assert.Equal(t, l{"Goodbye"}, c.Args.Positional)
	_, ok = col.Lookup("TestGreeting")
	assert.False(t, ok, "templates are not part of the collection")

	assert.Contains(t, buf.String(), "template expanded")
	assert.Contains(t, buf.String(), "data file failed to load")
}

func TestGenerator_Duplicates(t *testing.T) {
	templates := []Template{
		{Name: "T", Func: noop, Sets: []params.Set{params.Inline("a b", "a-b", "c")}},
	}

	t.Run("overwrite", func(t *testing.T) {
		col, err := NewGenerator(GenerateOptions{}).GenerateAll(templates)
		require.NoError(t, err)
		assert.Equal(t, []string{"T__0_a_b", "T__1_a_b", "T__2_c"}, col.Names())

		sameName := []Template{
			{Name: "T", Func: noop, Sets: []params.Set{params.Inline("x")}},
			{Name: "T", Func: noop, Sets: []params.Set{params.Inline("y").WithWidth(1)}},
		}
		col, err = NewGenerator(GenerateOptions{}).GenerateAll(sameName)
		require.NoError(t, err)
		assert.Equal(t, []string{"T__0_x", "T__0_y"}, col.Names())

		clash := []Template{
			{Name: "T", Func: noop, Sets: []params.Set{params.Inline(params.Label("same", 1))}},
			{Name: "T", Func: noop, Sets: []params.Set{params.Inline(params.Label("same", 2))}},
		}
		col, err = NewGenerator(GenerateOptions{}).GenerateAll(clash)
		require.NoError(t, err)
		require.Equal(t, 1, col.Len())
		c, _ := col.Lookup("T__0_same")
		assert.Equal(t, l{2}, c.Args.Positional, "later case overwrites")
	})

	t.Run("error policy", func(t *testing.T) {
		clash := []Template{
			{Name: "T", Func: noop, Sets: []params.Set{params.Inline(params.Label("same", 1))}},
			{Name: "T", Func: noop, Sets: []params.Set{params.Inline(params.Label("same", 2))}},
		}
		_, err := NewGenerator(GenerateOptions{DuplicateNames: config.DuplicateError}).GenerateAll(clash)
		var dup *DuplicateNameError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "T__0_same", dup.Name)
	})
}

func TestGenerator_UnionMode(t *testing.T) {
	g := NewGenerator(GenerateOptions{Combine: config.CombineUnion})
	col, err := g.GenerateAll([]Template{
		{Name: "T", Func: noop, Sets: []params.Set{params.Inline(1, 2), params.Inline("x")}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"T__0_1", "T__1_2", "T__0_x"}, col.Names())
}

func TestGenerator_IndexOnlyNames(t *testing.T) {
	g := NewGenerator(GenerateOptions{Env: params.Env{Format: naming.FormatIndexOnly}})
	col, err := g.GenerateAll([]Template{
		{Name: "one", Func: noop, Sets: []params.Set{params.Inline("a", "b")}},
		{Name: "two", Func: noop, Sets: []params.Set{params.Inline("a"), params.Inline("b", "c")}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one_0", "one_1", "two_0__0", "two_0__1"}, col.Names())
}

func TestGenerator_MissingFunc(t *testing.T) {
	_, err := NewGenerator(GenerateOptions{}).GenerateAll([]Template{{Name: "T"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no test function")
}

func TestCollection_Run(t *testing.T) {
	var seen []string
	tpl := Template{
		Name: "Sum",
		Func: func(t testing.TB, a types.Args) {
			seen = append(seen, t.Name())
			if a.Int(0)+a.Int(1) != a.Int(2) {
				t.Errorf("%d + %d != %d", a.Int(0), a.Int(1), a.Int(2))
			}
		},
		Sets: []params.Set{params.Inline(l{1, 2, 3}, l{2, 2, 4}).Unpack()},
	}

	col, err := NewGenerator(GenerateOptions{}).GenerateAll([]Template{tpl})
	require.NoError(t, err)
	col.Run(t)

	assert.Equal(t, []string{
		"TestCollection_Run/Sum__0_1_2_3",
		"TestCollection_Run/Sum__1_2_2_4",
	}, seen)
}
