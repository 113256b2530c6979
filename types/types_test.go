package types

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsAccessors(t *testing.T) {
	a := Args{
		Positional: []any{"a", 3, 4.0, 2.5, int64(9)},
		Keyword:    map[string]any{"x": 1},
	}

	assert.Equal(t, 5, a.Len())
	assert.Equal(t, "a", a.At(0))
	assert.Nil(t, a.At(-1))
	assert.Nil(t, a.At(5))
	assert.Equal(t, "a", a.String(0))
	assert.Equal(t, "3", a.String(1))
	assert.Equal(t, "", a.String(10))
	assert.Equal(t, 3, a.Int(1))
	assert.Equal(t, 4, a.Int(2))
	assert.Equal(t, 0, a.Int(3))
	assert.Equal(t, 9, a.Int(4))

	v, ok := a.Kw("x")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = a.Kw("y")
	assert.False(t, ok)
}

func TestArgsClone(t *testing.T) {
	a := Args{Positional: []any{"a"}, Keyword: map[string]any{"k": 1}}
	c := a.Clone()
	c.Positional[0] = "b"
	c.Keyword["k"] = 2

	assert.Equal(t, "a", a.Positional[0])
	assert.Equal(t, 1, a.Keyword["k"])

	empty := Args{}.Clone()
	assert.NotNil(t, empty.Keyword)
}

func TestCombinationMerge(t *testing.T) {
	c := Identity().
		Merge(Entry{Name: "0_a", Args: Args{Positional: []any{"a"}, Keyword: map[string]any{"k": 0, "x": 0}}}).
		Merge(Entry{Name: "1_b", Args: Args{Positional: []any{"b"}, Keyword: map[string]any{"k": 1}}})

	assert.Equal(t, "0_a__1_b", c.Name)
	assert.False(t, c.Failed())
	want := Args{Positional: []any{"a", "b"}, Keyword: map[string]any{"k": 1, "x": 0}}
	if diff := cmp.Diff(want, c.Args); diff != "" {
		t.Errorf("merged args mismatch (-want +got):\n%s", diff)
	}
}

func TestCombinationMerge_DoesNotAliasInputs(t *testing.T) {
	first := Identity().Merge(Entry{Name: "0_a", Args: NewArgs("a")})
	left := first.Merge(Entry{Name: "0_b", Args: NewArgs("b")})
	right := first.Merge(Entry{Name: "1_c", Args: NewArgs("c")})

	assert.Equal(t, []any{"a", "b"}, left.Args.Positional)
	assert.Equal(t, []any{"a", "c"}, right.Args.Positional)
	assert.Equal(t, []any{"a"}, first.Args.Positional)
}

func TestCombinationMerge_FailureAbsorbs(t *testing.T) {
	missing := NewFailure(FailureNotFound, "/data/missing.json", fs.ErrNotExist)
	broken := NewFailure(FailureDecode, "/data/broken.json", errors.New("invalid character"))

	tests := []struct {
		name        string
		combination Combination
		wantName    string
		wantKind    FailureKind
	}{
		{
			name:        "failure then value",
			combination: Identity().Merge(FailureEntry(missing)).Merge(Entry{Name: "0_a", Args: NewArgs("a")}),
			wantName:    "FileNotFoundError__0_a",
			wantKind:    FailureNotFound,
		},
		{
			name:        "value then failure",
			combination: Identity().Merge(Entry{Name: "0_a", Args: NewArgs("a")}).Merge(FailureEntry(missing)),
			wantName:    "0_a__FileNotFoundError",
			wantKind:    FailureNotFound,
		},
		{
			name:        "first failure wins",
			combination: Identity().Merge(FailureEntry(broken)).Merge(FailureEntry(missing)),
			wantName:    "DecodeError__FileNotFoundError",
			wantKind:    FailureDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.combination.Failed())
			assert.Equal(t, tt.wantName, tt.combination.Name)
			assert.Equal(t, tt.wantKind, tt.combination.Failure.Kind)
			if diff := cmp.Diff(Args{}, tt.combination.Args, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("failed combination should carry no args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFailure(t *testing.T) {
	f := NewFailure(FailureNotFound, "/data/x.json", &fs.PathError{Op: "open", Path: "/data/x.json", Err: fs.ErrNotExist})

	assert.True(t, errors.Is(f, ErrNotFound))
	assert.True(t, errors.Is(f, fs.ErrNotExist))
	assert.False(t, errors.Is(f, ErrDecode))
	assert.Equal(t, "FileNotFoundError: open /data/x.json: file does not exist", f.Error())
	assert.Equal(t, "FileNotFoundError", FailureEntry(f).Name)

	d := NewFailure(FailureDecode, "/data/y.json", errors.New("unexpected end of JSON input"))
	assert.Contains(t, d.Reason, "/data/y.json")
	assert.Contains(t, d.Error(), "unexpected end of JSON input")

	var target *Failure
	require.True(t, errors.As(error(d), &target))
	assert.Equal(t, FailureDecode, target.Kind)
}

func TestFailureKindNames(t *testing.T) {
	assert.Equal(t, "PermissionError", FailurePermission.String())
	assert.Equal(t, "IOError", FailureRead.String())
	assert.Equal(t, "UnsupportedFormatError", FailureUnsupported.String())
	assert.Equal(t, "LoadError", FailureKind(0).String())
	assert.Nil(t, FailureKind(0).Sentinel())
}
