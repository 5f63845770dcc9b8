package value

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAccessorsApplyDefaults(t *testing.T) {
	m := Map{
		"name":    "welcome",
		"count":   3,
		"ratio":   2.0,
		"half":    2.5,
		"numeric": " 7 ",
		"flag":    true,
		"list":    []any{"a", 1, "b"},
		"single":  "only",
		"nested":  Map{"k": "v"},
		"nil":     nil,
	}

	assert.Equal(t, "welcome", m.String("name", "x"))
	assert.Equal(t, "x", m.String("count", "x"), "wrong-typed key yields the default")
	assert.Equal(t, "x", m.String("missing", "x"))

	assert.Equal(t, 3, m.Int("count", 0))
	assert.Equal(t, 2, m.Int("ratio", 0))
	assert.Equal(t, 9, m.Int("half", 9), "fractional floats are not integers")
	assert.Equal(t, 7, m.Int("numeric", 0))
	assert.Equal(t, 9, m.Int("name", 9))

	assert.True(t, m.Bool("flag", false))
	assert.True(t, m.Bool("missing", true))
	assert.False(t, m.Bool("nil", true), "present nil is false, not the default")

	assert.Equal(t, []string{"a", "b"}, m.Strings("list"))
	assert.Equal(t, []string{"only"}, m.Strings("single"))
	assert.Nil(t, m.Strings("count"))

	require.NotNil(t, m.Map("nested"))
	assert.Equal(t, "v", m.Map("nested").String("k", ""))
	assert.Nil(t, m.Map("name"))

	assert.True(t, m.Has("nil"))
	assert.False(t, m.Has("missing"))
}

func TestToBool(t *testing.T) {
	testCases := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"Yes", true},
		{"ON", true},
		{"1", true},
		{"false", false},
		{"maybe", false},
		{1, true},
		{0, false},
		{0.5, true},
		{nil, false},
		{[]any{true}, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ToBool(tc.in), "ToBool(%#v)", tc.in)
	}
}

func TestNormalizeConvertsNestedMaps(t *testing.T) {
	in := map[string]any{
		"a": map[any]any{1: "one", "two": []any{map[string]any{"x": int64(5)}}},
		"b": uint64(4),
	}

	got := Normalize(in)

	want := Map{
		"a": Map{"1": "one", "two": []any{Map{"x": 5}}},
		"b": 4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeKeepsLargeUnsignedIntegers(t *testing.T) {
	testCases := []struct {
		name string
		in   uint64
		want any
	}{
		{name: "fits in int", in: 42, want: 42},
		{name: "max int", in: math.MaxInt, want: math.MaxInt},
		{name: "above max int", in: math.MaxInt + 1, want: uint64(math.MaxInt + 1)},
		{name: "max uint64", in: math.MaxUint64, want: uint64(math.MaxUint64)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}

	m := Map{"big": Normalize(uint64(math.MaxUint64))}
	assert.Equal(t, 7, m.Int("big", 7), "a value that does not fit is the default, not a wrapped int")
	assert.True(t, ToBool(m["big"]))
}

func TestCloneIsDeep(t *testing.T) {
	orig := Map{"nested": Map{"k": "v"}, "list": []any{"a"}}
	c := orig.Clone()

	c.Map("nested")["k"] = "changed"
	c["list"].([]any)[0] = "b"

	assert.Equal(t, "v", orig.Map("nested").String("k", ""))
	assert.Equal(t, "a", orig["list"].([]any)[0])
	assert.Equal(t, []string{"list", "nested"}, orig.Keys())
}
