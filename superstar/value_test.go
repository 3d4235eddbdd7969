package superstar

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompactKeepsOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{"power", `{"power":{"L":0,"R":0}}`, `{"power":{"L":0,"R":0}}`},
		{"reverse-order", "{ \"z\": 1,\n \"a\": 2 }", `{"z":1,"a":2}`},
		{"number-text", `{"x":1.50,"y":-0,"z":1e3}`, `{"x":1.50,"y":-0,"z":1e3}`},
		{"mixed", `{"s":"a<b>&\"c\"","b":true,"n":null,"l":[1,{"k":"v"}]}`, `{"s":"a<b>&\"c\"","b":true,"n":null,"l":[1,{"k":"v"}]}`},
		{"unicode", `{"name":"лось"}`, `{"name":"лось"}`},
		{"scalar", `42`, `42`},
		{"duplicate-key", `{"a":1,"b":2,"a":3}`, `{"a":3,"b":2}`},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			v, err := ParseJSON([]byte(c.input))
			require.NoError(t, err)
			out, err := Compact(v)
			require.NoError(t, err)
			assert.Equal(t, c.expect, string(out))
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{``, `{`, `{"a":}`, `{"a":1} {"b":2}`, `]`} {
		_, err := ParseJSON([]byte(input))
		assert.Error(t, err, "input=%s", input)
	}
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input  string
		expect bool
	}{
		{`null`, true},
		{`false`, true},
		{`0`, true},
		{`0.0`, true},
		{`""`, true},
		{`{}`, true},
		{`[]`, true},
		{`true`, false},
		{`1`, false},
		{`"x"`, false},
		{`{"a":0}`, false},
		{`[0]`, false},
	}
	for _, c := range cases {
		v, err := ParseJSON([]byte(c.input))
		require.NoError(t, err)
		assert.Equal(t, c.expect, Empty(v), "input=%s", c.input)
	}
	assert.True(t, Empty(nil))
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	v, err := ParseJSON([]byte(`{"power":{"L":1,"R":2},"list":[{"a":1}]}`))
	require.NoError(t, err)
	orig := v.(*Branch)
	c := orig.CloneBranch()
	power, _ := c.Get("power")
	power.(*Branch).Set("L", &Leaf{Scalar: json.Number("9")})

	out, err := Compact(orig)
	require.NoError(t, err)
	assert.Equal(t, `{"power":{"L":1,"R":2},"list":[{"a":1}]}`, string(out))
	assert.Equal(t, []string{"power", "list"}, c.Keys())
}

type testMode string

func TestToValue(t *testing.T) {
	t.Parallel()

	five := 5
	cases := []struct {
		name   string
		input  interface{}
		expect string
	}{
		{"nil", nil, `null`},
		{"int", 5, `5`},
		{"int8", int8(-3), `-3`},
		{"uint", uint16(7), `7`},
		{"float", 0.5, `0.5`},
		{"float-whole", 100.0, `100`},
		{"bool", true, `true`},
		{"string", "fwd", `"fwd"`},
		{"number", json.Number("2.50"), `2.50`},
		{"map-sorted", map[string]interface{}{"R": 1, "L": 2}, `{"L":2,"R":1}`},
		{"nested", map[string]interface{}{"power": map[string]interface{}{"L": -1}}, `{"power":{"L":-1}}`},
		{"list", []interface{}{1, "a", nil}, `[1,"a",null]`},
		{"value", &Leaf{Scalar: "v"}, `"v"`},
		{"number-exp", json.Number("-1.5e+3"), `-1.5e+3`},
		{"typed-map", map[string]float64{"R": 0.5, "L": 1}, `{"L":1,"R":0.5}`},
		{"typed-slice", []int{3, 1}, `[3,1]`},
		{"array", [2]bool{true, false}, `[true,false]`},
		{"named-string", testMode("fwd"), `"fwd"`},
		{"pointer", &five, `5`},
		{"nil-pointer", (*int)(nil), `null`},
		{"nil-map", map[string]int(nil), `{}`},
		{"nested-value", map[string]interface{}{"power": &Leaf{Scalar: json.Number("1")}}, `{"power":1}`},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			v, err := ToValue(c.input)
			require.NoError(t, err)
			out, err := Compact(v)
			require.NoError(t, err)
			assert.Equal(t, c.expect, string(out))
		})
	}
}

func TestCompactRejectsInvalidNumber(t *testing.T) {
	t.Parallel()

	for _, n := range []string{"Inf", "NaN", "0x1p4", "+1", "01", "1_000"} {
		b := NewBranch()
		b.Set("L", &Leaf{Scalar: json.Number(n)})
		_, err := Compact(OptsWrapper(b))
		assert.Error(t, err, "number=%s", n)
	}
	for _, n := range []string{"0", "-0", "10", "0.25", "1e3", "2E-2", "-1.5e+10", "1e400"} {
		out, err := Compact(&Leaf{Scalar: json.Number(n)})
		require.NoError(t, err, "number=%s", n)
		assert.True(t, json.Valid(out), "number=%s", n)
	}
}

func TestToValueInvalid(t *testing.T) {
	t.Parallel()

	for _, input := range []interface{}{
		math.NaN(),
		math.Inf(1),
		struct{}{},
		map[int]string{1: "a"},
		json.Number("one"),
		json.Number("Inf"),
		json.Number("NaN"),
		json.Number("0x1p4"),
		json.Number("+1"),
		json.Number("01"),
		json.Number("1."),
		json.Number(".5"),
		json.Number("1e"),
		json.Number("-"),
		json.Number(""),
		map[string]interface{}{"bad": make(chan int)},
		[]interface{}{1, math.NaN()},
		(*Branch)(nil),
		(*Leaf)(nil),
		map[string]interface{}{"power": (*Branch)(nil)},
	} {
		_, err := ToValue(input)
		assert.Error(t, err, "input=%#v", input)
	}
}
