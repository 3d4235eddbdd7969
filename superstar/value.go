package superstar

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/juju/errors"
)

// Value is a node of superstar JSON document: *Leaf, *Branch or List.
// Pilot document (command schema) and sensors snapshot are both Values.
type Value interface {
	Clone() Value
	appendJSON(b []byte) ([]byte, error)
}

// Leaf holds json.Number, string, bool or nil.
type Leaf struct {
	Scalar interface{}
}

// validNumber reports whether s is JSON number text:
// -?(0|[1-9][0-9]*)(.[0-9]+)?([eE][+-]?[0-9]+)?
func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		i += countDigits(s[i:])
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		n := countDigits(s[i:])
		if n == 0 {
			return false
		}
		i += n
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		n := countDigits(s[i:])
		if n == 0 {
			return false
		}
		i += n
	}
	return i == len(s)
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func (l *Leaf) Clone() Value { return &Leaf{Scalar: l.Scalar} }

func (l *Leaf) appendJSON(b []byte) ([]byte, error) {
	switch x := l.Scalar.(type) {
	case nil:
		return append(b, "null"...), nil
	case bool:
		return strconv.AppendBool(b, x), nil
	case json.Number:
		if !validNumber(string(x)) {
			return nil, errors.NotValidf("number '%s'", string(x))
		}
		return append(b, x...), nil
	case string:
		return appendString(b, x)
	}
	return nil, errors.NotSupportedf("leaf type %T", l.Scalar)
}

// Branch is a mapping with stable key order.
// Key order is the order keys were first seen, so encoding is deterministic.
type Branch struct {
	keys []string
	m    map[string]Value
}

func NewBranch() *Branch { return &Branch{m: make(map[string]Value)} }

func (b *Branch) Len() int { return len(b.keys) }

func (b *Branch) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

func (b *Branch) Get(key string) (Value, bool) {
	v, ok := b.m[key]
	return v, ok
}

// Set adds or replaces key. New keys go to the end.
func (b *Branch) Set(key string, v Value) {
	if b.m == nil {
		b.m = make(map[string]Value)
	}
	if _, ok := b.m[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.m[key] = v
}

func (b *Branch) Clone() Value { return b.CloneBranch() }

func (b *Branch) CloneBranch() *Branch {
	c := &Branch{
		keys: make([]string, len(b.keys)),
		m:    make(map[string]Value, len(b.m)),
	}
	copy(c.keys, b.keys)
	for k, v := range b.m {
		c.m[k] = v.Clone()
	}
	return c
}

func (b *Branch) appendJSON(out []byte) ([]byte, error) {
	var err error
	out = append(out, '{')
	for i, k := range b.keys {
		if i > 0 {
			out = append(out, ',')
		}
		if out, err = appendString(out, k); err != nil {
			return nil, err
		}
		out = append(out, ':')
		if out, err = b.m[k].appendJSON(out); err != nil {
			return nil, errors.Annotatef(err, "key=%s", k)
		}
	}
	return append(out, '}'), nil
}

type List []Value

func (l List) Clone() Value {
	c := make(List, len(l))
	for i, v := range l {
		c[i] = v.Clone()
	}
	return c
}

func (l List) appendJSON(out []byte) ([]byte, error) {
	var err error
	out = append(out, '[')
	for i, v := range l {
		if i > 0 {
			out = append(out, ',')
		}
		if out, err = v.appendJSON(out); err != nil {
			return nil, err
		}
	}
	return append(out, ']'), nil
}

// Compact returns JSON without insignificant whitespace, keys in Branch order.
func Compact(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return v.appendJSON(make([]byte, 0, 256))
}

func appendString(b []byte, s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return append(b, bytes.TrimRight(buf.Bytes(), "\n")...), nil
}

// ParseJSON decodes single JSON document, keeping object key order and number text.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, errors.Annotate(err, "parse json")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.NotValidf("trailing data after json document")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			b := NewBranch()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, errors.NotValidf("object key %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				b.Set(key, v)
			}
			_, err = dec.Token()
			return b, err
		case '[':
			l := List{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				l = append(l, v)
			}
			_, err = dec.Token()
			return l, err
		}
		return nil, errors.NotValidf("unexpected delimiter %v", t)
	default:
		return &Leaf{Scalar: t}, nil
	}
}

// Empty reports JSON "falsy" documents: null, false, 0, "", {} and [].
// Superstar answers with these for paths that hold no data.
func Empty(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *Leaf:
		switch s := x.Scalar.(type) {
		case nil:
			return true
		case bool:
			return !s
		case string:
			return s == ""
		case json.Number:
			f, err := s.Float64()
			return err == nil && f == 0
		}
	case *Branch:
		return x == nil || x.Len() == 0
	case List:
		return len(x) == 0
	}
	return false
}

// ToValue converts Go value into Value.
// Accepted: Value, nil, bool, string, json.Number, integer and float kinds,
// maps with string keys (keys sorted), slices and arrays, pointers to those.
// Nil pointer or interface becomes null, except nil *Branch or *Leaf which is an error.
func ToValue(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return &Leaf{}, nil
	case Value:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil, errors.NotValidf("nil %T", t)
		}
		return t.Clone(), nil
	case json.Number:
		if !validNumber(string(t)) {
			return nil, errors.NotValidf("number '%s'", string(t))
		}
		return &Leaf{Scalar: t}, nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Bool:
		return &Leaf{Scalar: rv.Bool()}, nil
	case reflect.String:
		return &Leaf{Scalar: rv.String()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Leaf{Scalar: json.Number(strconv.FormatInt(rv.Int(), 10))}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Leaf{Scalar: json.Number(strconv.FormatUint(rv.Uint(), 10))}, nil
	case reflect.Float32, reflect.Float64:
		b, err := json.Marshal(rv.Float())
		if err != nil {
			return nil, errors.NotValidf("number %v", x)
		}
		return &Leaf{Scalar: json.Number(b)}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, errors.NotSupportedf("opt map key type %s", rv.Type().Key())
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		b := NewBranch()
		for _, k := range keys {
			v, err := ToValue(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, errors.Annotatef(err, "key=%s", k.String())
			}
			b.Set(k.String(), v)
		}
		return b, nil
	case reflect.Slice, reflect.Array:
		l := make(List, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := ToValue(rv.Index(i).Interface())
			if err != nil {
				return nil, errors.Annotatef(err, "index=%d", i)
			}
			l = append(l, v)
		}
		return l, nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return &Leaf{}, nil
		}
		return ToValue(rv.Elem().Interface())
	}
	return nil, errors.NotSupportedf("opt value type %T", x)
}
