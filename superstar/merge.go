package superstar

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// UnknownFieldError means opt path is absent from the last fetched pilot document.
// Client may only overwrite existing keys, never add new ones.
type UnknownFieldError struct {
	Path []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("opt '%s' does not exist", strings.Join(e.Path, "."))
}

func IsUnknownField(err error) bool {
	_, ok := errors.Cause(err).(*UnknownFieldError)
	return ok
}

// Merge writes value into schema[name].
// Scalar (or list) value replaces the field, siblings are untouched.
// Branch value is merged key by key, every key must exist at its level.
// Merge is atomic: on error schema is left exactly as it was.
func Merge(schema *Branch, name string, value Value) error {
	cur, ok := schema.Get(name)
	if !ok {
		return &UnknownFieldError{Path: []string{name}}
	}
	next, err := mergeInto(cur.Clone(), value, []string{name})
	if err != nil {
		return err
	}
	schema.Set(name, next)
	return nil
}

// mergeInto mutates target (which must be a private copy) and returns new value for its slot.
func mergeInto(target, patch Value, path []string) (Value, error) {
	pb, ok := patch.(*Branch)
	if !ok {
		return patch.Clone(), nil
	}
	if pb.Len() == 0 {
		return target, nil
	}
	tb, ok := target.(*Branch)
	if !ok {
		// leaf has no keys, so any key in patch is unknown
		return nil, &UnknownFieldError{Path: appendPath(path, pb.keys[0])}
	}
	for _, key := range pb.keys {
		cur, ok := tb.Get(key)
		keyPath := appendPath(path, key)
		if !ok {
			return nil, &UnknownFieldError{Path: keyPath}
		}
		next, err := mergeInto(cur, pb.m[key], keyPath)
		if err != nil {
			return nil, err
		}
		tb.Set(key, next)
	}
	return tb, nil
}

func appendPath(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}
