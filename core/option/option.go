package option

import (
	"errors"
)

var ErrNoSuchMatchPattern = errors.New("no such match pattern")
var ErrCannotMatchUnsetValue = errors.New("cannot match unset value")
var ErrCannotMatchValue = errors.New("cannot match value")

type MaybeOption int

const (
	None  MaybeOption = iota // never set
	Some                     // set to a value
	Error                    // a matching expression failed
	Unset                    // explicitly unset (tombstone)
)

// Maybe is a type used for matching of optional types.
// It will match `Some` if a value is set, `None` if it is missing, `Unset` if
// it has been explicitly unset, or `Error` if an error occurs.
// If `Unset` is not given, an unset value will match `None`.
type Maybe map[MaybeOption]interface{}

// Of is a type used for matching of optional types.
// It will first try to match concrete values, and in case of no match will
// then try a Maybe match.
type Of map[interface{}]interface{}

// Type is a type for optional values.
type Type interface {
	Match(choices interface{}) (interface{}, error)
	Equals(other interface{}) bool
	IsNone() bool
	IsUnset() bool
}

// Match will do a standard matching of o against choices.
//
// choices are expected to be a map type, where keys of the map are either
// concrete values for o, or of type MaybeOption. Values of the map may be
// of any type.
//
// If choices is of unknown kind, nil and ErrNoSuchMatchPattern are returned.
//
func Match(o Type, choices interface{}) (value interface{}, err error) {
	switch c := choices.(type) {
	case Of:
		return c.Match(o)
	case Maybe:
		return c.Match(o)
	}
	return nil, ErrNoSuchMatchPattern
}

func (of Of) Match(o Type) (value interface{}, err error) {
	if o.IsNone() {
		value, err = matchMissing(map[interface{}]interface{}(of), o)
	} else {
		err = ErrCannotMatchValue
		matched := false
		for k, expr := range of {
			if _, isLabel := k.(MaybeOption); isLabel {
				continue
			}
			if o.Equals(k) {
				matched = true
				value, err = valueOrExpr(expr, o, Some)
			}
		}
		if !matched {
			if expr, ok := of[Some]; ok {
				value, err = valueOrExpr(expr, o, Some)
			}
		}
		if err != nil {
			tracer().Debugf("option match: %v", err)
			if expr, ok := of[Error]; ok {
				value, err = valueOrExpr(expr, o, Error)
			}
		}
	}
	return value, err
}

func (maybe Maybe) Match(o Type) (value interface{}, err error) {
	if o.IsNone() {
		choices := make(map[interface{}]interface{}, len(maybe))
		for k, v := range maybe {
			choices[k] = v
		}
		value, err = matchMissing(choices, o)
	} else {
		err = ErrCannotMatchValue
		if expr, ok := maybe[Some]; ok {
			value, err = valueOrExpr(expr, o, Some)
		}
		if err != nil {
			tracer().Debugf("option match: %v", err)
			if expr, ok := maybe[Error]; ok {
				value, err = valueOrExpr(expr, o, Error)
			}
		}
	}
	return value, err
}

// matchMissing matches a value which is either unset or has never been set.
func matchMissing(choices map[interface{}]interface{}, o Type) (interface{}, error) {
	if o.IsUnset() {
		if expr, ok := choices[Unset]; ok {
			return valueOrExpr(expr, o, Unset)
		}
	}
	if expr, ok := choices[None]; ok {
		return valueOrExpr(expr, o, None)
	}
	return nil, ErrCannotMatchUnsetValue
}

func valueOrExpr(op interface{}, value Type, t MaybeOption) (interface{}, error) {
	switch x := op.(type) {
	case func(interface{}, MaybeOption) (interface{}, error):
		return x(value, t)
	case func(interface{}) (interface{}, error):
		return x(value)
	}
	return op, nil
}

// Fail may be used as an option case, causing a Match to fail with an error.
// The error will be returned by Match(…), unless caught with an option.Error
// label.
//
//     _, err := o.Match(option.Of{
//          option.None: …,
//          "secure":    option.Fail(errors.New("illegal value")),
//          option.Some: …,
//     })
//
func Fail(err error) func(interface{}) (interface{}, error) {
	localErr := err
	return func(interface{}) (interface{}, error) {
		return nil, localErr
	}
}

// Safe wraps a Match's return values and drops the error value.
func Safe(x interface{}, err error) interface{} {
	return x
}

// --- StringT ---------------------------------------------------------------

type state uint8

const (
	missing state = iota
	present
	tombstone
)

// StringT is an option type for attribute values. It differentiates between
// a value which has never been set and one which has been unset explicitly.
type StringT struct {
	value string
	state state
}

// SomeString creates an optional string with value s.
func SomeString(s string) StringT {
	return StringT{value: s, state: present}
}

// String creates an optional string without a value, which has never been set.
func String() StringT {
	return StringT{}
}

// UnsetString creates an optional string which has been explicitly unset.
func UnsetString() StringT {
	return StringT{state: tombstone}
}

func (o StringT) Match(choices interface{}) (value interface{}, err error) {
	return Match(o, choices)
}

func (o StringT) Equals(other interface{}) bool {
	if s, ok := other.(string); ok {
		return o.state == present && o.value == s
	}
	return false
}

// Unwrap returns the value, which is the empty string for missing values.
func (o StringT) Unwrap() string {
	return o.value
}

// IsNone returns true if o has no value, either because it has never been set
// or because it has been unset.
func (o StringT) IsNone() bool {
	return o.state != present
}

// IsUnset returns true if o has been explicitly unset.
func (o StringT) IsUnset() bool {
	return o.state == tombstone
}

// OrElse returns the value of o or a default value.
func (o StringT) OrElse(dflt string) string {
	if o.IsNone() {
		return dflt
	}
	return o.value
}

func (o StringT) String() string {
	switch o.state {
	case missing:
		return "String.None"
	case tombstone:
		return "String.Unset"
	}
	return o.value
}

var _ Type = StringT{}
