package option_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/adoc/core/option"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestOptionMaybe(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	var y1, y2, y3 interface{}
	x := option.SomeString("42")
	t.Logf("x = %v, x.T = %T, x.unwrap = %v", x, x, x.Unwrap())
	y1, _ = x.Match(option.Maybe{
		option.None: "7",
		option.Some: x.Unwrap() + "!",
	})
	//
	x = option.String()
	y2, _ = x.Match(option.Maybe{
		option.None: "No Value",
		option.Some: stringify,
	})
	//
	x = option.SomeString("42")
	y3, _ = x.Match(option.Maybe{
		option.None:  "No Value",
		option.Some:  nonsense,
		option.Error: stringify,
	})
	//
	t.Logf("y1 = %v, y2 = %s, y3 = %v", y1, y2, y3)
	if y1.(string) != "42!" {
		t.Errorf("expected Some(42) to match to 42!, is %v", y1)
	}
	if y2.(string) != "No Value" {
		t.Errorf("expected missing string to match to No Value, is %v", y2)
	}
	if y3 != "Value = 42" {
		t.Errorf("expected Some(42) to match to Value = 42, is %v", y3)
	}
}

func TestOptionUnset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	x := option.UnsetString()
	if !x.IsNone() || !x.IsUnset() {
		t.Fatalf("expected tombstone to be none and unset")
	}
	y, err := x.Match(option.Maybe{
		option.None:  "never set",
		option.Unset: "unset",
	})
	if err != nil || y != "unset" {
		t.Errorf("expected tombstone to match Unset, got %v (%v)", y, err)
	}
	y, err = x.Match(option.Maybe{
		option.None: "never set",
	})
	if err != nil || y != "never set" {
		t.Errorf("expected tombstone to fall back to None, got %v (%v)", y, err)
	}
	y, err = option.String().Match(option.Maybe{
		option.Some: "value",
	})
	if err != option.ErrCannotMatchUnsetValue {
		t.Errorf("expected error for missing None case, got %v", y)
	}
}

func TestOptionOf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	x := option.SomeString("secure")
	y1, _ := x.Match(option.Of{
		option.None: 0,
		"secure":    20,
		option.Some: 1,
	})
	if y1.(int) != 20 {
		t.Errorf("expected Some(secure) to match to 20, is %v", y1)
	}
	y2, _ := option.SomeString("other").Match(option.Of{
		"secure":    20,
		option.Some: 1,
	})
	if y2.(int) != 1 {
		t.Errorf("expected Some(other) to match to 1, is %v", y2)
	}
}

func TestOptionFail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	x := option.SomeString("1")
	_, err := x.Match(option.Of{
		option.None:  7,
		"1":          option.Fail(errors.New("Fail")),
		option.Some:  x.Unwrap(),
		option.Error: option.Fail(errors.New("Caught Fail")),
	})
	//
	t.Logf("err = %v", err)
	if err == nil {
		t.Fatalf("expected Some(1) to match to an error, hasn't")
	}
	if err.Error() != "Caught Fail" {
		t.Errorf("expected Some(1) error to be caught, isn't")
	}
}

func TestOrElse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	if v := option.String().OrElse("dflt"); v != "dflt" {
		t.Errorf("expected default value, got %q", v)
	}
	if v := option.SomeString("").OrElse("dflt"); v != "" {
		t.Errorf("expected empty value to be kept, got %q", v)
	}
	if s := option.UnsetString().String(); s != "String.Unset" {
		t.Errorf("unexpected string representation %q", s)
	}
}

// ---------------------------------------------------------------------------

func nonsense(x interface{}) (interface{}, error) {
	return nil, errors.New("ERROR")
}

func stringify(x interface{}) (interface{}, error) {
	return fmt.Sprintf("Value = %v", x), nil
}
