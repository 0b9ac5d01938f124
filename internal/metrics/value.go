// File path: internal/metrics/value.go

// Package metrics derives growth, grade and market statistics from per-year
// property observations. Every function here is total: empty or degenerate
// input produces zeroed results rather than errors.
package metrics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// NotLeasedMarker is the store's marker for years before lease-up.
	NotLeasedMarker = "Property not leased yet"
	// MissingMarker is used for any other unobserved year.
	MissingMarker = "N/A"
)

type kind uint8

const (
	kindUnavailable kind = iota
	kindNumeric
	kindText
)

// Value is a single yearly observation: a number, a text label such as a
// letter grade, or an explicit unavailable marker.
type Value struct {
	kind   kind
	number float64
	text   string
}

// Numeric wraps an observed number.
func Numeric(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Unavailable(MissingMarker)
	}
	return Value{kind: kindNumeric, number: x}
}

// Text wraps an observed label.
func Text(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Unavailable(MissingMarker)
	}
	return Value{kind: kindText, text: trimmed}
}

// Unavailable marks a year without an observation. The reason is kept so the
// original marker can be shown to the model.
func Unavailable(reason string) Value {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = MissingMarker
	}
	return Value{kind: kindUnavailable, text: reason}
}

// Number returns the numeric observation, if any.
func (v Value) Number() (float64, bool) {
	return v.number, v.kind == kindNumeric
}

// Label returns the text observation, if any.
func (v Value) Label() (string, bool) {
	return v.text, v.kind == kindText
}

// Available reports whether the year carries an observation.
func (v Value) Available() bool {
	return v.kind != kindUnavailable
}

func (v Value) String() string {
	switch v.kind {
	case kindNumeric:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case kindText:
		return v.text
	default:
		if v.text == "" {
			return MissingMarker
		}
		return v.text
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == kindNumeric {
		return json.Marshal(v.number)
	}
	return json.Marshal(v.String())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ParseValue(raw)
	return nil
}

var unavailableMarkers = map[string]struct{}{
	"":                        {},
	"n/a":                     {},
	"na":                      {},
	"null":                    {},
	"none":                    {},
	"-":                       {},
	"property not leased yet": {},
}

// ParseValue converts a raw store cell into a Value. NULLs and sentinel
// strings become Unavailable, numeric strings become Numeric and any other
// text is kept as a label.
func ParseValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Unavailable(MissingMarker)
	case Value:
		return v
	case float64:
		return Numeric(v)
	case float32:
		return Numeric(float64(v))
	case int:
		return Numeric(float64(v))
	case int64:
		return Numeric(float64(v))
	case int32:
		return Numeric(float64(v))
	case json.Number:
		return ParseValue(v.String())
	case []byte:
		return ParseValue(string(v))
	case string:
		return parseText(v)
	default:
		return Unavailable(MissingMarker)
	}
}

func parseText(s string) Value {
	trimmed := strings.TrimSpace(s)
	if _, ok := unavailableMarkers[strings.ToLower(trimmed)]; ok {
		if trimmed == "" {
			return Unavailable(MissingMarker)
		}
		return Unavailable(trimmed)
	}
	cleaned := strings.NewReplacer("$", "", ",", "", "%", "").Replace(trimmed)
	if number, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64); err == nil {
		return Numeric(number)
	}
	return Text(trimmed)
}
