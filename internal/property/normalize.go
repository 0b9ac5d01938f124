// File path: internal/property/normalize.go
package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	idKeys        = []string{"id", "Property_ID", "property_id"}
	nameKeys      = []string{"Name", "title", "name"}
	addressKeys   = []string{"Address", "address"}
	cityKeys      = []string{"City", "city"}
	stateKeys     = []string{"State", "state"}
	yearBuiltKeys = []string{"YearBuilt", "year_built"}
	unitKeys      = []string{"Quantity", "Units", "quantity", "units"}
	levelKeys     = []string{"Level", "level"}
	submarketKeys = []string{"Submarket", "submarket"}
)

// Normalize coerces an inbound payload into a fully populated Property. Every
// field falls back to its default when no accepted alias carries a usable
// value. Only non-object payloads are rejected.
func Normalize(payload any) (Property, error) {
	switch value := payload.(type) {
	case Property:
		return fill(value), nil
	case *Property:
		if value == nil {
			return Property{}, fmt.Errorf("%w: nil property", ErrInvalidPayload)
		}
		return fill(*value), nil
	case map[string]any:
		return fromMap(value), nil
	case json.RawMessage:
		return NormalizeJSON(value)
	case []byte:
		return NormalizeJSON(value)
	case nil:
		return Property{}, fmt.Errorf("%w: payload is null", ErrInvalidPayload)
	default:
		return Property{}, fmt.Errorf("%w: expected object, got %T", ErrInvalidPayload, payload)
	}
}

// NormalizeJSON decodes raw JSON and normalizes it. The document must be an
// object.
func NormalizeJSON(data []byte) (Property, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Property{}, fmt.Errorf("%w: expected JSON object", ErrInvalidPayload)
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return Property{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return fromMap(fields), nil
}

func fromMap(fields map[string]any) Property {
	defaults := Defaults()
	return Property{
		ID:        firstString(fields, idKeys, defaults.ID),
		Name:      firstString(fields, nameKeys, defaults.Name),
		Address:   firstString(fields, addressKeys, defaults.Address),
		City:      firstString(fields, cityKeys, defaults.City),
		State:     firstString(fields, stateKeys, defaults.State),
		YearBuilt: firstInt(fields, yearBuiltKeys, defaults.YearBuilt),
		Units:     firstInt(fields, unitKeys, defaults.Units),
		Levels:    firstInt(fields, levelKeys, defaults.Levels),
		Submarket: firstString(fields, submarketKeys, defaults.Submarket),
	}
}

// fill applies defaults to the zero-valued fields of an already typed record.
func fill(p Property) Property {
	defaults := Defaults()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = defaults.ID
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = defaults.Name
	}
	if strings.TrimSpace(p.Address) == "" {
		p.Address = defaults.Address
	}
	if strings.TrimSpace(p.City) == "" {
		p.City = defaults.City
	}
	if strings.TrimSpace(p.State) == "" {
		p.State = defaults.State
	}
	if p.YearBuilt <= 0 {
		p.YearBuilt = defaults.YearBuilt
	}
	if p.Units <= 0 {
		p.Units = defaults.Units
	}
	if p.Levels <= 0 {
		p.Levels = defaults.Levels
	}
	if strings.TrimSpace(p.Submarket) == "" {
		p.Submarket = defaults.Submarket
	}
	return p
}

func firstString(fields map[string]any, keys []string, fallback string) string {
	for _, key := range keys {
		if text, ok := asString(fields[key]); ok {
			return text
		}
	}
	return fallback
}

func firstInt(fields map[string]any, keys []string, fallback int) int {
	for _, key := range keys {
		if number, ok := asInt(fields[key]); ok {
			return number
		}
	}
	return fallback
}

func asString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case json.Number:
		return asString(v.String())
	case float64:
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), v != 0
	case int64:
		return strconv.FormatInt(v, 10), v != 0
	default:
		return "", false
	}
}

func asInt(raw any) (int, bool) {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f <= 0 || math.IsNaN(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
