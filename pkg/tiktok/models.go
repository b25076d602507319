package tiktok

import (
	stdjson "encoding/json"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Endpoint payloads carry 19-digit identifiers, so numbers must decode
// as json.Number or the IDs lose precision on the way through float64.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Item is one decoded record from an endpoint payload. Payload shapes
// move under us too often to pin down with structs, so records stay
// dynamic and callers drill in with the accessors below.
type Item map[string]interface{}

// Str drills through nested objects and returns the value at the end
// of the key path coerced to a string, or "" when any hop is missing.
func (it Item) Str(keys ...string) string {
	var cur interface{} = map[string]interface{}(it)
	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur, ok = m[k]
		if !ok {
			return ""
		}
	}
	return asString(cur)
}

// Map returns the nested object at the key path, or nil.
func (it Item) Map(keys ...string) Item {
	var cur interface{} = map[string]interface{}(it)
	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[k]
		if !ok {
			return nil
		}
	}
	if m, ok := cur.(map[string]interface{}); ok {
		return Item(m)
	}
	return nil
}

// asString coerces the scalar shapes endpoint payloads use for one
// logical value: numbers arrive as json.Number, flags as bool, and ids
// as either strings or numbers depending on the endpoint.
func asString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case stdjson.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// asInt reads an integer that may be delivered as a number or string.
func asInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case stdjson.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		n, err := stdjson.Number(s).Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// asBool reads a flag that may be a bool, a 0/1 number, or a string.
func asBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case stdjson.Number:
		return val.String() != "0"
	case string:
		return val == "true" || val == "1"
	default:
		return false
	}
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// statusCodeOf reads the endpoint-reported status. Both spellings are
// in the wild; status_code wins when a payload carries both.
func statusCodeOf(payload map[string]interface{}) (int, bool) {
	if v, ok := payload["status_code"]; ok {
		if n, ok := asInt(v); ok {
			return n, true
		}
	}
	if v, ok := payload["statusCode"]; ok {
		if n, ok := asInt(v); ok {
			return n, true
		}
	}
	return 0, false
}

// hasAnyKey reports whether the payload carries one of the endpoint's
// success keys with a non-nil value.
func hasAnyKey(payload map[string]interface{}, keys []string) bool {
	for _, k := range keys {
		if v, ok := payload[k]; ok && v != nil {
			return true
		}
	}
	return false
}
