// Package attrs provides typed access to record attribute maps
package attrs

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Value returns the attribute's value and whether it is present. A key that
// is absent or explicitly null reports false.
func Value(attributes models.Attributes, name string) (any, bool) {
	if attributes == nil {
		return nil, false
	}
	v, ok := attributes[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the attribute stringified for comparison, and whether it is
// present.
func String(attributes models.Attributes, name string) (string, bool) {
	v, ok := Value(attributes, name)
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// Stringify converts an attribute value to its comparison form. Numbers keep
// their shortest exact representation, so an integral float renders without a
// trailing ".0".
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
