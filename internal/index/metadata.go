// Package index builds collection generations: it shapes corpus records into
// documents, embeds them, and writes them behind a shadow generation swap.
package index

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CleanMetadata normalizes an arbitrary metadata payload into flat string
// fields the hash store can hold. Nulls become empty strings, lists and
// nested objects are serialized to JSON, scalars are stringified. It never
// fails: a value that cannot be serialized degrades to fmt formatting.
func CleanMetadata(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = cleanValue(v)
	}
	return out
}

func cleanValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// JSON numbers decode as float64; keep integral values clean
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any, map[string]any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", t)
	}
}
