// Package extractor pulls values out of manifest rows. Rows are decoded JSON
// maps; paths use dot notation with optional array indexing ("product.name",
// "variants[0].weight").
package extractor

import (
	"fmt"
	"strconv"
	"strings"
)

// Extract resolves a path against a decoded row. A missing key is (nil, nil),
// not an error; feeds omit columns all the time.
func Extract(data any, path string) (any, error) {
	if path == "" {
		return data, nil
	}

	current := data
	for _, part := range parsePath(path) {
		var err error
		current, err = extractPart(current, part)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, nil
		}
	}

	return current, nil
}

// ExtractString resolves a path and renders the value as a string
func ExtractString(data any, path string) (string, error) {
	value, err := Extract(data, path)
	if err != nil || value == nil {
		return "", err
	}
	return toString(value), nil
}

// ExtractFloat resolves a path and coerces the value to a float. Numeric
// strings ("3.5") coerce; anything else is an error.
func ExtractFloat(data any, path string) (*float64, error) {
	value, err := Extract(data, path)
	if err != nil || value == nil {
		return nil, err
	}

	switch v := value.(type) {
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case int64:
		f := float64(v)
		return &f, nil
	case string:
		f, parseErr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if parseErr != nil {
			return nil, fmt.Errorf("value %q at %q is not numeric", v, path)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T at %q to float", value, path)
	}
}

type pathPart struct {
	key        string
	isArray    bool
	arrayIndex int
}

func parsePath(path string) []pathPart {
	var parts []pathPart

	for _, seg := range strings.Split(path, ".") {
		part := pathPart{key: seg}

		if idx := strings.Index(seg, "["); idx != -1 && strings.HasSuffix(seg, "]") {
			part.key = seg[:idx]
			if i, err := strconv.Atoi(seg[idx+1 : len(seg)-1]); err == nil {
				part.isArray = true
				part.arrayIndex = i
			}
		}

		parts = append(parts, part)
	}

	return parts
}

func extractPart(data any, part pathPart) (any, error) {
	var value any = data

	if part.key != "" {
		switch v := data.(type) {
		case map[string]any:
			val, ok := v[part.key]
			if !ok {
				return nil, nil
			}
			value = val
		case map[string]string:
			val, ok := v[part.key]
			if !ok {
				return nil, nil
			}
			value = val
		default:
			return nil, fmt.Errorf("cannot extract key %q from type %T", part.key, data)
		}
	}

	if part.isArray {
		arr, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array for index access, got %T", value)
		}
		if part.arrayIndex < 0 || part.arrayIndex >= len(arr) {
			return nil, nil
		}
		return arr[part.arrayIndex], nil
	}

	return value, nil
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
