package duckdb

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalJSON returns deterministic JSON bytes for hashing and storage.
func CanonicalJSON(value interface{}) ([]byte, error) {
	normalized, err := normalizeJSON(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// FingerprintJSON returns a SHA-256 hex digest for the canonical JSON.
func FingerprintJSON(value interface{}) (string, error) {
	data, err := CanonicalJSON(value)
	if err != nil {
		return "", err
	}
	return fingerprintBytes(data), nil
}

// InferSchema describes an event payload as a flat JSON object mapping each
// top-level key to its JSON kind (String, Number, Boolean, Object, Array,
// Null). Non-object payloads yield an empty schema.
func InferSchema(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("infer schema: %w", err)
	}
	object, ok := decoded.(map[string]interface{})
	if !ok {
		return "", nil
	}
	keys := make([]string, 0, len(object))
	for k := range object {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	schema := make(map[string]string, len(keys))
	for _, k := range keys {
		schema[k] = jsonKind(object[k])
	}
	out, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func jsonKind(value interface{}) string {
	switch value.(type) {
	case string:
		return "String"
	case float64:
		return "Number"
	case bool:
		return "Boolean"
	case map[string]interface{}:
		return "Object"
	case []interface{}:
		return "Array"
	default:
		return "Null"
	}
}

func fingerprintBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func normalizeJSON(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case json.RawMessage:
		if len(v) == 0 {
			return nil, nil
		}
		var decoded interface{}
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, fmt.Errorf("normalize json raw: %w", err)
		}
		return normalizeJSON(decoded)
	case []byte:
		var decoded interface{}
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, fmt.Errorf("normalize json bytes: %w", err)
		}
		return normalizeJSON(decoded)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			norm, err := normalizeJSON(inner)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i := range v {
			norm, err := normalizeJSON(v[i])
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	default:
		return v, nil
	}
}
