package cache

import (
	"encoding/json"
	"fmt"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// BuildPattern creates a Redis pattern for key matching.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}

// RequestKey derives the cache key for a request: endpoint + ":" + canonical JSON
// of params. encoding/json sorts map keys, so insertion order never matters.
func RequestKey(endpoint string, params map[string]interface{}) string {
	if params == nil {
		params = map[string]interface{}{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		// Unencodable params fall back to fmt, which also sorts map keys.
		return fmt.Sprintf("%s:%v", endpoint, params)
	}
	return GenerateKey(endpoint, string(data))
}
