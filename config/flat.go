package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// flatten renders the config as dotted numeric keys. Booleans map to 0/1;
// strings are skipped.
func flatten(c *Config) (map[string]float64, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config for lookup: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing config for lookup: %w", err)
	}
	out := make(map[string]float64)
	walk("", tree, out)
	return out, nil
}

func walk(prefix string, v any, out map[string]float64) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			walk(join(k), child, out)
		}
	case []any:
		for i, child := range t {
			walk(join(strconv.Itoa(i)), child, out)
		}
	case int:
		out[prefix] = float64(t)
	case float64:
		out[prefix] = t
	case bool:
		if t {
			out[prefix] = 1
		} else {
			out[prefix] = 0
		}
	}
}
