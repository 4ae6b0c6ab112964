package env

import (
	"sort"
	"strings"
)

// FromList converts a `KEY=VALUE` list (as returned by os.Environ) into a map.
// Entries without `=` are ignored.
func FromList(list []string) map[string]string {
	env := make(map[string]string, len(list))
	for _, kv := range list {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}

	return env
}

// ToList converts an environment map into a sorted `KEY=VALUE` list.
func ToList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)

	return list
}

// MergeMaps returns a new map with base overridden by override.
func MergeMaps(base map[string]string, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return map[string]string{}
	}

	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}

	return merged
}

// AppendShared appends variable names to a colon separated share list (like
// WSLENV), keeping the existing entries.
func AppendShared(current string, names ...string) string {
	var b strings.Builder
	b.WriteString(current)
	for _, name := range names {
		b.WriteString(":")
		b.WriteString(name)
	}

	return b.String()
}

// SortedKeys returns the map keys sorted.
func SortedKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
