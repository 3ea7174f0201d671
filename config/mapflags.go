package config

import (
	"fmt"
	"sort"
	"strings"
)

// mapFlags are name=value pairs, collected from repeated flags. The value
// may contain '=' and ',', so regular expressions can be passed as they are.
type mapFlags struct {
	values map[string]string
}

func newMapFlags() *mapFlags {
	return &mapFlags{values: make(map[string]string)}
}

func (m *mapFlags) String() string {
	if m == nil {
		return ""
	}

	var pairs []string
	for k, v := range m.values {
		pairs = append(pairs, fmt.Sprint(k, "=", v))
	}

	sort.Strings(pairs)
	return strings.Join(pairs, " ")
}

func (m *mapFlags) Set(value string) error {
	if m == nil {
		return nil
	}

	k, v, ok := strings.Cut(value, "=")
	k = strings.TrimSpace(k)
	v = strings.TrimSpace(v)
	if !ok || k == "" || v == "" {
		return fmt.Errorf("invalid key-value pair, expected format key=value but got: '%s'", value)
	}

	if m.values == nil {
		m.values = make(map[string]string)
	}

	m.values[k] = v
	return nil
}

func (m *mapFlags) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var values = make(map[string]string)
	if err := unmarshal(&values); err != nil {
		return err
	}

	if m.values == nil {
		m.values = make(map[string]string)
	}

	for k, v := range values {
		m.values[k] = v
	}

	return nil
}

// Values returns the collected pairs.
func (m *mapFlags) Values() map[string]string {
	if m == nil {
		return nil
	}

	return m.values
}
