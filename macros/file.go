package macros

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"
)

var (
	errInvalidJSON   = errors.New("invalid json")
	errEmptyName     = errors.New("empty macro name")
	errInvalidMacros = errors.New("macros must be an object of name to pattern")
)

// File is the document format of macro files:
//
//	macros:
//	  lang: '[a-z]{2}'
//	  sku: '[A-Z0-9]{9}-[A-Z0-9]{3}'
//
// The JSON form is {"macros": {"lang": "[a-z]{2}"}}.
type File struct {
	Macros map[string]string `yaml:"macros"`
}

func validateNames(m map[string]string) error {
	for k := range m {
		if k == "" {
			return errEmptyName
		}
	}

	return nil
}

// ParseYAML reads macros from a YAML document.
func ParseYAML(data []byte) (map[string]string, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if f.Macros == nil {
		f.Macros = make(map[string]string)
	}

	if err := validateNames(f.Macros); err != nil {
		return nil, err
	}

	return f.Macros, nil
}

// ParseJSON reads macros from a JSON document.
func ParseJSON(data []byte) (map[string]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}

	m := make(map[string]string)
	doc := gjson.GetBytes(data, "macros")
	if !doc.Exists() {
		return m, nil
	}

	if !doc.IsObject() {
		return nil, errInvalidMacros
	}

	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("%w: %q", errInvalidMacros, key.String())
			return false
		}

		m[key.String()] = value.String()
		return true
	})

	if err != nil {
		return nil, err
	}

	if err := validateNames(m); err != nil {
		return nil, err
	}

	return m, nil
}

// LoadFile reads a macro file. Files with the .json extension are read as
// JSON, everything else as YAML.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read macro file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}

	return ParseYAML(data)
}

// RegisterFile loads a macro file and registers every macro in the global
// table.
func RegisterFile(path string) error {
	m, err := LoadFile(path)
	if err != nil {
		return err
	}

	for k, v := range m {
		Register(k, v)
	}

	return nil
}
