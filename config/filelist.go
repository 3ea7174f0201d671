package config

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyPath = errors.New("empty path")

// fileList holds the paths of a repeatable flag. A single flag value may
// list more paths separated by commas. A path given more than once is
// kept only at its first position.
type fileList struct {
	paths []string
	seen  map[string]bool
}

func (l *fileList) add(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return errEmptyPath
	}

	if l.seen[p] {
		return nil
	}

	if l.seen == nil {
		l.seen = make(map[string]bool)
	}

	l.seen[p] = true
	l.paths = append(l.paths, p)
	return nil
}

func (l *fileList) String() string {
	if l == nil {
		return ""
	}

	return strings.Join(l.paths, ",")
}

func (l *fileList) Set(value string) error {
	for _, p := range strings.Split(value, ",") {
		if err := l.add(p); err != nil {
			return fmt.Errorf("invalid file list %q: %w", value, err)
		}
	}

	return nil
}

// UnmarshalYAML accepts a single path or a list of paths.
func (l *fileList) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		return l.Set(single)
	}

	var paths []string
	if err := unmarshal(&paths); err != nil {
		return err
	}

	for _, p := range paths {
		if err := l.add(p); err != nil {
			return fmt.Errorf("invalid file list: %w", err)
		}
	}

	return nil
}

// Values returns the collected paths in order.
func (l *fileList) Values() []string {
	if l == nil || len(l.paths) == 0 {
		return nil
	}

	return append([]string(nil), l.paths...)
}

func (l *fileList) reset() {
	l.paths = nil
	l.seen = nil
}
