/*
Package macros implements the named pattern shorthands available in surlex tags.

A macro is referenced in a surlex tag after a colon, e.g. <year:Y>, and it is
resolved to a regular expression fragment. Resolution is layered: the overrides
of a Registry instance come first, then the process-wide global table, and
finally the built-in defaults:

	Y	year, including century		\d{4}
	y	year, without century		\d{2}
	M	abbreviated month name		(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)
	m	month, 1 or 2 digits		\d{1,2}
	d	day, 1 or 2 digits		\d{1,2}
	#	number of any length		\d+
	s	slug				[\w-]+
	u	UUID, hyphens optional		[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?...

Macros registered in the global table with Register are visible to every
registry created with New, for the lifetime of the process.
*/
package macros

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a macro name cannot be resolved in any tier.
var ErrNotFound = errors.New("macro not found")

var builtins = map[string]string{
	"Y": `\d{4}`,
	"y": `\d{2}`,
	"M": `(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`,
	"m": `\d{1,2}`,
	"d": `\d{1,2}`,
	"#": `\d+`,
	"s": `[\w-]+`,
	"u": `[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12}`,
}

// Table is a name to pattern mapping safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	macros map[string]string
}

// Global is the process-wide macro table, filled by Register.
var Global = NewTable(nil)

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// NewTable creates a table holding a copy of the initial macros.
func NewTable(initial map[string]string) *Table {
	t := &Table{macros: make(map[string]string, len(initial))}
	for k, v := range initial {
		t.macros[k] = v
	}

	return t
}

// Set inserts or overwrites a macro.
func (t *Table) Set(name, pattern string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.macros[name]; ok && old != pattern {
		log.Debugf("macro %q redefined: %s -> %s", name, old, pattern)
	}

	t.macros[name] = pattern
}

// Lookup returns the pattern of a macro, or an error wrapping ErrNotFound.
func (t *Table) Lookup(name string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.macros[name]; ok {
		return p, nil
	}

	return "", notFound(name)
}

// Names returns the sorted names in the table.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.macros))
	for k := range t.macros {
		names = append(names, k)
	}

	sort.Strings(names)
	return names
}

// Builtins returns a copy of the built-in macros.
func Builtins() map[string]string {
	m := make(map[string]string, len(builtins))
	for k, v := range builtins {
		m[k] = v
	}

	return m
}

// Register adds a macro to the global table. Registering an existing name
// overwrites it.
func Register(name, pattern string) {
	Global.Set(name, pattern)
}

// Lookup resolves a macro from the global table or the built-ins.
func Lookup(name string) (string, error) {
	return lookupShared(Global, name)
}

func lookupShared(global *Table, name string) (string, error) {
	if global != nil {
		if p, err := global.Lookup(name); err == nil {
			return p, nil
		}
	}

	if p, ok := builtins[name]; ok {
		return p, nil
	}

	return "", notFound(name)
}
