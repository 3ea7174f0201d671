/*
Package config implements the command line and config file options of the
surlex2regex command.

Every option can be set with a flag or in a yaml file passed with
-config-file. The flags given on the command line take precedence over the
values of the file:

	escape: dot
	macros-file:
	- /etc/surlex/macros.yaml
	macro:
	  lang: '[a-z]{2}'
	application-log-level: DEBUG
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/logging"
)

const (
	defaultApplicationLogPrefix = "[APP]"
	defaultApplicationLogLevel  = "WARN"
	defaultEscape               = "strict"

	configFileUsage     = "if provided the flags will be loaded/overwritten by the values on the file (yaml)"
	macrosFileUsage     = "yaml or json file with macro definitions, registered before translating; can be repeated or comma separated"
	macroUsage          = "instance macro in the form name=regexp; can be repeated"
	escapeUsage         = "escaping of the literal text: strict, dot or meta"
	astUsage            = "print the parsed nodes instead of the regular expression"
	captureMacrosUsage  = "print the macro of every macro-typed capture"
	logLevelUsage       = "log level for application logs, possible values: PANIC, FATAL, ERROR, WARN, INFO, DEBUG"
	logPrefixUsage      = "prefix for each log entry"
	logJSONEnabledUsage = "when this flag is set, log in JSON format is used"

	// pattern and subject
	maxArgs = 2
)

// ErrMissingPattern is returned when no pattern is given on the command
// line.
var ErrMissingPattern = errors.New("missing surlex pattern")

type Config struct {
	ConfigFile string        `yaml:"-"`
	Flags      *flag.FlagSet `yaml:"-"`

	// translation:
	MacrosFiles  fileList            `yaml:"macros-file"`
	Macros       *mapFlags           `yaml:"macro"`
	EscapeString string              `yaml:"escape"`
	Escape       surlex.EscapePolicy `yaml:"-"`

	// output:
	AST           bool `yaml:"ast"`
	CaptureMacros bool `yaml:"capture-macros"`

	// logging:
	ApplicationLogLevelString string    `yaml:"application-log-level"`
	ApplicationLogLevel       log.Level `yaml:"-"`
	ApplicationLogPrefix      string    `yaml:"application-log-prefix"`
	ApplicationLogJSONEnabled bool      `yaml:"application-log-json-enabled"`

	// positional arguments, the pattern and the optional subject:
	Pattern    string `yaml:"-"`
	Subject    string `yaml:"-"`
	HasSubject bool   `yaml:"-"`
}

// NewConfig creates a Config with its flags registered.
func NewConfig() *Config {
	cfg := new(Config)
	cfg.Macros = newMapFlags()

	flag := flag.NewFlagSet("", flag.ContinueOnError)
	flag.StringVar(&cfg.ConfigFile, "config-file", "", configFileUsage)

	flag.Var(&cfg.MacrosFiles, "macros-file", macrosFileUsage)
	flag.Var(cfg.Macros, "macro", macroUsage)
	flag.StringVar(&cfg.EscapeString, "escape", defaultEscape, escapeUsage)

	flag.BoolVar(&cfg.AST, "ast", false, astUsage)
	flag.BoolVar(&cfg.CaptureMacros, "capture-macros", false, captureMacrosUsage)

	flag.StringVar(&cfg.ApplicationLogLevelString, "application-log-level", defaultApplicationLogLevel, logLevelUsage)
	flag.StringVar(&cfg.ApplicationLogPrefix, "application-log-prefix", defaultApplicationLogPrefix, logPrefixUsage)
	flag.BoolVar(&cfg.ApplicationLogJSONEnabled, "application-log-json-enabled", false, logJSONEnabledUsage)

	cfg.Flags = flag
	return cfg
}

func validate(c *Config) error {
	if _, err := log.ParseLevel(c.ApplicationLogLevelString); err != nil {
		return err
	}

	if _, err := surlex.ParseEscapePolicy(c.EscapeString); err != nil {
		return err
	}

	if c.AST && c.CaptureMacros {
		return errors.New("-ast and -capture-macros cannot be used together")
	}

	for name := range c.Macros.Values() {
		if name == "" {
			return errors.New("empty macro name")
		}
	}

	return nil
}

// SetOutput sets the destination of the usage and error messages of the
// flags.
func (c *Config) SetOutput(w io.Writer) {
	c.Flags.SetOutput(w)
}

func (c *Config) Parse() error {
	return c.ParseArgs(os.Args[0], os.Args[1:])
}

// ParseArgs parses the flags and the positional arguments. When a config
// file is set, its values are loaded, and the flags are parsed again so
// that they override the file.
func (c *Config) ParseArgs(progname string, args []string) error {
	c.Flags.Init(progname, flag.ContinueOnError)
	if err := c.Flags.Parse(args); err != nil {
		return err
	}

	if c.ConfigFile != "" {
		yamlFile, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}

		// repeated flags are collected again from the args
		c.MacrosFiles.reset()
		if err := yaml.UnmarshalStrict(yamlFile, c); err != nil {
			return fmt.Errorf("unmarshalling config file error: %w", err)
		}

		if err := c.Flags.Parse(args); err != nil {
			return err
		}
	}

	positional := c.Flags.Args()
	switch {
	case len(positional) == 0:
		return ErrMissingPattern
	case len(positional) > maxArgs:
		return fmt.Errorf("invalid arguments: %s", positional[maxArgs:])
	}

	c.Pattern = positional[0]
	if len(positional) == maxArgs {
		c.Subject = positional[1]
		c.HasSubject = true
	}

	if err := validate(c); err != nil {
		return err
	}

	c.ApplicationLogLevel, _ = log.ParseLevel(c.ApplicationLogLevelString)
	c.Escape, _ = surlex.ParseEscapePolicy(c.EscapeString)
	return nil
}

// ToLoggingOptions returns the options of the application log.
func (c *Config) ToLoggingOptions() logging.Options {
	return logging.Options{
		ApplicationLogPrefix:      c.ApplicationLogPrefix,
		ApplicationLogLevel:       c.ApplicationLogLevelString,
		ApplicationLogJSONEnabled: c.ApplicationLogJSONEnabled,
		AccessLogDisabled:         true,
	}
}

// ToSurlexOptions returns the options for creating the surlex of the
// pattern.
func (c *Config) ToSurlexOptions() surlex.Options {
	return surlex.Options{
		Macros: c.Macros.Values(),
		Escape: c.Escape,
	}
}
