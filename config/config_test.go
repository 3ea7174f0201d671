package config

import (
	"bytes"
	"errors"
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalando/surlex"
)

func parse(args ...string) (*Config, error) {
	cfg := NewConfig()
	cfg.SetOutput(&bytes.Buffer{})
	return cfg, cfg.ParseArgs("surlex2regex", args)
}

func TestDefaults(t *testing.T) {
	cfg, err := parse("/articles/<year:Y>")
	require.NoError(t, err)

	assert.Equal(t, "/articles/<year:Y>", cfg.Pattern)
	assert.False(t, cfg.HasSubject)
	assert.Equal(t, surlex.EscapeStrict, cfg.Escape)
	assert.Equal(t, log.WarnLevel, cfg.ApplicationLogLevel)
	assert.Equal(t, "[APP]", cfg.ApplicationLogPrefix)
	assert.Empty(t, cfg.Macros.Values())
	assert.Empty(t, cfg.MacrosFiles.Values())
	assert.False(t, cfg.AST)
	assert.False(t, cfg.CaptureMacros)
}

func TestFlags(t *testing.T) {
	cfg, err := parse(
		"-escape", "meta",
		"-macro", "lang=[a-z]{2,3}",
		"-macro", "sku=[A-Z0-9]{9}",
		"-macros-file", "a.yaml",
		"-macros-file", "b.json",
		"-capture-macros",
		"-application-log-level", "DEBUG",
		"/<lang:lang>/<sku:sku>",
		"/de/ABCDEFGHI",
	)
	require.NoError(t, err)

	assert.Equal(t, surlex.EscapeMeta, cfg.Escape)
	assert.Equal(t, map[string]string{"lang": "[a-z]{2,3}", "sku": "[A-Z0-9]{9}"}, cfg.Macros.Values())
	assert.Equal(t, []string{"a.yaml", "b.json"}, cfg.MacrosFiles.Values())
	assert.True(t, cfg.CaptureMacros)
	assert.Equal(t, log.DebugLevel, cfg.ApplicationLogLevel)
	assert.Equal(t, "/<lang:lang>/<sku:sku>", cfg.Pattern)
	assert.Equal(t, "/de/ABCDEFGHI", cfg.Subject)
	assert.True(t, cfg.HasSubject)
}

func TestEmptySubject(t *testing.T) {
	cfg, err := parse("/(<a>)", "")
	require.NoError(t, err)
	assert.True(t, cfg.HasSubject)
	assert.Equal(t, "", cfg.Subject)
}

func TestConfigFile(t *testing.T) {
	cfg, err := parse("-config-file", "testdata/test.yaml", "/<lang:lang>")
	require.NoError(t, err)

	want := map[string]string{"lang": "[a-z]{2}", "sku": "[A-Z0-9]{9}"}
	if diff := cmp.Diff(want, cfg.Macros.Values()); diff != "" {
		t.Errorf("unexpected macros (-want +got):\n%s", diff)
	}

	assert.Equal(t, surlex.EscapeDot, cfg.Escape)
	assert.True(t, cfg.AST)
	assert.Equal(t, []string{"/etc/surlex/macros.yaml"}, cfg.MacrosFiles.Values())
	assert.Equal(t, log.DebugLevel, cfg.ApplicationLogLevel)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	cfg, err := parse(
		"-config-file", "testdata/test.yaml",
		"-escape", "strict",
		"-macro", "lang=[a-z]{3}",
		"-macros-file", "local.yaml",
		"/<lang:lang>",
	)
	require.NoError(t, err)

	assert.Equal(t, surlex.EscapeStrict, cfg.Escape)
	assert.Equal(t, "[a-z]{3}", cfg.Macros.Values()["lang"])
	assert.Equal(t, "[A-Z0-9]{9}", cfg.Macros.Values()["sku"])
	assert.Equal(t, []string{"/etc/surlex/macros.yaml", "local.yaml"}, cfg.MacrosFiles.Values())
}

func TestInvalid(t *testing.T) {
	for _, ti := range []struct {
		msg  string
		args []string
	}{{
		"missing config file",
		[]string{"-config-file", "testdata/missing.yaml", "/"},
	}, {
		"unknown config key",
		[]string{"-config-file", "testdata/unknown.yaml", "/"},
	}, {
		"unknown flag",
		[]string{"-address", ":9090", "/"},
	}, {
		"invalid escape",
		[]string{"-escape", "all", "/"},
	}, {
		"invalid log level",
		[]string{"-application-log-level", "LOUD", "/"},
	}, {
		"invalid macro",
		[]string{"-macro", "lang", "/"},
	}, {
		"ast and capture macros",
		[]string{"-ast", "-capture-macros", "/"},
	}, {
		"too many arguments",
		[]string{"/", "/", "/"},
	}} {
		t.Run(ti.msg, func(t *testing.T) {
			if _, err := parse(ti.args...); err == nil {
				t.Error("failed to fail")
			}
		})
	}
}

func TestMissingPattern(t *testing.T) {
	_, err := parse("-ast")
	assert.ErrorIs(t, err, ErrMissingPattern)
}

func TestHelp(t *testing.T) {
	_, err := parse("-help")
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestToOptions(t *testing.T) {
	cfg, err := parse("-macro", "lang=[a-z]{2}", "-escape", "dot", "-application-log-json-enabled", "/")
	require.NoError(t, err)

	so := cfg.ToSurlexOptions()
	assert.Equal(t, surlex.EscapeDot, so.Escape)
	assert.Equal(t, map[string]string{"lang": "[a-z]{2}"}, so.Macros)

	lo := cfg.ToLoggingOptions()
	assert.True(t, lo.ApplicationLogJSONEnabled)
	assert.True(t, lo.AccessLogDisabled)
	assert.Equal(t, "WARN", lo.ApplicationLogLevel)
}
