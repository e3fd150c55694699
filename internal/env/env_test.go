package env

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mode string

type testConfig struct {
	Host    string        `env:"TEST_HOST"`
	Port    int           `env:"TEST_PORT"`
	Small   int8          `env:"TEST_SMALL"`
	Enabled bool          `env:"TEST_ENABLED"`
	Timeout time.Duration `env:"TEST_TIMEOUT"`
	Mode    mode          `env:"TEST_MODE"`
	Untaged string
}

func lookupMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadFrom(t *testing.T) {
	cfg := testConfig{}
	err := LoadFrom(&cfg, lookupMap(map[string]string{
		"TEST_HOST":    "example.com",
		"TEST_PORT":    "9090",
		"TEST_ENABLED": "true",
		"TEST_TIMEOUT": "1m30s",
		"TEST_MODE":    "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, mode("production"), cfg.Mode)
}

func TestLoadFrom_PresetValuesAreDefaults(t *testing.T) {
	cfg := testConfig{Host: "localhost", Port: 3000}
	err := LoadFrom(&cfg, lookupMap(map[string]string{"TEST_PORT": "4000"}))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host, "unset variable keeps preset value")
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoadFrom_EmptyStringRespected(t *testing.T) {
	cfg := testConfig{Host: "localhost"}
	err := LoadFrom(&cfg, lookupMap(map[string]string{"TEST_HOST": ""}))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Host)
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{name: "empty int", envVar: "TEST_PORT", value: ""},
		{name: "word int", envVar: "TEST_PORT", value: "eighty"},
		{name: "int8 overflow", envVar: "TEST_SMALL", value: "300"},
		{name: "bad bool", envVar: "TEST_ENABLED", value: "maybe"},
		{name: "bad duration", envVar: "TEST_TIMEOUT", value: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg testConfig
			err := LoadFrom(&cfg, lookupMap(map[string]string{tt.envVar: tt.value}))
			require.Error(t, err)

			var invalid ErrInvalidValue
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.envVar, invalid.EnvVar)
			assert.Equal(t, tt.value, invalid.Value)
		})
	}
}

type nestedChild struct {
	DSN string `env:"TEST_DSN"`
}

func (c *nestedChild) Validate() error {
	if c.DSN == "" {
		return errors.New("TEST_DSN is required")
	}
	return nil
}

type nestedRoot struct {
	Child   nestedChild
	AppName string `env:"TEST_APP"`
}

func TestLoadFrom_NestedValidation(t *testing.T) {
	t.Run("nested validator runs", func(t *testing.T) {
		var cfg nestedRoot
		err := LoadFrom(&cfg, lookupMap(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TEST_DSN is required")
	})

	t.Run("nested values loaded", func(t *testing.T) {
		var cfg nestedRoot
		err := LoadFrom(&cfg, lookupMap(map[string]string{
			"TEST_DSN": "postgres://localhost/db",
			"TEST_APP": "todos",
		}))
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/db", cfg.Child.DSN)
		assert.Equal(t, "todos", cfg.AppName)
	})
}

func TestLoadFrom_RejectsNonStructPointer(t *testing.T) {
	var cfg testConfig

	err := LoadFrom(cfg, lookupMap(nil))
	var notPtr ErrNotStructPointer
	require.True(t, errors.As(err, &notPtr))

	n := 3
	err = LoadFrom(&n, lookupMap(nil))
	require.True(t, errors.As(err, &notPtr))
}

func TestLoadFrom_UnsupportedType(t *testing.T) {
	type badConfig struct {
		Ratio float64 `env:"TEST_RATIO"`
	}

	var cfg badConfig
	err := LoadFrom(&cfg, lookupMap(map[string]string{"TEST_RATIO": "0.5"}))

	var unsupported ErrUnsupportedType
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "float64", unsupported.Kind)
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("TEST_HOST", "from-env")

	var cfg testConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "from-env", cfg.Host)
}

type secretConfig struct {
	DSN   string `env:"TEST_SECRET_DSN,file"`
	Plain string `env:"TEST_PLAIN"`
}

func TestLoadFrom_FileOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsn")
	require.NoError(t, os.WriteFile(path, []byte("postgres://u:p@db/todos\n"), 0o600))

	t.Run("reads trimmed file contents", func(t *testing.T) {
		var cfg secretConfig
		err := LoadFrom(&cfg, lookupMap(map[string]string{"TEST_SECRET_DSN_FILE": path}))
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@db/todos", cfg.DSN)
	})

	t.Run("variable wins over file", func(t *testing.T) {
		var cfg secretConfig
		err := LoadFrom(&cfg, lookupMap(map[string]string{
			"TEST_SECRET_DSN":      "sqlite://direct",
			"TEST_SECRET_DSN_FILE": path,
		}))
		require.NoError(t, err)
		assert.Equal(t, "sqlite://direct", cfg.DSN)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		var cfg secretConfig
		err := LoadFrom(&cfg, lookupMap(map[string]string{
			"TEST_SECRET_DSN_FILE": filepath.Join(t.TempDir(), "nope"),
		}))
		var invalid ErrInvalidValue
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "TEST_SECRET_DSN_FILE", invalid.EnvVar)
	})

	t.Run("fields without the option ignore _FILE", func(t *testing.T) {
		cfg := secretConfig{Plain: "preset"}
		err := LoadFrom(&cfg, lookupMap(map[string]string{"TEST_PLAIN_FILE": path}))
		require.NoError(t, err)
		assert.Equal(t, "preset", cfg.Plain)
	})
}
