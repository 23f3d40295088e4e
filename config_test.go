
package jsbridge_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kmcsr/go-logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/kmcsr/go-jsbridge"
	"github.com/kmcsr/go-jsbridge/emitter"
)

func writeFile(t *testing.T, name string, content string)(path string){
	path = filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, ([]byte)(content), 0644))
	return
}

func TestDefaultConfig(t *testing.T){
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, emitter.Permissive, cfg.Policy())
	assert.Equal(t, 100 * time.Millisecond, cfg.UpdateInterval())
	assert.False(t, cfg.DisarmOnIdle)
}

func TestLoadConfig(t *testing.T){
	sources := map[string]string{
		"bridge.yaml": `
strict: true
disarm_on_idle: true
accelerometer:
  update_interval_ms: 40
host:
  addr: 127.0.0.1:7560
log_level: debug
`,
		"bridge.toml": `
strict = true
disarm_on_idle = true
log_level = "debug"

[accelerometer]
update_interval_ms = 40

[host]
addr = "127.0.0.1:7560"
`,
		"bridge.json": `{
	"strict": true,
	"disarm_on_idle": true,
	"accelerometer": {"update_interval_ms": 40},
	"host": {"addr": "127.0.0.1:7560"},
	"log_level": "debug"
}`,
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T){
			cfg, err := LoadConfig(writeFile(t, name, src))
			require.NoError(t, err)
			assert.Equal(t, emitter.Strict, cfg.Policy())
			assert.True(t, cfg.DisarmOnIdle)
			assert.Equal(t, 40 * time.Millisecond, cfg.UpdateInterval())
			assert.Equal(t, "127.0.0.1:7560", cfg.Host.Addr)
			assert.Equal(t, "", cfg.Metrics.Addr)
			assert.Equal(t, "debug", cfg.LogLevel)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T){
	cfg, err := LoadConfig(writeFile(t, "bridge.yml", "strict: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100 * time.Millisecond, cfg.UpdateInterval())
}

func TestLoadConfigErrors(t *testing.T){
	_, err := LoadConfig(writeFile(t, "bridge.ini", "strict=1"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bridge.yaml", "log_level: loud\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bridge.json", `{"accelerometer": {"update_interval_ms": -1}}`))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bridge.toml", "strict = "))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T){
	lvl, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, logger.WarnLevel, lvl)
	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, logger.InfoLevel, lvl)
	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
