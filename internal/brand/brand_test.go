package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	b := Get()
	assert.Equal(t, "sockd", b.Name)
	assert.Equal(t, Name, b.Name)
	assert.NotEmpty(t, Version)
}

func TestPaths(t *testing.T) {
	t.Setenv(ConfigEnvPrefix+"_PREFIX", "")
	t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "")
	t.Setenv(ConfigEnvPrefix+"_RUN_DIR", "")

	assert.Equal(t, "/etc/sockd/sockd.hcl", ConfigPath())
	assert.Equal(t, "/run/sockd.pid", PIDPath())

	t.Setenv(ConfigEnvPrefix+"_PREFIX", "/opt/sockd")
	assert.Equal(t, "/opt/sockd/etc/sockd.hcl", ConfigPath())
	assert.Equal(t, "/opt/sockd/run/sockd.pid", PIDPath())

	t.Setenv(ConfigEnvPrefix+"_RUN_DIR", "/tmp/run")
	assert.Equal(t, "/tmp/run/sockd.pid", PIDPath())

	t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "/tmp/etc")
	assert.Equal(t, "/tmp/etc/sockd.hcl", ConfigPath())
}
