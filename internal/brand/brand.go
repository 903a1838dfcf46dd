// Package brand provides the product's naming and default paths.
//
// The identity is loaded from brand.json at compile time via go:embed so
// packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information.
type Brand struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultRunDir    string `json:"defaultRunDir"`
	BinaryName       string `json:"binaryName"`
	ConfigFileName   string `json:"configFileName"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultRunDir = b.DefaultRunDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
}

var (
	Name             string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	DefaultRunDir    string
	BinaryName       string
	ConfigFileName   string

	// Set at build time via -ldflags.
	Version   = "dev"
	GitCommit = "unknown"
)

// Get returns the full Brand struct.
func Get() Brand {
	return b
}

// GetConfigDir returns the config directory.
// Priority: SOCKD_CONFIG_DIR > SOCKD_PREFIX/etc > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "etc")
	}
	return DefaultConfigDir
}

// GetRunDir returns the runtime directory for the PID file.
// Priority: SOCKD_RUN_DIR > SOCKD_PREFIX/run > DefaultRunDir
func GetRunDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_RUN_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "run")
	}
	return DefaultRunDir
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// PIDPath returns the default PID file path.
func PIDPath() string {
	return filepath.Join(GetRunDir(), BinaryName+".pid")
}
