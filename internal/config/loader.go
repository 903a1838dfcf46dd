package config

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/sockd/internal/errors"
)

// LoadFile reads and decodes an HCL configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindInvalid, "failed to read config file %s", path)
	}
	return LoadHCL(data, path)
}

// LoadHCL decodes configuration from data. filename is used in diagnostics
// and must end in .hcl.
func LoadHCL(data []byte, filename string) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, data, evalContext(os.Environ()), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.KindInvalid, "failed to decode config")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// evalContext exposes the environment as the env object.
func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
