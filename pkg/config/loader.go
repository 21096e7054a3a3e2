package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultManifest is looked up in the working directory when no manifest
// path is given.
const DefaultManifest = ".rplc"

// 🎯 Load reads, parses and validates the manifest at path. The format is
// chosen by extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - .rplc (or no extension) tries YAML first, then HCL
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	m, err := parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("operations", len(m.Operations)).Msg("manifest loaded")
	return m, nil
}

func parse(ctx context.Context, path string, data []byte) (*Manifest, error) {
	if p := GetParser(path); p != nil {
		return p.Parse(ctx, data)
	}

	ext := filepath.Ext(path)
	if ext != "" && ext != DefaultManifest {
		return nil, errors.Errorf("%w: unsupported file extension %q", ErrManifest, ext)
	}

	m, yamlErr := (&YAMLParser{}).Parse(ctx, data)
	if yamlErr == nil {
		return m, nil
	}
	m, hclErr := (&HCLParser{}).Parse(ctx, data)
	if hclErr == nil {
		return m, nil
	}

	zerolog.Ctx(ctx).Debug().Err(yamlErr).Str("path", path).Msg("manifest is not YAML")
	return nil, errors.Errorf("%w: not valid as YAML or HCL: %s", ErrManifest, hclErr.Error())
}
