package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"citools/internal/extractor"
	"citools/internal/simulator"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file both tools look for when --config is not given.
const DefaultPath = "citools.yaml"

type Config struct {
	Simulator struct {
		RuntimePrefix string `yaml:"runtime_prefix"`
	} `yaml:"simulator"`
	Extractor struct {
		KindKey             string   `yaml:"kind_key"`
		AccessibilityKey    string   `yaml:"accessibility_key"`
		NameKey             string   `yaml:"name_key"`
		DeclarationKey      string   `yaml:"declaration_key"`
		TypeKinds           []string `yaml:"type_kinds"`
		FunctionKindPrefix  string   `yaml:"function_kind_prefix"`
		PublicAccessibility string   `yaml:"public_accessibility"`
		UnnamedContext      string   `yaml:"unnamed_context"`
		UnnamedFunction     string   `yaml:"unnamed_function"`
		UnknownDeclaration  string   `yaml:"unknown_declaration"`
	} `yaml:"extractor"`
	Log struct {
		Level string `yaml:"level"` // debug, info, warn, error
	} `yaml:"log"`
}

// Default returns the configuration both tools run with when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Simulator.RuntimePrefix = simulator.DefaultRuntimePrefix

	rules := extractor.DefaultRules()
	cfg.Extractor.KindKey = rules.KindKey
	cfg.Extractor.AccessibilityKey = rules.AccessibilityKey
	cfg.Extractor.NameKey = rules.NameKey
	cfg.Extractor.DeclarationKey = rules.DeclarationKey
	cfg.Extractor.TypeKinds = append([]string(nil), rules.TypeKinds...)
	cfg.Extractor.FunctionKindPrefix = rules.FunctionKindPrefix
	cfg.Extractor.PublicAccessibility = rules.PublicAccessibility
	cfg.Extractor.UnnamedContext = rules.UnnamedContext
	cfg.Extractor.UnnamedFunction = rules.UnnamedFunction
	cfg.Extractor.UnknownDeclaration = rules.UnknownDeclaration

	cfg.Log.Level = "warn"
	return &cfg
}

// LoadConfig reads the YAML file at path on top of the defaults.
// A missing file is not an error unless required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// 3. Override with Environment Variables if present
	if prefix := os.Getenv("CITOOLS_RUNTIME_PREFIX"); prefix != "" {
		cfg.Simulator.RuntimePrefix = prefix
	}
	if level := os.Getenv("CITOOLS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// ExtractorRules converts the extractor section into matching rules.
func (c *Config) ExtractorRules() extractor.Rules {
	e := c.Extractor
	return extractor.Rules{
		KindKey:             e.KindKey,
		AccessibilityKey:    e.AccessibilityKey,
		NameKey:             e.NameKey,
		DeclarationKey:      e.DeclarationKey,
		TypeKinds:           append([]string(nil), e.TypeKinds...),
		FunctionKindPrefix:  e.FunctionKindPrefix,
		PublicAccessibility: e.PublicAccessibility,
		UnnamedContext:      e.UnnamedContext,
		UnnamedFunction:     e.UnnamedFunction,
		UnknownDeclaration:  e.UnknownDeclaration,
	}
}
