package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/paths"
	"github.com/grovetools/luminashot/schema"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched in order inside the config directory.
var configNames = []string{
	"luminashot.yml",
	"luminashot.yaml",
	"luminashot.toml",
}

var overrideNames = []string{
	"luminashot.override.yml",
	"luminashot.override.yaml",
	"luminashot.override.toml",
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{raw: map[string]interface{}{}}
	cfg.SetDefaults()
	return cfg
}

// Load reads, validates and decodes a single configuration file.
func Load(path string) (*Config, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return build(doc)
}

// LoadDefault loads the configuration for a run. An explicit path is used on
// its own and must exist. Otherwise the config directory is searched and a
// missing file simply yields defaults; an override file, if present, is
// merged on top.
func LoadDefault(explicit string) (*Config, error) {
	return LoadDefaultWithLogger(explicit, logrus.New())
}

// LoadDefaultWithLogger is LoadDefault with debug output about the layers used.
func LoadDefaultWithLogger(explicit string, logger *logrus.Logger) (*Config, error) {
	if explicit != "" {
		logger.WithField("path", explicit).Debug("Loading configuration")
		return Load(paths.ExpandHome(explicit))
	}

	dir := paths.ConfigDir()
	base, err := FindConfigFile(dir)
	if err != nil {
		if errors.Is(err, errors.ErrCodeConfigNotFound) {
			logger.WithField("dir", dir).Debug("No configuration file found, using defaults")
			return Default(), nil
		}
		return nil, err
	}

	logger.WithField("path", base).Debug("Loading configuration")
	doc, err := readDocument(base)
	if err != nil {
		return nil, err
	}

	for _, overridePath := range overrideFiles(dir) {
		logger.WithField("path", overridePath).Debug("Loading override configuration")
		override, err := readDocument(overridePath)
		if err != nil {
			logger.WithError(err).Warn("Failed to read override file, skipping")
			continue
		}
		doc = mergeDocuments(doc, override)
	}

	return build(doc)
}

// Sources lists the files LoadDefault reads for explicit, in merge order.
func Sources(explicit string) []string {
	if explicit != "" {
		return []string{paths.ExpandHome(explicit)}
	}
	dir := paths.ConfigDir()
	base, err := FindConfigFile(dir)
	if err != nil {
		return nil
	}
	return append([]string{base}, overrideFiles(dir)...)
}

func overrideFiles(dir string) []string {
	var found []string
	for _, name := range overrideNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			found = append(found, path)
		}
	}
	return found
}

// FindConfigFile returns the first configuration file present in dir.
func FindConfigFile(dir string) (string, error) {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(dir).WithDetail("searchPath", dir)
}

// LoadFromBytes parses a document in the given format ("yaml" or "toml").
func LoadFromBytes(data []byte, format string) (*Config, error) {
	doc, err := parseDocument(data, format)
	if err != nil {
		return nil, err
	}
	return build(doc)
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if logging, ok := c.raw["logging"]; ok {
		extra, err := yaml.Marshal(map[string]interface{}{"logging": logging})
		if err != nil {
			return nil, err
		}
		buf.Write(extra)
	}
	return buf.Bytes(), nil
}

func readDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}

	doc, err := parseDocument(data, format)
	if err != nil {
		if shotErr, ok := errors.As(err); ok {
			return nil, shotErr.WithDetail("path", path)
		}
		return nil, err
	}
	return doc, nil
}

func parseDocument(data []byte, format string) (map[string]interface{}, error) {
	expanded := []byte(expandEnvVars(string(data)))

	doc := map[string]interface{}{}
	switch format {
	case "toml":
		if err := toml.Unmarshal(expanded, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	default:
		if err := yaml.Unmarshal(expanded, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}

// build validates a merged document against the schema and decodes it.
func build(doc map[string]interface{}) (*Config, error) {
	normalized, err := normalize(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to normalize configuration")
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(normalized); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	cfg := &Config{raw: normalized}
	if err := decode(normalized, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize round-trips the document through JSON so YAML and TOML values
// share one representation (float64 numbers, string keys).
func normalize(doc map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
