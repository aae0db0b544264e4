package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/dashctl"
	projectConfigDir = ".dashctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the dashctl configuration by layering default, user, and
// project settings. If explicitPath is set that file is applied last, and it
// must exist.
func LoadConfig(explicitPath string) (DashctlConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// Log this error but don't fail; user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if err := applyOptionalFile(&config, userConfigPath); err != nil {
		return DashctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if err := applyOptionalFile(&config, projectConfigPath); err != nil {
		return DashctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	// 4. File given on the command line
	if explicitPath != "" {
		if err := loadConfigFromFile(&config, explicitPath); err != nil {
			return DashctlConfig{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
	}

	return normalize(config), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func applyOptionalFile(config *DashctlConfig, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}
	return loadConfigFromFile(config, filePath)
}

// loadConfigFromFile decodes a YAML or TOML file on top of config. Settings
// the file doesn't mention keep their current value, which is how layers
// override each other.
func loadConfigFromFile(config *DashctlConfig, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var unused []string
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		md, err := toml.Decode(string(data), config)
		if err != nil {
			return err
		}
		for _, key := range md.Undecoded() {
			unused = append(unused, key.String())
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return err
		}
		unused, err = unusedYAMLKeys(data)
		if err != nil {
			return err
		}
	}

	for _, key := range unused {
		config.UnusedKeys = append(config.UnusedKeys, fmt.Sprintf("%s (%s)", key, filePath))
	}
	config.Sources = append(config.Sources, SourceFile{Path: filePath, Content: string(data)})
	return nil
}

// unusedYAMLKeys lists the dotted keys in a YAML document that aren't
// settings.
func unusedYAMLKeys(data []byte) ([]string, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	known, err := knownKeys()
	if err != nil {
		return nil, err
	}

	var unused []string
	for _, key := range flattenKeys("", doc) {
		if !known[key] {
			unused = append(unused, key)
		}
	}
	sort.Strings(unused)
	return unused, nil
}

// knownKeys is every dotted setting name, derived from the defaults.
func knownKeys() (map[string]bool, error) {
	data, err := yaml.Marshal(GetDefaultConfig())
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	known := make(map[string]bool)
	for _, key := range flattenKeys("", doc) {
		known[key] = true
	}
	return known, nil
}

func flattenKeys(prefix string, doc map[string]interface{}) []string {
	var keys []string
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok && len(nested) > 0 {
			keys = append(keys, flattenKeys(key, nested)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
