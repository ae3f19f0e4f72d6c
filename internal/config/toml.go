package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/ai"
)

// FileConfig is the CLI's TOML file. Pointer fields tell "unset" from zero values.
type FileConfig struct {
	General GeneralConfig `toml:"general"`
	AI      FileAIConfig  `toml:"ai"`
	Display DisplayConfig `toml:"display"`
}

type GeneralConfig struct {
	DBPath   *string `toml:"db-path"`
	Timezone *string `toml:"timezone"`
}

type FileAIConfig struct {
	Provider  *string            `toml:"provider"`
	Timeout   *string            `toml:"timeout"`
	OpenAI    FileProviderConfig `toml:"openai"`
	Anthropic FileProviderConfig `toml:"anthropic"`
	Gemini    FileProviderConfig `toml:"gemini"`
}

type FileProviderConfig struct {
	APIKey  *string `toml:"api-key"`
	BaseURL *string `toml:"base-url"`
	Model   *string `toml:"model"`
}

type DisplayConfig struct {
	HeatmapDays *int `toml:"heatmap-days"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func (f FileConfig) DBPathOr(fallback string) string {
	return stringOr(f.General.DBPath, fallback)
}

func (f FileConfig) Location() (*time.Location, error) {
	name := stringOr(f.General.Timezone, "Local")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func (f FileConfig) HeatmapDaysOr(fallback int) int {
	if f.Display.HeatmapDays != nil && *f.Display.HeatmapDays > 0 {
		return *f.Display.HeatmapDays
	}
	return fallback
}

// AIConfig merges the file settings over the environment ones, so a key can live in
// either place.
func (f FileConfig) AIConfig() (ai.Config, error) {
	timeout := GetEnvAsDuration("AI_TIMEOUT", 30*time.Second)
	if f.AI.Timeout != nil {
		d, err := time.ParseDuration(*f.AI.Timeout)
		if err != nil {
			return ai.Config{}, fmt.Errorf("invalid ai.timeout: %w", err)
		}
		timeout = d
	}

	return ai.Config{
		Default:   stringOr(f.AI.Provider, GetEnvAsString("AI_PROVIDER", "")),
		Timeout:   timeout,
		OpenAI:    f.AI.OpenAI.merge("OPENAI"),
		Anthropic: f.AI.Anthropic.merge("ANTHROPIC"),
		Gemini:    f.AI.Gemini.merge("GEMINI"),
	}, nil
}

func (p FileProviderConfig) merge(envPrefix string) ai.ProviderConfig {
	return ai.ProviderConfig{
		APIKey:  stringOr(p.APIKey, GetEnvAsString(envPrefix+"_API_KEY", "")),
		BaseURL: stringOr(p.BaseURL, GetEnvAsString(envPrefix+"_BASE_URL", "")),
		Model:   stringOr(p.Model, GetEnvAsString(envPrefix+"_MODEL", "")),
	}
}

func stringOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}
