package config

import "os"

// SettingSource represents where a setting value comes from.
type SettingSource string

const (
	SourceEnv    SettingSource = "env"
	SourceConfig SettingSource = "config"
	SourceNone   SettingSource = "none"
)

// SettingStatus describes one filesystem or network setting for `check`.
type SettingStatus struct {
	Name   string        `json:"name"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
	IsSet  bool          `json:"is_set"`
	// Exists is only meaningful for directories.
	Exists bool `json:"exists"`
}

// CheckSettings returns the status of the settings the engine reads from.
func CheckSettings(cfg *Config) []SettingStatus {
	out := []SettingStatus{
		checkDir("Statement directory", cfg.Input.Dir, EnvPrefix+"_INPUT_DIR"),
		checkSetting("Statement base URL", cfg.Input.BaseURL, EnvPrefix+"_INPUT_BASE_URL"),
	}
	if cfg.Prices.Source == "csv" {
		out = append(out, checkDir("Price directory", cfg.Prices.Dir, EnvPrefix+"_PRICES_DIR"))
	}
	if cfg.Prices.Source == "yahoo" {
		out = append(out, checkSetting("Yahoo symbol suffix", cfg.Prices.Suffix, EnvPrefix+"_PRICES_SUFFIX"))
	}
	out = append(out, checkSetting("Output directory", cfg.Output.Dir, EnvPrefix+"_OUTPUT_DIR"))
	return out
}

func checkDir(name, path, envVar string) SettingStatus {
	status := checkSetting(name, path, envVar)
	if status.IsSet {
		info, err := os.Stat(path)
		status.Exists = err == nil && info.IsDir()
	}
	return status
}

// checkSetting checks if a value is set and where it came from.
func checkSetting(name, value, envVar string) SettingStatus {
	status := SettingStatus{
		Name:  name,
		Value: value,
		IsSet: value != "",
	}

	switch {
	case value == "":
		status.Source = SourceNone
	case os.Getenv(envVar) != "":
		status.Source = SourceEnv
	default:
		status.Source = SourceConfig
	}
	return status
}
