package config

// CLIConfig is the configuration for jobboard-cli.
type CLIConfig struct {
	Server string `yaml:"server"`
	Output string `yaml:"output"` // table, json, yaml

	// Token is the session token from the last login. The file is written
	// with mode 0600 because of it.
	Token string `yaml:"token,omitempty"`

	// Email is the identity Token was issued for.
	Email string `yaml:"email,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://127.0.0.1:5000",
		Output: "table",
	}
}
