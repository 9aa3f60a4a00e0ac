package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	APIURL    string
	Token     string
	StateFile string
	Profile   string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with defaults taken from the environment
func DefaultConfig() *Config {
	return &Config{
		APIURL:    getEnvOrDefault("GAMERHUB_API_URL", "http://localhost:5000/api"),
		Token:     os.Getenv("GAMERHUB_TOKEN"),
		StateFile: getEnvOrDefault("GAMERHUB_STATE_FILE", defaultStateFile()),
		Output:    "text",
		Verbose:   false,
	}
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gamerhub/state.json"
	}
	return filepath.Join(home, ".gamerhub", "state.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
