package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Dataset     DatasetConfig     `toml:"dataset"`
	Fetch       FetchConfig       `toml:"fetch"`
	Output      OutputConfig      `toml:"output"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials for the client-credentials flow.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DatasetConfig locates the unclaimed-works reference table and tunes indexing.
type DatasetConfig struct {
	Path      string `toml:"path"`
	ChunkSize int    `toml:"chunk_size"`
}

// FetchConfig controls catalog fetching.
type FetchConfig struct {
	Artist            string `toml:"artist"`
	FallbackArtist    string `toml:"fallback_artist"`
	Market            string `toml:"market"`
	Workers           int    `toml:"workers"`
	RequestIntervalMS int    `toml:"request_interval_ms"`
}

// RequestInterval returns the configured delay between API requests. A zero
// or negative setting falls back to the 100ms floor.
func (c *Config) RequestInterval() time.Duration {
	if c.Fetch.RequestIntervalMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.Fetch.RequestIntervalMS) * time.Millisecond
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays Spotify credentials from the environment onto the config.
//
// A .env file in the working directory is loaded first when present; explicit
// environment variables win over both .env values and the TOML file.
func ApplyEnv(config *Config) {
	_ = godotenv.Load()

	if id := os.Getenv("SPOTIFY_CLIENT_ID"); id != "" {
		config.Credentials.Spotify.ClientID = id
	}
	if secret := os.Getenv("SPOTIFY_CLIENT_SECRET"); secret != "" {
		config.Credentials.Spotify.ClientSecret = secret
	}
}

// ValidateCredentials reports whether the config carries a usable Spotify credential pair.
func ValidateCredentials(config *Config) error {
	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: set credentials.spotify in config.toml or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET", ErrMissingCredentials)
	}
	return nil
}
