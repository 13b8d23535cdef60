package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LobbyURL    string `yaml:"lobby_url"`
	Name        string `yaml:"name"`
	ArchivePath string `yaml:"archive_path"`
}

func defaultConfig() Config {
	return Config{
		LobbyURL:    "ws://localhost:8000/api/v1/lobby/ws",
		ArchivePath: "siege-client.db",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads path if it exists, then applies environment overrides.
// A missing file is fine; everything has a default.
func loadConfig(path string) (Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	config.LobbyURL = getEnv("LOBBY_URL", config.LobbyURL)
	config.Name = getEnv("DISPLAY_NAME", config.Name)
	config.ArchivePath = getEnv("ARCHIVE_PATH", config.ArchivePath)
	return config, nil
}
