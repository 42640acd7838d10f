package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/taldoflemis/trattoria/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	LogLevel      string                          `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	Restaurant    int64                           `mapstructure:"restaurant" validate:"min=0"`
	API           pacchetto.APIClientSettings     `mapstructure:"api" validate:"required"`
	Poll          pacchetto.PollSettings          `mapstructure:"poll" validate:"required"`
	TokenStore    pacchetto.TokenStoreSettings    `mapstructure:"token-store" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("COMANDA", baseConfig)
}

func (s *Settings) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// TokenPath expands a leading ~ in the token file path.
func (s *Settings) TokenPath() string {
	path := s.TokenStore.Path
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
