package main

import (
	_ "embed"

	"github.com/taldoflemis/trattoria/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type BoardSettings struct {
	// Buffered updates per subscriber before updates are dropped
	ChannelSize int `mapstructure:"channel-size" validate:"required,min=1"`
	// Finished orders kept on the board
	MaxFinished int `mapstructure:"max-finished" validate:"min=0"`
}

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          pacchetto.HTTPSettings          `mapstructure:"http" validate:"required"`
	Board         BoardSettings                   `mapstructure:"board" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("TABELLONE", baseConfig)
}
