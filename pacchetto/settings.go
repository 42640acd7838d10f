package pacchetto

import (
	"context"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
)

type Environment string

type CORSSettings struct {
	Origins []string `mapstructure:"origins" validate:"min=1,dive,url"`
	Methods []string `mapstructure:"methods" validate:"min=1,dive,oneof=GET POST PUT DELETE OPTIONS PATCH HEAD"`
	Headers []string `mapstructure:"headers" validate:"min=1,dive,baseheader"`
}

type HTTPSettings struct {
	Port   string       `mapstructure:"port" validate:"required,numeric"`
	Prefix string       `mapstructure:"prefix" validate:"required"`
	IP     string       `mapstructure:"ip" validate:"required,ip"`
	CORS   CORSSettings `mapstructure:"cors" validate:"required"`
}

// APIClientSettings points the client at the restaurant REST backend.
type APIClientSettings struct {
	BaseURL          string `mapstructure:"base-url" validate:"required,url"`
	TimeoutInSeconds int    `mapstructure:"timeout-in-seconds" validate:"required,min=1"`
}

func (a APIClientSettings) Timeout() time.Duration {
	return time.Duration(a.TimeoutInSeconds) * time.Second
}

type PollSettings struct {
	OrderIntervalInSeconds int     `mapstructure:"order-interval-in-seconds" validate:"required,min=1"`
	AdminIntervalInSeconds int     `mapstructure:"admin-interval-in-seconds" validate:"required,min=1"`
	JitterFactor           float64 `mapstructure:"jitter-factor" validate:"gte=0,lt=1"`
}

func (p PollSettings) OrderInterval() time.Duration {
	return time.Duration(p.OrderIntervalInSeconds) * time.Second
}

func (p PollSettings) AdminInterval() time.Duration {
	return time.Duration(p.AdminIntervalInSeconds) * time.Second
}

type TokenStoreSettings struct {
	// One of memory, file, nats
	Kind string `mapstructure:"kind" validate:"required,oneof=memory file nats"`
	// Only used if Kind is file
	Path string `mapstructure:"path" validate:"required_if=Kind file"`
	// Only used if Kind is nats
	Bucket string `mapstructure:"bucket" validate:"required_if=Kind nats"`
}

type NatsSettings struct {
	Enabled        bool `mapstructure:"enabled"`
	UseCredentials bool `mapstructure:"usecredentials"`
	// Only used if UseCredentials is true
	Username string `mapstructure:"username" validate:"required_if=UseCredentials true"`
	Password string `mapstructure:"password" validate:"required_if=UseCredentials true"`
	Host     string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     int    `mapstructure:"port" validate:"required_if=Enabled true,min=0"`
	Subject  string `mapstructure:"subject" validate:"required_if=Enabled true"`
}

func (n *NatsSettings) GetNatsClient() (*nats.Conn, error) {
	portStr := strconv.Itoa(n.Port)
	opts := []nats.Option{nats.Name("trattoria")}
	if n.UseCredentials {
		opts = append(opts, nats.UserInfo(n.Username, n.Password))
	}
	return nats.Connect(n.Host+":"+portStr, opts...)
}

// CheckNats is a health check over an established connection.
func CheckNats(nc *nats.Conn) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if nc == nil || !nc.IsConnected() {
			return ErrNatsDisconnected
		}
		return nil
	}
}

type AppSettings struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
}

type OpenTelemetryLogSettings struct {
	TimeoutInSec  int64 `mapstructure:"timeout"`
	IntervalInSec int64 `mapstructure:"interval"`
	MaxQueueSize  int   `mapstructure:"maxqueuesize"`
	BatchSize     int   `mapstructure:"batchsize"`
}

type OpenTelemetryTraceSettings struct {
	TimeoutInSec int64 `mapstructure:"timeout"`
	MaxQueueSize int   `mapstructure:"maxqueuesize"`
	BatchSize    int   `mapstructure:"batchsize"`
	SampleRate   int   `mapstructure:"samplerate"`
}

type OpenTelemetryMetricSettings struct {
	IntervalInSec int64 `mapstructure:"interval"`
	TimeoutInSec  int64 `mapstructure:"timeout"`
}

type OpenTelemetrySettings struct {
	Enabled  bool                        `mapstructure:"enabled"`
	Endpoint string                      `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Metrics  OpenTelemetryMetricSettings `mapstructure:"metrics"`
	Traces   OpenTelemetryTraceSettings  `mapstructure:"traces"`
	Logs     OpenTelemetryLogSettings    `mapstructure:"logs"`
	Interval int                         `mapstructure:"interval"`
}
