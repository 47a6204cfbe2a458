package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryConfig_Validate(t *testing.T) {
	valid := func() TelemetryConfig {
		cfg := Config{}
		applyDefaults(&cfg)
		cfg.Telemetry.Enabled = true
		return cfg.Telemetry
	}

	tests := []struct {
		name    string
		mutate  func(*TelemetryConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*TelemetryConfig) {}},
		{name: "disabled skips checks", mutate: func(c *TelemetryConfig) { c.Enabled = false; c.Endpoint = "" }},
		{name: "http protocol", mutate: func(c *TelemetryConfig) { c.Protocol = "http/protobuf" }},
		{name: "missing endpoint", mutate: func(c *TelemetryConfig) { c.Endpoint = "" }, wantErr: "endpoint required"},
		{name: "missing service", mutate: func(c *TelemetryConfig) { c.ServiceName = "" }, wantErr: "service_name required"},
		{name: "bad protocol", mutate: func(c *TelemetryConfig) { c.Protocol = "udp" }, wantErr: "protocol"},
		{
			name:    "insecure remote",
			mutate:  func(c *TelemetryConfig) { c.Endpoint = "otel.example.com:4317" },
			wantErr: "insecure",
		},
		{
			name:   "secure remote",
			mutate: func(c *TelemetryConfig) { c.Endpoint = "otel.example.com:4317"; c.Insecure = false },
		},
		{name: "sampling above one", mutate: func(c *TelemetryConfig) { c.SamplingRate = 1.5 }, wantErr: "sampling_rate"},
		{name: "zero interval", mutate: func(c *TelemetryConfig) { c.ExportInterval = 0 }, wantErr: "export_interval"},
		{name: "zero shutdown", mutate: func(c *TelemetryConfig) { c.Shutdown = 0 }, wantErr: "shutdown_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			cfg.Insecure = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"localhost:4317", true},
		{"127.0.0.1:4317", true},
		{"http://localhost:4318", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"collector:4317", false},
		{"https://otel.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, isLocalEndpoint(tt.endpoint))
		})
	}
}
