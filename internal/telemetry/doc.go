// Package telemetry sets up OpenTelemetry tracing and metrics export for embedkit.
//
// Traces and metrics go to an OTLP collector over gRPC or HTTP/protobuf.
// Telemetry is disabled by default; when it is disabled or fails to start,
// the global no-op providers stay in place and embedding calls are unaffected.
//
//	tel, err := telemetry.New(ctx, cfg.Telemetry, logger)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	metrics := embeddings.NewMetricsWithMeter(tel.Meter("embedkit"), logger)
//
// Configuration:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc        # or http/protobuf
//	  insecure: true        # local collectors only
//	  sampling_rate: 1.0
//	  export_interval: 15s
//
// Tests use NewTestTelemetry, which records spans and metrics in memory.
package telemetry
