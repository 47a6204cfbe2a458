// Package logging provides structured logging for embedkit.
//
// Logger wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Stdout output plus optional OpenTelemetry output
//   - Trace and request correlation fields taken from the context
//   - Field-name redaction so API keys never reach the output
//
// # Usage
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Warn(ctx, "text truncated", zap.Int("tokens", n))
//
// Library code that receives no logger uses NewNop.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	chunker := tokenizer.NewChunker(resolver, tl.Logger)
//	...
//	tl.AssertLogged(t, zapcore.WarnLevel, "truncating")
package logging
