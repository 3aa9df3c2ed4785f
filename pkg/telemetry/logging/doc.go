// Package logging builds the proxy's structured logger on log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(&cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRequestID(ctx, "9b1d...")
//	logger.InfoContext(ctx, "status served", "source", "upstream")
//	// => {"msg":"status served","source":"upstream","request_id":"9b1d..."}
//
// # Redaction
//
// When enabled, values under keys such as token or authorization are masked
// and string values are scanned for bearer tokens, token query parameters,
// URL credentials and password assignments. The gateway token is never
// written to the log in clear.
package logging
