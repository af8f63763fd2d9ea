// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// The analyzer carries ranking-source signing credentials and builds
// signed request URLs. The SecureHandler masks these before any log
// record reaches its destination:
//   - Signing credentials (accessKeyId, secretKey) and other secrets
//   - HTTP authentication headers (Authorization, Cookie, X-Api-Key)
//   - Tokens and keys detected by value pattern matching
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("requesting listing page",
//	    "secretKey", cfg.SecretKey, // Will be masked
//	    "page", 3,
//	)
//
//	slog.SetDefault(logger)
package log
