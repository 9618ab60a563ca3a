// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components of the bridge take a *zap.Logger and accept nil, which they
// replace with a no-op logger through OrNop. Expected absences on the
// browser boundary (unknown watch key, missing element) are logged at debug
// or warn level; they are never returned as errors.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	if err != nil {
//		return err
//	}
//	logger.Info("Session connected", zap.String("session", string(sess.ID())))
package logging
