// Package logging provides structured logging configuration for counterfeit.
//
// This package wraps log/slog so every component logs the same way.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "port", 3000)
//	logger.Error("request aborted", "error", err)
//
// # Output Formats
//
//   - Text: Human-readable format for development
//   - JSON: Structured format for log aggregation systems
//
// A log file can be added next to the console output with Open. The file
// always receives JSON records.
//
// # Integration
//
// Components accept a *slog.Logger in their constructor or via an option.
// If no logger is provided they use logging.Nop().
package logging
