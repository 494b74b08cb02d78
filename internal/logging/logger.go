package logging

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Debug mode gets a colored console encoder,
// otherwise JSON at info level. The zap logger is installed as the global
// (zap.L / zap.S), and the returned slog.Logger shares its core so both
// logging APIs end up in the same stream.
//
// Everything goes to stderr unless logFile is set; stdout stays clean for
// command output and the MCP protocol channel.
func New(debug bool, logFile string) (*slog.Logger, error) {
	var config zap.Config

	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if logFile != "" {
		config.OutputPaths = []string{logFile}
		config.ErrorOutputPaths = []string{logFile}
	}

	zLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	logger := slog.New(zapslog.NewHandler(zLogger.Core()))
	zap.ReplaceGlobals(zLogger)
	slog.SetDefault(logger)

	return logger, nil
}
