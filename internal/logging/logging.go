// Package logging builds the zap loggers used by the CLI and the MCP server.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel is the environment variable consulted when no level is given explicitly.
const EnvLevel = "PGM_STEGO_LOG_LEVEL"

// New returns a console logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). An empty level falls back to
// $PGM_STEGO_LOG_LEVEL and then to "warn".
//
// Logs never go to stdout: the MCP server uses it for protocol traffic.
func New(level string) (*zap.Logger, error) {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}
	if level == "" {
		level = "warn"
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core, zap.AddCaller()), nil
}
