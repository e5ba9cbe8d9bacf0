package observability

import (
	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"
)

// NewLogger builds the service logger. Debug switches zap to its
// development config.
func NewLogger(debug bool) (*logger.ZapLogger, func(), error) {
	var (
		zcore *zap.Logger
		err   error
	)
	if debug {
		zcore, err = zap.NewDevelopment()
	} else {
		zcore, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	return logger.NewZapLogger(zcore.Sugar()), func() { _ = zcore.Sync() }, nil
}

// NopLogger is for tests.
func NopLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}
