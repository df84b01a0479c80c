// Package logging builds the zap loggers used across the service.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a sugared logger tagged with the component name.
// Pretty switches to the console encoder for local development.
func New(component string, pretty bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if pretty {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.Fields(zap.String("component", component)))
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Named derives a child logger for a sub-component.
func Named(log *zap.SugaredLogger, name string) *zap.SugaredLogger {
	return log.Named(name)
}

// NewNop returns a no-op logger for tests and optional components.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
