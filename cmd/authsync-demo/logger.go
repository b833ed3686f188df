package main

import (
	"github.com/goliatone/go-authsync"
	"go.uber.org/zap"
)

// zapLogger adapts a zap SugaredLogger to authsync.Logger. Args are treated
// as key/value pairs.
type zapLogger struct {
	s *zap.SugaredLogger
}

var _ authsync.Logger = zapLogger{}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (l zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }

// named returns a child logger tagged with component.
func (l zapLogger) named(component string) zapLogger {
	return zapLogger{s: l.s.Named(component)}
}
