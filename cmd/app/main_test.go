package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"photo-retouch/internal/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name       string
		debug      bool
		cfg        config.LogConfig
		level      logrus.Level
		textFormat bool
	}{
		{"json default", false, config.LogConfig{Level: "info", Format: "json"}, logrus.InfoLevel, false},
		{"text lower", false, config.LogConfig{Level: "warn", Format: "text"}, logrus.WarnLevel, true},
		{"text upper", false, config.LogConfig{Level: "INFO", Format: "TEXT"}, logrus.InfoLevel, true},
		{"bad level falls back", false, config.LogConfig{Level: "loud", Format: "json"}, logrus.InfoLevel, false},
		{"debug overrides config", true, config.LogConfig{Level: "error", Format: "json"}, logrus.DebugLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := initLogger(tt.debug, tt.cfg)
			assert.Equal(t, tt.level, logger.GetLevel())

			_, isText := logger.Formatter.(*logrus.TextFormatter)
			assert.Equal(t, tt.textFormat, isText)
		})
	}
}
