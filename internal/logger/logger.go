// Package logger는 zap 기반 구조화 로거와 공용 필드 이름을 제공합니다.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so callers can depend on this package only
type Logger struct {
	*zap.Logger
}

// Config는 로거 설정입니다.
type Config struct {
	Level       string // debug, info, warn, error
	OutputPath  string // stdout, stderr 또는 파일 경로
	Encoding    string // json 또는 console
	ServiceName string // 모든 로그에 service.name 으로 붙음
}

// DefaultConfig는 기본 로거 설정을 반환합니다.
func DefaultConfig() *Config {
	return &Config{Level: "info", OutputPath: "stdout", Encoding: "json"}
}

// New builds a JSON logger with the given level and output
func New(level, outputPath string) (*Logger, error) {
	return NewWithConfig(&Config{Level: level, OutputPath: outputPath})
}

// NewWithConfig builds a logger from cfg. Empty fields fall back to DefaultConfig.
func NewWithConfig(cfg *Config) (*Logger, error) {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	output := firstNonEmpty(cfg.OutputPath, defaults.OutputPath)
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = firstNonEmpty(cfg.Encoding, defaults.Encoding)
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{output}
	zc.Sampling = nil
	zc.EncoderConfig = encoderConfig()

	if cfg.ServiceName != "" {
		zc.InitialFields = map[string]interface{}{FieldServiceName: cfg.ServiceName}
	}

	built, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("로거 빌드 실패: %w", err)
	}
	return &Logger{Logger: built}, nil
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	return ec
}

// ParseLevel은 문자열 로그 레벨을 파싱합니다. 빈 값은 info로 취급합니다.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("잘못된 로그 레벨: %s", level)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
