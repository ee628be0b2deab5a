// 이 파일은 logger.go의 테스트를 포함합니다.
package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "stdout", cfg.OutputPath)
	assert.Equal(t, "json", cfg.Encoding)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string // 테스트 케이스 이름
		level   string // 로그 레벨
		wantErr bool   // 에러 예상 여부
	}{
		{name: "info 레벨로 생성", level: "info"},
		{name: "debug 레벨로 생성", level: "debug"},
		{name: "warn 레벨로 생성", level: "warn"},
		{name: "error 레벨로 생성", level: "error"},
		{name: "빈 레벨은 info", level: ""},
		{name: "잘못된 레벨", level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, "stdout")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log.Logger)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	level, err = ParseLevel(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	level, err = ParseLevel("TRACE")
	assert.Error(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}

func TestActorFields_OnLogger(t *testing.T) {
	// Given: observer로 출력 캡처
	core, logs := observer.New(zapcore.InfoLevel)
	base := &Logger{Logger: zap.New(core)}

	// When
	base.With(ActorFields("u-1", "technician", "a-1")...).Info("detail viewed")

	// Then
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "u-1", fields[FieldUserID])
	assert.Equal(t, "technician", fields[FieldUserRole])
	assert.Equal(t, "a-1", fields[FieldActivityID])
}

func TestNewWithConfig_ServiceName(t *testing.T) {
	log, err := NewWithConfig(&Config{Level: "debug", ServiceName: "fieldops-service"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestActorFields_SkipsEmpty(t *testing.T) {
	fields := ActorFields("u-1", "", "a-1")

	require.Len(t, fields, 2)
	assert.Equal(t, FieldUserID, fields[0].Key)
	assert.Equal(t, FieldActivityID, fields[1].Key)
}

func TestHTTPFields(t *testing.T) {
	fields := HTTPFields("GET", "/api/activities/:id", 200, 15*time.Millisecond)

	require.Len(t, fields, 4)
	assert.Equal(t, FieldHTTPRoute, fields[1].Key)
	assert.Equal(t, "/api/activities/:id", fields[1].String)
}
