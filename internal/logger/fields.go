package logger

import (
	"time"

	"go.uber.org/zap"
)

// Log field names shared by middleware and services
const (
	FieldRequestID   = "request_id"
	FieldUserID      = "user_id"
	FieldUserRole    = "user_role"
	FieldActivityID  = "activity_id"
	FieldServiceName = "service.name"

	FieldHTTPMethod     = "http.method"
	FieldHTTPRoute      = "http.route"
	FieldHTTPStatusCode = "http.status_code"
	FieldHTTPClientIP   = "http.client_ip"
	FieldHTTPUserAgent  = "http.user_agent"
	FieldHTTPDuration   = "http.duration"

	FieldTab = "tab"
)

// HTTPFields returns zap fields for a served request
func HTTPFields(method, route string, status int, duration time.Duration) []zap.Field {
	return []zap.Field{
		zap.String(FieldHTTPMethod, method),
		zap.String(FieldHTTPRoute, route),
		zap.Int(FieldHTTPStatusCode, status),
		zap.Duration(FieldHTTPDuration, duration),
	}
}

// ActorFields returns zap fields identifying who acts on which activity
func ActorFields(userID, role, activityID string) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if userID != "" {
		fields = append(fields, zap.String(FieldUserID, userID))
	}
	if role != "" {
		fields = append(fields, zap.String(FieldUserRole, role))
	}
	if activityID != "" {
		fields = append(fields, zap.String(FieldActivityID, activityID))
	}
	return fields
}
