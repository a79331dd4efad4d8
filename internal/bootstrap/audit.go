package bootstrap

import "context"

// AuditLog is a lifecycle-level event worth keeping outside the request
// logs (startup, shutdown, config reloads).
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
