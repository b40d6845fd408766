package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Service
	FieldService  = "service"
	FieldInstance = "instance_id"

	// Socket
	FieldConnID   = "conn_id"
	FieldEvent    = "event"
	FieldStreamID = "stream_id"
	FieldTargetID = "target_id"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
