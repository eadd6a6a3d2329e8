package log

// Shared structured-log field names so dashboards can rely on them.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldBackend   = "backend"
	FieldError     = "error"
)
