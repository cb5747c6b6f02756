package logger

import "log/slog"

// RequestRecord is the fixed set of request fields attached to log lines.
// Zero-valued fields are left out of Attrs.
type RequestRecord struct {
	RequestID  string
	Path       string
	Method     string
	StatusCode int
	DurationMs int64
}

// Attrs returns the record as slog attributes, skipping empty fields.
func (r RequestRecord) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 5)
	if r.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", r.RequestID))
	}
	if r.Method != "" {
		attrs = append(attrs, slog.String("method", r.Method))
	}
	if r.Path != "" {
		attrs = append(attrs, slog.String("path", r.Path))
	}
	if r.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status_code", r.StatusCode))
	}
	if r.DurationMs != 0 {
		attrs = append(attrs, slog.Int64("duration_ms", r.DurationMs))
	}
	return attrs
}

// Args is Attrs in the form accepted by slog.Logger.With.
func (r RequestRecord) Args() []any {
	attrs := r.Attrs()
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return args
}
