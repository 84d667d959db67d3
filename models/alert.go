package models

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Alert is transient user feedback. It lives only in memory and expires on
// its own.
type Alert struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"type"`
}
