package models

import "time"

// AuditOperation labels one kind of outbound LLM call.
type AuditOperation string

const (
	AuditOpEmbed    AuditOperation = "embed"
	AuditOpGenerate AuditOperation = "generate"
	AuditOpVariants AuditOperation = "variants"
)

// AuditRecord is one persisted outbound LLM operation. Records are written
// best-effort; audit failures never fail the call they describe.
type AuditRecord struct {
	ID         string    `badgerhold:"key"` // audit_{uuid}
	Timestamp  time.Time `badgerhold:"index"`
	Operation  AuditOperation
	Provider   string
	Model      string
	Success    bool
	Error      string `json:",omitempty"`
	DurationMS int64
	QueryText  string // truncated to a short preview, never the full prompt
}
