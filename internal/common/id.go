package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewAuditID generates a unique audit record ID with the "audit_" prefix
// Format: audit_<uuid>
func NewAuditID() string {
	return "audit_" + uuid.New().String()
}
