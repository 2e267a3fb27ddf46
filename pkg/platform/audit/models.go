package audit

import (
	"context"
	"encoding/json"
	"time"

	id "certifly/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCertificate covers certificate lifecycle events: submission,
	// verification verdicts and minting. These mirror the verification log.
	CategoryCertificate EventCategory = "certificate"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: signature failures, credential revocation.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine account activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category  EventCategory   `json:"category"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    id.UserID       `json:"user_id"`
	Subject   string          `json:"subject,omitempty"`
	Action    string          `json:"action"`
	Status    string          `json:"status,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	// Identity events
	EventUserCreated    AuditEvent = "user_created"
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventLoggedOut      AuditEvent = "logged_out"
	EventProfileUpdated AuditEvent = "profile_updated"

	// Certificate events
	EventCertificateSubmitted AuditEvent = "certificate_submitted"
	EventCertificateDeleted   AuditEvent = "certificate_deleted"
	EventVerificationRecorded AuditEvent = "verification_recorded"
	EventMintRecorded         AuditEvent = "mint_recorded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthFailed: CategorySecurity,
	EventLoggedOut:  CategorySecurity,

	EventUserCreated:    CategoryOperations,
	EventLoginSucceeded: CategoryOperations,
	EventProfileUpdated: CategoryOperations,

	EventCertificateSubmitted: CategoryCertificate,
	EventCertificateDeleted:   CategoryCertificate,
	EventVerificationRecorded: CategoryCertificate,
	EventMintRecorded:         CategoryCertificate,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink receives audit events. Implementations: in-memory store, Kafka.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
