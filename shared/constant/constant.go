package constant

import (
	"time"
)

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyStaffID    contextKey = "staff_id"
	ContextKeyStaffEmail contextKey = "staff_email"
	ContextKeyTokenID    contextKey = "token_id"
)

// Reservation statuses. These four values are the only ones the system
// accepts; anything else arriving from the wire is a data error.
const (
	StatusPending       = "Pending"
	StatusConfirmed     = "Confirmed"
	StatusCanceled      = "Canceled"
	StatusNotResponding = "Not Responding"

	// StatusAll is the filter value that matches every status.
	StatusAll = "All"
)

// Statuses lists the valid reservation statuses.
var Statuses = []string{StatusPending, StatusConfirmed, StatusCanceled, StatusNotResponding}

// ValidStatus reports whether s is one of the four reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusNotResponding:
		return true
	}

	return false
}

// Bookable time-slot ranges shown on the customer form.
const (
	TimeSlotMorning   = "8h00-11h00"
	TimeSlotMidday    = "11h00-14h00"
	TimeSlotAfternoon = "14h00-17h00"
	TimeSlotEvening   = "17h00-20h00"
)

var TimeSlots = []string{TimeSlotMorning, TimeSlotMidday, TimeSlotAfternoon, TimeSlotEvening}

const (
	// ReservationDateLayout is the appointment-date form: DD/MM/YYYY.
	// The value is treated as an opaque string everywhere except sorting.
	ReservationDateLayout = "02/01/2006"
)

const (
	RequestParamPage    = "page"
	RequestParamLimit   = "limit"
	RequestParamSortBy  = "sort_by"
	RequestParamSortDir = "sort_dir"
)

const (
	RequestParamID     = "id"
	RequestParamSearch = "search"
)

const (
	DefaultValuePage    = 1
	DefaultValueLimit   = 50
	DefaultValueSortBy  = "created_at"
	DefaultValueSortDir = "DESC"
)

const (
	FieldCreatedAt  = "created_at"
	FieldCreatedBy  = "created_by"
	FieldModifiedAt = "modified_at"
	FieldModifiedBy = "modified_by"
)

const (
	DateFormat = time.RFC3339
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelEventScopeName      = "event"
	OtelExternalScopeName   = "external"

	OtelQueryAttributeKey = "query"
)

const (
	RequestHeaderAuthorization      = "Authorization"
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"
	RequestHeaderAPIKey             = "X-API-Key"
)

const (
	ContentTypeJSON = "application/json"
)

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorUnhealthy            = "SERVER UNHEALTHY"
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

const (
	// KafkaTopicReservationCreated carries new-reservation payloads to the
	// outbound messaging worker.
	KafkaTopicReservationCreated = "resa.reservation.created"
)

const (
	Asterix = "*"
	Empty   = ""
)
