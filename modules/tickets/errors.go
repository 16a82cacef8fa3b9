package tickets

import "errors"

var (
	// ErrTicketNotFound is returned when no visible ticket matches the id.
	ErrTicketNotFound = errors.New("tickets.not_found")

	// ErrIllegalTransition is returned when the requested lifecycle event
	// is not available from the ticket's current status.
	ErrIllegalTransition = errors.New("tickets.illegal_transition")

	// ErrAttachmentNotFound is returned when an attachment row or its blob
	// is missing.
	ErrAttachmentNotFound = errors.New("tickets.attachment_not_found")

	// ErrNoStorage is returned when attachments are used without a
	// configured blob store.
	ErrNoStorage = errors.New("tickets.storage_not_configured")
)
