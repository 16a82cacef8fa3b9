package tickets

import (
	"time"

	"github.com/opsdesk/opsdesk/pkg/datastore"
	"github.com/opsdesk/opsdesk/pkg/statemachine"
)

// Collections in the remote data store.
const (
	collectionTickets     = "tickets"
	collectionComments    = "ticket_comments"
	collectionAttachments = "ticket_attachments"
)

// Ticket lifecycle states.
const (
	StatusOpen       = statemachine.State("open")
	StatusTriaged    = statemachine.State("triaged")
	StatusInProgress = statemachine.State("in_progress")
	StatusResolved   = statemachine.State("resolved")
	StatusClosed     = statemachine.State("closed")
)

// Ticket lifecycle events.
const (
	EventTriage  = statemachine.Event("triage")
	EventAssign  = statemachine.Event("assign")
	EventResolve = statemachine.Event("resolve")
	EventClose   = statemachine.Event("close")
	EventReopen  = statemachine.Event("reopen")
)

// Priority levels, low to urgent.
const (
	PriorityLow    = 1
	PriorityNormal = 2
	PriorityHigh   = 3
	PriorityUrgent = 4
)

// Ticket is one help-desk request.
type Ticket struct {
	ID          string
	Subject     string
	Body        string
	Status      statemachine.State
	Priority    int
	CategoryID  string
	RequesterID string
	AssigneeID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a message on a ticket's thread.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Attachment records a blob stored alongside a ticket.
type Attachment struct {
	ID          string
	TicketID    string
	FileName    string
	Key         string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

func ticketFromRow(row datastore.Row) Ticket {
	return Ticket{
		ID:          str(row["id"]),
		Subject:     str(row["subject"]),
		Body:        str(row["body"]),
		Status:      statemachine.State(str(row["status"])),
		Priority:    num(row["priority"]),
		CategoryID:  str(row["category_id"]),
		RequesterID: str(row["requester_id"]),
		AssigneeID:  str(row["assignee_id"]),
		CreatedAt:   when(row["created_at"]),
		UpdatedAt:   when(row["updated_at"]),
	}
}

func (t Ticket) toRow() datastore.Row {
	return datastore.Row{
		"id":           t.ID,
		"subject":      t.Subject,
		"body":         t.Body,
		"status":       string(t.Status),
		"priority":     t.Priority,
		"category_id":  t.CategoryID,
		"requester_id": t.RequesterID,
		"assignee_id":  t.AssigneeID,
		"created_at":   t.CreatedAt,
		"updated_at":   t.UpdatedAt,
	}
}

func commentFromRow(row datastore.Row) Comment {
	return Comment{
		ID:        str(row["id"]),
		TicketID:  str(row["ticket_id"]),
		AuthorID:  str(row["author_id"]),
		Body:      str(row["body"]),
		CreatedAt: when(row["created_at"]),
	}
}

func attachmentFromRow(row datastore.Row) Attachment {
	return Attachment{
		ID:          str(row["id"]),
		TicketID:    str(row["ticket_id"]),
		FileName:    str(row["file_name"]),
		Key:         str(row["key"]),
		ContentType: str(row["content_type"]),
		Size:        int64(num(row["size"])),
		CreatedAt:   when(row["created_at"]),
	}
}

// Rows come back with driver-dependent numeric and time types; these
// helpers normalize them.
func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func when(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}
