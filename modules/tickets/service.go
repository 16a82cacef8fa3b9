package tickets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/opsdesk/pkg/datastore"
	"github.com/opsdesk/opsdesk/pkg/email"
	"github.com/opsdesk/opsdesk/pkg/logger"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/statemachine"
	"github.com/opsdesk/opsdesk/pkg/storage"
	"github.com/opsdesk/opsdesk/pkg/toast"
	"github.com/opsdesk/opsdesk/pkg/web"
)

// Directory resolves user ids to contact details. The directory module
// provides the production implementation.
type Directory interface {
	EmailFor(ctx context.Context, userID string) (string, error)
}

// Service implements the ticket workflow: filing, triage, assignment,
// resolution and the comment thread. Every status change goes through the
// lifecycle machine so illegal jumps are rejected uniformly.
type Service struct {
	store     datastore.Store
	authz     rbac.Authorizer
	lifecycle *statemachine.Machine
	toasts    *toast.Hub
	mailer    email.Sender
	directory Directory
	blobs     storage.Storage
	log       *slog.Logger
	now       func() time.Time

	categories  CategorySource
	errors      web.ErrorHandler[web.Context]
	filingLimit func(http.Handler) http.Handler
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithToasts routes operation outcomes to per-session toast stores.
func WithToasts(hub *toast.Hub) ServiceOption {
	return func(s *Service) { s.toasts = hub }
}

// WithMailer enables the resolution email. The directory maps the
// requester id to an address.
func WithMailer(sender email.Sender, directory Directory) ServiceOption {
	return func(s *Service) {
		s.mailer = sender
		s.directory = directory
	}
}

// WithStorage enables attachments.
func WithStorage(blobs storage.Storage) ServiceOption {
	return func(s *Service) { s.blobs = blobs }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires a ticket service over the given remote store.
func NewService(store datastore.Store, authz rbac.Authorizer, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		authz:     authz,
		lifecycle: Lifecycle(),
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileParams is a new ticket submission.
type FileParams struct {
	Subject    string
	Body       string
	CategoryID string
}

const (
	maxSubjectLen    = 200
	maxBodyLen       = 20_000
	maxAttachmentLen = 10 << 20
)

// File creates a ticket in the open status on behalf of the current actor.
func (s *Service) File(ctx context.Context, p FileParams) (Ticket, error) {
	subject := strings.TrimSpace(p.Subject)
	body := strings.TrimSpace(p.Body)

	errs := web.ValidationError{}
	if subject == "" {
		errs["subject"] = append(errs["subject"], "subject is required")
	} else if len(subject) > maxSubjectLen {
		errs["subject"] = append(errs["subject"], "subject is too long")
	}
	if body == "" {
		errs["body"] = append(errs["body"], "describe the problem")
	} else if len(body) > maxBodyLen {
		errs["body"] = append(errs["body"], "description is too long")
	}
	if len(errs) > 0 {
		return Ticket{}, errs
	}

	now := s.now().UTC()
	t := Ticket{
		ID:          uuid.NewString(),
		Subject:     subject,
		Body:        body,
		Status:      StatusOpen,
		CategoryID:  strings.TrimSpace(p.CategoryID),
		RequesterID: web.ActorID(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.store.Insert(ctx, collectionTickets, t.toRow()); err != nil {
		return Ticket{}, fmt.Errorf("file ticket: %w", err)
	}

	s.log.InfoContext(ctx, "ticket filed",
		logger.TicketID(t.ID), logger.UserID(t.RequesterID))
	s.notify(ctx, toast.LevelSuccess, "Ticket filed", subject)
	return t, nil
}

// ListParams filters the ticket list.
type ListParams struct {
	Status     string
	AssigneeID string
}

// List returns tickets visible to the current actor, newest first. Agents
// see the whole queue; everyone else only their own tickets regardless of
// the requested filters.
func (s *Service) List(ctx context.Context, p ListParams) ([]Ticket, error) {
	q := datastore.Q().OrderBy("created_at", true)
	if s.canReadAll(ctx) {
		if p.Status != "" {
			q = q.Eq("status", p.Status)
		}
		if p.AssigneeID != "" {
			q = q.Eq("assignee_id", p.AssigneeID)
		}
	} else {
		q = q.Eq("requester_id", web.ActorID(ctx))
	}

	rows, err := s.store.Select(ctx, collectionTickets, q)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	tickets := make([]Ticket, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, ticketFromRow(row))
	}
	return tickets, nil
}

// Get returns a single ticket. Callers without the full-queue permission
// only see their own tickets; anything else reads as not found so ids do
// not leak.
func (s *Service) Get(ctx context.Context, id string) (Ticket, error) {
	rows, err := s.store.Select(ctx, collectionTickets, datastore.Q().Eq("id", id).Limit(1))
	if err != nil {
		return Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	if len(rows) == 0 {
		return Ticket{}, ErrTicketNotFound
	}
	t := ticketFromRow(rows[0])
	if !s.canReadAll(ctx) && t.RequesterID != web.ActorID(ctx) {
		return Ticket{}, ErrTicketNotFound
	}
	return t, nil
}

// Thread returns a ticket's comments, oldest first.
func (s *Service) Thread(ctx context.Context, ticketID string) ([]Comment, error) {
	rows, err := s.store.Select(ctx, collectionComments,
		datastore.Q().Eq("ticket_id", ticketID).OrderBy("created_at", false))
	if err != nil {
		return nil, fmt.Errorf("ticket thread: %w", err)
	}
	comments := make([]Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, commentFromRow(row))
	}
	return comments, nil
}

// Attachments returns a ticket's attachment records, oldest first.
func (s *Service) Attachments(ctx context.Context, ticketID string) ([]Attachment, error) {
	rows, err := s.store.Select(ctx, collectionAttachments,
		datastore.Q().Eq("ticket_id", ticketID).OrderBy("created_at", false))
	if err != nil {
		return nil, fmt.Errorf("ticket attachments: %w", err)
	}
	attachments := make([]Attachment, 0, len(rows))
	for _, row := range rows {
		attachments = append(attachments, attachmentFromRow(row))
	}
	return attachments, nil
}

// Triage sets priority and category and advances the ticket out of open.
func (s *Service) Triage(ctx context.Context, id string, priority int, categoryID string) (Ticket, error) {
	if priority < PriorityLow || priority > PriorityUrgent {
		return Ticket{}, web.ValidationError{"priority": {"priority must be between 1 and 4"}}
	}
	t, err := s.fire(ctx, id, EventTriage, func(t *Ticket) {
		t.Priority = priority
		t.CategoryID = strings.TrimSpace(categoryID)
	})
	if err != nil {
		return Ticket{}, err
	}
	s.notify(ctx, toast.LevelSuccess, "Ticket triaged", t.Subject)
	return t, nil
}

// Assign hands the ticket to an agent and starts work on it.
func (s *Service) Assign(ctx context.Context, id, agentID string) (Ticket, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return Ticket{}, web.ValidationError{"assignee_id": {"pick an agent"}}
	}
	t, err := s.fire(ctx, id, EventAssign, func(t *Ticket) {
		t.AssigneeID = agentID
	})
	if err != nil {
		return Ticket{}, err
	}
	s.notify(ctx, toast.LevelSuccess, "Ticket assigned", t.Subject)
	return t, nil
}

// Resolve marks the ticket resolved and emails the requester. A failed
// email is logged but does not undo the resolution.
func (s *Service) Resolve(ctx context.Context, id string) (Ticket, error) {
	t, err := s.fire(ctx, id, EventResolve, nil)
	if err != nil {
		return Ticket{}, err
	}
	s.sendResolutionEmail(ctx, t)
	s.notify(ctx, toast.LevelSuccess, "Ticket resolved", t.Subject)
	return t, nil
}

// Close archives a resolved ticket.
func (s *Service) Close(ctx context.Context, id string) (Ticket, error) {
	t, err := s.fire(ctx, id, EventClose, nil)
	if err != nil {
		return Ticket{}, err
	}
	s.notify(ctx, toast.LevelInfo, "Ticket closed", t.Subject)
	return t, nil
}

// Reopen puts a resolved or closed ticket back in the open queue. The
// previous assignee is cleared so the ticket is triaged afresh.
func (s *Service) Reopen(ctx context.Context, id string) (Ticket, error) {
	t, err := s.fire(ctx, id, EventReopen, func(t *Ticket) {
		t.AssigneeID = ""
	})
	if err != nil {
		return Ticket{}, err
	}
	s.notify(ctx, toast.LevelInfo, "Ticket reopened", t.Subject)
	return t, nil
}

// Comment appends a message to the ticket thread.
func (s *Service) Comment(ctx context.Context, ticketID, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, web.ValidationError{"body": {"comment is empty"}}
	}
	if _, err := s.Get(ctx, ticketID); err != nil {
		return Comment{}, err
	}

	c := Comment{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		AuthorID:  web.ActorID(ctx),
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	row := datastore.Row{
		"id":         c.ID,
		"ticket_id":  c.TicketID,
		"author_id":  c.AuthorID,
		"body":       c.Body,
		"created_at": c.CreatedAt,
	}
	if _, err := s.store.Insert(ctx, collectionComments, row); err != nil {
		return Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

// Attach stores an uploaded file against the ticket.
func (s *Service) Attach(ctx context.Context, ticketID, fileName, contentType string, size int64, r io.Reader) (Attachment, error) {
	if s.blobs == nil {
		return Attachment{}, ErrNoStorage
	}
	if size > maxAttachmentLen {
		return Attachment{}, web.ValidationError{"file": {"attachment exceeds 10 MB"}}
	}
	if _, err := s.Get(ctx, ticketID); err != nil {
		return Attachment{}, err
	}

	a := Attachment{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		FileName:    safeFileName(fileName),
		ContentType: contentType,
		Size:        size,
		CreatedAt:   s.now().UTC(),
	}
	a.Key = fmt.Sprintf("tickets/%s/%s-%s", ticketID, a.ID, a.FileName)

	if err := s.blobs.Put(ctx, a.Key, r, contentType); err != nil {
		return Attachment{}, fmt.Errorf("store attachment: %w", err)
	}
	row := datastore.Row{
		"id":           a.ID,
		"ticket_id":    a.TicketID,
		"file_name":    a.FileName,
		"key":          a.Key,
		"content_type": a.ContentType,
		"size":         a.Size,
		"created_at":   a.CreatedAt,
	}
	if _, err := s.store.Insert(ctx, collectionAttachments, row); err != nil {
		// Best effort: don't leave an orphaned blob behind the failed row.
		if derr := s.blobs.Delete(ctx, a.Key); derr != nil {
			s.log.WarnContext(ctx, "orphaned attachment blob", logger.Error(derr))
		}
		return Attachment{}, fmt.Errorf("record attachment: %w", err)
	}
	s.notify(ctx, toast.LevelSuccess, "File attached", a.FileName)
	return a, nil
}

// OpenAttachment returns the attachment record and its blob for download.
// The caller must close the reader.
func (s *Service) OpenAttachment(ctx context.Context, attachmentID string) (Attachment, io.ReadCloser, error) {
	if s.blobs == nil {
		return Attachment{}, nil, ErrNoStorage
	}
	rows, err := s.store.Select(ctx, collectionAttachments, datastore.Q().Eq("id", attachmentID).Limit(1))
	if err != nil {
		return Attachment{}, nil, fmt.Errorf("get attachment: %w", err)
	}
	if len(rows) == 0 {
		return Attachment{}, nil, ErrAttachmentNotFound
	}
	a := attachmentFromRow(rows[0])
	// Visibility follows the ticket it belongs to.
	if _, err := s.Get(ctx, a.TicketID); err != nil {
		return Attachment{}, nil, ErrAttachmentNotFound
	}
	blob, err := s.blobs.Get(ctx, a.Key)
	if err != nil {
		return Attachment{}, nil, fmt.Errorf("open attachment: %w", err)
	}
	return a, blob, nil
}

// fire loads the ticket, applies the mutation, runs the lifecycle machine
// against the current status and persists the result. The mutation runs
// before Fire so guards see the post-change ticket.
func (s *Service) fire(ctx context.Context, id string, event statemachine.Event, mutate func(*Ticket)) (Ticket, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if mutate != nil {
		mutate(&t)
	}

	next, err := s.lifecycle.Fire(ctx, t.Status, event, t)
	if err != nil {
		if statemachine.IsNoTransition(err) || statemachine.IsRejected(err) {
			s.log.InfoContext(ctx, "transition refused",
				logger.TicketID(id),
				slog.String("status", string(t.Status)),
				slog.String("event", string(event)))
			return Ticket{}, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, event, t.Status)
		}
		return Ticket{}, fmt.Errorf("ticket transition: %w", err)
	}

	from := t.Status
	t.Status = next
	t.UpdatedAt = s.now().UTC()
	affected, err := s.store.Update(ctx, collectionTickets, datastore.Q().Eq("id", id), t.toRow())
	if err != nil {
		return Ticket{}, fmt.Errorf("update ticket: %w", err)
	}
	if affected == 0 {
		return Ticket{}, ErrTicketNotFound
	}

	s.log.InfoContext(ctx, "ticket transition",
		logger.TicketID(id),
		slog.String("from", string(from)),
		slog.String("to", string(next)),
		logger.UserID(web.ActorID(ctx)))
	return t, nil
}

func (s *Service) sendResolutionEmail(ctx context.Context, t Ticket) {
	if s.mailer == nil || s.directory == nil {
		return
	}
	addr, err := s.directory.EmailFor(ctx, t.RequesterID)
	if err != nil || addr == "" {
		s.log.InfoContext(ctx, "no requester address, skipping resolution email",
			logger.TicketID(t.ID), logger.UserID(t.RequesterID))
		return
	}
	body, err := email.RenderBody(ctx, ResolutionEmail(t))
	if err != nil {
		s.log.ErrorContext(ctx, "render resolution email", logger.Error(err), logger.TicketID(t.ID))
		return
	}
	err = s.mailer.Send(ctx, email.SendParams{
		To:       addr,
		Subject:  fmt.Sprintf("Your ticket %q was resolved", t.Subject),
		BodyHTML: body,
		Tag:      "ticket-resolved",
	})
	if err != nil {
		s.log.ErrorContext(ctx, "send resolution email", logger.Error(err), logger.TicketID(t.ID))
	}
}

func (s *Service) canReadAll(ctx context.Context) bool {
	role, ok := rbac.RoleFromContext(ctx)
	return ok && s.authz.Can(role, "tickets.read.all") == nil
}

// notify pushes an outcome toast to the caller's session store. Requests
// without a session (background jobs, tests) are silently skipped.
func (s *Service) notify(ctx context.Context, level toast.Level, title, description string) {
	if s.toasts == nil {
		return
	}
	sessionID := web.SessionID(ctx)
	if sessionID == "" {
		return
	}
	s.toasts.Store(sessionID).Show(toast.Payload{
		Level:       level,
		Title:       title,
		Description: description,
	})
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]+`)

// safeFileName flattens an uploaded file name into something storable as a
// blob key segment.
func safeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeFileChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		return "attachment"
	}
	if len(name) > 120 {
		name = name[len(name)-120:]
	}
	return name
}
