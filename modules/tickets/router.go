package tickets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/opsdesk/pkg/binder"
	"github.com/opsdesk/opsdesk/pkg/logger"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/web"
)

// CategorySource supplies the category options on the filing form. The
// categories module implements it.
type CategorySource interface {
	CategoryOptions(ctx context.Context) ([]CategoryOption, error)
}

// WithCategories populates the filing form's category select.
func WithCategories(src CategorySource) ServiceOption {
	return func(s *Service) { s.categories = src }
}

// WithErrorHandler routes handler failures through the app-wide error
// handler instead of the plain-text default.
func WithErrorHandler(h web.ErrorHandler[web.Context]) ServiceOption {
	return func(s *Service) { s.errors = h }
}

// WithFilingLimit rate-limits ticket filing.
func WithFilingLimit(mw func(http.Handler) http.Handler) ServiceOption {
	return func(s *Service) { s.filingLimit = mw }
}

type listRequest struct {
	Status     string `query:"status"`
	AssigneeID string `query:"assignee_id"`
}

type fileRequest struct {
	Subject    string `form:"subject"`
	Body       string `form:"body"`
	CategoryID string `form:"category_id"`
}

type ticketRequest struct {
	ID string `path:"id"`
}

type triageRequest struct {
	ID         string `path:"id"`
	Priority   int    `form:"priority"`
	CategoryID string `form:"category_id"`
}

type assignRequest struct {
	ID         string `path:"id"`
	AssigneeID string `form:"assignee_id"`
}

type commentRequest struct {
	ID   string `path:"id"`
	Body string `form:"body"`
}

// Handle mounts the ticket UI. The caller applies the session, actor and
// role middleware above this router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.With(rbac.Require(s.authz, "tickets.read.own")).
		Get("/", web.Wrap(s.handleList,
			web.WithBinders[web.Context, listRequest](binder.Query()),
			web.WithErrorHandler[web.Context, listRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.file")).
		Get("/new", web.Wrap(s.handleNew,
			web.WithErrorHandler[web.Context, struct{}](s.errors)))

	file := r.With(rbac.Require(s.authz, "tickets.file"))
	if s.filingLimit != nil {
		file = file.With(s.filingLimit)
	}
	file.Post("/", web.Wrap(s.handleFile,
		web.WithBinders[web.Context, fileRequest](binder.Form()),
		web.WithErrorHandler[web.Context, fileRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.read.own")).
		Get("/{id}", web.Wrap(s.handleDetail,
			web.WithBinders[web.Context, ticketRequest](binder.Path()),
			web.WithErrorHandler[web.Context, ticketRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.triage")).
		Post("/{id}/triage", web.Wrap(s.handleTriage,
			web.WithBinders[web.Context, triageRequest](binder.Path(), binder.Form()),
			web.WithErrorHandler[web.Context, triageRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.assign")).
		Post("/{id}/assign", web.Wrap(s.handleAssign,
			web.WithBinders[web.Context, assignRequest](binder.Path(), binder.Form()),
			web.WithErrorHandler[web.Context, assignRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.resolve")).
		Post("/{id}/resolve", web.Wrap(s.transitionHandler(s.Resolve),
			web.WithBinders[web.Context, ticketRequest](binder.Path()),
			web.WithErrorHandler[web.Context, ticketRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.close")).
		Post("/{id}/close", web.Wrap(s.transitionHandler(s.Close),
			web.WithBinders[web.Context, ticketRequest](binder.Path()),
			web.WithErrorHandler[web.Context, ticketRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.reopen")).
		Post("/{id}/reopen", web.Wrap(s.transitionHandler(s.Reopen),
			web.WithBinders[web.Context, ticketRequest](binder.Path()),
			web.WithErrorHandler[web.Context, ticketRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.comment")).
		Post("/{id}/comments", web.Wrap(s.handleComment,
			web.WithBinders[web.Context, commentRequest](binder.Path(), binder.Form()),
			web.WithErrorHandler[web.Context, commentRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.comment")).
		Post("/{id}/attachments", web.Wrap(s.handleAttach,
			web.WithBinders[web.Context, ticketRequest](binder.Path()),
			web.WithErrorHandler[web.Context, ticketRequest](s.errors)))

	r.With(rbac.Require(s.authz, "tickets.read.own")).
		Get("/attachments/{id}", web.Wrap(s.handleDownload,
			web.WithBinders[web.Context, ticketRequest](binder.Path()),
			web.WithErrorHandler[web.Context, ticketRequest](s.errors)))

	return r
}

func (s *Service) handleList(ctx web.Context, req listRequest) web.Response {
	list, err := s.List(ctx, ListParams{Status: req.Status, AssigneeID: req.AssigneeID})
	if err != nil {
		return respondErr(err)
	}
	return web.Templ(ListPage(list, s.canReadAll(ctx), req.Status))
}

func (s *Service) handleNew(ctx web.Context, _ struct{}) web.Response {
	var options []CategoryOption
	if s.categories != nil {
		var err error
		options, err = s.categories.CategoryOptions(ctx)
		if err != nil {
			// An empty select is better than a dead filing form.
			s.log.WarnContext(ctx, "category options unavailable", logger.Error(err))
		}
	}
	return web.Templ(FilePage(options))
}

func (s *Service) handleFile(ctx web.Context, req fileRequest) web.Response {
	t, err := s.File(ctx, FileParams(req))
	if err != nil {
		return respondErr(err)
	}
	return web.Redirect("/tickets/" + t.ID)
}

func (s *Service) handleDetail(ctx web.Context, req ticketRequest) web.Response {
	t, err := s.Get(ctx, req.ID)
	if err != nil {
		return respondErr(err)
	}
	comments, err := s.Thread(ctx, t.ID)
	if err != nil {
		return respondErr(err)
	}
	var attachments []Attachment
	if s.blobs != nil {
		if attachments, err = s.Attachments(ctx, t.ID); err != nil {
			return respondErr(err)
		}
	}
	return web.Templ(DetailPage(t, comments, attachments, s.availableActions(ctx, t)))
}

func (s *Service) handleTriage(ctx web.Context, req triageRequest) web.Response {
	t, err := s.Triage(ctx, req.ID, req.Priority, req.CategoryID)
	if err != nil {
		return respondErr(err)
	}
	return web.Redirect("/tickets/" + t.ID)
}

func (s *Service) handleAssign(ctx web.Context, req assignRequest) web.Response {
	t, err := s.Assign(ctx, req.ID, req.AssigneeID)
	if err != nil {
		return respondErr(err)
	}
	return web.Redirect("/tickets/" + t.ID)
}

// transitionHandler adapts the no-argument transitions (resolve, close,
// reopen) into one handler shape.
func (s *Service) transitionHandler(op func(context.Context, string) (Ticket, error)) web.HandlerFunc[web.Context, ticketRequest] {
	return func(ctx web.Context, req ticketRequest) web.Response {
		t, err := op(ctx, req.ID)
		if err != nil {
			return respondErr(err)
		}
		return web.Redirect("/tickets/" + t.ID)
	}
}

func (s *Service) handleComment(ctx web.Context, req commentRequest) web.Response {
	if _, err := s.Comment(ctx, req.ID, req.Body); err != nil {
		return respondErr(err)
	}
	return web.Redirect("/tickets/" + req.ID)
}

func (s *Service) handleAttach(ctx web.Context, req ticketRequest) web.Response {
	r := ctx.Request()
	if err := r.ParseMultipartForm(maxAttachmentLen); err != nil {
		return respondErr(web.ValidationError{"file": {"upload is not valid multipart data"}})
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return respondErr(web.ValidationError{"file": {"pick a file to attach"}})
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.Attach(ctx, req.ID, header.Filename, contentType, header.Size, f); err != nil {
		return respondErr(err)
	}
	return web.Redirect("/tickets/" + req.ID)
}

func (s *Service) handleDownload(ctx web.Context, req ticketRequest) web.Response {
	a, blob, err := s.OpenAttachment(ctx, req.ID)
	if err != nil {
		return respondErr(err)
	}
	return attachmentResponse{attachment: a, blob: blob}
}

// attachmentResponse streams a blob back as a download.
type attachmentResponse struct {
	attachment Attachment
	blob       io.ReadCloser
}

func (a attachmentResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	defer a.blob.Close()
	w.Header().Set("Content-Type", a.attachment.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.attachment.FileName))
	if a.attachment.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(a.attachment.Size, 10))
	}
	_, err := io.Copy(w, a.blob)
	return err
}

// availableActions lists lifecycle events the current role may fire from
// the ticket's status, in the machine's order.
func (s *Service) availableActions(ctx context.Context, t Ticket) []string {
	role, ok := rbac.RoleFromContext(ctx)
	if !ok {
		return nil
	}
	var actions []string
	for _, event := range s.lifecycle.Events(t.Status) {
		if s.authz.Can(role, "tickets."+string(event)) == nil {
			actions = append(actions, string(event))
		}
	}
	return actions
}

// respondErr maps domain errors onto HTTP-aware ones and defers rendering
// to the error handler.
func respondErr(err error) web.Response {
	switch {
	case errors.Is(err, ErrTicketNotFound), errors.Is(err, ErrAttachmentNotFound):
		return web.Error(fmt.Errorf("%w: %w", web.ErrNotFound, err))
	case errors.Is(err, ErrIllegalTransition):
		return web.Error(fmt.Errorf("%w: %w", web.ErrConflict, err))
	case errors.Is(err, ErrNoStorage):
		return web.Error(fmt.Errorf("%w: %w", web.ErrUnprocessable, err))
	}
	return web.Error(err)
}
