package notify

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/opsdesk/opsdesk/pkg/binder"
	"github.com/opsdesk/opsdesk/pkg/logger"
	"github.com/opsdesk/opsdesk/pkg/toast"
	"github.com/opsdesk/opsdesk/pkg/web"
)

// Service streams a session's toasts to the browser and handles the
// dismiss and remove callbacks the rendered toasts post back.
type Service struct {
	hub *toast.Hub
	log *slog.Logger

	errors web.ErrorHandler[web.Context]
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithErrorHandler routes handler failures through the app-wide error
// handler.
func WithErrorHandler(h web.ErrorHandler[web.Context]) ServiceOption {
	return func(s *Service) { s.errors = h }
}

// NewService wires the notification stream over the toast hub.
func NewService(hub *toast.Hub, opts ...ServiceOption) *Service {
	s := &Service{
		hub: hub,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type idRequest struct {
	ID string `path:"id"`
}

// Handle mounts the notification endpoints. Every identified session may
// use them; there is nothing here to authorize beyond the session itself.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/stream", s.handleStream)

	r.Post("/{id}/dismiss", web.Wrap(s.handleDismiss,
		web.WithBinders[web.Context, idRequest](binder.Path()),
		web.WithErrorHandler[web.Context, idRequest](s.errors)))

	r.Post("/{id}/remove", web.Wrap(s.handleRemove,
		web.WithBinders[web.Context, idRequest](binder.Path()),
		web.WithErrorHandler[web.Context, idRequest](s.errors)))

	r.Post("/dismiss-all", web.Wrap(s.handleDismissAll,
		web.WithErrorHandler[web.Context, struct{}](s.errors)))

	return r
}

// handleStream keeps an SSE connection open for the session and repaints
// the toast region on every store mutation. Notifications are coalesced:
// only the latest snapshot matters, so a slow connection drops
// intermediate states instead of queueing them.
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := web.SessionID(r.Context())
	if sessionID == "" {
		http.Error(w, "session required", http.StatusBadRequest)
		return
	}

	store := s.hub.Store(sessionID)
	sse := web.NewSSE(w, r)

	updates := make(chan []toast.Toast, 1)
	unsubscribe := store.Subscribe(func(snapshot []toast.Toast) {
		for {
			select {
			case updates <- snapshot:
				return
			default:
				// Channel full: drop the stale snapshot and retry.
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	if err := s.patch(sse, store.Toasts()); err != nil {
		return
	}

	s.log.DebugContext(r.Context(), "notification stream opened", logger.SessionID(sessionID))
	for {
		select {
		case <-r.Context().Done():
			s.log.DebugContext(r.Context(), "notification stream closed", logger.SessionID(sessionID))
			return
		case snapshot := <-updates:
			if err := s.patch(sse, snapshot); err != nil {
				s.log.DebugContext(r.Context(), "notification stream write failed",
					logger.SessionID(sessionID), logger.Error(err))
				return
			}
		}
	}
}

func (s *Service) patch(sse *datastar.ServerSentEventGenerator, snapshot []toast.Toast) error {
	return sse.PatchElementTempl(ToastList(snapshot),
		web.WithTarget("#"+web.ToastRegionID),
		web.WithPatchMode(web.PatchInner))
}

func (s *Service) handleDismiss(ctx web.Context, req idRequest) web.Response {
	s.hub.Store(web.SessionID(ctx)).Dismiss(req.ID)
	return web.NoContent()
}

func (s *Service) handleRemove(ctx web.Context, req idRequest) web.Response {
	s.hub.Store(web.SessionID(ctx)).Remove(req.ID)
	return web.NoContent()
}

func (s *Service) handleDismissAll(ctx web.Context, _ struct{}) web.Response {
	s.hub.Store(web.SessionID(ctx)).Dismiss()
	return web.NoContent()
}
