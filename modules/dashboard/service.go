package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/opsdesk/modules/categories"
	"github.com/opsdesk/opsdesk/modules/directory"
	"github.com/opsdesk/opsdesk/modules/tickets"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/statemachine"
	"github.com/opsdesk/opsdesk/pkg/web"
)

// TicketSource lists tickets visible to the current actor.
type TicketSource interface {
	List(ctx context.Context, p tickets.ListParams) ([]tickets.Ticket, error)
}

// UserSource lists directory entries, for the admin overview.
type UserSource interface {
	List(ctx context.Context) ([]directory.User, error)
}

// CategorySource lists the taxonomy, for the admin overview.
type CategorySource interface {
	All(ctx context.Context) ([]categories.Category, error)
}

// Service renders the landing dashboard for each role.
type Service struct {
	authz   rbac.Authorizer
	tickets TicketSource
	users   UserSource
	cats    CategorySource
	log     *slog.Logger

	errors web.ErrorHandler[web.Context]
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithAdminSources enables the admin overview cards.
func WithAdminSources(users UserSource, cats CategorySource) ServiceOption {
	return func(s *Service) {
		s.users = users
		s.cats = cats
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithErrorHandler routes handler failures through the app-wide error
// handler.
func WithErrorHandler(h web.ErrorHandler[web.Context]) ServiceOption {
	return func(s *Service) { s.errors = h }
}

// NewService wires the dashboard over the ticket workflow.
func NewService(authz rbac.Authorizer, ticketSource TicketSource, opts ...ServiceOption) *Service {
	s := &Service{
		authz:   authz,
		tickets: ticketSource,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle mounts the dashboard at the router root.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", web.Wrap(s.handleIndex,
		web.WithErrorHandler[web.Context, struct{}](s.errors)))
	return r
}

// handleIndex picks the dashboard for the caller's role: admins get the
// system overview, agents the live queue, everyone else their own tickets.
func (s *Service) handleIndex(ctx web.Context, _ struct{}) web.Response {
	role, _ := rbac.RoleFromContext(ctx)

	switch {
	case s.authz.Can(role, "users.manage") == nil && s.users != nil:
		return s.adminOverview(ctx)
	case s.authz.Can(role, "tickets.read.all") == nil:
		return s.agentQueue(ctx)
	}
	return s.myTickets(ctx)
}

func (s *Service) myTickets(ctx web.Context) web.Response {
	list, err := s.tickets.List(ctx, tickets.ListParams{})
	if err != nil {
		return web.Error(err)
	}
	return web.Templ(MyTicketsPage(list))
}

func (s *Service) agentQueue(ctx web.Context) web.Response {
	list, err := s.tickets.List(ctx, tickets.ListParams{})
	if err != nil {
		return web.Error(err)
	}
	return web.Templ(QueuePage(Summarize(list)))
}

func (s *Service) adminOverview(ctx web.Context) web.Response {
	list, err := s.tickets.List(ctx, tickets.ListParams{})
	if err != nil {
		return web.Error(err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return web.Error(err)
	}
	cats, err := s.cats.All(ctx)
	if err != nil {
		return web.Error(err)
	}

	active := 0
	for _, u := range users {
		if u.Active {
			active++
		}
	}
	return web.Templ(OverviewPage(Summarize(list), Totals{
		Users:      len(users),
		Active:     active,
		Categories: len(cats),
	}))
}

// Summary is the agent queue breakdown.
type Summary struct {
	ByStatus map[statemachine.State]int
	Urgent   []tickets.Ticket
	Total    int
}

// Totals are the admin overview counters.
type Totals struct {
	Users      int
	Active     int
	Categories int
}

// Summarize buckets tickets by status and pulls out the unfinished urgent
// ones.
func Summarize(list []tickets.Ticket) Summary {
	s := Summary{ByStatus: make(map[statemachine.State]int), Total: len(list)}
	for _, t := range list {
		s.ByStatus[t.Status]++
		if t.Priority == tickets.PriorityUrgent &&
			t.Status != tickets.StatusResolved && t.Status != tickets.StatusClosed {
			s.Urgent = append(s.Urgent, t)
		}
	}
	return s
}
