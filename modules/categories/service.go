package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/opsdesk/modules/tickets"
	"github.com/opsdesk/opsdesk/pkg/cache"
	"github.com/opsdesk/opsdesk/pkg/datastore"
	"github.com/opsdesk/opsdesk/pkg/logger"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/toast"
	"github.com/opsdesk/opsdesk/pkg/web"
)

const collection = "categories"

// ErrCategoryNotFound is returned when no category matches the id.
var ErrCategoryNotFound = errors.New("categories.not_found")

// Category labels tickets for routing and reporting.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

func fromRow(row datastore.Row) Category {
	c := Category{}
	c.ID, _ = row["id"].(string)
	c.Name, _ = row["name"].(string)
	c.Description, _ = row["description"].(string)
	if t, ok := row["created_at"].(time.Time); ok {
		c.CreatedAt = t
	}
	return c
}

func (c Category) toRow() datastore.Row {
	return datastore.Row{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"created_at":  c.CreatedAt,
	}
}

// The category list is read on every filing form but changes rarely, so
// reads go through a short-lived cache under a single key.
const cacheKey = "all"

// Service manages the category taxonomy.
type Service struct {
	store  datastore.Store
	authz  rbac.Authorizer
	cached *cache.Cache[string, []Category]
	toasts *toast.Hub
	log    *slog.Logger
	now    func() time.Time

	errors web.ErrorHandler[web.Context]
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithToasts routes mutation outcomes to per-session toast stores.
func WithToasts(hub *toast.Hub) ServiceOption {
	return func(s *Service) { s.toasts = hub }
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

// WithCacheTTL overrides how long the category list may be served stale.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cached = cache.New(1, cache.WithTTL[string, []Category](ttl))
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires a category service over the given remote store.
func NewService(store datastore.Store, authz rbac.Authorizer, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		authz:  authz,
		cached: cache.New(1, cache.WithTTL[string, []Category](time.Minute)),
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// All returns every category ordered by name. Results are cached briefly;
// mutations invalidate the cache.
func (s *Service) All(ctx context.Context) ([]Category, error) {
	if list, ok := s.cached.Get(cacheKey); ok {
		return list, nil
	}
	rows, err := s.store.Select(ctx, collection, datastore.Q().OrderBy("name", false))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	list := make([]Category, 0, len(rows))
	for _, row := range rows {
		list = append(list, fromRow(row))
	}
	s.cached.Set(cacheKey, list)
	return list, nil
}

// Get returns one category.
func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	rows, err := s.store.Select(ctx, collection, datastore.Q().Eq("id", id).Limit(1))
	if err != nil {
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	if len(rows) == 0 {
		return Category{}, ErrCategoryNotFound
	}
	return fromRow(rows[0]), nil
}

// Create adds a category.
func (s *Service) Create(ctx context.Context, name, description string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, web.ValidationError{"name": {"name is required"}}
	}
	c := Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now().UTC(),
	}
	if _, err := s.store.Insert(ctx, collection, c.toRow()); err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	s.cached.Delete(cacheKey)
	s.log.InfoContext(ctx, "category created", slog.String("category", c.ID), logger.UserID(web.ActorID(ctx)))
	s.notify(ctx, toast.LevelSuccess, "Category created", name)
	return c, nil
}

// Update renames a category or changes its description.
func (s *Service) Update(ctx context.Context, id, name, description string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, web.ValidationError{"name": {"name is required"}}
	}
	changes := datastore.Row{"name": name, "description": strings.TrimSpace(description)}
	affected, err := s.store.Update(ctx, collection, datastore.Q().Eq("id", id), changes)
	if err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	if affected == 0 {
		return Category{}, ErrCategoryNotFound
	}
	s.cached.Delete(cacheKey)
	s.notify(ctx, toast.LevelSuccess, "Category updated", name)
	return s.Get(ctx, id)
}

// Delete removes a category. Tickets keep their category id; the label
// simply stops resolving.
func (s *Service) Delete(ctx context.Context, id string) error {
	affected, err := s.store.Delete(ctx, collection, datastore.Q().Eq("id", id))
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	s.cached.Delete(cacheKey)
	s.notify(ctx, toast.LevelInfo, "Category deleted", "")
	return nil
}

// CategoryOptions adapts the taxonomy to the ticket filing form.
func (s *Service) CategoryOptions(ctx context.Context) ([]tickets.CategoryOption, error) {
	list, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]tickets.CategoryOption, 0, len(list))
	for _, c := range list {
		options = append(options, tickets.CategoryOption{ID: c.ID, Name: c.Name})
	}
	return options, nil
}

func (s *Service) notify(ctx context.Context, level toast.Level, title, description string) {
	if s.toasts == nil {
		return
	}
	sessionID := web.SessionID(ctx)
	if sessionID == "" {
		return
	}
	s.toasts.Store(sessionID).Show(toast.Payload{Level: level, Title: title, Description: description})
}
