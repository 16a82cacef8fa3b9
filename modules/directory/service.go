package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsdesk/opsdesk/pkg/datastore"
	"github.com/opsdesk/opsdesk/pkg/logger"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/toast"
	"github.com/opsdesk/opsdesk/pkg/web"
)

const collection = "users"

var (
	// ErrUserNotFound is returned when no user matches the id.
	ErrUserNotFound = errors.New("directory.user_not_found")

	// ErrEmailTaken is returned when the address is already registered.
	ErrEmailTaken = errors.New("directory.email_taken")
)

// User is a directory entry. PasswordHash is set at provisioning so the
// account works if credential checks ever move in-process; the auth proxy
// upstream does the actual authentication today.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
}

func fromRow(row datastore.Row) User {
	u := User{}
	u.ID, _ = row["id"].(string)
	u.Email, _ = row["email"].(string)
	u.Name, _ = row["name"].(string)
	u.Role, _ = row["role"].(string)
	u.Active, _ = row["active"].(bool)
	u.PasswordHash, _ = row["password_hash"].(string)
	if t, ok := row["created_at"].(time.Time); ok {
		u.CreatedAt = t
	}
	return u
}

func (u User) toRow() datastore.Row {
	return datastore.Row{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"role":          u.Role,
		"active":        u.Active,
		"password_hash": u.PasswordHash,
		"created_at":    u.CreatedAt,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Service manages directory entries and maps user ids to contact details
// for the ticket workflow.
type Service struct {
	store  datastore.Store
	authz  rbac.Authorizer
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

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires a directory service over the given remote store.
func NewService(store datastore.Store, authz rbac.Authorizer, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		authz: authz,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams provisions a new directory entry.
type CreateParams struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// Create provisions a user. The password is hashed with bcrypt and never
// stored in the clear.
func (s *Service) Create(ctx context.Context, p CreateParams) (User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	name := strings.TrimSpace(p.Name)

	errs := web.ValidationError{}
	if !emailRegex.MatchString(email) {
		errs["email"] = append(errs["email"], "enter a valid email address")
	}
	if name == "" {
		errs["name"] = append(errs["name"], "name is required")
	}
	if len(p.Password) < 8 {
		errs["password"] = append(errs["password"], "password must be at least 8 characters")
	}
	if s.authz.VerifyRole(p.Role) != nil {
		errs["role"] = append(errs["role"], "unknown role")
	}
	if len(errs) > 0 {
		return User{}, errs
	}

	existing, err := s.store.Select(ctx, collection, datastore.Q().Eq("email", email).Limit(1))
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if len(existing) > 0 {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         p.Role,
		Active:       true,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.store.Insert(ctx, collection, u.toRow()); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user provisioned",
		logger.UserID(u.ID), logger.Role(u.Role))
	s.notify(ctx, toast.LevelSuccess, "User created", email)
	return u, nil
}

// List returns the directory ordered by creation time, newest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	rows, err := s.store.Select(ctx, collection, datastore.Q().OrderBy("created_at", true))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, fromRow(row))
	}
	return users, nil
}

// Get returns one directory entry.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	rows, err := s.store.Select(ctx, collection, datastore.Q().Eq("id", id).Limit(1))
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	if len(rows) == 0 {
		return User{}, ErrUserNotFound
	}
	return fromRow(rows[0]), nil
}

// ChangeRole moves a user to another role.
func (s *Service) ChangeRole(ctx context.Context, id, role string) (User, error) {
	if s.authz.VerifyRole(role) != nil {
		return User{}, web.ValidationError{"role": {"unknown role"}}
	}
	affected, err := s.store.Update(ctx, collection, datastore.Q().Eq("id", id), datastore.Row{"role": role})
	if err != nil {
		return User{}, fmt.Errorf("change role: %w", err)
	}
	if affected == 0 {
		return User{}, ErrUserNotFound
	}
	s.log.InfoContext(ctx, "role changed", logger.UserID(id), logger.Role(role))
	s.notify(ctx, toast.LevelSuccess, "Role updated", role)
	return s.Get(ctx, id)
}

// Deactivate disables an account without deleting its history.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	affected, err := s.store.Update(ctx, collection, datastore.Q().Eq("id", id), datastore.Row{"active": false})
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	s.log.InfoContext(ctx, "user deactivated", logger.UserID(id))
	s.notify(ctx, toast.LevelInfo, "User deactivated", "")
	return nil
}

// VerifyPassword checks a credential pair against the stored hash. Unused
// while the auth proxy fronts the app, kept for in-process auth.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (User, error) {
	rows, err := s.store.Select(ctx, collection,
		datastore.Q().Eq("email", strings.ToLower(strings.TrimSpace(email))).Limit(1))
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	if len(rows) == 0 {
		return User{}, ErrUserNotFound
	}
	u := fromRow(rows[0])
	if !u.Active {
		return User{}, ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// EmailFor resolves a user id to its address for ticket notifications.
// Deactivated users get no mail.
func (s *Service) EmailFor(ctx context.Context, userID string) (string, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !u.Active {
		return "", nil
	}
	return u.Email, nil
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
