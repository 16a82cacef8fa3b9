package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/opsdesk/pkg/binder"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/web"
)

type createRequest struct {
	Email    string `form:"email"`
	Name     string `form:"name"`
	Role     string `form:"role"`
	Password string `form:"password"`
}

type roleRequest struct {
	ID   string `path:"id"`
	Role string `form:"role"`
}

type idRequest struct {
	ID string `path:"id"`
}

// Handle mounts the user admin UI. The whole subtree is admin-only.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(rbac.Require(s.authz, "users.manage"))

	r.Get("/", web.Wrap(s.handleList,
		web.WithErrorHandler[web.Context, struct{}](s.errors)))

	r.Post("/", web.Wrap(s.handleCreate,
		web.WithBinders[web.Context, createRequest](binder.Form()),
		web.WithErrorHandler[web.Context, createRequest](s.errors)))

	r.Post("/{id}/role", web.Wrap(s.handleRole,
		web.WithBinders[web.Context, roleRequest](binder.Path(), binder.Form()),
		web.WithErrorHandler[web.Context, roleRequest](s.errors)))

	r.Post("/{id}/deactivate", web.Wrap(s.handleDeactivate,
		web.WithBinders[web.Context, idRequest](binder.Path()),
		web.WithErrorHandler[web.Context, idRequest](s.errors)))

	return r
}

func (s *Service) handleList(ctx web.Context, _ struct{}) web.Response {
	users, err := s.List(ctx)
	if err != nil {
		return web.Error(err)
	}
	return web.Templ(ListPage(users, s.authz.Roles()))
}

func (s *Service) handleCreate(ctx web.Context, req createRequest) web.Response {
	if _, err := s.Create(ctx, CreateParams(req)); err != nil {
		return respondErr(err)
	}
	return web.Redirect("/users")
}

func (s *Service) handleRole(ctx web.Context, req roleRequest) web.Response {
	if _, err := s.ChangeRole(ctx, req.ID, req.Role); err != nil {
		return respondErr(err)
	}
	return web.Redirect("/users")
}

func (s *Service) handleDeactivate(ctx web.Context, req idRequest) web.Response {
	if err := s.Deactivate(ctx, req.ID); err != nil {
		return respondErr(err)
	}
	return web.Redirect("/users")
}

func respondErr(err error) web.Response {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return web.Error(fmt.Errorf("%w: %w", web.ErrNotFound, err))
	case errors.Is(err, ErrEmailTaken):
		return web.Error(fmt.Errorf("%w: %w", web.ErrConflict, err))
	}
	return web.Error(err)
}

// ListPage renders the directory with per-user role and deactivation
// controls.
func ListPage(users []User, roles []string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="directory"><h1>Users</h1><table><thead><tr><th>Name</th><th>Email</th><th>Role</th><th>Status</th><th></th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, u := range users {
			status := "active"
			if !u.Active {
				status = "deactivated"
			}
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>`,
				templ.EscapeString(u.Name), templ.EscapeString(u.Email)); err != nil {
				return err
			}
			if err := roleForm(u, roles).Render(ctx, w); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w,
				`</td><td>%s</td><td><form method="post" action="/users/%s/deactivate"><button type="submit">Deactivate</button></form></td></tr>`,
				status, templ.EscapeString(u.ID)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
			return err
		}
		if err := createForm(roles).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
	return web.Layout("Users", body)
}

func roleForm(u User, roles []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<form method="post" action="/users/%s/role"><select name="role">`,
			templ.EscapeString(u.ID)); err != nil {
			return err
		}
		for _, role := range roles {
			selected := ""
			if role == u.Role {
				selected = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
				templ.EscapeString(role), selected, templ.EscapeString(role)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select><button type="submit">Change</button></form>`)
		return err
	})
}

func createForm(roles []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w,
			`<form method="post" action="/users"><h2>New user</h2>`+
				`<input name="name" placeholder="name" required>`+
				`<input name="email" type="email" placeholder="email" required>`+
				`<input name="password" type="password" placeholder="password" required minlength="8">`+
				`<select name="role">`); err != nil {
			return err
		}
		for _, role := range roles {
			if _, err := fmt.Fprintf(w, `<option value="%s">%s</option>`,
				templ.EscapeString(role), templ.EscapeString(role)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select><button type="submit">Create</button></form>`)
		return err
	})
}
