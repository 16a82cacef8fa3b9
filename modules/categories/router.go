package categories

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

type upsertRequest struct {
	ID          string `path:"id"`
	Name        string `form:"name"`
	Description string `form:"description"`
}

type idRequest struct {
	ID string `path:"id"`
}

// Handle mounts the category admin UI. Reads need categories.read,
// mutations categories.manage.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.With(rbac.Require(s.authz, "categories.read")).
		Get("/", web.Wrap(s.handleList,
			web.WithErrorHandler[web.Context, struct{}](s.errors)))

	r.With(rbac.Require(s.authz, "categories.manage")).
		Post("/", web.Wrap(s.handleCreate,
			web.WithBinders[web.Context, upsertRequest](binder.Form()),
			web.WithErrorHandler[web.Context, upsertRequest](s.errors)))

	r.With(rbac.Require(s.authz, "categories.manage")).
		Post("/{id}", web.Wrap(s.handleUpdate,
			web.WithBinders[web.Context, upsertRequest](binder.Path(), binder.Form()),
			web.WithErrorHandler[web.Context, upsertRequest](s.errors)))

	r.With(rbac.Require(s.authz, "categories.manage")).
		Post("/{id}/delete", web.Wrap(s.handleDelete,
			web.WithBinders[web.Context, idRequest](binder.Path()),
			web.WithErrorHandler[web.Context, idRequest](s.errors)))

	return r
}

func (s *Service) handleList(ctx web.Context, _ struct{}) web.Response {
	list, err := s.All(ctx)
	if err != nil {
		return web.Error(err)
	}
	manage := false
	if role, ok := rbac.RoleFromContext(ctx); ok {
		manage = s.authz.Can(role, "categories.manage") == nil
	}
	return web.Templ(ListPage(list, manage))
}

func (s *Service) handleCreate(ctx web.Context, req upsertRequest) web.Response {
	if _, err := s.Create(ctx, req.Name, req.Description); err != nil {
		return web.Error(err)
	}
	return web.Redirect("/categories")
}

func (s *Service) handleUpdate(ctx web.Context, req upsertRequest) web.Response {
	if _, err := s.Update(ctx, req.ID, req.Name, req.Description); err != nil {
		return respondErr(err)
	}
	return web.Redirect("/categories")
}

func (s *Service) handleDelete(ctx web.Context, req idRequest) web.Response {
	if err := s.Delete(ctx, req.ID); err != nil {
		return respondErr(err)
	}
	return web.Redirect("/categories")
}

func respondErr(err error) web.Response {
	if errors.Is(err, ErrCategoryNotFound) {
		return web.Error(fmt.Errorf("%w: %w", web.ErrNotFound, err))
	}
	return web.Error(err)
}

// ListPage renders the taxonomy, with edit and delete forms for admins.
func ListPage(list []Category, manage bool) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="categories"><h1>Categories</h1><ul>`); err != nil {
			return err
		}
		for _, c := range list {
			if _, err := fmt.Fprintf(w, `<li><strong>%s</strong> <span>%s</span>`,
				templ.EscapeString(c.Name), templ.EscapeString(c.Description)); err != nil {
				return err
			}
			if manage {
				if _, err := fmt.Fprintf(w,
					`<form method="post" action="/categories/%s"><input name="name" value="%s"><input name="description" value="%s"><button type="submit">Save</button></form>`+
						`<form method="post" action="/categories/%s/delete"><button type="submit">Delete</button></form>`,
					templ.EscapeString(c.ID), templ.EscapeString(c.Name), templ.EscapeString(c.Description),
					templ.EscapeString(c.ID)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</li>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}
		if manage {
			if _, err := io.WriteString(w,
				`<form method="post" action="/categories"><h2>New category</h2>`+
					`<input name="name" placeholder="name" required>`+
					`<input name="description" placeholder="description">`+
					`<button type="submit">Create</button></form>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
	return web.Layout("Categories", body)
}
