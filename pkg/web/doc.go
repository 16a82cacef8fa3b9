// Package web is the typed HTTP handler layer the application modules are
// built on. A handler is a function from a Context and a bound request
// struct to a Response; Wrap turns it into an http.HandlerFunc for chi.
//
//	type resolveRequest struct {
//		ID string `path:"id"`
//	}
//
//	resolve := web.HandlerFunc[web.Context, resolveRequest](
//		func(ctx web.Context, req resolveRequest) web.Response {
//			if err := svc.Resolve(ctx, req.ID); err != nil {
//				return web.Error(err)
//			}
//			return web.Redirect("/tickets/" + req.ID)
//		},
//	)
//
//	r.Post("/tickets/{id}/resolve", web.Wrap(resolve,
//		web.WithBinders[web.Context, resolveRequest](binder.Path()),
//	))
//
// Responses adapt to the client: datastar requests (detected via IsDataStar)
// receive Server-Sent Event element patches, everything else plain HTML,
// JSON, or redirects. The error handler follows the same split — errors
// become toasts in the caller's session store for datastar requests and
// status-coded pages otherwise.
package web
