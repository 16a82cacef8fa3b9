package dashboard

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/opsdesk/opsdesk/modules/tickets"
	"github.com/opsdesk/opsdesk/pkg/statemachine"
	"github.com/opsdesk/opsdesk/pkg/web"
)

var statusOrder = []statemachine.State{
	tickets.StatusOpen,
	tickets.StatusTriaged,
	tickets.StatusInProgress,
	tickets.StatusResolved,
	tickets.StatusClosed,
}

// MyTicketsPage is the end-user landing page.
func MyTicketsPage(list []tickets.Ticket) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="dashboard"><h1>My tickets</h1>`); err != nil {
			return err
		}
		if err := tickets.TicketTable(list).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<p><a class="button" href="/tickets/new">File a ticket</a></p></section>`)
		return err
	})
	return web.Layout("Dashboard", body)
}

// QueuePage is the agent landing page: a status breakdown plus the urgent
// backlog.
func QueuePage(summary Summary) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="dashboard"><h1>Queue</h1>`); err != nil {
			return err
		}
		if err := statusCards(summary).Render(ctx, w); err != nil {
			return err
		}
		if len(summary.Urgent) > 0 {
			if _, err := io.WriteString(w, `<h2>Urgent</h2>`); err != nil {
				return err
			}
			if err := tickets.TicketTable(summary.Urgent).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
	return web.Layout("Queue", body)
}

// OverviewPage is the admin landing page.
func OverviewPage(summary Summary, totals Totals) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<section class="dashboard"><h1>Overview</h1>`+
				`<div class="cards"><div class="card"><span>%d</span> users (%d active)</div>`+
				`<div class="card"><span>%d</span> categories</div>`+
				`<div class="card"><span>%d</span> tickets</div></div>`,
			totals.Users, totals.Active, totals.Categories, summary.Total); err != nil {
			return err
		}
		if err := statusCards(summary).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w,
			`<nav class="admin-links"><a href="/users">Manage users</a> <a href="/categories">Manage categories</a></nav></section>`)
		return err
	})
	return web.Layout("Overview", body)
}

func statusCards(summary Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="cards status-cards">`); err != nil {
			return err
		}
		for _, status := range statusOrder {
			if _, err := fmt.Fprintf(w,
				`<a class="card" href="/tickets?status=%s"><span>%d</span> %s</a>`,
				templ.EscapeString(string(status)), summary.ByStatus[status], templ.EscapeString(string(status))); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
