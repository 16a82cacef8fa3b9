package tickets

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/opsdesk/opsdesk/pkg/web"
)

func priorityLabel(p int) string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return "Untriaged"
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// ListPage is the ticket queue. Agents see the filter bar; plain users only
// ever get their own tickets so the filters are omitted.
func ListPage(tickets []Ticket, agentView bool, statusFilter string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="tickets"><header><h1>Tickets</h1><a class="button" href="/tickets/new">File a ticket</a></header>`); err != nil {
			return err
		}
		if agentView {
			if err := filterBar(statusFilter).Render(ctx, w); err != nil {
				return err
			}
		}
		if err := TicketTable(tickets).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
	return web.Layout("Tickets", body)
}

func filterBar(active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="filters">`); err != nil {
			return err
		}
		for _, status := range []string{"", "open", "triaged", "in_progress", "resolved", "closed"} {
			label := status
			if label == "" {
				label = "all"
			}
			class := ""
			if status == active {
				class = ` class="active"`
			}
			if _, err := fmt.Fprintf(w, `<a%s href="/tickets?status=%s">%s</a> `,
				class, templ.EscapeString(status), templ.EscapeString(label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</nav>`)
		return err
	})
}

// TicketTable renders the queue rows. It carries its own id so datastar
// patches can replace it in place.
func TicketTable(tickets []Ticket) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(tickets) == 0 {
			_, err := io.WriteString(w, `<div id="ticket-table"><p class="empty">No tickets.</p></div>`)
			return err
		}
		if _, err := io.WriteString(w, `<table id="ticket-table"><thead><tr><th>Subject</th><th>Status</th><th>Priority</th><th>Filed</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, t := range tickets {
			if _, err := fmt.Fprintf(w,
				`<tr><td><a href="/tickets/%s">%s</a></td><td><span class="status status-%s">%s</span></td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(t.ID),
				templ.EscapeString(t.Subject),
				templ.EscapeString(string(t.Status)),
				templ.EscapeString(string(t.Status)),
				priorityLabel(t.Priority),
				stamp(t.CreatedAt),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

// FilePage is the new-ticket form. Categories come from the categories
// module as id/name pairs.
func FilePage(categories []CategoryOption) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="file-ticket"><h1>File a ticket</h1>`+
			`<form method="post" action="/tickets">`+
			`<label>Subject<input name="subject" required maxlength="200"></label>`+
			`<label>Category<select name="category_id"><option value="">Uncategorized</option>`); err != nil {
			return err
		}
		for _, c := range categories {
			if _, err := fmt.Fprintf(w, `<option value="%s">%s</option>`,
				templ.EscapeString(c.ID), templ.EscapeString(c.Name)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select></label>`+
			`<label>What happened?<textarea name="body" rows="8" required></textarea></label>`+
			`<button type="submit">Submit</button></form></section>`)
		return err
	})
	return web.Layout("File a ticket", body)
}

// CategoryOption is the slice element FilePage renders into the category
// select. The router adapts the categories module's type to it.
type CategoryOption struct {
	ID   string
	Name string
}

// DetailPage shows one ticket with its thread, attachments, and the
// actions the current role may take.
func DetailPage(t Ticket, comments []Comment, attachments []Attachment, actions []string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<article class="ticket" id="ticket-%s"><header><h1>%s</h1>`+
				`<span class="status status-%s">%s</span> <span class="priority">%s</span></header>`+
				`<p class="body">%s</p>`,
			templ.EscapeString(t.ID),
			templ.EscapeString(t.Subject),
			templ.EscapeString(string(t.Status)),
			templ.EscapeString(string(t.Status)),
			priorityLabel(t.Priority),
			templ.EscapeString(t.Body),
		); err != nil {
			return err
		}
		if err := actionBar(t, actions).Render(ctx, w); err != nil {
			return err
		}
		if err := attachmentList(attachments).Render(ctx, w); err != nil {
			return err
		}
		if err := thread(t.ID, comments).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</article>`)
		return err
	})
	return web.Layout(t.Subject, body)
}

func actionBar(t Ticket, actions []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(actions) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<div class="actions">`); err != nil {
			return err
		}
		for _, action := range actions {
			var err error
			switch action {
			case "triage":
				_, err = fmt.Fprintf(w,
					`<form method="post" action="/tickets/%s/triage">`+
						`<select name="priority"><option value="1">Low</option><option value="2" selected>Normal</option><option value="3">High</option><option value="4">Urgent</option></select>`+
						`<input name="category_id" placeholder="category id">`+
						`<button type="submit">Triage</button></form>`,
					templ.EscapeString(t.ID))
			case "assign":
				_, err = fmt.Fprintf(w,
					`<form method="post" action="/tickets/%s/assign">`+
						`<input name="assignee_id" placeholder="agent id" required>`+
						`<button type="submit">Assign</button></form>`,
					templ.EscapeString(t.ID))
			default:
				_, err = fmt.Fprintf(w,
					`<form method="post" action="/tickets/%s/%s"><button type="submit">%s</button></form>`,
					templ.EscapeString(t.ID), templ.EscapeString(action), templ.EscapeString(action))
			}
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func attachmentList(attachments []Attachment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(attachments) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<ul class="attachments">`); err != nil {
			return err
		}
		for _, a := range attachments {
			if _, err := fmt.Fprintf(w,
				`<li><a href="/tickets/attachments/%s">%s</a> <span class="size">%d bytes</span></li>`,
				templ.EscapeString(a.ID), templ.EscapeString(a.FileName), a.Size); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

func thread(ticketID string, comments []Comment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="thread"><h2>Thread</h2>`); err != nil {
			return err
		}
		for _, c := range comments {
			if _, err := fmt.Fprintf(w,
				`<div class="comment"><span class="author">%s</span> <time>%s</time><p>%s</p></div>`,
				templ.EscapeString(c.AuthorID), stamp(c.CreatedAt), templ.EscapeString(c.Body)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w,
			`<form method="post" action="/tickets/%s/comments">`+
				`<textarea name="body" rows="3" required></textarea>`+
				`<button type="submit">Reply</button></form>`+
				`<form method="post" action="/tickets/%s/attachments" enctype="multipart/form-data">`+
				`<input type="file" name="file" required><button type="submit">Attach</button></form>`,
			templ.EscapeString(ticketID), templ.EscapeString(ticketID)); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// ResolutionEmail is the message body sent to the requester when an agent
// resolves their ticket.
func ResolutionEmail(t Ticket) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1>Your ticket was resolved</h1>`+
				`<p><strong>%s</strong></p>`+
				`<p>An agent marked your ticket as resolved. If the problem persists you can reopen it from the ticket page.</p>`+
				`<p><a href="/tickets/%s">View the ticket</a></p>`,
			templ.EscapeString(t.Subject), templ.EscapeString(t.ID))
		return err
	})
}
