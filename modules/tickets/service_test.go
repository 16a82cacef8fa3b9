package tickets_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/modules/tickets"
	"github.com/opsdesk/opsdesk/pkg/datastore"
	"github.com/opsdesk/opsdesk/pkg/email"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/storage"
	"github.com/opsdesk/opsdesk/pkg/toast"
	"github.com/opsdesk/opsdesk/pkg/web"
)

func newAuthz(t *testing.T) rbac.Authorizer {
	t.Helper()

	authz, err := rbac.NewAuthorizer(context.Background(), rbac.NewMemorySource(rbac.DefaultRoles()))
	require.NoError(t, err)
	return authz
}

func asActor(role, userID, sessionID string) context.Context {
	ctx := rbac.WithRole(context.Background(), role)
	ctx = web.WithSessionID(ctx, sessionID)
	return web.WithActorID(ctx, userID)
}

type fakeSender struct {
	sent []email.SendParams
	err  error
}

func (f *fakeSender) Send(_ context.Context, p email.SendParams) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

type fakeDirectory map[string]string

func (f fakeDirectory) EmailFor(_ context.Context, userID string) (string, error) {
	return f[userID], nil
}

func TestService_File(t *testing.T) {
	t.Parallel()

	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t))
	ctx := asActor(rbac.RoleUser, "u-1", "sess-1")

	t.Run("validates input", func(t *testing.T) {
		_, err := svc.File(ctx, tickets.FileParams{Subject: "  ", Body: ""})
		var verr web.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr, "subject")
		assert.Contains(t, verr, "body")
	})

	t.Run("creates an open ticket for the actor", func(t *testing.T) {
		ticket, err := svc.File(ctx, tickets.FileParams{
			Subject: "Printer on fire",
			Body:    "The office printer is literally on fire.",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, ticket.ID)
		assert.Equal(t, tickets.StatusOpen, ticket.Status)
		assert.Equal(t, "u-1", ticket.RequesterID)
		assert.Zero(t, ticket.Priority, "priority is set at triage")
	})
}

func TestService_File_Toast(t *testing.T) {
	t.Parallel()

	hub := toast.NewHub()
	defer hub.Close()

	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t), tickets.WithToasts(hub))
	ctx := asActor(rbac.RoleUser, "u-1", "sess-42")

	_, err := svc.File(ctx, tickets.FileParams{Subject: "VPN down", Body: "Cannot connect since 9am."})
	require.NoError(t, err)

	visible := hub.Store("sess-42").Toasts()
	require.Len(t, visible, 1)
	assert.Equal(t, toast.LevelSuccess, visible[0].Level)
	assert.Equal(t, "Ticket filed", visible[0].Title)
}

func TestService_List_RoleScoping(t *testing.T) {
	t.Parallel()

	store := datastore.NewMemory()
	authz := newAuthz(t)
	svc := tickets.NewService(store, authz)

	alice := asActor(rbac.RoleUser, "alice", "s-a")
	bob := asActor(rbac.RoleUser, "bob", "s-b")
	agent := asActor(rbac.RoleAgent, "agent-1", "s-ag")

	_, err := svc.File(alice, tickets.FileParams{Subject: "Laptop broken", Body: "Screen cracked."})
	require.NoError(t, err)
	_, err = svc.File(bob, tickets.FileParams{Subject: "Email bounce", Body: "Mail to vendor bounces."})
	require.NoError(t, err)

	own, err := svc.List(alice, tickets.ListParams{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "alice", own[0].RequesterID)

	// Requesting the queue filter does not widen a plain user's view.
	own, err = svc.List(alice, tickets.ListParams{Status: "open"})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := svc.List(agent, tickets.ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := svc.List(agent, tickets.ListParams{Status: "open"})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestService_Get_HidesForeignTickets(t *testing.T) {
	t.Parallel()

	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t))
	alice := asActor(rbac.RoleUser, "alice", "s-a")
	bob := asActor(rbac.RoleUser, "bob", "s-b")
	agent := asActor(rbac.RoleAgent, "agent-1", "s-ag")

	ticket, err := svc.File(alice, tickets.FileParams{Subject: "Badge lost", Body: "Lost my badge on the train."})
	require.NoError(t, err)

	_, err = svc.Get(bob, ticket.ID)
	assert.ErrorIs(t, err, tickets.ErrTicketNotFound)

	got, err := svc.Get(agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = svc.Get(agent, "nope")
	assert.ErrorIs(t, err, tickets.ErrTicketNotFound)
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t))
	user := asActor(rbac.RoleUser, "u-1", "s-u")
	agent := asActor(rbac.RoleAgent, "agent-1", "s-ag")

	ticket, err := svc.File(user, tickets.FileParams{Subject: "Disk full", Body: "Build server out of space."})
	require.NoError(t, err)

	// Skipping triage is refused.
	_, err = svc.Close(agent, ticket.ID)
	assert.ErrorIs(t, err, tickets.ErrIllegalTransition)

	_, err = svc.Triage(agent, ticket.ID, 0, "")
	var verr web.ValidationError
	assert.ErrorAs(t, err, &verr)

	triaged, err := svc.Triage(agent, ticket.ID, tickets.PriorityHigh, "cat-infra")
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusTriaged, triaged.Status)
	assert.Equal(t, tickets.PriorityHigh, triaged.Priority)
	assert.Equal(t, "cat-infra", triaged.CategoryID)

	assigned, err := svc.Assign(agent, ticket.ID, "agent-2")
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusInProgress, assigned.Status)
	assert.Equal(t, "agent-2", assigned.AssigneeID)

	resolved, err := svc.Resolve(agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusResolved, resolved.Status)

	reopened, err := svc.Reopen(agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusOpen, reopened.Status)
	assert.Empty(t, reopened.AssigneeID, "reopen clears the assignee")

	// Back through the happy path to closed.
	_, err = svc.Triage(agent, ticket.ID, tickets.PriorityNormal, "cat-infra")
	require.NoError(t, err)
	_, err = svc.Assign(agent, ticket.ID, "agent-2")
	require.NoError(t, err)
	_, err = svc.Resolve(agent, ticket.ID)
	require.NoError(t, err)
	closed, err := svc.Close(agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusClosed, closed.Status)
}

func TestService_Resolve_EmailsRequester(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	directory := fakeDirectory{"u-1": "u1@example.com"}
	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t),
		tickets.WithMailer(sender, directory))

	user := asActor(rbac.RoleUser, "u-1", "s-u")
	agent := asActor(rbac.RoleAgent, "agent-1", "s-ag")

	ticket, err := svc.File(user, tickets.FileParams{Subject: "Wifi flaky", Body: "Drops every few minutes."})
	require.NoError(t, err)
	_, err = svc.Triage(agent, ticket.ID, tickets.PriorityNormal, "")
	require.NoError(t, err)
	_, err = svc.Assign(agent, ticket.ID, "agent-1")
	require.NoError(t, err)

	_, err = svc.Resolve(agent, ticket.ID)
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "u1@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "Wifi flaky")
	assert.Contains(t, sender.sent[0].BodyHTML, ticket.ID)
	assert.Equal(t, "ticket-resolved", sender.sent[0].Tag)
}

func TestService_Resolve_EmailFailureDoesNotUndo(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: email.ErrSendFailed}
	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t),
		tickets.WithMailer(sender, fakeDirectory{"u-1": "u1@example.com"}))

	user := asActor(rbac.RoleUser, "u-1", "s-u")
	agent := asActor(rbac.RoleAgent, "agent-1", "s-ag")

	ticket, err := svc.File(user, tickets.FileParams{Subject: "Monitor dead", Body: "No signal."})
	require.NoError(t, err)
	_, err = svc.Triage(agent, ticket.ID, tickets.PriorityLow, "")
	require.NoError(t, err)
	_, err = svc.Assign(agent, ticket.ID, "agent-1")
	require.NoError(t, err)

	resolved, err := svc.Resolve(agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusResolved, resolved.Status)
}

func TestService_Comment(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t),
		tickets.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}))

	user := asActor(rbac.RoleUser, "u-1", "s-u")

	ticket, err := svc.File(user, tickets.FileParams{Subject: "Slow laptop", Body: "Takes minutes to boot."})
	require.NoError(t, err)

	_, err = svc.Comment(user, ticket.ID, "   ")
	var verr web.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Comment(user, ticket.ID, "Tried rebooting, no change.")
	require.NoError(t, err)
	_, err = svc.Comment(user, ticket.ID, "Now it will not boot at all.")
	require.NoError(t, err)

	thread, err := svc.Thread(user, ticket.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "Tried rebooting, no change.", thread[0].Body)
	assert.True(t, thread[0].CreatedAt.Before(thread[1].CreatedAt))
	assert.Equal(t, "u-1", thread[0].AuthorID)

	_, err = svc.Comment(user, "missing", "hello?")
	assert.ErrorIs(t, err, tickets.ErrTicketNotFound)
}

func TestService_Attachments(t *testing.T) {
	t.Parallel()

	blobs, err := storage.NewLocal(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)

	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t), tickets.WithStorage(blobs))
	user := asActor(rbac.RoleUser, "u-1", "s-u")
	stranger := asActor(rbac.RoleUser, "u-2", "s-x")

	ticket, err := svc.File(user, tickets.FileParams{Subject: "Error screenshot", Body: "See attachment."})
	require.NoError(t, err)

	att, err := svc.Attach(user, ticket.ID, "crash report.png", "image/png", 11, strings.NewReader("fake pixels"))
	require.NoError(t, err)
	assert.Equal(t, "crash-report.png", att.FileName, "file name is sanitized")
	assert.Contains(t, att.Key, "tickets/"+ticket.ID+"/")

	listed, err := svc.Attachments(user, ticket.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got, blob, err := svc.OpenAttachment(user, att.ID)
	require.NoError(t, err)
	defer blob.Close()
	content, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "fake pixels", string(content))
	assert.Equal(t, att.ID, got.ID)

	// Attachment visibility follows the ticket.
	_, _, err = svc.OpenAttachment(stranger, att.ID)
	assert.ErrorIs(t, err, tickets.ErrAttachmentNotFound)
}

func TestService_Attach_NoStorage(t *testing.T) {
	t.Parallel()

	svc := tickets.NewService(datastore.NewMemory(), newAuthz(t))
	user := asActor(rbac.RoleUser, "u-1", "s-u")

	_, err := svc.Attach(user, "t-1", "a.txt", "text/plain", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, tickets.ErrNoStorage)
}
