package logger

import "log/slog"

// Error records a single error under the key "error". Nil errors produce an
// empty attribute slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the acting user's identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// TicketID records a ticket identifier under the key "ticket_id".
func TicketID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("ticket_id", id)
}

// SessionID records a session identifier under the key "session_id".
func SessionID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("session_id", id)
}

// Role records a role name under the key "role".
func Role(role string) slog.Attr {
	return slog.String("role", role)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
