// Package email sends transactional mail behind the Sender interface:
// Postmark in production, a logging sender in development. The help desk
// uses it to tell requesters their ticket was resolved.
package email
