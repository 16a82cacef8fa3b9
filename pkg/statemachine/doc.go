// Package statemachine is a small finite-state machine expressed as a
// transition table with guards and actions. The machine carries no current
// state — callers pass an entity's state in and persist the state that comes
// back — so a single table drives the lifecycle of every ticket.
package statemachine
