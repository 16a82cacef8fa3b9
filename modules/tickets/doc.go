// Package tickets implements the help-desk ticket workflow: end users file
// tickets and follow their thread, agents triage, assign, resolve, close
// and reopen them. Status changes run through a state machine so every
// caller sees the same lifecycle rules, and operation outcomes surface as
// session toasts.
package tickets
