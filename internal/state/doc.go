// Package state holds the in-memory session shared by the intake operations
// and the UI.
//
// # Overview
//
// Login, recording and submission run in their own goroutines while the UI
// renders on its own schedule. The Store is the single place where their
// results meet:
//
//	Operations (goroutines):       Consumer (UI):
//	┌──────────────────────┐      ┌──────────────────┐
//	│ BeginLogin()         │      │                  │
//	│ FinishLogin(...)     │      │                  │
//	│ EditForm(fn)         │─────→│ store.Snapshot() │
//	│ BeginSubmit()        │(mutex)│      ↓           │
//	│ FinishSubmit(...)    │      │ render view      │
//	└──────────────────────┘      └──────────────────┘
//
// # In-flight flags
//
// BeginLogin and BeginSubmit return false while the same operation is
// already outstanding, so the UI can disable only the control that started
// it. Unrelated controls stay live.
//
// # Update semantics
//
// A failed login or submission records LastError and keeps the previous
// data. A failed login never authenticates the session. Logout replaces the
// whole snapshot with its zero value. A successful submission under a
// resetting revision clears the form only if it was not edited while the
// report was in flight.
//
// # Copying
//
// Snapshot returns the directory slices and the error by copy so the UI
// cannot mutate shared state. The secret is never stored; only the trimmed
// identifier is kept, as User.
//
// The zero Store is ready to use.
//
// Nothing in the store is persisted. Clinical data lives only as long as the
// process.
package state
