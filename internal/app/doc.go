// Package app is the composition root of intake.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read ~/.config/intake/config.toml
//	       ├─────> revision.Lookup()    -revision flag wins over the file
//	       ├─────> logging.New()        JSON log at <log_dir>/intake.log
//	       ├─────> prefs.Load()         Theme, activity strip
//	       ├─────> build()              webhook client, gate, sender, recorder
//	       ├─────> StartSweeper()       Expire notices in the background
//	       └─────> ui.Run()             Start TUI (blocks)
//
// A single webhook.Client carries both the login POST and report
// submissions.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file unreadable or invalid
//   - Unknown revision name
//   - A fixed-webhook revision without a valid webhook_url
//   - Log file cannot be created
//
// Recoverable errors (logged, startup continues):
//   - Preferences file missing or invalid
//
// Login, recording and submission failures never end the program; they
// become notices in the UI.
package app
