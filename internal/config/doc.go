// Package config loads the intake configuration file.
//
// # Discovery
//
// Load resolves the file in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/intake/config.toml
//  3. If the file doesn't exist, use Default()
//  4. If the file exists but fields are missing or empty, use their defaults
//
// # TOML Format
//
//	revision = "directory"          # basic | extended | directory
//	login_url = "https://automatizacion.aigencia.ai/webhook/..."
//	webhook_url = ""                # report endpoint for fixed-webhook revisions
//	directory_encoding = ""         # json | repeated; empty keeps the revision's
//	log_dir = "~/.local/share/intake/logs"
//	log_level = "info"              # debug | info | warn | error
//	request_timeout_seconds = 0     # 0 leaves the transport defaults
//
//	[recorder]
//	program = "ffmpeg"
//	input_format = "pulse"
//	input = "default"
//	echo_cancel_input = ""          # e.g. a PulseAudio echo-cancel source
//	formats = ["audio/webm;codecs=opus"]
//
// Every field is optional. Tilde expansion is performed on log_dir.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors, an unknown log_level and a negative
// timeout. A missing file is not an error.
//
// The file never holds credentials or clinical data.
package config
