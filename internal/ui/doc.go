// Package ui implements the intake terminal interface with Bubble Tea.
//
// # Views
//
// Before authentication the content area shows the login card. After a
// successful login it shows the report form: report type, veterinarian and
// clinic pickers, patient fields, the audio note panel and the send line.
// Extended revisions add breed, weight, birth date, habitat, diet and the
// clinical record number; the basic revision adds a webhook URL field.
// ctrl+l switches to the activity view, a scrolling tail of the JSON log
// file rendered as one line per entry.
//
// # State
//
// The UI owns no report state. Every edit is applied through Service.Edit
// and the form is re-read from Service.Snapshot, so text inputs only mirror
// the stored values. Login, submit and recording calls run as tea.Cmds; a
// second request is ignored while the first is in flight.
//
// A tick refreshes the snapshot, the recording clock and the notice board,
// and polls the log file for the activity view.
//
// # Themes
//
// Nightfox, Kanagawa and Slate are available. ctrl+t cycles them and saves
// the choice to the preferences file.
package ui
