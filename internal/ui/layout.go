package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 80

	// FieldLabelWidth is the label column of the form.
	FieldLabelWidth = 22
)

// Activity display limits.
const (
	// ActivityBacklog is how many log lines are loaded when the view opens.
	ActivityBacklog = 500

	// ActivityBufferLimit is the maximum number of lines kept in memory.
	ActivityBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the refresh interval for the recording clock,
	// notices and the activity log.
	DefaultUIInterval = 250 * time.Millisecond
)
