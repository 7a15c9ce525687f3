// Package submit turns a filled form into a report envelope and delivers it
// to the automation webhook.
//
// A submission runs in three steps:
//
//   - Validate checks the revision's mandatory fields without any I/O.
//   - Build resolves the selected veterinarian and clinic against the session
//     directory and snapshots everything into an Envelope. Ids that do not
//     resolve become null and the submission proceeds.
//   - Envelope.Fields flattens the snapshot into ordered text parts, which
//     Sender posts as a single multipart request.
//
// Delivery is fire-and-forget. The webhook's response is logged but never
// interpreted, and no idempotency key is attached, so submitting twice
// produces two reports downstream.
package submit
