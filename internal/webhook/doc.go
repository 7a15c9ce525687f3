// Package webhook posts multipart forms to the automation endpoints used for
// login and report submission.
//
// Requests mirror what a browser sends for a FormData body: every value is a
// text part, parts keep the order they were added in, and a name may appear
// more than once. The client applies no retries and, unless a timeout is
// configured, relies on the transport's own limits.
//
// Errors are wrapped so callers can classify them:
//
//   - ErrInvalidURL: the endpoint URL is empty or not absolute http(s)
//   - ErrTransport: no response was received (DNS, refused, reset, timeout)
//
// Any response, whatever its status, is returned as a Response value.
package webhook
