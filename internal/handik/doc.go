// Package handik provides an HTTP client for the hand validation / IK service.
//
// # Overview
//
// The service accepts tracked hand landmarks, checks every joint against its
// calibrated range, optionally runs an inverse-kinematics solver per finger,
// and answers with a per-hand verdict. This package owns the wire types and
// the two calls the mobile client makes; all validation logic lives on the
// server.
//
// # Architecture
//
//   - client.go: HTTP client, request construction, timeouts
//   - types.go: data structures mirroring the service schema
//   - errors.go: StatusError and error classification
//   - metrics.go: optional prometheus instrumentation
//
// # Client Usage
//
//	client, err := handik.NewClient("http://192.168.154.196:5001")
//	if err != nil {
//		return err
//	}
//
//	healthy, err := client.CheckHealth(ctx)
//	if err != nil {
//		// unreachable or malformed answer, not "unhealthy"
//	}
//
//	report, err := client.ValidateHand(ctx, points, "example.json")
//
// # API Endpoints
//
//   - GET /health: {"status": "healthy"} when the service is ready
//   - POST /validate: {"hands": {"<label>": {"points": [...]}}}, optional
//     X-Source-File provenance header
//
// # Timeouts
//
// The solver can run for minutes on a slow host, so the client waits up to
// 30 seconds for response headers and 300 seconds for the whole exchange.
// Callers can shorten either through the context.
//
// # Error Handling
//
// Three failure classes are distinguished (see Classify):
//
//   - transport: connection refused, timeout, bad URL
//     ("execute request: dial tcp ...: connection refused")
//   - status: any non-200 reply, returned as *StatusError; the message is the
//     server's `error` field when it sent one
//   - decode: a 200 reply that is not the expected JSON
//     ("decode response: unexpected EOF")
//
// A health reply other than "healthy" is not an error: CheckHealth returns
// false with a nil error so callers can tell "reported unhealthy" apart from
// "unreachable".
//
// # Optional Fields
//
// IK results and each finger's angles are optional on the wire. They decode
// into nil pointers / nil slices rather than zero values, so "finger not
// resolved" survives decoding.
//
// # Thread Safety
//
// Client is safe for concurrent use. Calls share nothing but the underlying
// http.Client; there are no retries, no caching, and no request coalescing.
package handik
