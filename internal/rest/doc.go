// Package rest describes REST calls declaratively and executes them against a
// rate-limited server.
//
// A Method is built once from a Builder template and specialized per call with
// a Patch of parameter values. Compile turns a Method into a URI, Validate
// classifies a single response, and Executor drives the request loop:
//
//   - 200 responses are decoded into the method's tagged Response variant
//   - 429 responses with a Retry-After header raise the shared Backoff baseline
//     and are retried after the reported wait
//   - everything else is returned to the caller
package rest
