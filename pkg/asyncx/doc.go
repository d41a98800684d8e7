// Package asyncx provides small concurrency helpers: futures for values
// computed in the background and fire-and-forget goroutines for detachable
// side effects (most notably outbound email, which must never block or fail
// the request that triggered it).
package asyncx
