// Package authorization implements the request authorization gate.
//
// Layering:
// - domain: session snapshot, decisions, policy evaluation, errors
// - application: authenticated/member/admin queries and the session sweeper
// - ports: membership oracle, session store and clock boundaries
// - adapters: net/http middleware, GitHub oracle, memory and postgres stores
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - The gate only reads sessions; the host owns their lifecycle.
// - The gate never writes responses; rejections go through the host FailureFunc.
// - Membership oracle errors are forwarded unchanged.
package authorization
