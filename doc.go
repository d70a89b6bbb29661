// Package auth implements the client-held session lifecycle and role-based
// access control core of the MeStore marketplace client.
//
// Session lifecycle:
//   - SessionMachine owns the single Session per running client: current user,
//     tokens, and status (anonymous, authenticating, authenticated, refreshing,
//     error). Transitions (Login, AdminLogin, Register, Logout, Refresh,
//     CheckAuth, ValidateSession) are the only way the Session mutates, at most
//     one runs at a time, and every credential write goes through the
//     CredentialStore so teardown is always complete.
//   - TokenCodec reads claims and expiry out of bearer tokens without ever
//     verifying signatures; undecodable tokens are treated as expired so the
//     client never fires a request with a known-dead token.
//
// Access control:
//   - Role is the single canonical privilege type (buyer, vendor, admin,
//     superuser). RoleResolver folds every backend spelling into it, defaulting
//     unknown values to buyer and emitting a diagnostic instead of guessing.
//   - Evaluate answers access queries under the exact, any, all, and minimum
//     strategies. Decide turns an access query plus the current Session into a
//     route guard decision: allow, fallback, or redirect carrying the original
//     destination.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the SessionMachine
//     and RoleResolver to describe login, logout, refresh, and role-resolution
//     events. Sinks run best-effort (errors are logged) so you can forward to
//     telemetry without blocking authentication.
package auth
