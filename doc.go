// Package accounts provides a self-contained user account service:
// registration with email verification, opaque bearer-token login with
// a rolling expiry window, OTP-based password recovery, and profile
// management, all behind a uniform JSON response envelope.
//
// Token lifecycle:
//   - A user holds at most one active token. Tokens carry no expiry of
//     their own; a token is stale once seven days have passed since the
//     owner's last login. Stale tokens are rotated in place on the next
//     authenticated request and the replacement key is surfaced to the
//     client, which must adopt it.
//
// Command handlers:
//   - Each lifecycle operation (register, verify, login, logout, and
//     the password flows) is a message plus handler pair. Handlers run
//     their mutations inside a repository transaction and report
//     data-carrying results through an OnResponse callback on the
//     message. Email dispatch always happens outside the transaction
//     and never affects the operation outcome.
//
// Authorization:
//   - A fixed Policy maps HTTP verbs to capabilities (view, add,
//     change, delete) and roles to capability grants. The RouteGuard
//     middleware authenticates the bearer key, applies the policy, and
//     exposes the principal through request Locals.
package accounts
