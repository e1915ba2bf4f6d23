// Package session owns the client's authentication state.
//
// A [Store] is either ANONYMOUS or AUTHENTICATED with a user and a bearer token; a user is present
// exactly when a token is. The session is restored from [Storage] at start, replaced wholesale on
// login and cleared wholesale on logout. Every transition is serialized and reported to subscribers
// in order, which is how the favourites store learns it must clear or resynchronize.
//
// The store implements [oauth2.TokenSource] so the HTTP gateway reads the current token from it.
//
// Persisted keys:
//   - "auth" : JSON {"user": {...}, "token": "..."}
//   - "accessToken" : the bare token
package session
