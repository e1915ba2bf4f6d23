// Package favourites keeps the signed-in user's favourite movies in sync with the server.
//
// The [Store] follows the session: it clears immediately when the session ends or switches to a
// different user, and refetches the list in the background when a user signs in. Toggles are
// optimistic. The local set changes before the request is sent and is rolled back if the request
// fails, unless the session changed in the meantime. A movie with a request in flight rejects
// further toggles with [shared.ErrOperationInProgress].
//
// Resyncs are last-fetch-wins. Each fetch records the session epoch and a sequence number when it
// starts, and its result is dropped if either moved on by the time it completes.
package favourites
