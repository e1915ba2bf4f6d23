// Package services talks to the movie catalogue REST API.
//
// # Gateway
//
// [Gateway] is the single chokepoint for outbound calls. It adds the JSON content type, the static
// x-app-token and the session bearer token (read from an [oauth2.TokenSource]) unless the caller set
// those headers explicitly, throttles with an optional rate limiter, and turns non-2xx responses
// into [RequestFailedError] carrying the raw body.
//
// # API clients
//
//   - [CatalogueService] : movies, search, top rated, most popular, detail, reviews, credits, persons
//   - [AccountService] : register, login, logout, profile, favourites
//
// # Normalization
//
// Records are decoded into wire structs that carry every alternate field name the API uses and are
// normalized once into [models] types. Fallbacks skip empty strings, zero numbers and null:
//   - poster: image, posterUrl, poster_path, posterURL
//   - rating: rate, then rating (only JSON numbers count)
//   - short description: short_description, overview, plot, description
//   - year: year, release_year, first four characters of releaseDate
//   - person image: image, profile_path, avatar, photo
//
// # Error Handling
//
//   - [RequestFailedError] : non-2xx response, matches [shared.ErrRequestFailed]
//   - [shared.ErrAPIRequest] : transport failure
//   - [shared.ErrDecodeResponse] : JSON content type with an unparseable body
//   - [shared.ErrMissingArgument] : empty record id
package services
