// Package models defines the canonical records of the movie catalogue client.
//
// Catalogue records arrive from the API in several shapes (alternate field names for posters,
// ratings, descriptions and years). The services package decodes every shape into wire structs and
// normalizes them once into the types defined here:
//   - [Movie] : summary used by list endpoints and the favourites set
//   - [MovieDetail] : full record with credits and similar movies
//   - [Person], [PersonDetail] : cast and crew
//   - [Review], [ReviewPage] : paged reviews for a movie
//   - [Page] : a page of items with optional [Pagination]
//
// Account records:
//   - [User] : identity attached to an authenticated session
//   - [Profile] : editable account details
//   - [LoginResult] : response of a successful login
//
// [ID] accepts both JSON strings and numbers since the API emits either.
package models
