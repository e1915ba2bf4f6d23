// Package tasks runs multi-request catalogue workflows with progress reporting.
//
// # Operations
//
//  1. [Engine.Home] : dashboard load
//     - Fetches most-popular (limit 20) and top-rated (limit 18) concurrently
//     - Fails when either request fails
//     - Picks the first five popular movies as highlights
//
//  2. [Engine.ExportFavourites] : favourites export
//     - Fetches the detail record of every favourite through a rate-limited worker pool
//     - Keeps the favourites order; a failed detail fetch keeps the summary record
//     - Writes CSV, Markdown, text or JSON through the formatter package
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate] values.
// Sends use select with default so a slow reader never blocks the workflow.
package tasks
