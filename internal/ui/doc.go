// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [BrowseView] : tabbed movie lists (most popular, top rated, favourites)
//  2. [DetailView] : the full record of the selected movie
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Favourites changes flow from the favourites store subscription through a coalescing channel, so the hearts and the
// favourites tab follow resyncs, optimistic toggles and rollbacks.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, esc, f, r, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
