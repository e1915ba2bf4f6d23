package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelx/internal/favourites"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgHomeLoaded MsgKind = iota
	MsgDetailLoaded
	MsgFavouritesChanged
	MsgToggled
	MsgResynced
)

type homeLoaded struct {
	home *tasks.HomeResult
	err  error
}

type detailLoaded struct {
	detail *models.MovieDetail
	err    error
}

type toggled struct {
	movie      models.Movie
	membership favourites.Membership
	err        error
}

// homeLoadedMsg is the constructor for [MsgHomeLoaded]
func homeLoadedMsg(home *tasks.HomeResult, err error) Msg {
	return Msg{kind: MsgHomeLoaded, data: homeLoaded{home, err}}
}

// detailLoadedMsg is the constructor for [MsgDetailLoaded]
func detailLoadedMsg(detail *models.MovieDetail, err error) Msg {
	return Msg{kind: MsgDetailLoaded, data: detailLoaded{detail, err}}
}

// favouritesChangedMsg is the constructor for [MsgFavouritesChanged]
func favouritesChangedMsg() Msg {
	return Msg{kind: MsgFavouritesChanged}
}

// toggledMsg is the constructor for [MsgToggled]
func toggledMsg(movie models.Movie, membership favourites.Membership, err error) Msg {
	return Msg{kind: MsgToggled, data: toggled{movie, membership, err}}
}

// resyncedMsg is the constructor for [MsgResynced]
func resyncedMsg(err error) Msg {
	return Msg{kind: MsgResynced, data: err}
}
