package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/favourites"
	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	DetailView
)

// Tab is a movie list in the browse view.
type Tab int

const (
	PopularTab Tab = iota
	TopRatedTab
	FavouritesTab
	tabCount
)

func (t Tab) String() string {
	switch t {
	case PopularTab:
		return "Most Popular"
	case TopRatedTab:
		return "Top Rated"
	case FavouritesTab:
		return "Favourites"
	default:
		return ""
	}
}

// Favourites is the subset of [favourites.Store] the TUI drives.
type Favourites interface {
	Items() []models.Movie
	State(id models.ID) favourites.Membership
	Toggle(ctx context.Context, movie models.Movie) (favourites.Membership, error)
	Resync(ctx context.Context) error
	Subscribe(fn func([]models.Movie)) (unsubscribe func())
}

// SessionSource reports the current session for the header.
type SessionSource interface {
	Current() session.Session
}

// Opts holds the TUI dependencies.
type Opts struct {
	Catalogue  tasks.Catalogue
	Favourites Favourites
	Sessions   SessionSource
	Logger     *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	tab         Tab
	catalogue   tasks.Catalogue
	engine      *tasks.Engine
	favs        Favourites
	sessions    SessionSource
	logger      *log.Logger
	lists       [tabCount]list.Model
	home        *tasks.HomeResult
	detail      *models.MovieDetail
	changed     chan struct{}
	unsubscribe func()
	loading     bool
	status      string
	err         error
	width       int
	height      int
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The model subscribes to the favourites store; call [Model.Close] when the program exits.
func NewModel(ctx context.Context, opts Opts) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title.UnsetMarginBottom()

	m := &Model{
		ctx:       ctx,
		view:      BrowseView,
		tab:       PopularTab,
		catalogue: opts.Catalogue,
		engine:    tasks.NewEngine(opts.Catalogue, logger),
		favs:      opts.Favourites,
		sessions:  opts.Sessions,
		logger:    shared.WithLogger(logger, "component", "ui"),
		changed:   make(chan struct{}, 1),
		loading:   true,
		width:     80,
		height:    24,
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	for i := range m.lists {
		m.lists[i] = newMovieList()
	}

	m.unsubscribe = func() {}
	if m.favs != nil {
		m.unsubscribe = m.favs.Subscribe(func([]models.Movie) {
			select {
			case m.changed <- struct{}{}:
			default:
			}
		})
	}
	return m
}

// Close stops following the favourites store.
func (m *Model) Close() {
	m.unsubscribe()
}

// Init loads the dashboard lists and starts listening for favourites changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadHome(), m.waitForFavourites(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.lists {
			m.lists[i].SetSize(msg.Width-4, msg.Height-8)
		}
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgHomeLoaded:
		data := msg.data.(homeLoaded)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.home = data.home
		m.err = nil
		return m, m.refreshItems()

	case MsgDetailLoaded:
		data := msg.data.(detailLoaded)
		m.loading = false
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Failed to load movie: %v", data.err))
			return m, nil
		}
		m.detail = data.detail
		m.view = DetailView
		return m, nil

	case MsgFavouritesChanged:
		return m, tea.Batch(m.refreshItems(), m.waitForFavourites())

	case MsgToggled:
		data := msg.data.(toggled)
		m.status = toggleStatus(data)
		return m, m.refreshItems()

	case MsgResynced:
		err, _ := msg.data.(error)
		switch {
		case err == nil:
			m.status = styles.ok.Render(fmt.Sprintf("Favourites synced (%d)", len(m.favs.Items())))
		case errors.Is(err, shared.ErrResyncSuperseded):
		default:
			m.status = styles.err.Render(fmt.Sprintf("Resync failed: %v", err))
		}
		return m, nil
	}
	return m, nil
}

func toggleStatus(t toggled) string {
	switch {
	case errors.Is(t.err, shared.ErrAuthRequired):
		return styles.warn.Render("Login required: run `reelx auth login` first")
	case errors.Is(t.err, shared.ErrOperationInProgress):
		return styles.warn.Render(fmt.Sprintf("%s is already being updated", t.movie.Title))
	case t.err != nil:
		return styles.err.Render(fmt.Sprintf("Failed to update favourites: %v", t.err))
	case t.membership == favourites.Present:
		return styles.ok.Render(fmt.Sprintf("♥ Added %s", t.movie.Title))
	default:
		return styles.ok.Render(fmt.Sprintf("Removed %s", t.movie.Title))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case BrowseView:
		return m.renderBrowse()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.lists[m.tab].FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab):
		m.tab = (m.tab + 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if mv, ok := m.selected(); ok {
			m.loading = true
			m.status = ""
			return m, m.loadDetail(mv.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if mv, ok := m.selected(); ok {
			return m, m.toggle(mv)
		}
		return m, nil
	case key.Matches(msg, m.keys.resync):
		m.status = "Syncing favourites..."
		return m, m.resync()
	}

	return m.updateList(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = BrowseView
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if m.detail != nil {
			return m, m.toggle(m.detail.Movie)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != BrowseView {
		return m, nil
	}
	var cmd tea.Cmd
	m.lists[m.tab], cmd = m.lists[m.tab].Update(msg)
	return m, cmd
}

func (m *Model) selected() (models.Movie, bool) {
	item, ok := m.lists[m.tab].SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return item.movie, true
}

// refreshItems rebuilds every list so hearts and the favourites tab match the store.
func (m *Model) refreshItems() tea.Cmd {
	var popular, topRated, favs []models.Movie
	if m.home != nil {
		popular, topRated = m.home.Popular, m.home.TopRated
	}
	if m.favs != nil {
		favs = m.favs.Items()
	}

	cmds := []tea.Cmd{
		m.lists[PopularTab].SetItems(m.items(popular)),
		m.lists[TopRatedTab].SetItems(m.items(topRated)),
		m.lists[FavouritesTab].SetItems(m.items(favs)),
	}
	return tea.Batch(cmds...)
}

func (m *Model) items(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, mv := range movies {
		membership := favourites.Absent
		if m.favs != nil {
			membership = m.favs.State(mv.ID)
		}
		items[i] = movieItem{movie: mv, membership: membership}
	}
	return items
}

func (m *Model) loadHome() tea.Cmd {
	return func() tea.Msg {
		home, err := m.engine.Home(m.ctx, nil)
		return homeLoadedMsg(home, err)
	}
}

func (m *Model) loadDetail(id models.ID) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.catalogue.Movie(m.ctx, id)
		return detailLoadedMsg(detail, err)
	}
}

func (m *Model) toggle(mv models.Movie) tea.Cmd {
	if m.favs == nil {
		return nil
	}
	return func() tea.Msg {
		membership, err := m.favs.Toggle(m.ctx, mv)
		if err != nil {
			m.logger.Warn("toggle failed", "id", mv.ID, "error", err)
		}
		return toggledMsg(mv, membership, err)
	}
}

func (m *Model) resync() tea.Cmd {
	if m.favs == nil {
		return nil
	}
	return func() tea.Msg {
		return resyncedMsg(m.favs.Resync(m.ctx))
	}
}

func (m *Model) waitForFavourites() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changed:
			return favouritesChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := t.String()
		if t == FavouritesTab && m.favs != nil {
			label = fmt.Sprintf("%s (%d)", label, len(m.favs.Items()))
		}
		if t == m.tab {
			tabs = append(tabs, styles.activeTab.Render(label))
		} else {
			tabs = append(tabs, styles.tab.Render(label))
		}
	}

	user := "Anonymous"
	if m.sessions != nil {
		if cur := m.sessions.Current(); cur.Authenticated() {
			user = "Signed in as " + cur.Username()
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "  " + styles.help.Render(user)
}

func (m *Model) renderBrowse() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("reelx"))
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.loading {
		fmt.Fprintf(&b, "%s Loading...\n", m.spinner.View())
	} else if m.tab == FavouritesTab && len(m.lists[FavouritesTab].Items()) == 0 {
		b.WriteString(styles.help.Render("No favourites yet. Press f on a movie to add it."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.lists[m.tab].View())
		b.WriteString("\n")
	}

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", m.status)
	}
	fmt.Fprintf(&b, "\n%s", m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}

	heart := ""
	if m.favs != nil {
		switch m.favs.State(m.detail.ID) {
		case favourites.Present:
			heart = styles.heart.Render("♥ In your favourites")
		case favourites.PendingAdd, favourites.PendingRemove:
			heart = styles.warn.Render("… Updating favourites")
		}
	}

	var b strings.Builder
	if heart != "" {
		fmt.Fprintf(&b, "%s\n\n", heart)
	}
	b.WriteString(formatter.MovieDetailText(m.detail))

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", m.status)
	}
	helpKeys := []key.Binding{m.keys.back, m.keys.toggle, m.keys.quit}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}
