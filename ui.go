package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/imjasonh/kingcapture/chess"
	"github.com/imjasonh/kingcapture/lobby"
)

// driver is how the terminal UI reaches a game: directly for hot-seat play,
// or through a lobby session when playing online.
type driver interface {
	Select(sq chess.Square) ([]chess.Square, error)
	Move(from, to chess.Square) (chess.MoveOutcome, error)
	State() (chess.State, error)
	Reset() error
}

type localDriver struct {
	game *chess.Game
}

func newLocalDriver(logger *log.Logger) *localDriver {
	return &localDriver{game: chess.NewGame(chess.WithObserver(chess.ObserverFunc(func(o chess.MoveOutcome) {
		if o.Winner != nil {
			logger.Info("hot-seat game over", "winner", *o.Winner)
		}
	})))}
}

func (d *localDriver) Select(sq chess.Square) ([]chess.Square, error) {
	return d.game.SelectPiece(sq), nil
}

func (d *localDriver) Move(from, to chess.Square) (chess.MoveOutcome, error) {
	return d.game.AttemptMove(from, to), nil
}

func (d *localDriver) State() (chess.State, error) { return d.game.State(), nil }

func (d *localDriver) Reset() error {
	d.game.Reset()
	return nil
}

type sessionDriver struct {
	session  *lobby.Session
	playerID string
}

func (d sessionDriver) Select(sq chess.Square) ([]chess.Square, error) {
	return d.session.Select(d.playerID, sq)
}

func (d sessionDriver) Move(from, to chess.Square) (chess.MoveOutcome, error) {
	return d.session.Move(d.playerID, from, to)
}

func (d sessionDriver) State() (chess.State, error) { return d.session.State() }

func (d sessionDriver) Reset() error { return d.session.Reset(d.playerID) }

type styles struct {
	cursor, selected, valid, light, dark lipgloss.Style
	banner, status, panel                lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		cursor:   r.NewStyle().Background(lipgloss.Color("1")),
		selected: r.NewStyle().Background(lipgloss.Color("3")),
		valid:    r.NewStyle().Background(lipgloss.Color("2")),
		light:    r.NewStyle().Background(lipgloss.Color("8")),
		dark:     r.NewStyle().Background(lipgloss.Color("0")),
		banner:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		status:   r.NewStyle().Foreground(lipgloss.Color("9")),
		panel:    r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

const (
	modeWaiting              = "waiting"
	modePlaying              = "playing"
	modeOpponentDisconnected = "opponent_disconnected"
)

type model struct {
	driver  driver
	logger  *log.Logger
	styles  styles
	manager *lobby.Manager // nil in hot-seat mode

	// Game state
	state      chess.State
	cursor     chess.Square
	selected   *chess.Square
	validMoves []chess.Square
	status     string

	// Multiplayer state
	player   *lobby.Player
	opponent *lobby.Player
	mode     string
}

func newHotseatModel(logger *log.Logger, r *lipgloss.Renderer) model {
	d := newLocalDriver(logger)
	st, _ := d.State()
	return model{
		driver: d,
		logger: logger,
		styles: newStyles(r),
		state:  st,
		mode:   modePlaying,
	}
}

func newOnlineModel(manager *lobby.Manager, player *lobby.Player, logger *log.Logger, r *lipgloss.Renderer) model {
	return model{
		manager: manager,
		player:  player,
		logger:  logger.With("player", player.ID),
		styles:  newStyles(r),
		state:   chess.NewGame().State(),
		mode:    modeWaiting,
	}
}

func (m model) Init() tea.Cmd {
	return m.listenForUpdates()
}

func (m model) listenForUpdates() tea.Cmd {
	if m.player == nil || m.player.Updates == nil {
		return nil
	}
	ch := m.player.Updates
	return func() tea.Msg {
		return <-ch
	}
}

func (m model) hotseat() bool {
	return m.player == nil
}

func (m model) isMyTurn() bool {
	if m.mode != modePlaying {
		return false
	}
	return m.hotseat() || m.player.Team == m.state.Turn
}

func (m model) gameOver() bool {
	return m.state.Result != chess.InProgress
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case lobby.Update:
		return m.handleGameUpdate(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.clearSelection()
	case "up", "k":
		if m.cursor.Rank < chess.BoardSize-1 {
			m.cursor.Rank++
		}
	case "down", "j":
		if m.cursor.Rank > 0 {
			m.cursor.Rank--
		}
	case "left", "h":
		if m.cursor.File > 0 {
			m.cursor.File--
		}
	case "right", "l":
		if m.cursor.File < chess.BoardSize-1 {
			m.cursor.File++
		}
	case "r":
		if m.gameOver() && m.driver != nil && m.mode == modePlaying {
			if err := m.driver.Reset(); err != nil {
				m.status = err.Error()
				break
			}
			m.refresh()
			m.status = ""
		}
	case "enter", " ":
		if m.isMyTurn() && !m.gameOver() {
			m.activate()
		}
	}
	return m, nil
}

// activate selects the piece under the cursor, or moves the selected piece
// there. An illegal target snaps the piece back by dropping the selection.
func (m *model) activate() {
	if m.selected == nil {
		dests, err := m.driver.Select(m.cursor)
		if err != nil {
			m.status = err.Error()
			return
		}
		if len(dests) == 0 {
			return
		}
		sq := m.cursor
		m.selected = &sq
		m.validMoves = dests
		m.status = ""
		return
	}

	if *m.selected == m.cursor {
		m.clearSelection()
		return
	}

	out, err := m.driver.Move(*m.selected, m.cursor)
	m.clearSelection()
	switch {
	case err != nil:
		m.status = err.Error()
		return
	case !out.Accepted:
		m.status = rejectionText(out.Err)
		return
	}
	m.status = ""
	if out.Captured != nil {
		m.status = fmt.Sprintf("Captured %s", out.Captured.Name())
	}
	m.refresh()
}

func rejectionText(err error) string {
	switch {
	case errors.Is(err, chess.ErrGameOver):
		return "The game is over"
	case errors.Is(err, chess.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, chess.ErrOccupiedBySameTeam):
		return "That square holds your own piece"
	case errors.Is(err, chess.ErrInvalidMove):
		return "Illegal move"
	}
	return err.Error()
}

func (m *model) refresh() {
	st, err := m.driver.State()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.state = st
}

func (m *model) clearSelection() {
	m.selected = nil
	m.validMoves = nil
}

func (m model) handleGameUpdate(u lobby.Update) (tea.Model, tea.Cmd) {
	switch u.Type {
	case lobby.UpdateMatched:
		if s := m.manager.SessionFor(m.player.ID); s != nil {
			m.driver = sessionDriver{session: s, playerID: m.player.ID}
			m.opponent = s.Opponent(m.player.ID)
			m.mode = modePlaying
			m.logger.Info("matched", "game", u.GameID, "team", m.player.Team)
		}
		m.state = u.State

	case lobby.UpdateMove, lobby.UpdateReset:
		m.state = u.State
		if u.FromPlayer != m.player.ID {
			m.clearSelection()
		}
		if u.Outcome != nil && u.Outcome.Captured != nil && u.FromPlayer != m.player.ID {
			m.status = fmt.Sprintf("Opponent captured your %s", u.Outcome.Captured.Kind)
		}

	case lobby.UpdateOpponentDisconnected:
		m.mode = modeOpponentDisconnected
		m.clearSelection()
	}

	return m, m.listenForUpdates()
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString("KingCapture\n")
	b.WriteString(m.header())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderBoard(), "   ", m.renderPanel()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Captured white: %s\n", piecesText(m.state.CapturedWhite))
	fmt.Fprintf(&b, "Captured black: %s\n", piecesText(m.state.CapturedBlack))
	fmt.Fprintf(&b, "FEN: %s\n", m.state.FEN)
	return b.String()
}

const helpLine = "arrows/hjkl move, enter/space select or move, esc deselect, q quit"

func (m model) header() string {
	switch m.mode {
	case modeWaiting:
		var b strings.Builder
		b.WriteString("Waiting for an opponent to connect...\n")
		if m.manager != nil {
			if pos := m.manager.QueuePosition(m.player.ID); pos > 0 {
				fmt.Fprintf(&b, "Position in queue: %d\n", pos)
			}
		}
		b.WriteString("Look around with the arrow keys while you wait, q quits.\n")
		return b.String()
	case modeOpponentDisconnected:
		return m.styles.banner.Render("OPPONENT DISCONNECTED, you win") +
			"\nKeep exploring the board or press q to quit.\n"
	}

	var b strings.Builder
	if m.player != nil && m.opponent != nil {
		fmt.Fprintf(&b, "You: %s (%s) vs %s (%s)\n", m.player.Name, m.player.Team, m.opponent.Name, m.opponent.Team)
	}
	switch {
	case m.gameOver():
		winner := chess.White
		if m.state.Result == chess.BlackWins {
			winner = chess.Black
		}
		b.WriteString(m.styles.banner.Render(strings.ToUpper(winner.String()) + " captured the King and wins!"))
		b.WriteString("\nPress R for a new game, Q to quit\n")
	case m.hotseat():
		fmt.Fprintf(&b, "%s TO MOVE (%s)\n", strings.ToUpper(m.state.Turn.String()), helpLine)
	case m.isMyTurn():
		fmt.Fprintf(&b, "YOUR TURN (%s)\n", helpLine)
	default:
		b.WriteString("OPPONENT'S TURN, waiting for their move\n")
	}
	return b.String()
}

func (m model) cellStyle(sq chess.Square) lipgloss.Style {
	switch {
	case m.cursor == sq:
		return m.styles.cursor
	case m.selected != nil && *m.selected == sq:
		return m.styles.selected
	case slices.Contains(m.validMoves, sq):
		return m.styles.valid
	case (sq.File+sq.Rank)%2 == 1:
		return m.styles.light
	}
	return m.styles.dark
}

// renderBoard draws rank 8 at the top, with file letters above and below.
func (m model) renderBoard() string {
	const files = "  a  b  c  d  e  f  g  h  "
	rows := []string{files}
	for rank := chess.BoardSize - 1; rank >= 0; rank-- {
		var row strings.Builder
		row.WriteString(strconv.Itoa(rank + 1))
		for file := range chess.BoardSize {
			sq := chess.Sq(file, rank)
			symbol := " "
			if v := m.state.Board.At(sq); v != nil {
				symbol = v.String()
			}
			row.WriteString(m.cellStyle(sq).Render(" " + symbol + " "))
		}
		row.WriteString(strconv.Itoa(rank + 1))
		rows = append(rows, row.String())
	}
	rows = append(rows, files)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) renderPanel() string {
	under := "empty"
	if v := m.state.Board.At(m.cursor); v != nil {
		under = v.Name()
	}
	lines := []string{
		"Turn:   " + m.state.Turn.String(),
		"Cursor: " + m.cursor.String(),
		"Piece:  " + under,
	}
	if m.selected != nil {
		lines = append(lines, "", "Selected "+m.selected.String())
		names := make([]string, len(m.validMoves))
		for i, sq := range m.validMoves {
			names[i] = sq.String()
		}
		for chunk := range slices.Chunk(names, 4) {
			lines = append(lines, "  "+strings.Join(chunk, " "))
		}
	}
	return m.styles.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
func piecesText(pieces []chess.PieceView) string {
	if len(pieces) == 0 {
		return "-"
	}
	var s strings.Builder
	for _, p := range pieces {
		s.WriteString(p.String())
	}
	return s.String()
}
