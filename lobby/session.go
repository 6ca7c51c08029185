package lobby

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/imjasonh/kingcapture/chess"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameFull      = errors.New("game is full")
	ErrNotInGame     = errors.New("player not in game")
	ErrAlreadyQueued = errors.New("player already in queue")
	ErrSessionClosed = errors.New("session closed")
)

// Player represents a connected player
type Player struct {
	ID      string
	Name    string
	Team    chess.Team
	GameID  string
	Updates chan Update // lobby and game updates for this player's frontend
}

func NewPlayer(name string) *Player {
	return &Player{
		ID:      uuid.NewString(),
		Name:    name,
		Updates: make(chan Update, 10),
	}
}

type UpdateType string

const (
	UpdateMatched              UpdateType = "matched"
	UpdateMove                 UpdateType = "move"
	UpdateReset                UpdateType = "reset"
	UpdateOpponentDisconnected UpdateType = "opponent_disconnected"
)

// Update is broadcast to everyone watching a session.
type Update struct {
	Type       UpdateType         `json:"type"`
	GameID     string             `json:"gameId"`
	FromPlayer string             `json:"fromPlayer,omitempty"`
	Outcome    *chess.MoveOutcome `json:"outcome,omitempty"`
	State      chess.State        `json:"state"`
}

type seat struct {
	player    *Player
	connected bool
}

// Session owns one chess.Game. The game lives inside the run goroutine and
// every command reaches it through cmds, so remote moves apply strictly in
// arrival order and never race.
type Session struct {
	ID     string
	logger *log.Logger
	cmds   chan func(*chess.Game)
	done   chan struct{}
	once   sync.Once

	mu         sync.RWMutex
	seats      [2]*seat
	subs       map[string]chan<- Update
	lastActive time.Time
}

func NewSession(id string, logger *log.Logger) *Session {
	s := &Session{
		ID:     id,
		logger: logger.With("game", id),
		cmds:   make(chan func(*chess.Game)),
		done:   make(chan struct{}),
		subs:   make(map[string]chan<- Update),
	}
	s.lastActive = time.Now()
	go s.run()
	return s
}

func (s *Session) run() {
	game := chess.NewGame(chess.WithObserver(chess.ObserverFunc(func(o chess.MoveOutcome) {
		if o.Accepted {
			s.logger.Debug("move applied", "from", o.From, "to", o.To, "captured", o.Captured)
		} else {
			s.logger.Debug("move rejected", "from", o.From, "to", o.To, "err", o.Err)
		}
		if o.Winner != nil {
			s.logger.Info("king captured", "winner", *o.Winner)
		}
	})))
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.cmds:
			cmd(game)
		}
	}
}

// do runs fn on the session goroutine and waits for it to finish.
func (s *Session) do(fn func(*chess.Game)) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	s.touch()
	ran := make(chan struct{})
	select {
	case s.cmds <- func(g *chess.Game) {
		defer close(ran)
		fn(g)
	}:
	case <-s.done:
		return ErrSessionClosed
	}
	<-ran
	return nil
}

// Seat assigns p the first free team, White first. Seating a player who is
// already seated returns their existing team.
func (s *Session) Seat(p *Player) (chess.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	for team, st := range s.seats {
		if st != nil && st.player.ID == p.ID {
			st.connected = true
			p.Team = chess.Team(team)
			p.GameID = s.ID
			return p.Team, nil
		}
	}
	for team, st := range s.seats {
		if st == nil {
			s.seats[team] = &seat{player: p, connected: true}
			p.Team = chess.Team(team)
			p.GameID = s.ID
			return p.Team, nil
		}
	}
	return chess.White, ErrGameFull
}

func (s *Session) TeamOf(playerID string) (chess.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teamOf(playerID)
}

func (s *Session) teamOf(playerID string) (chess.Team, bool) {
	for team, st := range s.seats {
		if st != nil && st.player.ID == playerID {
			return chess.Team(team), true
		}
	}
	return chess.White, false
}

// Player returns whoever sits on team, if anyone.
func (s *Session) Player(team chess.Team) *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st := s.seats[team]; st != nil {
		return st.player
	}
	return nil
}

func (s *Session) Opponent(playerID string) *Player {
	team, ok := s.TeamOf(playerID)
	if !ok {
		return nil
	}
	return s.Player(team.Opponent())
}

// Select lists legal destinations for the piece on sq, but only when it is
// playerID's turn.
func (s *Session) Select(playerID string, sq chess.Square) ([]chess.Square, error) {
	team, ok := s.TeamOf(playerID)
	if !ok {
		return nil, ErrNotInGame
	}
	var dests []chess.Square
	err := s.do(func(g *chess.Game) {
		if g.CurrentTurn() == team {
			dests = g.SelectPiece(sq)
		}
	})
	return dests, err
}

// Move submits playerID's move attempt. A rejection comes back in the
// outcome; the error is only for session-level failures.
func (s *Session) Move(playerID string, from, to chess.Square) (chess.MoveOutcome, error) {
	team, ok := s.TeamOf(playerID)
	if !ok {
		return chess.MoveOutcome{}, ErrNotInGame
	}
	var out chess.MoveOutcome
	err := s.do(func(g *chess.Game) {
		if g.CurrentTurn() != team {
			out = chess.MoveOutcome{From: from, To: to, Err: &chess.MoveError{From: from, To: to, Err: chess.ErrNotYourTurn}}
			return
		}
		out = g.AttemptMove(from, to)
		if out.Accepted {
			s.publish(Update{Type: UpdateMove, GameID: s.ID, FromPlayer: playerID, Outcome: &out, State: g.State()})
		}
	})
	return out, err
}

// Reset starts a fresh game in the same session.
func (s *Session) Reset(playerID string) error {
	if _, ok := s.TeamOf(playerID); !ok {
		return ErrNotInGame
	}
	return s.do(func(g *chess.Game) {
		g.Reset()
		s.logger.Info("game reset", "by", playerID)
		s.publish(Update{Type: UpdateReset, GameID: s.ID, FromPlayer: playerID, State: g.State()})
	})
}

func (s *Session) State() (chess.State, error) {
	var st chess.State
	err := s.do(func(g *chess.Game) { st = g.State() })
	return st, err
}

// Subscribe registers ch for updates under id. The session never closes ch;
// call the returned func before closing it.
func (s *Session) Subscribe(id string, ch chan<- Update) func() {
	s.mu.Lock()
	s.subs[id] = ch
	s.lastActive = time.Now()
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.subs[id] == ch {
			delete(s.subs, id)
		}
	}
}

func (s *Session) publish(u Update) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, ch := range s.subs {
		select {
		case ch <- u:
		default:
			s.logger.Warn("dropping update for slow subscriber", "subscriber", id, "type", u.Type)
		}
	}
}

// Disconnect marks playerID as gone and tells the other side. It reports
// whether the session closed because nobody is left.
func (s *Session) Disconnect(playerID string) bool {
	s.mu.Lock()
	team, ok := s.teamOf(playerID)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.seats[team].connected = false
	delete(s.subs, playerID)
	empty := true
	for _, st := range s.seats {
		if st != nil && st.connected {
			empty = false
		}
	}
	s.mu.Unlock()

	s.logger.Info("player disconnected", "player", playerID, "team", team)
	if empty {
		s.Close()
		return true
	}
	if st, err := s.State(); err == nil {
		s.publish(Update{Type: UpdateOpponentDisconnected, GameID: s.ID, FromPlayer: playerID, State: st})
	}
	return false
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// idle reports whether nobody is listening and no command has arrived
// within ttl of now.
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs) == 0 && now.Sub(s.lastActive) >= ttl
}

func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.subs = make(map[string]chan<- Update)
		s.mu.Unlock()
	})
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}
