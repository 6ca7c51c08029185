// Package lobby pairs players into games and runs each game session.
package lobby

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long a game with no listeners and no commands
// is kept before it is closed.
const DefaultIdleTimeout = 30 * time.Minute

// Manager handles matchmaking and game coordination
type Manager struct {
	logger       *log.Logger
	mu           sync.RWMutex
	queue        []*Player
	sessions     map[string]*Session
	playerToGame map[string]string // playerID -> gameID

	idleTimeout time.Duration
	stop        chan struct{}
	closeOnce   sync.Once
}

type Option func(*Manager)

// WithIdleTimeout sets how long an unwatched, unused game survives. Zero
// keeps games until they are removed explicitly.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

func NewManager(logger *log.Logger, opts ...Option) *Manager {
	m := &Manager{
		logger:       logger,
		queue:        make([]*Player, 0),
		sessions:     make(map[string]*Session),
		playerToGame: make(map[string]string),
		idleTimeout:  DefaultIdleTimeout,
		stop:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.idleTimeout > 0 {
		go m.reapLoop()
	}
	return m
}

func (m *Manager) reapLoop() {
	ticker := time.NewTicker(min(m.idleTimeout, time.Minute))
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.reap(now)
		}
	}
}

// reap closes every game that has been idle for the idle timeout as of now
// and returns how many it closed.
func (m *Manager) reap(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if !s.idle(now, m.idleTimeout) {
			continue
		}
		s.Close()
		delete(m.sessions, id)
		for pid, gid := range m.playerToGame {
			if gid == id {
				delete(m.playerToGame, pid)
			}
		}
		m.logger.Info("idle game closed", "game", id)
		n++
	}
	return n
}

// Enqueue adds p to the matchmaking queue. When two players are waiting the
// earlier one gets White and both receive an UpdateMatched on their
// Updates channel.
func (m *Manager) Enqueue(p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, q := range m.queue {
		if q.ID == p.ID {
			return ErrAlreadyQueued
		}
	}
	m.queue = append(m.queue, p)
	m.logger.Info("player queued", "player", p.ID, "name", p.Name, "position", len(m.queue))

	if len(m.queue) < 2 {
		return nil
	}
	white, black := m.queue[0], m.queue[1]
	m.queue = m.queue[2:]

	s := m.newSessionLocked()
	for _, pl := range []*Player{white, black} {
		if _, err := s.Seat(pl); err != nil {
			return err
		}
		s.Subscribe(pl.ID, pl.Updates)
		m.playerToGame[pl.ID] = s.ID
	}
	m.logger.Info("match found", "game", s.ID, "white", white.Name, "black", black.Name)

	st, err := s.State()
	if err != nil {
		return err
	}
	s.publish(Update{Type: UpdateMatched, GameID: s.ID, State: st})
	return nil
}

func (m *Manager) newSessionLocked() *Session {
	s := NewSession(uuid.NewString(), m.logger)
	m.sessions[s.ID] = s
	return s
}

// Create opens an empty game that players join by ID.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.newSessionLocked()
	m.logger.Info("game created", "game", s.ID)
	return s
}

func (m *Manager) Get(gameID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// Join seats p in an existing game.
func (m *Manager) Join(gameID string, p *Player) (*Session, error) {
	s, err := m.Get(gameID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Seat(p); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.playerToGame[p.ID] = gameID
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) SessionFor(playerID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if gameID, ok := m.playerToGame[playerID]; ok {
		return m.sessions[gameID]
	}
	return nil
}

// QueuePosition is 1-based, or -1 when playerID is not waiting.
func (m *Manager) QueuePosition(playerID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, p := range m.queue {
		if p.ID == playerID {
			return i + 1
		}
	}
	return -1
}

// Remove takes playerID out of the queue or its game. A game with nobody
// left connected is dropped.
func (m *Manager) Remove(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.queue {
		if p.ID == playerID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}

	gameID, ok := m.playerToGame[playerID]
	if !ok {
		return
	}
	delete(m.playerToGame, playerID)
	s, ok := m.sessions[gameID]
	if !ok {
		return
	}
	if s.Disconnect(playerID) {
		delete(m.sessions, gameID)
		for pid, gid := range m.playerToGame {
			if gid == gameID {
				delete(m.playerToGame, pid)
			}
		}
		m.logger.Info("game closed", "game", gameID)
	}
}

func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
	m.queue = nil
}
