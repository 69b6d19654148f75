package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

// HistoryLimits bounds the stored conversation of a single chat.
type HistoryLimits struct {
	// Max is the largest number of turns a chat may hold.
	Max int
	// Retain is how many newest turns survive once Max is exceeded.
	Retain int
}

func (l HistoryLimits) normalize() HistoryLimits {
	if l.Max <= 0 {
		l.Max = 10
	}
	if l.Retain <= 0 || l.Retain > l.Max {
		l.Retain = l.Max
	}
	return l
}

// bound drops the oldest turns once the limit is exceeded.
func (l HistoryLimits) bound(turns []domain.Turn) []domain.Turn {
	if len(turns) <= l.Max {
		return turns
	}
	return append([]domain.Turn(nil), turns[len(turns)-l.Retain:]...)
}

type chatEntry struct {
	mu         sync.Mutex
	turns      []domain.Turn
	lastUpdate time.Time
	// removed is set once the entry left the map; holders must look it up again.
	removed bool
}

type chatRepository struct {
	mu        sync.Mutex
	chats     map[int64]*chatEntry
	lastSweep time.Time
	limits    HistoryLimits
	ttl       time.Duration
	now       func() time.Time
}

// NewChatRepository keeps chat history in process memory. Chats idle for
// longer than ttl start over and are dropped from memory by a periodic sweep;
// ttl <= 0 keeps them for the process lifetime.
func NewChatRepository(limits HistoryLimits, ttl time.Duration) *chatRepository {
	return &chatRepository{
		chats:  make(map[int64]*chatEntry),
		limits: limits.normalize(),
		ttl:    ttl,
		now:    time.Now,
	}
}

// lockEntry returns the chat entry with its mutex held. Unknown chats get a
// new entry when create is set and nil otherwise.
func (c *chatRepository) lockEntry(chatID int64, create bool) *chatEntry {
	for {
		c.mu.Lock()
		c.sweep()
		e, ok := c.chats[chatID]
		if !ok {
			if !create {
				c.mu.Unlock()
				return nil
			}
			e = &chatEntry{}
			c.chats[chatID] = e
		}
		c.mu.Unlock()

		e.mu.Lock()
		if !e.removed {
			return e
		}
		e.mu.Unlock()
	}
}

// sweep drops expired and cleared chats at most once per ttl. Busy entries
// are skipped. c.mu must be held.
func (c *chatRepository) sweep() {
	if c.ttl <= 0 {
		return
	}
	now := c.now()
	if now.Sub(c.lastSweep) < c.ttl {
		return
	}
	c.lastSweep = now

	for id, e := range c.chats {
		if !e.mu.TryLock() {
			continue
		}
		if len(e.turns) == 0 || c.expired(e) {
			e.removed = true
			delete(c.chats, id)
		}
		e.mu.Unlock()
	}
}

func (c *chatRepository) expired(e *chatEntry) bool {
	return c.ttl > 0 && !e.lastUpdate.IsZero() && c.now().Sub(e.lastUpdate) > c.ttl
}

func (c *chatRepository) Append(_ context.Context, chatID int64, turn domain.Turn) ([]domain.Turn, error) {
	e := c.lockEntry(chatID, true)
	defer e.mu.Unlock()

	if c.expired(e) {
		e.turns = nil
	}

	e.turns = c.limits.bound(append(e.turns, turn))
	e.lastUpdate = c.now()

	return append([]domain.Turn(nil), e.turns...), nil
}

func (c *chatRepository) History(_ context.Context, chatID int64) ([]domain.Turn, error) {
	e := c.lockEntry(chatID, false)
	if e == nil {
		return nil, nil
	}
	defer e.mu.Unlock()

	if c.expired(e) {
		return nil, nil
	}
	return append([]domain.Turn(nil), e.turns...), nil
}

func (c *chatRepository) Clear(_ context.Context, chatID int64) error {
	e := c.lockEntry(chatID, false)
	if e == nil {
		return nil
	}
	defer e.mu.Unlock()

	e.turns = nil
	return nil
}
