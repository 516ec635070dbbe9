package session

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/storage"
)

// StorageKey is the single key the session persists under.
const StorageKey = "shopflows_session"

// persistedSession is the on-disk shape. shop_id is a legacy alias of
// org_id kept for sessions written by older builds; writes emit both,
// reads prefer org_id and fall back to shop_id.
type persistedSession struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	OrgID           string `json:"org_id,omitempty"`
	ShopID          string `json:"shop_id,omitempty"`
	Role            string `json:"role,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	DeviceID        string `json:"device_id,omitempty"`
	DeviceName      string `json:"device_name,omitempty"`
	Email           string `json:"email,omitempty"`
	Name            string `json:"name,omitempty"`
}

// Store holds the current session in memory and mirrors it through a KV.
// Memory is authoritative: persistence failures degrade to a log line and
// an in-memory-only session, they never fail the operation.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	current   models.Session
	listeners map[int]func(models.Session)
	nextID    int
}

func NewStore(kv storage.KV) *Store {
	return &Store{
		kv:        kv,
		listeners: make(map[int]func(models.Session)),
	}
}

// Current returns a copy of the session as of now.
func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Restore loads the persisted session into memory. A missing key or a
// payload that fails to decode yields the signed-out session; corrupt data
// is dropped silently rather than surfaced.
func (s *Store) Restore() models.Session {
	s.mu.Lock()

	raw, err := s.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("session restore failed: %v", err)
		}
		s.current = models.Session{}
		session := s.current
		s.mu.Unlock()
		s.notify(session)
		return session
	}

	var persisted persistedSession
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		if err := s.kv.Delete(StorageKey); err != nil {
			log.Printf("dropping corrupt session failed: %v", err)
		}
		s.current = models.Session{}
		session := s.current
		s.mu.Unlock()
		s.notify(session)
		return session
	}

	orgID := persisted.OrgID
	if orgID == "" {
		orgID = persisted.ShopID
	}

	s.current = models.Session{
		IsAuthenticated: persisted.IsAuthenticated,
		OrgID:           orgID,
		Role:            persisted.Role,
		UserID:          persisted.UserID,
		DeviceID:        persisted.DeviceID,
		DeviceName:      persisted.DeviceName,
		Email:           persisted.Email,
		Name:            persisted.Name,
	}
	session := s.current
	s.mu.Unlock()

	s.notify(session)
	return session
}

// Commit replaces the session and persists it. The memory update and the
// write happen under the same lock so observers never see a session the
// store has not at least attempted to persist.
func (s *Store) Commit(session models.Session) {
	s.mu.Lock()

	s.current = session

	persisted := persistedSession{
		IsAuthenticated: session.IsAuthenticated,
		OrgID:           session.OrgID,
		ShopID:          session.OrgID,
		Role:            session.Role,
		UserID:          session.UserID,
		DeviceID:        session.DeviceID,
		DeviceName:      session.DeviceName,
		Email:           session.Email,
		Name:            session.Name,
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		log.Printf("session encode failed: %v", err)
	} else if err := s.kv.Set(StorageKey, string(data)); err != nil {
		log.Printf("session persist failed: %v", err)
	}

	s.mu.Unlock()

	s.notify(session)
}

// Clear resets to the signed-out session and removes the persisted copy.
func (s *Store) Clear() {
	s.mu.Lock()

	s.current = models.Session{}
	if err := s.kv.Delete(StorageKey); err != nil {
		log.Printf("session clear failed: %v", err)
	}

	s.mu.Unlock()

	s.notify(models.Session{})
}

// Subscribe registers a listener called after every session change. The
// returned function removes it.
func (s *Store) Subscribe(fn func(models.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(session models.Session) {
	s.mu.Lock()
	listeners := make([]func(models.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}
