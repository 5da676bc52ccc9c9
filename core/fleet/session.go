package fleet

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pollenops/pollenguard/core/model"
)

// Session owns one client's vehicle inventory. The collection is ordered,
// append-only plus remove-by-id; records are never edited in place. Each
// session is independent, so callers may hold one per API client without
// sharing.
type Session struct {
	ID string

	mu       sync.Mutex
	vehicles []model.Vehicle
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Add validates and appends a vehicle, assigning a stable identifier when
// the record has none. The assigned vehicle is returned.
func (s *Session) Add(v model.Vehicle) (model.Vehicle, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Parked != "" {
		v.Storage = model.ParseStorage(v.Parked)
	}
	if err := v.Validate(); err != nil {
		return model.Vehicle{}, err
	}
	s.mu.Lock()
	s.vehicles = append(s.vehicles, v)
	s.mu.Unlock()
	return v, nil
}

// AddAll appends a batch atomically: either every vehicle validates and is
// added, or none are.
func (s *Session) AddAll(batch []model.Vehicle) error {
	prepared := make([]model.Vehicle, 0, len(batch))
	for _, v := range batch {
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		if v.Parked != "" {
			v.Storage = model.ParseStorage(v.Parked)
		}
		if err := v.Validate(); err != nil {
			return err
		}
		prepared = append(prepared, v)
	}
	s.mu.Lock()
	s.vehicles = append(s.vehicles, prepared...)
	s.mu.Unlock()
	return nil
}

// Remove deletes the vehicle with the given identifier. Removal is by
// stable id, never by positional index, so a stale view cannot delete the
// wrong record. The relative order of remaining vehicles is preserved.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.vehicles {
		if v.ID == id {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("vehicle %s: not in inventory", id)
}

// Vehicles returns a snapshot copy in insertion order.
func (s *Session) Vehicles() []model.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// Len returns the inventory size.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vehicles)
}

// SeedDemo loads the demonstration fleet used by the original Manheim
// Atlanta deployment.
func (s *Session) SeedDemo() {
	demo := []model.Vehicle{
		{ID: "VH-001", Model: "Ford F-150", Color: "Black", Parked: "Outdoor - Row A", Coords: &model.Coordinates{Lat: 33.6612, Lon: -84.5305}},
		{ID: "VH-002", Model: "Tesla Model 3", Color: "White", Parked: "Indoor - Hall B", Coords: &model.Coordinates{Lat: 33.6605, Lon: -84.5310}},
		{ID: "VH-003", Model: "Toyota Camry", Color: "Blue", Parked: "Outdoor - Row C", Coords: &model.Coordinates{Lat: 33.6618, Lon: -84.5295}},
		{ID: "VH-004", Model: "BMW X5", Color: "Black", Parked: "Outdoor - Row A", Coords: &model.Coordinates{Lat: 33.6611, Lon: -84.5301}},
		{ID: "VH-005", Model: "Rivian R1T", Color: "Green", Parked: "Outdoor - Row D", Coords: &model.Coordinates{Lat: 33.6620, Lon: -84.5320}},
	}
	for i := range demo {
		demo[i].Storage = model.ParseStorage(demo[i].Parked)
	}
	s.mu.Lock()
	s.vehicles = append(s.vehicles, demo...)
	s.mu.Unlock()
}

// Store keeps live sessions keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers and returns a new session.
func (st *Store) Create() *Session {
	s := NewSession()
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	return s, ok
}

// Drop removes a session.
func (st *Store) Drop(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
