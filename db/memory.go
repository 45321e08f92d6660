package db

import (
	"context"
	"sync"

	"podium/models"
)

// Memory is an in-process Store used by tests and single-node development.
type Memory struct {
	mu      sync.RWMutex
	rooms   map[string]*models.Room
	records map[string]*models.DebateRecord
	byRoom  map[string]string // roomID -> recordID, mirrors the unique index
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms:   make(map[string]*models.Room),
		records: make(map[string]*models.DebateRecord),
		byRoom:  make(map[string]string),
	}
}

func (m *Memory) InsertRoom(_ context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *Memory) GetRoom(_ context.Context, id string) (*models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return room.Clone(), nil
}

func (m *Memory) ReplaceRoom(_ context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; !ok {
		return ErrNotFound
	}
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *Memory) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

func (m *Memory) ListRooms(_ context.Context) ([]models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rooms := make([]models.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, *room.Clone())
	}
	return rooms, nil
}

func (m *Memory) InsertRecord(_ context.Context, record *models.DebateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byRoom[record.RoomID]; ok {
		return ErrRecordExists
	}
	m.records[record.ID] = record.Clone()
	m.byRoom[record.RoomID] = record.ID
	return nil
}

func (m *Memory) GetRecord(_ context.Context, id string) (*models.DebateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

func (m *Memory) GetRecordByRoom(_ context.Context, roomID string) (*models.DebateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byRoom[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return m.records[id].Clone(), nil
}
