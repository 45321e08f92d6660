package db

import (
	"context"
	"errors"

	"podium/models"
)

var (
	// ErrNotFound is returned when a room or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRecordExists is returned when a debate record already exists for a
	// room. Callers treat it as success and fetch the existing record.
	ErrRecordExists = errors.New("debate record already exists")
)

// Store is the persistence port for rooms and debate records. Rooms embed
// their participants, messages and score history, so replacing the room
// document commits a whole transition atomically. Implementations must
// enforce uniqueness of DebateRecord.RoomID.
type Store interface {
	InsertRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ReplaceRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]models.Room, error)

	InsertRecord(ctx context.Context, record *models.DebateRecord) error
	GetRecord(ctx context.Context, id string) (*models.DebateRecord, error)
	GetRecordByRoom(ctx context.Context, roomID string) (*models.DebateRecord, error)
}
