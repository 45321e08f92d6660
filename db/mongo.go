package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"podium/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on top of MongoDB.
type Mongo struct {
	client  *mongo.Client
	rooms   *mongo.Collection
	records *mongo.Collection
}

// extractDBName parses the database name from the URI, defaulting to "podium"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "podium"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "podium"
}

// ConnectMongo establishes a connection to MongoDB using the provided URI and
// ensures the indexes the orchestrator relies on.
func ConnectMongo(uri string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)
	database := client.Database(dbName)

	m := &Mongo{
		client:  client,
		rooms:   database.Collection("rooms"),
		records: database.Collection("debate_records"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureIndexes creates the unique index on debate_records.roomId that makes
// archival idempotent under concurrent triggers.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.records.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create debate_records index: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) InsertRoom(ctx context.Context, room *models.Room) error {
	_, err := m.rooms.InsertOne(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (m *Mongo) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := m.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	return &room, nil
}

func (m *Mongo) ReplaceRoom(ctx context.Context, room *models.Room) error {
	res, err := m.rooms.ReplaceOne(ctx, bson.M{"_id": room.ID}, room)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteRoom(ctx context.Context, id string) error {
	res, err := m.rooms.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) ListRooms(ctx context.Context) ([]models.Room, error) {
	cursor, err := m.rooms.Find(ctx, bson.D{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	var rooms []models.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (m *Mongo) InsertRecord(ctx context.Context, record *models.DebateRecord) error {
	_, err := m.records.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return ErrRecordExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert debate record: %w", err)
	}
	return nil
}

func (m *Mongo) GetRecord(ctx context.Context, id string) (*models.DebateRecord, error) {
	var record models.DebateRecord
	err := m.records.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch debate record: %w", err)
	}
	return &record, nil
}

func (m *Mongo) GetRecordByRoom(ctx context.Context, roomID string) (*models.DebateRecord, error) {
	var record models.DebateRecord
	err := m.records.FindOne(ctx, bson.M{"roomId": roomID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch debate record: %w", err)
	}
	return &record, nil
}
