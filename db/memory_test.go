package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"podium/models"
)

func testRoom(id string) *models.Room {
	return &models.Room{
		ID:        id,
		Topic:     "Homework should be abolished",
		Stage:     models.StageWaiting,
		ScorePro:  50,
		ScoreCon:  50,
		CreatedAt: time.Now(),
	}
}

func TestMemoryRoomCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.InsertRoom(ctx, testRoom("r1")); err != nil {
		t.Fatalf("InsertRoom failed: %v", err)
	}
	got, err := m.GetRoom(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if got.Topic != "Homework should be abolished" {
		t.Errorf("GetRoom topic = %q", got.Topic)
	}

	got.Stage = models.StageOpeningPro
	if err := m.ReplaceRoom(ctx, got); err != nil {
		t.Fatalf("ReplaceRoom failed: %v", err)
	}
	again, _ := m.GetRoom(ctx, "r1")
	if again.Stage != models.StageOpeningPro {
		t.Errorf("Replace not visible, stage = %s", again.Stage)
	}

	rooms, err := m.ListRooms(ctx)
	if err != nil || len(rooms) != 1 {
		t.Fatalf("ListRooms = %d rooms, err %v", len(rooms), err)
	}

	if err := m.DeleteRoom(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}
	if _, err := m.GetRoom(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := m.ReplaceRoom(ctx, testRoom("r1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace of a deleted room: %v", err)
	}
}

func TestMemoryCloneIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	room := testRoom("r1")
	room.Participants = []models.Participant{{SessionID: "s1", Role: models.RoleHost}}
	if err := m.InsertRoom(ctx, room); err != nil {
		t.Fatalf("InsertRoom failed: %v", err)
	}

	// Mutating a returned copy must not leak into the store.
	got, _ := m.GetRoom(ctx, "r1")
	got.Participants[0].Role = models.RoleObserver
	got.ScorePro = 99

	fresh, _ := m.GetRoom(ctx, "r1")
	if fresh.Participants[0].Role != models.RoleHost || fresh.ScorePro != 50 {
		t.Error("Store state leaked through a returned room")
	}

	// Same for the caller's own struct after insert.
	room.Topic = "changed"
	fresh, _ = m.GetRoom(ctx, "r1")
	if fresh.Topic == "changed" {
		t.Error("Store shares memory with the inserted room")
	}
}

func TestMemoryRecordUniquePerRoom(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < len(errs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.InsertRecord(ctx, &models.DebateRecord{
				ID:     string(rune('a' + i)),
				RoomID: "r1",
				Winner: models.WinnerDraw,
			})
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrRecordExists):
			dup++
		default:
			t.Fatalf("Unexpected insert error: %v", err)
		}
	}
	if ok != 1 || dup != len(errs)-1 {
		t.Fatalf("Got %d inserts and %d duplicates, want exactly one insert", ok, dup)
	}

	rec, err := m.GetRecordByRoom(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRecordByRoom failed: %v", err)
	}
	if got, err := m.GetRecord(ctx, rec.ID); err != nil || got.RoomID != "r1" {
		t.Errorf("GetRecord(%s): %v", rec.ID, err)
	}
	if _, err := m.GetRecordByRoom(ctx, "r2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unarchived room, got %v", err)
	}
}
