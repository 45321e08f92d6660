package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"podium/db"
	"podium/internal/stream"
	"podium/models"

	"github.com/google/uuid"
)

// Broadcaster forwards room events to spectators connected to this instance.
// The websocket hub implements it.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event *stream.Event)
}

// Snapshot is the consistent room view returned by every operation.
// ServerTime lets pollers compute remaining time without trusting their own
// clocks.
type Snapshot struct {
	Room             *models.Room `json:"room"`
	ServerTime       time.Time    `json:"serverTime"`
	RemainingSeconds int          `json:"remainingSeconds"`
}

// CoordinatorOptions tunes optional coordinator behavior.
type CoordinatorOptions struct {
	// Analyst, when set, reviews accepted debate messages for fact checks
	// and fallacies. Best effort.
	Analyst Analyst
	// Broadcaster receives room events for local websocket fanout.
	Broadcaster Broadcaster
	// VerdictTimeout bounds the verdict-generation call. Default 30s.
	VerdictTimeout time.Duration
	// DefaultStageSeconds is applied to rooms created without their own
	// per-stage durations. Usually fed from the config file.
	DefaultStageSeconds map[string]int
	// HeartbeatWindow is the staleness threshold for the presence display.
	HeartbeatWindow time.Duration
}

// Coordinator owns every active debate room. Each room gets one goroutine
// that serializes all of its mutations through a command channel and runs the
// stage countdown timer, so no two triggers can ever advance the same stage
// twice. Different rooms are fully independent.
type Coordinator struct {
	store    db.Store
	verdicts VerdictGenerator
	opts     CoordinatorOptions

	mu       sync.Mutex
	sessions map[string]*roomSession
}

// NewCoordinator creates a coordinator over the given store. verdicts may be
// nil, in which case terminated debates get the fallback verdict.
func NewCoordinator(store db.Store, verdicts VerdictGenerator, opts CoordinatorOptions) *Coordinator {
	if opts.VerdictTimeout == 0 {
		opts.VerdictTimeout = 30 * time.Second
	}
	if opts.HeartbeatWindow == 0 {
		opts.HeartbeatWindow = DefaultHeartbeatWindow
	}
	return &Coordinator{
		store:    store,
		verdicts: verdicts,
		opts:     opts,
		sessions: make(map[string]*roomSession),
	}
}

// HeartbeatWindow returns the configured staleness threshold.
func (c *Coordinator) HeartbeatWindow() time.Duration {
	return c.opts.HeartbeatWindow
}

// CreateRoom creates a room in the waiting stage. Rooms without their own
// stage durations inherit the configured defaults.
func (c *Coordinator) CreateRoom(ctx context.Context, topic string, settings models.RoomSettings) (*models.Room, error) {
	if len(settings.StageSeconds) == 0 && len(c.opts.DefaultStageSeconds) > 0 {
		settings.StageSeconds = make(map[string]int, len(c.opts.DefaultStageSeconds))
		for stage, secs := range c.opts.DefaultStageSeconds {
			settings.StageSeconds[stage] = secs
		}
	}
	now := time.Now()
	room := &models.Room{
		ID:             uuid.NewString(),
		Topic:          topic,
		Stage:          models.StageWaiting,
		StageStartedAt: now,
		TurnOwner:      models.RoleNone,
		ScorePro:       50,
		ScoreCon:       50,
		Settings:       settings,
		CreatedAt:      now,
	}
	if err := c.store.InsertRoom(ctx, room); err != nil {
		return nil, err
	}
	return room.Clone(), nil
}

// ListRooms returns all rooms, newest first where the store supports it.
func (c *Coordinator) ListRooms(ctx context.Context) ([]models.Room, error) {
	return c.store.ListRooms(ctx)
}

// Join registers a session in the room and returns its role. Idempotent for
// a known session id. Joining may trigger the waiting -> opening transition.
func (c *Coordinator) Join(ctx context.Context, roomID, sessionID, displayName string, stance models.Stance) (*Snapshot, models.Role, error) {
	s, err := c.session(ctx, roomID)
	if err != nil {
		return nil, models.RoleNone, err
	}
	var snap *Snapshot
	var role models.Role
	err = s.do(ctx, func() error {
		p, _, err := s.join(sessionID, displayName, stance)
		if err != nil {
			return err
		}
		role = p.Role
		snap = s.snapshot()
		return nil
	})
	return snap, role, err
}

// Heartbeat refreshes a session's lastSeenAt. Returns ErrUnknownSession when
// the session has no roster entry and should re-join.
func (c *Coordinator) Heartbeat(ctx context.Context, roomID, sessionID string) error {
	s, err := c.session(ctx, roomID)
	if err != nil {
		return err
	}
	return s.do(ctx, func() error {
		if s.room.Stage == models.StageEnded {
			// Archived rooms stay exactly as archived; the beat is accepted
			// but records nothing.
			if FindParticipant(s.room, sessionID) == nil {
				return ErrUnknownSession
			}
			return nil
		}
		if !TouchParticipant(s.room, sessionID) {
			return ErrUnknownSession
		}
		return s.persist()
	})
}

// Leave removes a session from the room. When the last non-observer leaves a
// room that has not been archived, the room and its messages are deleted.
func (c *Coordinator) Leave(ctx context.Context, roomID, sessionID string) (roomDeleted bool, err error) {
	s, err := c.session(ctx, roomID)
	if err != nil {
		return false, err
	}
	err = s.do(ctx, func() error {
		deleted, err := s.leave(sessionID)
		roomDeleted = deleted
		return err
	})
	return roomDeleted, err
}

// SubmitMessage appends a debate message after turn-gate validation, then
// evaluates stage advancement (cross-examination advances on a single
// message).
func (c *Coordinator) SubmitMessage(ctx context.Context, roomID, sessionID, content string) (*Snapshot, error) {
	s, err := c.session(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var snap *Snapshot
	err = s.do(ctx, func() error {
		if err := s.submitMessage(sessionID, content); err != nil {
			return err
		}
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// SwitchTurn lets the current turn owner end their turn early.
func (c *Coordinator) SwitchTurn(ctx context.Context, roomID, sessionID string) (*Snapshot, error) {
	s, err := c.session(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var snap *Snapshot
	err = s.do(ctx, func() error {
		if err := s.switchTurn(sessionID); err != nil {
			return err
		}
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// RoomState returns the full authoritative snapshot.
func (c *Coordinator) RoomState(ctx context.Context, roomID string) (*Snapshot, error) {
	s, err := c.session(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var snap *Snapshot
	err = s.do(ctx, func() error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// Archive finalizes a room that has reached the ended stage. Idempotent: if
// a record already exists its id is returned. Safe to call concurrently.
func (c *Coordinator) Archive(ctx context.Context, roomID string) (string, error) {
	// A record can outlive its room only in odd shutdown orders; honor it.
	if rec, err := c.store.GetRecordByRoom(ctx, roomID); err == nil {
		return rec.ID, nil
	}
	s, err := c.session(ctx, roomID)
	if err != nil {
		return "", err
	}
	var recordID string
	err = s.do(ctx, func() error {
		if s.room.Stage != models.StageEnded {
			return ErrDebateClosed
		}
		id, err := s.archive()
		recordID = id
		return err
	})
	return recordID, err
}

// Shutdown stops every room goroutine. Pending verdict generations complete
// against a closed session and are dropped.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	sessions := make([]*roomSession, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.sessions = make(map[string]*roomSession)
	c.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}

// session returns the owning goroutine for a room, starting one from the
// stored state when needed.
func (c *Coordinator) session(ctx context.Context, roomID string) (*roomSession, error) {
	c.mu.Lock()
	if s, ok := c.sessions[roomID]; ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	room, err := c.store.GetRoom(ctx, roomID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[roomID]; ok {
		return s, nil
	}
	s := newRoomSession(c, room)
	c.sessions[roomID] = s
	go s.run()
	return s, nil
}

func (c *Coordinator) dropSession(roomID string) {
	c.mu.Lock()
	delete(c.sessions, roomID)
	c.mu.Unlock()
}

// roomSession is the single-writer goroutine owning one room. Every mutation
// runs on its loop; the stage countdown timer lives here too, so a timer
// expiry and a manual turn switch can never both advance the same stage.
type roomSession struct {
	c    *Coordinator
	room *models.Room

	cmds chan func()
	done chan struct{}
	once sync.Once

	timer *time.Timer
	// gen increments on every transition; timerGen records which transition
	// armed the timer, so a stale expiry is ignored.
	gen      int
	timerGen int
}

func newRoomSession(c *Coordinator, room *models.Room) *roomSession {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	return &roomSession{
		c:     c,
		room:  room,
		cmds:  make(chan func()),
		done:  make(chan struct{}),
		timer: timer,
	}
}

func (s *roomSession) run() {
	s.recover()
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.cmds:
			fn()
		case <-s.timer.C:
			s.onTimerFired()
		}
	}
}

// recover re-arms the room after a session (re)start: restart a pending
// verdict, catch up an overdue stage, or resume the countdown.
func (s *roomSession) recover() {
	switch {
	case s.room.Stage == models.StageVerdictPending:
		s.startVerdict()
	case DueForAutoAdvance(s.room, time.Now()):
		if err := s.advance(); err != nil {
			log.Printf("room %s: failed to advance overdue stage: %v", s.room.ID, err)
		}
	default:
		s.armTimer()
	}
}

func (s *roomSession) close() {
	s.once.Do(func() { close(s.done) })
}

// do runs fn on the room's goroutine and waits for its result.
func (s *roomSession) do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case s.cmds <- func() { errc <- fn() }:
	case <-s.done:
		return ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *roomSession) onTimerFired() {
	if s.timerGen != s.gen {
		// A transition already happened since this timer was armed.
		return
	}
	if !DueForAutoAdvance(s.room, time.Now()) {
		s.armTimer()
		return
	}
	if err := s.advance(); err != nil {
		log.Printf("room %s: timed advance failed: %v", s.room.ID, err)
		// Retry shortly rather than leaving the stage stuck.
		s.timerGen = s.gen
		s.timer.Reset(2 * time.Second)
	}
}

func (s *roomSession) armTimer() {
	if !s.timer.Stop() {
		select {
		case <-s.timer.C:
		default:
		}
	}
	s.timerGen = s.gen
	spec, ok := StageSpecFor(s.room.Stage)
	if !ok || spec.Duration == 0 {
		return
	}
	rem := StageRemaining(s.room, time.Now())
	if rem <= 0 {
		rem = time.Millisecond
	}
	s.timer.Reset(rem)
}

// advance walks the room one step along the stage table.
func (s *roomSession) advance() error {
	next, ok := NextStage(s.room.Stage)
	if !ok {
		return nil
	}
	return s.transition(next)
}

// transition moves the room to the given stage: stage, turn owner and turn
// count change together with the moderator announcement, and the whole update
// is committed as one document write.
func (s *roomSession) transition(next models.Stage) error {
	spec, ok := StageSpecFor(next)
	if !ok {
		return fmt.Errorf("unknown stage %q", next)
	}
	s.room.Stage = next
	s.room.StageStartedAt = time.Now()
	s.room.TurnCount = 0
	s.room.TurnOwner = spec.TurnOwner
	s.appendMessage(models.MessageStageChange, models.SenderModerator, "", spec.Announcement)
	if err := s.persist(); err != nil {
		return err
	}
	s.gen++
	s.armTimer()
	s.publish(stream.EventStageChange, stream.StageChangePayload{
		Stage:        string(next),
		TurnOwner:    string(spec.TurnOwner),
		Announcement: spec.Announcement,
	})

	switch next {
	case models.StageVerdictPending:
		s.startVerdict()
	case models.StageEnded:
		if _, err := s.archive(); err != nil {
			// The archive endpoint can retry; the unique index keeps this safe.
			log.Printf("room %s: archive failed: %v", s.room.ID, err)
			break
		}
		// Nothing left to time or mutate; retire the goroutine. Later reads
		// restart a session from the stored document.
		s.c.dropSession(s.room.ID)
		s.close()
	}
	return nil
}

func (s *roomSession) join(sessionID, displayName string, stance models.Stance) (*models.Participant, bool, error) {
	if s.room.Stage == models.StageEnded {
		// The room is archived and immutable; known sessions may still read
		// it, nobody new gets a roster entry.
		if p := FindParticipant(s.room, sessionID); p != nil {
			return p, false, nil
		}
		return nil, false, ErrDebateClosed
	}
	p, isNew := JoinParticipant(s.room, sessionID, displayName, stance)
	if isNew && s.room.Stage == models.StageWaiting && HasBothDebaters(s.room) {
		// The one room-level transition presence can trigger.
		if err := s.transition(models.StageOpeningPro); err != nil {
			return nil, false, err
		}
	} else if err := s.persist(); err != nil {
		return nil, false, err
	}
	if isNew {
		s.publish(stream.EventPresence, stream.PresencePayload{
			SessionID:   p.SessionID,
			DisplayName: p.DisplayName,
			Role:        string(p.Role),
			Joined:      true,
			Count:       len(s.room.Participants),
		})
	}
	// Re-resolve: transition/persist may have reloaded the roster slice.
	p = FindParticipant(s.room, sessionID)
	if p == nil {
		return nil, false, ErrUnknownSession
	}
	return p, isNew, nil
}

func (s *roomSession) leave(sessionID string) (roomDeleted bool, err error) {
	if s.room.Stage == models.StageEnded {
		// The room is archived and immutable; leaving is a no-op.
		return false, nil
	}
	p := FindParticipant(s.room, sessionID)
	if p == nil {
		return false, nil
	}
	left := *p
	RemoveParticipant(s.room, sessionID)

	if DebaterCount(s.room) == 0 {
		// Abandoned before archival: the room and its messages go away.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.c.store.DeleteRoom(ctx, s.room.ID); err != nil && !errors.Is(err, db.ErrNotFound) {
			return false, err
		}
		s.publish(stream.EventRoomDeleted, stream.PresencePayload{
			SessionID:   left.SessionID,
			DisplayName: left.DisplayName,
			Role:        string(left.Role),
			Count:       0,
		})
		s.c.dropSession(s.room.ID)
		s.close()
		return true, nil
	}

	if err := s.persist(); err != nil {
		return false, err
	}
	s.publish(stream.EventPresence, stream.PresencePayload{
		SessionID:   left.SessionID,
		DisplayName: left.DisplayName,
		Role:        string(left.Role),
		Joined:      false,
		Count:       len(s.room.Participants),
	})
	return false, nil
}

func (s *roomSession) submitMessage(sessionID, content string) error {
	p := FindParticipant(s.room, sessionID)
	if p == nil {
		return ErrUnknownSession
	}
	if p.Role == models.RoleObserver {
		return ErrObserverCannotSpeak
	}
	switch s.room.Stage {
	case models.StageVerdictPending, models.StageEnded:
		return ErrDebateClosed
	case models.StageWaiting:
		return ErrNotYourTurn
	}

	// The timer normally fires first, but a request arriving right at the
	// boundary is judged against the clock, not the timer.
	if DueForAutoAdvance(s.room, time.Now()) {
		if err := s.advance(); err != nil {
			return err
		}
		switch s.room.Stage {
		case models.StageVerdictPending, models.StageEnded:
			return ErrDebateClosed
		}
	}
	if !CanSpeak(p.Role, s.room.Stage, s.room.TurnOwner) {
		return ErrNotYourTurn
	}

	p.LastSeenAt = time.Now()
	msg := s.appendMessage(models.MessageText, p.Role, sessionID, content)
	s.room.TurnCount++

	spec, _ := StageSpecFor(s.room.Stage)
	if spec.CrossExam {
		// Cross-examination sub-stages advance on a single message instead
		// of waiting out the timer.
		if err := s.transition(spec.Next); err != nil {
			return err
		}
		s.publishMessage(msg)
		s.maybeAnalyze(msg)
		return nil
	}

	if err := s.persist(); err != nil {
		return err
	}
	s.publishMessage(msg)
	s.maybeAnalyze(msg)
	return nil
}

func (s *roomSession) switchTurn(sessionID string) error {
	p := FindParticipant(s.room, sessionID)
	if p == nil {
		return ErrUnknownSession
	}
	if p.Role == models.RoleObserver {
		return ErrObserverCannotSpeak
	}
	switch s.room.Stage {
	case models.StageVerdictPending, models.StageEnded:
		return ErrDebateClosed
	case models.StageWaiting:
		return ErrNotYourTurn
	}

	p.LastSeenAt = time.Now()
	if DueForAutoAdvance(s.room, time.Now()) {
		// The stage was over anyway; the timed advance and the manual one
		// collapse into a single transition.
		return s.advance()
	}
	if p.Role != s.room.TurnOwner {
		return ErrNotYourTurn
	}
	return s.advance()
}

func (s *roomSession) startVerdict() {
	topic := s.room.Topic
	transcript := FormatTranscript(s.room.Messages)
	scorePro, scoreCon := s.room.ScorePro, s.room.ScoreCon
	timeout := s.c.opts.VerdictTimeout

	go func() {
		text := ""
		if s.c.verdicts != nil {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			v, err := s.c.verdicts.GenerateVerdict(ctx, topic, transcript, scorePro, scoreCon)
			if err != nil {
				log.Printf("room %s: verdict generation failed: %v", s.room.ID, err)
			} else {
				text = v
			}
		}
		if text == "" {
			text = FallbackVerdict(scorePro, scoreCon)
		}
		if err := s.do(context.Background(), func() error { return s.completeVerdict(text) }); err != nil {
			log.Printf("room %s: failed to deliver verdict: %v", s.room.ID, err)
		}
	}()
}

func (s *roomSession) completeVerdict(text string) error {
	if s.room.Stage != models.StageVerdictPending {
		return nil
	}
	msg := s.appendMessage(models.MessageVerdict, models.SenderModerator, "", text)
	if err := s.transition(models.StageEnded); err != nil {
		return err
	}
	s.publish(stream.EventVerdict, stream.VerdictPayload{
		Winner:   Winner(s.room.ScorePro, s.room.ScoreCon),
		ScorePro: s.room.ScorePro,
		ScoreCon: s.room.ScoreCon,
		Verdict:  msg.Content,
	})
	return nil
}

func (s *roomSession) maybeAnalyze(msg models.Message) {
	if s.c.opts.Analyst == nil {
		return
	}
	topic := s.room.Topic
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		finding, err := s.c.opts.Analyst.Review(ctx, topic, msg)
		if err != nil || finding == nil {
			return
		}
		s.do(context.Background(), func() error {
			s.applyFinding(msg, finding)
			return nil
		})
	}()
}

func (s *roomSession) applyFinding(orig models.Message, f *Finding) {
	if s.room.Stage == models.StageEnded {
		// Too late; the archive is immutable.
		return
	}
	side := models.SidePro
	if orig.Sender == models.RoleOpponent {
		side = models.SideCon
	}
	ApplyScore(s.room, side, f.Delta, f.Note)
	note := s.appendMessage(f.Kind, models.SenderModerator, "", f.Note)
	if err := s.persist(); err != nil {
		log.Printf("room %s: failed to persist analyst finding: %v", s.room.ID, err)
		return
	}
	s.publish(stream.EventScore, stream.ScorePayload{
		Side:     string(side),
		Delta:    f.Delta,
		ScorePro: s.room.ScorePro,
		ScoreCon: s.room.ScoreCon,
		Reason:   f.Note,
	})
	s.publishMessage(note)
}

func (s *roomSession) archive() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if rec, err := s.c.store.GetRecordByRoom(ctx, s.room.ID); err == nil {
		return rec.ID, nil
	}
	rec := BuildRecord(s.room)
	err := s.c.store.InsertRecord(ctx, rec)
	if errors.Is(err, db.ErrRecordExists) {
		existing, gerr := s.c.store.GetRecordByRoom(ctx, s.room.ID)
		if gerr != nil {
			return "", gerr
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *roomSession) appendMessage(kind models.MessageType, sender models.Role, sessionID, content string) models.Message {
	msg := models.Message{
		ID:              uuid.NewString(),
		Type:            kind,
		Sender:          sender,
		SenderSessionID: sessionID,
		Content:         content,
		Stage:           s.room.Stage,
		CreatedAt:       time.Now(),
	}
	s.room.Messages = append(s.room.Messages, msg)
	return msg
}

// persist commits the room document. On failure the in-memory state is
// reloaded from the store so a half-applied mutation never survives.
func (s *roomSession) persist() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.c.store.ReplaceRoom(ctx, s.room); err != nil {
		if current, gerr := s.c.store.GetRoom(ctx, s.room.ID); gerr == nil {
			s.room = current
		}
		return fmt.Errorf("failed to persist room %s: %w", s.room.ID, err)
	}
	return nil
}

func (s *roomSession) snapshot() *Snapshot {
	now := time.Now()
	return &Snapshot{
		Room:             s.room.Clone(),
		ServerTime:       now,
		RemainingSeconds: int(StageRemaining(s.room, now) / time.Second),
	}
}

func (s *roomSession) publishMessage(msg models.Message) {
	s.publish(stream.EventMessage, stream.MessagePayload{
		ID:      msg.ID,
		Kind:    string(msg.Type),
		Sender:  string(msg.Sender),
		Content: msg.Content,
		Stage:   string(msg.Stage),
	})
}

// publish fans an event out to spectators: through the Redis Stream when one
// is configured (other instances' consumers deliver it), otherwise straight
// to the local hub.
func (s *roomSession) publish(eventType string, payload interface{}) {
	ev, err := stream.NewEvent(eventType, payload)
	if err != nil {
		return
	}
	if stream.GetRedisClient() != nil {
		if err := stream.PublishEvent(s.room.ID, ev); err == nil {
			return
		}
	}
	if s.c.opts.Broadcaster != nil {
		s.c.opts.Broadcaster.BroadcastToRoom(s.room.ID, ev)
	}
}
