package routes

import (
	"errors"
	"net/http"

	"podium/db"
	"podium/middlewares"
	"podium/models"
	"podium/services"

	"github.com/gin-gonic/gin"
)

var coordinator *services.Coordinator
var store db.Store

// SetupRoomRoutes wires the debate room API onto the router.
func SetupRoomRoutes(router *gin.Engine, c *services.Coordinator, s db.Store) {
	coordinator = c
	store = s

	router.POST("/rooms", CreateRoomHandler)
	router.GET("/rooms", ListRoomsHandler)
	router.GET("/rooms/:id", GetRoomStateHandler)
	router.GET("/rooms/:id/record", GetRoomRecordHandler)
	router.GET("/records/:id", GetRecordHandler)
	router.POST("/rooms/:id/archive", ArchiveRoomHandler)

	session := router.Group("/", middlewares.RequireSession())
	{
		session.POST("/rooms/:id/join", JoinRoomHandler)
		session.POST("/rooms/:id/heartbeat", HeartbeatHandler)
		session.POST("/rooms/:id/leave", LeaveRoomHandler)
		session.POST("/rooms/:id/messages", SubmitMessageHandler)
		session.POST("/rooms/:id/skip", SwitchTurnHandler)
	}
}

// errorStatus maps the orchestrator's error taxonomy onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotYourTurn), errors.Is(err, services.ErrObserverCannotSpeak):
		return http.StatusForbidden
	case errors.Is(err, services.ErrDebateClosed):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnknownSession):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(middlewares.SessionKey)
}

// snapshotBody renders the authoritative room view. Online flags are derived
// server-side so pollers never interpret lastSeenAt with their own clocks.
func snapshotBody(snap *services.Snapshot) gin.H {
	online := make(map[string]bool, len(snap.Room.Participants))
	for i := range snap.Room.Participants {
		p := &snap.Room.Participants[i]
		online[p.SessionID] = services.Online(p, snap.ServerTime, coordinator.HeartbeatWindow())
	}
	return gin.H{
		"room":             snap.Room,
		"serverTime":       snap.ServerTime,
		"remainingSeconds": snap.RemainingSeconds,
		"online":           online,
	}
}

// CreateRoomHandler handles POST /rooms and creates a new debate room.
func CreateRoomHandler(c *gin.Context) {
	type createRoomInput struct {
		Topic    string              `json:"topic"`
		Settings models.RoomSettings `json:"settings"`
	}

	var input createRoomInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	room, err := coordinator.CreateRoom(c.Request.Context(), input.Topic, input.Settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// ListRoomsHandler handles GET /rooms and returns all rooms.
func ListRoomsHandler(c *gin.Context) {
	rooms, err := coordinator.ListRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoomStateHandler handles GET /rooms/:id, the 1 Hz polling endpoint.
func GetRoomStateHandler(c *gin.Context) {
	snap, err := coordinator.RoomState(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotBody(snap))
}

// JoinRoomHandler handles POST /rooms/:id/join. Idempotent per session id.
func JoinRoomHandler(c *gin.Context) {
	type joinInput struct {
		DisplayName string        `json:"displayName"`
		Stance      models.Stance `json:"stance"`
	}

	var input joinInput
	if err := c.ShouldBindJSON(&input); err != nil || input.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	snap, role, err := coordinator.Join(c.Request.Context(), c.Param("id"), sessionID(c), input.DisplayName, input.Stance)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	body := snapshotBody(snap)
	body["role"] = role
	c.JSON(http.StatusOK, body)
}

// HeartbeatHandler handles POST /rooms/:id/heartbeat, called every 5s.
func HeartbeatHandler(c *gin.Context) {
	err := coordinator.Heartbeat(c.Request.Context(), c.Param("id"), sessionID(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// LeaveRoomHandler handles POST /rooms/:id/leave. Safe for fire-and-forget
// transports like a page-unload beacon.
func LeaveRoomHandler(c *gin.Context) {
	roomDeleted, err := coordinator.Leave(c.Request.Context(), c.Param("id"), sessionID(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomDeleted": roomDeleted})
}

// SubmitMessageHandler handles POST /rooms/:id/messages.
func SubmitMessageHandler(c *gin.Context) {
	type messageInput struct {
		Content string `json:"content"`
	}

	var input messageInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	snap, err := coordinator.SubmitMessage(c.Request.Context(), c.Param("id"), sessionID(c), input.Content)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotBody(snap))
}

// SwitchTurnHandler handles POST /rooms/:id/skip; the current turn owner ends
// their turn early.
func SwitchTurnHandler(c *gin.Context) {
	snap, err := coordinator.SwitchTurn(c.Request.Context(), c.Param("id"), sessionID(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotBody(snap))
}

// ArchiveRoomHandler handles POST /rooms/:id/archive. Idempotent; archiving
// an already-archived room returns the existing record id.
func ArchiveRoomHandler(c *gin.Context) {
	recordID, err := coordinator.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordId": recordID})
}

// GetRoomRecordHandler handles GET /rooms/:id/record.
func GetRoomRecordHandler(c *gin.Context) {
	record, err := store.GetRecordByRoom(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching record"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetRecordHandler handles GET /records/:id.
func GetRecordHandler(c *gin.Context) {
	record, err := store.GetRecord(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching record"})
		return
	}
	c.JSON(http.StatusOK, record)
}
