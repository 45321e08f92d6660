package stream

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoomHub forwards consumed events to spectators connected to this instance.
type RoomHub interface {
	BroadcastToRoom(roomID string, event *Event)
}

// Consumer reads a room's Redis Stream through a consumer group and forwards
// each event to the local hub.
type Consumer struct {
	rdb          *redis.Client
	consumerName string
	hub          RoomHub
	stop         chan struct{}
	stopOnce     sync.Once
}

// NewConsumer creates a Consumer, or nil when Redis is not configured.
func NewConsumer(hub RoomHub) *Consumer {
	client := GetRedisClient()
	if client == nil {
		return nil
	}

	hostname, _ := os.Hostname()
	return &Consumer{
		rdb:          client,
		consumerName: fmt.Sprintf("consumer-%s-%d", hostname, os.Getpid()),
		hub:          hub,
		stop:         make(chan struct{}),
	}
}

// Stop terminates the consume loop. Safe to call more than once and on nil.
func (c *Consumer) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
}

// Start begins consuming events for a room in a background goroutine.
func (c *Consumer) Start(roomID string) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}

	key := streamKey(roomID)
	group := fmt.Sprintf("room:%s:group", roomID)

	// Create consumer group if it doesn't exist
	err := c.rdb.XGroupCreateMkStream(ctx, key, group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		// Continue anyway, group might already exist
	}

	go c.consumeLoop(roomID, key, group)
	return nil
}

func (c *Consumer) consumeLoop(roomID, key, group string) {
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		// Block is bounded so the stop channel is rechecked every second.
		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: c.consumerName,
			Streams:  []string{key, ">"},
			Count:    100,
			Block:    time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				if err := c.processMessage(roomID, message); err != nil {
					continue
				}
				c.rdb.XAck(ctx, key, group, message.ID)
			}
		}
	}
}

func (c *Consumer) processMessage(roomID string, message redis.XMessage) error {
	eventData, ok := message.Values["data"].(string)
	if !ok {
		return fmt.Errorf("invalid message format: missing data field")
	}

	event, err := UnmarshalEvent(eventData)
	if err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	c.hub.BroadcastToRoom(roomID, event)
	return nil
}
