package stream

import "testing"

func TestConsumerStop(t *testing.T) {
	c := &Consumer{stop: make(chan struct{})}

	select {
	case <-c.stop:
		t.Fatal("Stop channel closed before Stop")
	default:
	}

	c.Stop()
	select {
	case <-c.stop:
	default:
		t.Error("Stop did not close the stop channel")
	}

	// Stop is idempotent and safe on a nil consumer, mirroring NewConsumer
	// returning nil without Redis.
	c.Stop()
	var nilConsumer *Consumer
	nilConsumer.Stop()
}
