package broker

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var (
	producerMu sync.RWMutex
	producer   *nats.Conn
)

// InitProducer connects to NATS so change events and reminder notifications
// are mirrored to external subscribers. An empty URL disables the mirror; the
// application runs fully without it.
func InitProducer(url string) error {
	if url == "" {
		return nil
	}

	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return err
	}

	producerMu.Lock()
	producer = nc
	producerMu.Unlock()

	zap.L().Info("NATS producer initialized", zap.String("url", url))
	return nil
}

func CloseProducer() {
	producerMu.Lock()
	defer producerMu.Unlock()
	if producer != nil {
		producer.Drain()
		producer = nil
	}
}

func mirrorToNats(topic string, event Event) {
	producerMu.RLock()
	nc := producer
	producerMu.RUnlock()
	if nc == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("failed to marshal event", zap.Error(err))
		return
	}

	// Subject carries the entity id so consumers can key dedupe on it.
	subject := topic + "." + strconv.FormatInt(event.EntityID, 10)
	if err := nc.Publish(subject, data); err != nil {
		zap.L().Error("failed to publish event to NATS",
			zap.String("subject", subject), zap.Error(err))
	}
}
