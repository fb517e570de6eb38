package relay

import (
	"sync/atomic"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/nats-io/nats.go"

	"txbridge/internal/config"
	"txbridge/internal/convert"
	"txbridge/internal/core/model"
	"txbridge/pkg/wire"
)

// BatchHandler processes the transactions of a received, unexpired packet
// batch.
type BatchHandler func(b *model.ExpiringBatch[model.VersionedTransaction])

// Subscriber consumes expiring packet batches from a NATS subject.
type Subscriber struct {
	nc      conn
	sub     *nats.Subscription
	subject string
	now     func() time.Time
	log     *logger.L

	received atomic.Uint64
	expired  atomic.Uint64
	rejected atomic.Uint64
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.NATSConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	s := newSubscriber(nc, cfg)
	s.log.Infof("connected to NATS server at %s", cfg.URL)
	return s, nil
}

func newSubscriber(nc conn, cfg config.NATSConfig) *Subscriber {
	return &Subscriber{
		nc:      nc,
		subject: cfg.BatchSubject,
		now:     time.Now,
		log:     logger.New("subscriber"),
	}
}

// Start subscribes to the batch subject and passes every live batch to
// handler. Malformed and expired batches, including those with a packet
// that does not hold a transaction, are logged and dropped.
func (s *Subscriber) Start(handler BatchHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		if b := s.handleMsg(msg.Data); b != nil {
			handler(b)
		}
	})
	if err != nil {
		return err
	}
	s.sub = sub
	s.log.Infof("subscribed to %q", s.subject)
	return nil
}

func (s *Subscriber) handleMsg(data []byte) *model.ExpiringBatch[model.VersionedTransaction] {
	s.received.Add(1)

	var wb wire.ExpiringPacketBatch
	if err := wb.Unmarshal(data); err != nil {
		s.rejected.Add(1)
		s.log.Warnf("unmarshal packet batch: %s", err)
		return nil
	}
	b, err := convert.PacketBatchFromWire(&wb)
	if err != nil {
		s.rejected.Add(1)
		s.log.Warnf("convert packet batch: %s", err)
		return nil
	}
	if b.Expired(s.now()) {
		s.expired.Add(1)
		s.log.Debugf("dropping batch expired at %s", b.ExpiresAt)
		return nil
	}
	return b
}

// Stats returns the received, expired and rejected message counts.
func (s *Subscriber) Stats() (received, expired, rejected uint64) {
	return s.received.Load(), s.expired.Load(), s.rejected.Load()
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		s.log.Info("NATS connection closed")
	}
}
