package relay

import (
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/nats-io/nats.go"

	"txbridge/internal/config"
	"txbridge/internal/convert"
	"txbridge/internal/core/model"
)

// conn is the subset of *nats.Conn the relay uses.
type conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
	Close()
}

// Publisher publishes bundles and packet batches to NATS subjects.
type Publisher struct {
	nc            conn
	bundleSubject string
	batchSubject  string
	now           func() time.Time
	log           *logger.L
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	p := newPublisher(nc, cfg)
	p.log.Infof("connected to NATS server at %s", cfg.URL)
	return p, nil
}

func newPublisher(nc conn, cfg config.NATSConfig) *Publisher {
	return &Publisher{
		nc:            nc,
		bundleSubject: cfg.BundleSubject,
		batchSubject:  cfg.BatchSubject,
		now:           time.Now,
		log:           logger.New("publisher"),
	}
}

// PublishBundle wraps txs in a BundleUuid, publishes it and returns the
// bundle id.
func (p *Publisher) PublishBundle(txs []model.VersionedTransaction) (string, error) {
	bu, err := convert.BuildBundleUUID(txs, p.now())
	if err != nil {
		return "", err
	}
	data, err := bu.Marshal()
	if err != nil {
		return "", err
	}
	if err := p.nc.Publish(p.bundleSubject, data); err != nil {
		return "", fmt.Errorf("publish bundle %s: %w", bu.Uuid, err)
	}
	p.log.Debugf("published bundle %s with %d transactions", bu.Uuid, len(txs))
	return bu.Uuid, nil
}

// PublishPacketBatch publishes an expiring packet batch.
func (p *Publisher) PublishPacketBatch(b *model.ExpiringBatch[model.Packet]) error {
	wb, err := convert.PacketBatchToWire(b)
	if err != nil {
		return err
	}
	data, err := wb.Marshal()
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.batchSubject, data); err != nil {
		return fmt.Errorf("publish packet batch: %w", err)
	}
	p.log.Debugf("published batch of %d packets", len(b.Transactions))
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.log.Info("NATS connection drained and closed")
	}
}
