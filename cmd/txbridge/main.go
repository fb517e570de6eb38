package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/logger"

	"txbridge/internal/api"
	"txbridge/internal/codec"
	"txbridge/internal/config"
	"txbridge/internal/convert"
	"txbridge/internal/core/model"
	"txbridge/internal/relay"
	"txbridge/internal/sanitize"
	"txbridge/pkg/pcap"
)

func main() {
	// --- Command-Line Flag Parsing ---
	mode := flag.String("mode", "relay", "Operating mode: 'relay' to consume packet batches, 'replay' to publish a pcap, 'api' to serve HTTP helpers.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file.")
	pcapPath := flag.String("pcap", "", "pcap file to replay (overrides replay.pcap_path).")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *pcapPath != "" {
		cfg.Replay.PcapPath = *pcapPath
	}

	if err := os.MkdirAll(cfg.Logging.Directory, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialise(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Finalise()

	log := logger.New("main")

	// --- Mode Dispatch ---
	switch *mode {
	case "relay":
		err = runRelay(cfg, log)
	case "replay":
		err = runReplay(cfg, log)
	case "api":
		err = runAPI(cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		logger.Finalise()
		os.Exit(1)
	}
	if err != nil {
		log.Criticalf("%s mode failed: %s", *mode, err)
		logger.Finalise()
		os.Exit(1)
	}
}

func waitForSignal(log *logger.L) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("shutdown signal received, cleaning up...")
}

// runRelay subscribes to expiring packet batches and logs the transactions
// they carry.
func runRelay(cfg *config.Config, log *logger.L) error {
	sub, err := relay.NewSubscriber(cfg.NATS)
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	defer sub.Close()

	handler := func(b *model.ExpiringBatch[model.VersionedTransaction]) {
		for i := range b.Transactions {
			if sig, ok := b.Transactions[i].FirstSignature(); ok {
				log.Infof("transaction %s expires at %s", sig, b.ExpiresAt)
			}
		}
	}
	if err := sub.Start(handler); err != nil {
		return fmt.Errorf("start subscriber: %w", err)
	}

	waitForSignal(log)
	received, expired, rejected := sub.Stats()
	log.Infof("received %d batches, dropped %d expired and %d malformed", received, expired, rejected)
	return nil
}

// runReplay reads UDP datagrams from a pcap file, publishes them as packet
// batches and groups the transactions they carry into bundles.
func runReplay(cfg *config.Config, log *logger.L) error {
	if cfg.Replay.PcapPath == "" {
		return fmt.Errorf("no pcap file configured")
	}
	reader, err := pcap.NewReader(cfg.Replay.PcapPath)
	if err != nil {
		return fmt.Errorf("open pcap: %w", err)
	}
	defer reader.Close()

	pub, err := relay.NewPublisher(cfg.NATS)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	defer pub.Close()

	out := make(chan *model.Packet)
	go reader.ReadPackets(out)

	var (
		packets []model.Packet
		txs     []model.VersionedTransaction
		bundles int
	)
	flush := func() error {
		if len(packets) > 0 {
			b := model.NewExpiringBatch(time.Now(), cfg.Replay.BatchExpiryMs, packets)
			if err := pub.PublishPacketBatch(b); err != nil {
				return err
			}
			packets = nil
		}
		if len(txs) > 0 {
			id, err := pub.PublishBundle(txs)
			if err != nil {
				return err
			}
			bundles++
			log.Infof("published bundle %s", id)
			txs = nil
		}
		return nil
	}

	for p := range out {
		data, _ := p.Data()
		tx, err := codec.DecodeTransaction(data)
		if err != nil {
			log.Debugf("datagram from %s:%d is not a transaction: %s", p.Meta.Addr, p.Meta.Port, err)
			continue
		}
		packets = append(packets, *p)
		txs = append(txs, tx)
		if len(txs) == cfg.Replay.BundleSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	log.Infof("replay finished: %d bundles published, %d frames skipped", bundles, reader.Skipped())
	return nil
}

// runAPI serves the HTTP helper API until a shutdown signal arrives.
func runAPI(cfg *config.Config, log *logger.L) error {
	h := api.NewHandler(convert.NewSanitizedMapper(sanitize.NewFactory()))
	server := &http.Server{
		Addr:              cfg.API.ListenAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errs:
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	case <-sigChan:
		log.Info("API server shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("API server exited")
	return nil
}
