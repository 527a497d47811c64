package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/telemetry"
)

// DefaultTargets returns the fixed sink set in its canonical order.
func DefaultTargets(localDir string, logger *telemetry.Logger) []Target {
	return []Target{
		newEthereumSink(logger),
		newSolanaSink(logger),
		newAWSSink(logger),
		newLocalSink(localDir, logger),
	}
}

// ChainClient announces an artifact to a chain endpoint. Real chain
// submission is out of scope; the announcement is the observable effect.
type ChainClient interface {
	Announce(ctx context.Context, endpoint, id string, payload []byte) error
}

type logAnnouncer struct {
	logger *telemetry.Logger
}

func (a logAnnouncer) Announce(_ context.Context, endpoint, id string, payload []byte) error {
	a.logger.Infof("announced %d byte artifact for %s via %s", len(payload), id, endpoint)
	return nil
}

type ethereumSink struct {
	client ChainClient
	logger *telemetry.Logger
}

func newEthereumSink(logger *telemetry.Logger) *ethereumSink {
	log := logger.WithSink("ethereum")
	return &ethereumSink{client: logAnnouncer{logger: log}, logger: log}
}

func (s *ethereumSink) Name() string { return "ethereum" }

func (s *ethereumSink) Validate(config map[string]string) error {
	for _, key := range []string{"api_key", "contract"} {
		if config[key] == "" {
			return errdefs.NewDeployConfigMissing("ethereum", key)
		}
	}
	return nil
}

func (s *ethereumSink) Deploy(ctx context.Context, payload []byte, config map[string]string) error {
	endpoint := config["endpoint"]
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://mainnet.infura.io/v3/%s", config["api_key"])
	}
	if err := s.client.Announce(ctx, endpoint, config["contract"], payload); err != nil {
		return errdefs.NewDeployFailed("ethereum", err)
	}
	s.logger.Infof("deployed to ethereum contract %s", config["contract"])
	return nil
}

type solanaSink struct {
	client ChainClient
	logger *telemetry.Logger
}

func newSolanaSink(logger *telemetry.Logger) *solanaSink {
	log := logger.WithSink("solana")
	return &solanaSink{client: logAnnouncer{logger: log}, logger: log}
}

func (s *solanaSink) Name() string { return "solana" }

func (s *solanaSink) Validate(config map[string]string) error {
	for _, key := range []string{"rpc_url", "program_id"} {
		if config[key] == "" {
			return errdefs.NewDeployConfigMissing("solana", key)
		}
	}
	return nil
}

func (s *solanaSink) Deploy(ctx context.Context, payload []byte, config map[string]string) error {
	if err := s.client.Announce(ctx, config["rpc_url"], config["program_id"], payload); err != nil {
		return errdefs.NewDeployFailed("solana", err)
	}
	s.logger.Infof("deployed to solana program %s", config["program_id"])
	return nil
}

type localSink struct {
	dir    string
	now    func() time.Time
	logger *telemetry.Logger
}

func newLocalSink(dir string, logger *telemetry.Logger) *localSink {
	return &localSink{dir: dir, now: time.Now, logger: logger.WithSink("local")}
}

func (s *localSink) Name() string { return "local" }

func (s *localSink) Validate(map[string]string) error { return nil }

// Deploy writes the payload to a timestamp-derived file in the sink's
// directory.
func (s *localSink) Deploy(_ context.Context, payload []byte, _ map[string]string) error {
	path := filepath.Join(s.dir, fmt.Sprintf("rift_power_%d", s.now().Unix()))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errdefs.NewDeployFailed("local", err)
	}
	s.logger.Infof("deployed locally: %s", path)
	return nil
}
