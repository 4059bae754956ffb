package pipeline

import (
	"log/slog"

	"github.com/spacesedan/sstflow/config"
	"github.com/spacesedan/sstflow/internal/artifacts"
	"github.com/spacesedan/sstflow/internal/clients"
)

// OpenCache picks the registry for this invocation: Valkey when an address is
// configured, otherwise sidecar files in the work directory.
func OpenCache(s config.Settings) (*artifacts.Cache, error) {
	var registry artifacts.Registry = artifacts.NewFileRegistry(s.WorkDir)

	if s.ValkeyAddress != "" {
		vc, err := clients.InitValkey(clients.ValkeyOptions{
			Address:  s.ValkeyAddress,
			Password: s.ValkeyPassword,
			TLS:      s.ValkeyTLS,
		})
		if err != nil {
			return nil, err
		}
		registry = artifacts.NewSharedRegistry(vc, s.WorkDir)
		slog.Info("[Pipeline] Using shared artifact registry",
			slog.String("address", s.ValkeyAddress))
	}

	return artifacts.NewCache(registry, artifacts.WithForce(s.ForceRebuild)), nil
}
