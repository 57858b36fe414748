package tls

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
	"go.uber.org/zap"
)

// TLSConfig controls whether the webhook listener terminates TLS itself.
// The Messenger platform only delivers events to HTTPS endpoints, so this
// is enabled whenever the service is not fronted by a terminating proxy.
type TLSConfig struct {
	Enabled    bool   `envconfig:"TLS_ENABLED" default:"false"`
	SocketPath string `envconfig:"SPIRE_SOCKET_PATH" default:"unix:///run/spire/sockets/agent.sock"`
}

var x509Source *workloadapi.X509Source

// LoadTLSConfig builds a server TLS config backed by the SPIRE Workload API.
// Returns (nil, nil) when TLS is disabled.
func LoadTLSConfig(cfg *TLSConfig, logger *zap.Logger) (*tls.Config, error) {
	if !cfg.Enabled {
		logger.Info("TLS is disabled")
		return nil, nil
	}

	source, err := workloadapi.NewX509Source(
		context.Background(),
		workloadapi.WithClientOptions(
			workloadapi.WithAddr(cfg.SocketPath),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create X509Source: %w", err)
	}
	x509Source = source

	tlsConfig := tlsconfig.TLSServerConfig(source)
	tlsConfig.MinVersion = tls.VersionTLS12

	logger.Info("SPIRE TLS configuration loaded",
		zap.String("socket_path", cfg.SocketPath))

	return tlsConfig, nil
}

func Cleanup() {
	if x509Source != nil {
		x509Source.Close()
	}
}
