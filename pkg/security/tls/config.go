package tls

import (
	"crypto/tls"
	"fmt"

	"mercator-hq/texsolve/pkg/config"
)

// ParseVersion maps "1.2" or "1.3" to the crypto/tls constant. Older
// versions are not supported.
func ParseVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (want 1.2 or 1.3)", v)
	}
}

// ServerConfig builds the listener configuration for cfg, serving
// certificates from reloader. It returns nil when TLS is disabled.
func ServerConfig(cfg *config.TLSConfig, reloader *CertificateReloader) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if reloader == nil {
		return nil, fmt.Errorf("TLS is enabled but no certificate reloader was given")
	}

	minVersion, err := ParseVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:     minVersion,
		GetCertificate: reloader.GetCertificate,
	}, nil
}
