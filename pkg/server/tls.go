package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"miyabi-hq/statusproxy/pkg/config"
)

// expiryWarning is how close to NotAfter a certificate starts being logged
// as expiring.
const expiryWarning = 30 * 24 * time.Hour

// configureTLS loads the key pair and builds the listener's TLS settings.
// Certificates are served through the returned reloader so renewed files
// can be picked up without a restart.
func configureTLS(cfg *config.TLSConfig) (*tls.Config, *certReloader, error) {
	if cfg.CertFile == "" {
		return nil, nil, fmt.Errorf("TLS cert file not specified")
	}
	if cfg.KeyFile == "" {
		return nil, nil, fmt.Errorf("TLS key file not specified")
	}

	certs := newCertReloader(cfg.CertFile, cfg.KeyFile)
	if err := certs.reload(); err != nil {
		return nil, nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}

	minVersion := uint16(tls.VersionTLS12)
	if cfg.MinVersion == "1.3" {
		minVersion = tls.VersionTLS13
	}

	return &tls.Config{
		MinVersion:     minVersion,
		GetCertificate: certs.getCertificate,
		NextProtos:     []string{"h2", "http/1.1"},
	}, certs, nil
}

func newTLSListener(ln net.Listener, cfg *tls.Config) net.Listener {
	return tls.NewListener(ln, cfg)
}

// certReloader holds the current key pair and reloads it when either file
// changes on disk.
type certReloader struct {
	certFile string
	keyFile  string

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

func newCertReloader(certFile, keyFile string) *certReloader {
	return &certReloader{certFile: certFile, keyFile: keyFile}
}

func (r *certReloader) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// watch polls the files every interval until ctx ends. A failed reload
// keeps the previous certificate.
func (r *certReloader) watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.changed() {
				continue
			}
			if err := r.reload(); err != nil {
				slog.Error("failed to reload certificate, keeping previous one",
					"error", err,
					"cert_file", r.certFile,
					"key_file", r.keyFile,
				)
				continue
			}
			slog.Info("certificate reloaded", "cert_file", r.certFile)
		}
	}
}

func (r *certReloader) changed() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return certInfo.ModTime().After(r.certTime) || keyInfo.ModTime().After(r.keyTime)
}

func (r *certReloader) reload() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return err
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return err
	}

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}
	now := time.Now()
	if now.After(leaf.NotAfter) {
		return fmt.Errorf("certificate expired on %s", leaf.NotAfter.Format(time.RFC3339))
	}
	if leaf.NotAfter.Sub(now) < expiryWarning {
		slog.Warn("certificate expiring soon",
			"subject", leaf.Subject.CommonName,
			"expires_at", leaf.NotAfter.Format(time.RFC3339),
		)
	}
	cert.Leaf = leaf

	r.mu.Lock()
	r.cert = &cert
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()
	return nil
}
