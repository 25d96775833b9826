// Package tls serves the HTTP API over TLS.
//
// Certificates are read from PEM files and polled for changes, so a renewed
// certificate is served without restarting:
//
//	reloader := tls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)
//	if err := reloader.Start(ctx); err != nil {
//	    return err
//	}
//	tlsConfig, err := tls.ServerConfig(cfg, reloader)
//
// A reload that fails (unreadable files, mismatched key, expired
// certificate) keeps the previous certificate in service.
package tls
