package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLSConfig covers registries served over https, including mutual TLS.
type TLSConfig struct {
	SkipVerify bool   `yaml:"skip_verify" mapstructure:"skip_verify"`
	CAFile     string `yaml:"ca_file" mapstructure:"ca_file"`
	CertFile   string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile    string `yaml:"key_file" mapstructure:"key_file"`
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
}

// Build returns nil, nil when c is nil or sets nothing, leaving the
// transport's defaults in place.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil || *c == (TLSConfig{}) {
		return nil, nil
	}
	out := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in for dev registries
	}
	if c.CAFile != "" {
		pool, err := loadCertPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		out.RootCAs = pool
	}
	if c.CertFile != "" {
		pair, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("httpclient/tls: client key pair: %w", err)
		}
		out.Certificates = append(out.Certificates, pair)
	}
	return out, nil
}

// Validate requires cert_file and key_file to come as a pair.
func (c *TLSConfig) Validate() error {
	if c != nil && (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("httpclient/tls: cert_file and key_file must be set together")
	}
	return nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("httpclient/tls: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("httpclient/tls: no certificates in %s", path)
	}
	return pool, nil
}
