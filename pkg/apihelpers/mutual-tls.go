package apihelpers

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

type CertificatePaths struct {
	ServerCertPath string `yaml:"server_cert"`
	ServerKeyPath  string `yaml:"server_key"`
	CACertPath     string `yaml:"ca_cert"`
}

func loadCertPool(caCertPath string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, err
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("no certificates found in %s", caCertPath)
	}
	return caCertPool, nil
}

// LoadTLSConfig builds the server side config: clients must present a certificate signed by the CA.
func LoadTLSConfig(paths CertificatePaths) (*tls.Config, error) {
	serverCert, err := tls.LoadX509KeyPair(paths.ServerCertPath, paths.ServerKeyPath)
	if err != nil {
		return nil, err
	}

	caCertPool, err := loadCertPool(paths.CACertPath)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{serverCert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    caCertPool,
	}, nil
}

// LoadClientTLSConfig builds the config used when calling a mutual TLS server.
// ServerCertPath and ServerKeyPath hold the client's own key pair here.
func LoadClientTLSConfig(paths CertificatePaths) (*tls.Config, error) {
	clientCert, err := tls.LoadX509KeyPair(paths.ServerCertPath, paths.ServerKeyPath)
	if err != nil {
		return nil, err
	}

	caCertPool, err := loadCertPool(paths.CACertPath)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{clientCert},
		RootCAs:      caCertPool,
	}, nil
}
