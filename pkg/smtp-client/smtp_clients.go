package smtp_client

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"github.com/knadh/smtppool"
)

const DEFAULT_SEND_TIMEOUT_SECONDS = 10

var ErrNoServers = errors.New("no smtp server connection in the pool")

type SmtpClients struct {
	servers        SmtpServerList
	connectionPool []serverPool
	counter        uint64
	mu             sync.Mutex
}

type serverPool struct {
	server SmtpServer
	pool   *smtppool.Pool
}

func NewSmtpClients(config SmtpServerList) (*SmtpClients, error) {
	pool, err := initConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &SmtpClients{
		servers:        config,
		connectionPool: pool,
	}, nil
}

func initConnectionPool(serverList SmtpServerList) ([]serverPool, error) {
	connectionPools := []serverPool{}
	for _, server := range serverList.Servers {
		pool, err := connectToPool(server)
		if err != nil {
			slog.Error("error setting up connection pool", slog.String("error", err.Error()), slog.String("server", server.Address()))
			continue
		}
		connectionPools = append(connectionPools, serverPool{server: server, pool: pool})
	}
	if len(connectionPools) < 1 {
		return nil, ErrNoServers
	}
	return connectionPools, nil
}

func connectToPool(server SmtpServer) (*smtppool.Pool, error) {
	var auth smtp.Auth
	if server.AuthData.Username != "" || server.AuthData.Password != "" {
		auth = smtp.PlainAuth(
			"",
			server.AuthData.Username,
			server.AuthData.Password,
			server.Host,
		)
	}

	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, err
	}

	return smtppool.New(smtppool.Opt{
		Host:            server.Host,
		Port:            port,
		MaxConns:        server.Connections,
		IdleTimeout:     server.sendTimeout(),
		PoolWaitTimeout: server.sendTimeout(),
		TLSConfig: &tls.Config{
			InsecureSkipVerify: server.InsecureSkipVerify,
			ServerName:         server.Host,
		},
		Auth: auth,
	})
}

// Close shuts down every pooled connection.
func (sc *SmtpClients) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, sp := range sc.connectionPool {
		sp.pool.Close()
	}
}

func (s SmtpServer) sendTimeout() time.Duration {
	if s.SendTimeout <= 0 {
		return DEFAULT_SEND_TIMEOUT_SECONDS * time.Second
	}
	return time.Duration(s.SendTimeout) * time.Second
}
