package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/conductor-oer/conductor-backend/pkg/apihelpers"
)

const DEFAULT_TIMEOUT = 30 * time.Second

type ClientConfig struct {
	RootURL              string
	APIKey               string
	BearerToken          string
	MTLSCertificatePaths *apihelpers.CertificatePaths
	Timeout              time.Duration
}

// StatusError is returned for responses outside the 2xx range. Body holds the
// decoded JSON error payload when the server sent one.
type StatusError struct {
	StatusCode int
	Body       map[string]interface{}
}

func (e *StatusError) Error() string {
	if msg, ok := e.Body["error"].(string); ok && msg != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// RunHTTPcall posts payload as JSON and decodes the response into a map.
func (cConfig ClientConfig) RunHTTPcall(pathname string, payload interface{}) (map[string]interface{}, error) {
	var res map[string]interface{}
	err := cConfig.Do(context.Background(), http.MethodPost, pathname, payload, &res)
	return res, err
}

// Do sends payload (if not nil) as JSON and decodes the JSON response into out
// (if not nil). Non 2xx responses return a *StatusError.
func (cConfig ClientConfig) Do(ctx context.Context, method string, pathname string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		json_data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(json_data)
	}

	client, err := cConfig.newClient()
	if err != nil {
		slog.Error("Error creating transport with mTLS config", slog.String("error", err.Error()))
		return err
	}

	url := cConfig.RootURL + pathname
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		slog.Error("unexpected error in preparing http request", slog.String("error", err.Error()))
		return err
	}
	if cConfig.APIKey != "" {
		req.Header.Set("Api-Key", cConfig.APIKey)
	}
	if cConfig.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+cConfig.BearerToken)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		slog.Error("unexpected error in http call", slog.String("url", url), slog.String("error", err.Error()))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&statusErr.Body); err != nil {
			slog.Debug("error response without json body", slog.String("url", url), slog.Int("status", resp.StatusCode))
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Error("Error decoding response", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (cConfig ClientConfig) newClient() (*http.Client, error) {
	timeout := cConfig.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	client := &http.Client{
		Timeout: timeout,
	}

	transport, err := getTransportWithMTLSConfig(cConfig.MTLSCertificatePaths)
	if err != nil {
		return nil, err
	}
	if transport != nil {
		client.Transport = transport
	}
	return client, nil
}

func getTransportWithMTLSConfig(mTLSCertificatePaths *apihelpers.CertificatePaths) (*http.Transport, error) {
	if mTLSCertificatePaths == nil {
		return nil, nil
	}

	tlsConfig, err := apihelpers.LoadClientTLSConfig(*mTLSCertificatePaths)
	if err != nil {
		return nil, err
	}

	return &http.Transport{
		TLSClientConfig: tlsConfig,
	}, nil
}
