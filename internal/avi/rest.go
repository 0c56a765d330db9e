package avi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/akl7777777/avi-intl/internal/model"
)

const (
	restPath = "/avi/api.svc/json/GetAddressInfo"

	// DefaultRESTTimeout bounds each REST attempt.
	DefaultRESTTimeout = 10 * time.Second
)

// RESTTransport calls the JSON GetAddressInfo endpoint with an HTTP GET.
type RESTTransport struct {
	httpClient *http.Client
}

// NewRESTTransport returns a transport whose HTTP client gives up after
// timeout, DefaultRESTTimeout when zero.
func NewRESTTransport(timeout time.Duration) *RESTTransport {
	if timeout <= 0 {
		timeout = DefaultRESTTimeout
	}
	return &RESTTransport{httpClient: &http.Client{Timeout: timeout}}
}

func (t *RESTTransport) Name() string { return "rest" }

// GetAddressInfo sends req to host and decodes the JSON body.
func (t *RESTTransport) GetAddressInfo(ctx context.Context, host string, req model.AddressRequest) (*model.AddressInfoResponse, error) {
	var resp model.AddressInfoResponse
	if err := t.fetchJSON(ctx, host+restPath+"?"+queryParams(req).Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func queryParams(req model.AddressRequest) url.Values {
	q := url.Values{}
	for _, f := range req.Fields() {
		q.Set(f.Name, f.Value)
	}
	return q
}

func (t *RESTTransport) fetchJSON(ctx context.Context, u string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = redactURL(uerr.URL)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redactURL masks the license key so transport errors are safe to log.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("LicenseKey") == "" {
		return raw
	}
	q.Set("LicenseKey", "****")
	u.RawQuery = q.Encode()
	return u.String()
}
