package heyreach

import (
	"context"

	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// EndpointConfig is the resolved set of request parameters for the
// account directory. It is an immutable value: discovery runs once and
// every later call uses the same config, so concurrent requests never
// observe a half-updated endpoint.
type EndpointConfig struct {
	AccountsPath string
	Accept       string
}

// accountPathCandidates are the known spellings of the account list
// endpoint across HeyReach API versions, in preference order. The
// first one is the currently documented path.
var accountPathCandidates = []string{
	"api/public/li_account/GetAll",
	"api/public/linkedin-account/GetAll",
	"api/public/linkedinAccount/GetAll",
	"api/v1/accounts",
	"api/public/accounts",
}

// acceptCandidates covers API versions that only answer when the
// client accepts text/plain.
var acceptCandidates = []string{
	"application/json",
	"text/plain",
}

func defaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		AccountsPath: accountPathCandidates[0],
		Accept:       acceptCandidates[0],
	}
}

// endpointConfig returns the discovered endpoint configuration,
// probing the candidates on first use.
func (c *Client) endpointConfig(ctx context.Context) EndpointConfig {
	c.discoverOnce.Do(func() {
		c.endpoints = c.discoverEndpoints(ctx)
	})
	return c.endpoints
}

// discoverEndpoints probes each candidate path and accept header until
// one returns a parseable, non-empty account list. If nothing answers,
// the documented default is returned so later calls still have a
// target (they will surface their own errors).
func (c *Client) discoverEndpoints(ctx context.Context) EndpointConfig {
	probe := listRequest{Offset: 0, Limit: 1}

	for _, accept := range acceptCandidates {
		for _, path := range accountPathCandidates {
			body, err := c.doRequest(ctx, path, accept, probe)
			if err != nil {
				logger.Debug("heyreach: discovery probe failed", "path", path, "accept", accept, "error", err.Error())
				continue
			}
			payload, err := decodePayload(body)
			if err != nil || payload == nil {
				continue
			}
			if len(extractItems(payload)) == 0 {
				continue
			}

			logger.Info("heyreach: discovered account endpoint", "path", path, "accept", accept)
			return EndpointConfig{AccountsPath: path, Accept: accept}
		}
	}

	logger.Warn("heyreach: endpoint discovery found no working account endpoint, using default")
	return defaultEndpointConfig()
}
