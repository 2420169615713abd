package mailercloud_go

import (
	"net/http"

	"github.com/sanzeeb3/mailercloud-go/api"
)

type Client struct {
	httpClient *http.Client

	lists    *api.Lists
	contacts *api.Contacts
}

func NewClient(apiKey string, opts ...ConfigOption) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := &http.Client{}
	httpClient.Transport = cfg.transport
	httpClient.Timeout = cfg.timeout

	apiOpts := []api.Option{
		api.WithBaseUrl(cfg.baseUrl),
		api.WithLimiter(cfg.limiter),
		api.WithRetry(cfg.retry, cfg.maxAttempts),
	}

	return &Client{
		httpClient: httpClient,
		lists:      api.NewListsApi(apiKey, httpClient, cfg.logger, apiOpts...),
		contacts:   api.NewContactsApi(apiKey, httpClient, cfg.logger, apiOpts...),
	}
}

func (c *Client) Lists() *api.Lists {
	return c.lists
}

func (c *Client) Contacts() *api.Contacts {
	return c.contacts
}
