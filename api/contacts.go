package api

import (
	"context"
	"net/http"

	"github.com/sanzeeb3/mailercloud-go/logger"
	"github.com/sanzeeb3/mailercloud-go/types"
)

const (
	pathContacts = "contacts"
)

// Contacts implements the /v1/contacts API methods.
type Contacts struct {
	api *apiClient
}

func NewContactsApi(apiKey string, httpClient *http.Client, logger logger.Logger, opts ...Option) *Contacts {
	return &Contacts{
		api: newApiClient(apiKey, httpClient, logger, opts...),
	}
}

func (c *Contacts) Create(ctx context.Context, req types.ContactRequest) (*types.ContactResponse, error) {
	var res types.ContactResponse
	return toNilErr(&res, c.api.postJson(ctx, pathContacts, req, &res))
}
