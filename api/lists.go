package api

import (
	"context"
	"net/http"

	"github.com/sanzeeb3/mailercloud-go/logger"
	"github.com/sanzeeb3/mailercloud-go/types"
)

const (
	pathListsSearch = "lists/search"
)

// Lists implements the /v1/lists API methods.
type Lists struct {
	api *apiClient
}

func NewListsApi(apiKey string, httpClient *http.Client, logger logger.Logger, opts ...Option) *Lists {
	return &Lists{
		api: newApiClient(apiKey, httpClient, logger, opts...),
	}
}

// Search returns one page of lists. A response carrying an "errors" block
// is reported as an error even when the HTTP status is 2xx.
func (c *Lists) Search(ctx context.Context, req types.ListSearchRequest) (*types.ListSearchResponse, error) {
	var res types.ListSearchResponse
	return toNilErr(&res, c.api.postJson(ctx, pathListsSearch, req, &res))
}
