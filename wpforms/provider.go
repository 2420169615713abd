// Package wpforms implements the WPForms provider contract for Mailercloud.
//
// A host (a WordPress bridge, a webhook sender, the bundled HTTP server)
// hands submissions to ProcessEntry, which maps form fields to a
// Mailercloud contact and forwards it for every configured connection.
// Accounts are authenticated with APIAuth and persisted in the host
// option store under "wpforms_providers".
package wpforms

import (
	"context"
	"errors"

	"github.com/sanzeeb3/mailercloud-go/types"
)

var (
	ErrAuthFailed         = errors.New("API authorization failed. Please make sure the API key is correct or contact support.")
	ErrGroupsNotSupported = errors.New("Groups do not exist.")
	ErrUnknownAccount     = errors.New("unknown provider account")
)

// Provider is the capability set WPForms expects from a marketing provider.
type Provider interface {
	Init() Info

	// ProcessEntry forwards a submission to every connection configured
	// for the provider. Delivery failures are not returned.
	ProcessEntry(ctx context.Context, fields Fields, entry Entry, form FormData, entryID int64)

	// APIAuth validates the key against the provider and stores a new
	// account, returning its id.
	APIAuth(ctx context.Context, data AuthData, formID string) (string, error)

	APILists(ctx context.Context, connectionID, accountID string) []types.List
	APIFields(connectionID, accountID, listID string) []FieldSchema
	APIGroups(connectionID, accountID, listID string) ([]Group, error)

	// RenderAuthForm returns the "add new account" HTML fragment.
	RenderAuthForm(ctx context.Context) (string, error)
}

type Info struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Version  string  `json:"version"`
	Priority float64 `json:"priority"`
	Icon     string  `json:"icon"`
}

// AuthData is what the "add new account" form posts.
type AuthData struct {
	APIKey string `json:"apikey"`
	Label  string `json:"label"`
}

// FieldSchema describes one provider field a form field can be mapped to.
// Req is "1" for required, "0" otherwise, as WPForms expects.
type FieldSchema struct {
	Name      string `json:"name"`
	FieldType string `json:"field_type"`
	Req       string `json:"req"`
	Tag       string `json:"tag"`
}

type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
