package types

import "fmt"

const (
	ListTypeRegular = 1

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListSearchRequest is the body of POST /lists/search.
type ListSearchRequest struct {
	Limit      int    `json:"limit"`
	ListType   int    `json:"list_type"`
	Page       int    `json:"page"`
	SearchName string `json:"search_name"`
	SortField  string `json:"sort_field"`
	SortOrder  string `json:"sort_order"`
}

// DefaultListSearch is the search used to validate API keys and to
// populate list dropdowns: first 10 regular lists ordered by name.
func DefaultListSearch() ListSearchRequest {
	return ListSearchRequest{
		Limit:      10,
		ListType:   ListTypeRegular,
		Page:       1,
		SearchName: "",
		SortField:  "name",
		SortOrder:  SortAsc,
	}
}

// List is one record of the "data" array, kept as plain key/value pairs
// since only id and name are relied upon.
type List map[string]any

func (l List) ID() string {
	return stringValue(l["id"])
}

func (l List) Name() string {
	return stringValue(l["name"])
}

type ListSearchResponse struct {
	Data   []List `json:"data"`
	Errors Errors `json:"errors,omitempty"`
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return fmt.Sprintf("%.0f", s)
	default:
		return fmt.Sprint(s)
	}
}
