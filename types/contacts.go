package types

// ContactRequest is the body of POST /contacts.
// Field order is the wire order.
type ContactRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	ListID   string `json:"list_id"`
}

type ContactResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Errors  Errors `json:"errors,omitempty"`
}
