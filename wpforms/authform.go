package wpforms

import (
	"context"
	"html/template"
	"strings"
)

var authFormTmpl = template.Must(template.New("auth").Parse(
	`<div class="wpforms-provider-account-add {{.Class}} wpforms-connection-block">` +
		`<h4>Add New Account</h4>` +
		`<input type="text" data-name="label" placeholder="{{.Name}} Account Nickname" class="wpforms-required">` +
		`<input type="text" data-name="apikey" placeholder="{{.Name}} API Key" class="wpforms-required">` +
		`<button data-provider="{{.Slug}}">Connect</button>` +
		`</div>`,
))

type authFormData struct {
	Class string
	Name  string
	Slug  string
}

// RenderAuthForm returns the "add new account" fragment. It is hidden
// once the provider has at least one account.
func (m *Mailercloud) RenderAuthForm(ctx context.Context) (string, error) {
	accounts, err := m.accounts.List(ctx)
	if err != nil {
		return "", err
	}

	data := authFormData{Name: m.info.Name, Slug: m.info.Slug}
	if len(accounts) > 0 {
		data.Class = "hidden"
	}

	var sb strings.Builder
	if err := authFormTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
