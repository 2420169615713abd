package wpforms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sanzeeb3/mailercloud-go/store"
)

// OptionProviders is the option every WPForms provider keeps its accounts
// in, keyed by provider slug and then account id.
const OptionProviders = "wpforms_providers"

// Account is a stored provider credential.
type Account struct {
	API   string `json:"api"`
	Label string `json:"label"`
	Date  int64  `json:"date"`
}

// Accounts reads and writes one provider's slice of the option.
// Entries of other providers are kept as raw JSON and written back
// untouched.
type Accounts struct {
	store store.Store
	slug  string
	now   func() time.Time
	newID func() string
}

func NewAccounts(s store.Store, slug string) *Accounts {
	return &Accounts{
		store: s,
		slug:  slug,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (a *Accounts) load(ctx context.Context) (map[string]json.RawMessage, map[string]Account, error) {
	all := map[string]json.RawMessage{}
	if _, err := store.GetJSON(ctx, a.store, OptionProviders, &all); err != nil {
		return nil, nil, err
	}
	if all == nil {
		all = map[string]json.RawMessage{}
	}

	accounts := map[string]Account{}
	if raw, ok := all[a.slug]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &accounts); err != nil {
			return nil, nil, fmt.Errorf("decode %s accounts: %w", a.slug, err)
		}
	}
	return all, accounts, nil
}

func (a *Accounts) save(ctx context.Context, all map[string]json.RawMessage, accounts map[string]Account) error {
	if len(accounts) == 0 {
		delete(all, a.slug)
	} else {
		raw, err := json.Marshal(accounts)
		if err != nil {
			return fmt.Errorf("encode %s accounts: %w", a.slug, err)
		}
		all[a.slug] = raw
	}
	return store.SetJSON(ctx, a.store, OptionProviders, all)
}

// List returns every account of the provider, keyed by id.
func (a *Accounts) List(ctx context.Context) (map[string]Account, error) {
	_, accounts, err := a.load(ctx)
	return accounts, err
}

func (a *Accounts) Get(ctx context.Context, id string) (Account, bool, error) {
	_, accounts, err := a.load(ctx)
	if err != nil {
		return Account{}, false, err
	}
	acct, ok := accounts[id]
	return acct, ok, nil
}

// Add stores acct under a fresh id and returns the id.
// Date is set to the current time.
func (a *Accounts) Add(ctx context.Context, acct Account) (string, error) {
	all, accounts, err := a.load(ctx)
	if err != nil {
		return "", err
	}

	id := a.newID()
	for tries := 0; ; tries++ {
		if _, taken := accounts[id]; !taken {
			break
		}
		if tries >= 10 {
			return "", fmt.Errorf("could not generate an unused account id")
		}
		id = a.newID()
	}

	acct.Date = a.now().Unix()
	accounts[id] = acct
	if err := a.save(ctx, all, accounts); err != nil {
		return "", err
	}
	return id, nil
}

// Remove deletes the account. It reports whether the account existed.
func (a *Accounts) Remove(ctx context.Context, id string) (bool, error) {
	all, accounts, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := accounts[id]; !ok {
		return false, nil
	}
	delete(accounts, id)
	return true, a.save(ctx, all, accounts)
}
