package wpforms

import (
	"context"
	"maps"
	"slices"
	"strings"

	mailercloud "github.com/sanzeeb3/mailercloud-go"
	"github.com/sanzeeb3/mailercloud-go/logger"
	"github.com/sanzeeb3/mailercloud-go/metrics"
	"github.com/sanzeeb3/mailercloud-go/store"
	"github.com/sanzeeb3/mailercloud-go/types"
)

const (
	Slug    = "mailercloud"
	Version = "1.0.0"

	titleConditionalStop = "Mailercloud Subscription stopped by conditional logic"
	titleAPIError        = "Mailercloud API error"
)

// Mailercloud is the WPForms provider for Mailercloud.
type Mailercloud struct {
	info      Info
	accounts  *Accounts
	evaluator Evaluator
	entryLog  EntryLogger
	logger    logger.Logger
	metrics   metrics.Recorder

	clientOpts []mailercloud.ConfigOption
	newClient  func(apiKey string) *mailercloud.Client
}

var _ Provider = (*Mailercloud)(nil)

type Option func(m *Mailercloud)

// WithEvaluator replaces the built-in conditional rule evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(m *Mailercloud) {
		m.evaluator = e
	}
}

func WithEntryLogger(l EntryLogger) Option {
	return func(m *Mailercloud) {
		m.entryLog = l
	}
}

func WithLogger(l logger.Logger) Option {
	return func(m *Mailercloud) {
		m.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(m *Mailercloud) {
		m.metrics = r
	}
}

// WithClientOptions configures every Mailercloud client the provider
// creates (one per account key).
func WithClientOptions(opts ...mailercloud.ConfigOption) Option {
	return func(m *Mailercloud) {
		m.clientOpts = append(m.clientOpts, opts...)
	}
}

// WithIcon sets the icon URL reported by Init.
func WithIcon(url string) Option {
	return func(m *Mailercloud) {
		m.info.Icon = url
	}
}

// NewMailercloud returns the provider storing its accounts in s.
func NewMailercloud(s store.Store, opts ...Option) *Mailercloud {
	m := &Mailercloud{
		info: Info{
			Name:     "Mailercloud",
			Slug:     Slug,
			Version:  Version,
			Priority: 0.5,
			Icon:     "assets/mailercloud.png",
		},
		accounts:  NewAccounts(s, Slug),
		evaluator: RuleEvaluator{},
		logger:    logger.Noop{},
		metrics:   metrics.Noop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.entryLog == nil {
		m.entryLog = NewEntryLog(m.logger)
	}
	m.newClient = func(apiKey string) *mailercloud.Client {
		return mailercloud.NewClient(apiKey, m.clientOpts...)
	}
	return m
}

func (m *Mailercloud) Init() Info {
	return m.info
}

// Accounts gives access to the stored credentials of this provider.
func (m *Mailercloud) Accounts() *Accounts {
	return m.accounts
}

func (m *Mailercloud) ProcessEntry(ctx context.Context, fields Fields, entry Entry, form FormData, entryID int64) {
	connections := form.Providers[m.info.Slug]
	if len(connections) == 0 {
		return
	}

	ids := slices.Sorted(maps.Keys(connections))
	for i, id := range ids {
		if ctx.Err() != nil {
			m.logger.Warnf("mailercloud: entry %d: %v, %d connection(s) not processed", entryID, ctx.Err(), len(ids)-i)
			return
		}
		m.processConnection(ctx, fields, entry, form, entryID, connections[id])
	}
}

func (m *Mailercloud) processConnection(ctx context.Context, fields Fields, entry Entry, form FormData, entryID int64, conn Connection) {
	email := fields.resolve(conn.Fields["email"], "value")
	if email == "" {
		m.metrics.SubmissionSkipped(metrics.SkipMissingEmail)
		return
	}

	if !m.evaluator.Evaluate(fields, entry, form, conn) {
		m.entryLog.Log(titleConditionalStop, fields, LogMeta{
			Types:  []string{"provider", "conditional_logic"},
			Parent: entryID,
			FormID: form.ID.String(),
		})
		m.metrics.SubmissionSkipped(metrics.SkipConditionalLogic)
		return
	}

	acct, ok, err := m.accounts.Get(ctx, conn.AccountID.String())
	if err != nil || !ok {
		if err == nil {
			err = ErrUnknownAccount
		}
		m.logger.Warnf("mailercloud: entry %d: account %q: %v", entryID, conn.AccountID, err)
		m.metrics.SubmissionSkipped(metrics.SkipUnknownAccount)
		return
	}

	req := types.ContactRequest{
		Email:    email,
		Name:     fields.resolve(conn.Fields["first_name"], "first"),
		LastName: fields.resolve(conn.Fields["last_name"], "last"),
		ListID:   conn.ListID.String(),
	}
	if _, err := m.newClient(acct.API).Contacts().Create(ctx, req); err != nil {
		m.logger.Warnf("mailercloud: entry %d: add contact to list %q failed: %v", entryID, req.ListID, err)
		m.metrics.SubmissionFailed()
		return
	}
	m.logger.Debugf("mailercloud: entry %d: contact added to list %q", entryID, req.ListID)
	m.metrics.SubmissionSent()
}

func (m *Mailercloud) APIAuth(ctx context.Context, data AuthData, formID string) (string, error) {
	key := strings.TrimSpace(data.APIKey)
	if key == "" {
		m.metrics.AuthAttempt(false)
		return "", ErrAuthFailed
	}

	res, err := m.newClient(key).Lists().Search(ctx, types.DefaultListSearch())
	if err != nil || types.HasErrors(res.Errors) || len(res.Data) == 0 {
		if err != nil {
			m.logger.Debugf("mailercloud: auth (form %q): %v", formID, err)
		} else {
			m.logger.Debugf("mailercloud: auth (form %q): no lists returned", formID)
		}
		m.metrics.AuthAttempt(false)
		return "", ErrAuthFailed
	}

	id, err := m.accounts.Add(ctx, Account{
		API:   key,
		Label: sanitizeText(data.Label),
	})
	if err != nil {
		m.logger.Errorf("mailercloud: auth (form %q): store account: %v", formID, err)
		m.metrics.AuthAttempt(false)
		return "", err
	}
	m.metrics.AuthAttempt(true)
	return id, nil
}

// APILists returns the account's lists, or an empty slice on any failure.
func (m *Mailercloud) APILists(ctx context.Context, connectionID, accountID string) []types.List {
	acct, ok, err := m.accounts.Get(ctx, accountID)
	if err == nil && !ok {
		err = ErrUnknownAccount
	}
	if err != nil {
		m.logAPIError(err)
		return []types.List{}
	}

	res, err := m.newClient(acct.API).Lists().Search(ctx, types.DefaultListSearch())
	if err != nil {
		m.logAPIError(err)
		return []types.List{}
	}
	if res.Data == nil {
		return []types.List{}
	}
	return res.Data
}

func (m *Mailercloud) logAPIError(err error) {
	m.entryLog.Log(titleAPIError, err.Error(), LogMeta{
		Types: []string{"provider", "error"},
	})
}

// APIFields returns the provider fields a form can map to.
// The schema is the same for every list.
func (m *Mailercloud) APIFields(connectionID, accountID, listID string) []FieldSchema {
	return []FieldSchema{
		{Name: "Email", FieldType: "email", Req: "1", Tag: "email"},
		{Name: "First Name", FieldType: "text", Req: "0", Tag: "first_name"},
		{Name: "Last Name", FieldType: "text", Req: "0", Tag: "last_name"},
	}
}

// APIGroups always fails: Mailercloud lists have no groups.
func (m *Mailercloud) APIGroups(connectionID, accountID, listID string) ([]Group, error) {
	return nil, ErrGroupsNotSupported
}
