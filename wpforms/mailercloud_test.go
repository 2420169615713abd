package wpforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sanzeeb3/mailercloud-go/logger"
	"github.com/sanzeeb3/mailercloud-go/metrics"
	"github.com/sanzeeb3/mailercloud-go/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccountID = "acct-1"

func seedAccount(t *testing.T, s store.Store, id, key string) {
	t.Helper()
	err := store.SetJSON(context.Background(), s, OptionProviders, map[string]map[string]Account{
		Slug: {id: {API: key, Label: "Main", Date: 1700000000}},
	})
	require.NoError(t, err)
}

func scenarioFields() Fields {
	return Fields{
		"1": {"value": "a@b.com"},
		"2": {"first": "Jane"},
		"3": {"last": "Doe"},
	}
}

func scenarioForm(conns ...Connection) FormData {
	if len(conns) == 0 {
		conns = []Connection{scenarioConnection()}
	}
	byID := map[string]Connection{}
	for i, c := range conns {
		id := c.ID.String()
		if id == "" {
			id = fmt.Sprintf("connection_%d", i)
		}
		byID[id] = c
	}
	return FormData{
		ID:        "42",
		Providers: map[string]map[string]Connection{Slug: byID},
	}
}

func scenarioConnection() Connection {
	return Connection{
		ID:        "connection_1",
		AccountID: testAccountID,
		ListID:    "L1",
		Fields: map[string]string{
			"email":      "1",
			"first_name": "2",
			"last_name":  "3",
		},
	}
}

func alwaysFalse() Evaluator {
	return EvaluatorFunc(func(Fields, Entry, FormData, Connection) bool { return false })
}

func TestMailercloud_Init(t *testing.T) {
	tp := newTestProvider(t)
	info := tp.Init()

	assert.Equal(t, "Mailercloud", info.Name)
	assert.Equal(t, "mailercloud", info.Slug)
	assert.Equal(t, 0.5, info.Priority)
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.Icon)

	tp = newTestProvider(t, WithIcon("https://cdn.example.com/mc.png"))
	assert.Equal(t, "https://cdn.example.com/mc.png", tp.Init().Icon)
}

func TestProcessEntry_sendsContact(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(), 7)

	reqs := tp.fake.requests("/v1/contacts")
	require.Len(t, reqs, 1)
	assert.Equal(t, `{"email":"a@b.com","name":"Jane","last_name":"Doe","list_id":"L1"}`, reqs[0].body)
	assert.Equal(t, "key-123", reqs[0].apiKey)
	assert.Empty(t, tp.log.records)
	assert.Equal(t, 1, tp.metrics.sent)
}

func TestProcessEntry_conditionalStop(t *testing.T) {
	tp := newTestProvider(t, WithEvaluator(alwaysFalse()))
	seedAccount(t, tp.store, testAccountID, "key-123")

	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(), 7)

	assert.Empty(t, tp.fake.reqs)
	require.Len(t, tp.log.records, 1)
	rec := tp.log.records[0]
	assert.Equal(t, "Mailercloud Subscription stopped by conditional logic", rec.title)
	assert.Equal(t, []string{"provider", "conditional_logic"}, rec.meta.Types)
	assert.Equal(t, int64(7), rec.meta.Parent)
	assert.Equal(t, "42", rec.meta.FormID)
	assert.Equal(t, scenarioFields(), rec.context)
	assert.Equal(t, 1, tp.metrics.skipped[metrics.SkipConditionalLogic])
}

func TestProcessEntry_conditionalStop_onePerConnection(t *testing.T) {
	tp := newTestProvider(t, WithEvaluator(alwaysFalse()))
	seedAccount(t, tp.store, testAccountID, "key-123")

	a, b := scenarioConnection(), scenarioConnection()
	a.ID, b.ID = "connection_a", "connection_b"
	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(a, b), 7)

	assert.Empty(t, tp.fake.reqs)
	assert.Len(t, tp.log.records, 2)
}

func TestProcessEntry_emptyEmail(t *testing.T) {
	for _, email := range []any{"", "   ", "\t\n", nil} {
		t.Run(fmt.Sprintf("%q", email), func(t *testing.T) {
			evaluated := false
			tp := newTestProvider(t, WithEvaluator(EvaluatorFunc(func(Fields, Entry, FormData, Connection) bool {
				evaluated = true
				return false
			})))
			seedAccount(t, tp.store, testAccountID, "key-123")

			fields := scenarioFields()
			fields["1"] = Field{"value": email}
			tp.ProcessEntry(context.Background(), fields, Entry{}, scenarioForm(), 7)

			assert.Empty(t, tp.fake.reqs)
			assert.Empty(t, tp.log.records)
			assert.False(t, evaluated)
			assert.Equal(t, 1, tp.metrics.skipped[metrics.SkipMissingEmail])
		})
	}
}

func TestProcessEntry_unmappedEmail(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	conn := scenarioConnection()
	conn.Fields["email"] = "99"
	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(conn), 7)

	assert.Empty(t, tp.fake.reqs)
}

func TestProcessEntry_trimsValues(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	fields := Fields{
		"1": {"value": "  a@b.com "},
		"2": {"first": " Jane"},
		"3": {"last": "Doe  "},
	}
	tp.ProcessEntry(context.Background(), fields, Entry{}, scenarioForm(), 7)

	reqs := tp.fake.requests("/v1/contacts")
	require.Len(t, reqs, 1)
	assert.Equal(t, `{"email":"a@b.com","name":"Jane","last_name":"Doe","list_id":"L1"}`, reqs[0].body)
}

func TestProcessEntry_lastNameFromItsOwnMapping(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	fields := Fields{
		"1": {"value": "a@b.com"},
		"2": {"first": "Jane", "last": "Wrong"},
		"3": {"first": "Wrong", "last": "Doe"},
	}
	tp.ProcessEntry(context.Background(), fields, Entry{}, scenarioForm(), 7)

	reqs := tp.fake.requests("/v1/contacts")
	require.Len(t, reqs, 1)
	assert.Equal(t, `{"email":"a@b.com","name":"Jane","last_name":"Doe","list_id":"L1"}`, reqs[0].body)
}

func TestProcessEntry_nameFieldWithSubKeys(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	fields := Fields{
		"0": {"id": float64(0), "type": "email", "value": "a@b.com"},
		"1": {"id": float64(1), "type": "name", "value": "Jane Doe", "first": "Jane", "last": "Doe"},
	}
	conn := scenarioConnection()
	conn.Fields = map[string]string{"email": "0", "first_name": "1.first", "last_name": "1.last"}
	tp.ProcessEntry(context.Background(), fields, Entry{}, scenarioForm(conn), 7)

	reqs := tp.fake.requests("/v1/contacts")
	require.Len(t, reqs, 1)
	assert.Equal(t, `{"email":"a@b.com","name":"Jane","last_name":"Doe","list_id":"L1"}`, reqs[0].body)
}

func TestProcessEntry_missingNames(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	conn := scenarioConnection()
	delete(conn.Fields, "first_name")
	conn.Fields["last_name"] = ""
	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(conn), 7)

	reqs := tp.fake.requests("/v1/contacts")
	require.Len(t, reqs, 1)
	assert.Equal(t, `{"email":"a@b.com","name":"","last_name":"","list_id":"L1"}`, reqs[0].body)
}

func TestProcessEntry_noConnections(t *testing.T) {
	tp := newTestProvider(t)

	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, FormData{ID: "42"}, 7)
	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, FormData{
		ID:        "42",
		Providers: map[string]map[string]Connection{"mailchimp": {"c": scenarioConnection()}},
	}, 7)

	assert.Empty(t, tp.fake.reqs)
	assert.Empty(t, tp.log.records)
}

func TestProcessEntry_unknownAccount(t *testing.T) {
	tp := newTestProvider(t)

	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(), 7)

	assert.Empty(t, tp.fake.reqs)
	assert.Equal(t, 1, tp.metrics.skipped[metrics.SkipUnknownAccount])
}

func TestProcessEntry_deliveryFailureIsSwallowed(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")
	tp.fake.responses["/v1/contacts"] = fakeResponse{status: 500, body: `oops`}

	a, b := scenarioConnection(), scenarioConnection()
	a.ID, b.ID = "connection_a", "connection_b"
	b.ListID = "L2"
	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(a, b), 7)

	reqs := tp.fake.requests("/v1/contacts")
	require.Len(t, reqs, 2, "each connection is attempted exactly once")
	assert.Equal(t, 2, tp.metrics.failed)
	assert.Zero(t, tp.metrics.sent)
}

func TestProcessEntry_connectionOrder(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	var conns []Connection
	for _, id := range []string{"c3", "c1", "c2"} {
		c := scenarioConnection()
		c.ID = FlexString(id)
		c.ListID = FlexString("list-" + id)
		conns = append(conns, c)
	}
	tp.ProcessEntry(context.Background(), scenarioFields(), Entry{}, scenarioForm(conns...), 7)

	reqs := tp.fake.requests("/v1/contacts")
	require.Len(t, reqs, 3)
	var got []string
	for _, r := range reqs {
		var body map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.body), &body))
		got = append(got, body["list_id"])
	}
	assert.Equal(t, []string{"list-c1", "list-c2", "list-c3"}, got)
}

func TestProcessEntry_canceledContext(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tp.ProcessEntry(ctx, scenarioFields(), Entry{}, scenarioForm(), 7)

	assert.Empty(t, tp.fake.reqs)
}

func TestProcessEntry_canceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	evaluated := 0
	tp := newTestProvider(t,
		WithLogger(logger.NewWriter(&buf)),
		WithEvaluator(EvaluatorFunc(func(Fields, Entry, FormData, Connection) bool {
			evaluated++
			cancel()
			return false
		})),
	)
	seedAccount(t, tp.store, testAccountID, "key-123")

	var conns []Connection
	for _, id := range []string{"c1", "c2", "c3"} {
		c := scenarioConnection()
		c.ID = FlexString(id)
		conns = append(conns, c)
	}
	tp.ProcessEntry(ctx, scenarioFields(), Entry{}, scenarioForm(conns...), 7)

	assert.Equal(t, 1, evaluated)
	assert.Contains(t, buf.String(), "2 connection(s) not processed")
}

func TestProcessEntry_builtinRules(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	conn := scenarioConnection()
	conn.ConditionalLogic = true
	conn.ConditionalType = ConditionalGo
	conn.Conditionals = RuleGroups{{{Field: "2", Operator: "==", Value: "john"}}}
	fields := scenarioFields()
	fields["2"]["value"] = "Jane"

	tp.ProcessEntry(context.Background(), fields, Entry{}, scenarioForm(conn), 7)

	assert.Empty(t, tp.fake.reqs)
	require.Len(t, tp.log.records, 1)
}

func TestAPIAuth(t *testing.T) {
	tp := newTestProvider(t)

	id, err := tp.APIAuth(context.Background(), AuthData{APIKey: "  key-123 ", Label: " <b>Main</b>  account "}, "42")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	reqs := tp.fake.requests("/v1/lists/search")
	require.Len(t, reqs, 1)
	assert.Equal(t, "key-123", reqs[0].apiKey)
	assert.JSONEq(t, `{"limit":10,"list_type":1,"page":1,"search_name":"","sort_field":"name","sort_order":"asc"}`, reqs[0].body)

	accounts, err := tp.Accounts().List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	acct := accounts[id]
	assert.Equal(t, "key-123", acct.API)
	assert.Equal(t, "Main account", acct.Label)
	assert.NotZero(t, acct.Date)
	assert.Equal(t, 1, tp.metrics.auth[true])
}

func TestAPIAuth_freshIDs(t *testing.T) {
	tp := newTestProvider(t)

	seen := map[string]bool{}
	for i := range 5 {
		id, err := tp.APIAuth(context.Background(), AuthData{APIKey: "key", Label: fmt.Sprint(i)}, "")
		require.NoError(t, err)
		assert.False(t, seen[id], "id %q reused", id)
		seen[id] = true
	}

	accounts, err := tp.Accounts().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 5)
}

func TestAPIAuth_failures(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		res   fakeResponse
		calls int
	}{
		{name: "empty data", key: "k", res: fakeResponse{status: 200, body: `{"data":[]}`}, calls: 1},
		{name: "missing data", key: "k", res: fakeResponse{status: 200, body: `{}`}, calls: 1},
		{name: "errors field", key: "k", res: fakeResponse{status: 200, body: `{"data":[{"id":"L1"}],"errors":{"code":"bad"}}`}, calls: 1},
		{name: "unauthorized", key: "k", res: fakeResponse{status: 401, body: `{"errors":[{"code":"unauthorized"}]}`}, calls: 1},
		{name: "malformed", key: "k", res: fakeResponse{status: 200, body: `<html>`}, calls: 1},
		{name: "network", key: "k", res: fakeResponse{err: fmt.Errorf("dial tcp: refused")}, calls: 1},
		{name: "blank key", key: "   ", res: fakeResponse{status: 200, body: `{"data":[{"id":"L1"}]}`}, calls: 0},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTestProvider(t)
			tp.fake.responses["/v1/lists/search"] = tt.res

			id, err := tp.APIAuth(context.Background(), AuthData{APIKey: tt.key, Label: "x"}, "42")
			assert.Empty(t, id)
			require.ErrorIs(t, err, ErrAuthFailed)
			assert.Equal(t, "API authorization failed. Please make sure the API key is correct or contact support.", err.Error())
			assert.Len(t, tp.fake.requests("/v1/lists/search"), tt.calls)

			raw, err := tp.store.Get(context.Background(), OptionProviders)
			require.NoError(t, err)
			assert.Nil(t, raw, "nothing persisted")
			assert.Equal(t, 1, tp.metrics.auth[false])
		})
	}
}

func TestAPIAuth_keepsOtherProviders(t *testing.T) {
	tp := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, tp.store.Set(ctx, OptionProviders, []byte(`{"mailchimp":{"x":{"api":"mc","label":"MC","date":1,"extra":true}}}`)))

	_, err := tp.APIAuth(ctx, AuthData{APIKey: "key", Label: "Main"}, "")
	require.NoError(t, err)

	var all map[string]map[string]map[string]any
	_, err = store.GetJSON(ctx, tp.store, OptionProviders, &all)
	require.NoError(t, err)
	assert.Equal(t, true, all["mailchimp"]["x"]["extra"])
	assert.Len(t, all[Slug], 1)
}

func TestAPILists(t *testing.T) {
	tp := newTestProvider(t)
	seedAccount(t, tp.store, testAccountID, "key-123")

	lists := tp.APILists(context.Background(), "connection_1", testAccountID)
	require.Len(t, lists, 2)
	assert.Equal(t, "L1", lists[0].ID())
	assert.Equal(t, "Leads", lists[0].Name())
	assert.Equal(t, "key-123", tp.fake.requests("/v1/lists/search")[0].apiKey)
	assert.Empty(t, tp.log.records)
}

func TestAPILists_failures(t *testing.T) {
	t.Run("unknown account", func(t *testing.T) {
		tp := newTestProvider(t)

		lists := tp.APILists(context.Background(), "", "missing")
		assert.NotNil(t, lists)
		assert.Empty(t, lists)
		assert.Empty(t, tp.fake.reqs)
		require.Len(t, tp.log.records, 1)
		assert.Equal(t, []string{"provider", "error"}, tp.log.records[0].meta.Types)
	})

	t.Run("api error", func(t *testing.T) {
		tp := newTestProvider(t)
		seedAccount(t, tp.store, testAccountID, "key-123")
		tp.fake.responses["/v1/lists/search"] = fakeResponse{status: 500, body: `down`}

		lists := tp.APILists(context.Background(), "", testAccountID)
		assert.NotNil(t, lists)
		assert.Empty(t, lists)
		require.Len(t, tp.log.records, 1)
		assert.Equal(t, "Mailercloud API error", tp.log.records[0].title)
	})

	t.Run("no data", func(t *testing.T) {
		tp := newTestProvider(t)
		seedAccount(t, tp.store, testAccountID, "key-123")
		tp.fake.responses["/v1/lists/search"] = fakeResponse{status: 200, body: `{}`}

		lists := tp.APILists(context.Background(), "", testAccountID)
		assert.NotNil(t, lists)
		assert.Empty(t, lists)
	})
}

func TestAPIFields(t *testing.T) {
	tp := newTestProvider(t)
	expected := []FieldSchema{
		{Name: "Email", FieldType: "email", Req: "1", Tag: "email"},
		{Name: "First Name", FieldType: "text", Req: "0", Tag: "first_name"},
		{Name: "Last Name", FieldType: "text", Req: "0", Tag: "last_name"},
	}

	first := tp.APIFields("", "", "")
	assert.Equal(t, expected, first)
	assert.Equal(t, expected, tp.APIFields("c", "a", "l"))

	first[0].Name = "mutated"
	assert.Equal(t, expected, tp.APIFields("", "", ""), "every call returns a fresh slice")
	assert.Empty(t, tp.fake.reqs)
}

func TestAPIGroups(t *testing.T) {
	tp := newTestProvider(t)

	groups, err := tp.APIGroups("c", "a", "l")
	assert.Nil(t, groups)
	require.ErrorIs(t, err, ErrGroupsNotSupported)
	assert.Equal(t, "Groups do not exist.", err.Error())
}
