package services

import (
	"context"
	"net/http"
	stdhttptest "net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/saif727/wallet-service-client/models"
	"github.com/stellar/go/support/errors"
	"github.com/stellar/go/support/http/httptest"
	"github.com/stellar/go/support/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a fake wallet service that remembers every request URI
type recorder struct {
	mu     sync.Mutex
	uris   []string
	status int
	body   string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.uris = append(r.uris, req.RequestURI)
	status, body := r.status, r.body
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (r *recorder) last(t *testing.T) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.uris, "no request reached the wallet service")
	return r.uris[len(r.uris)-1]
}

func (r *recorder) respond(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.uris...)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uris)
}

// newRecordedClient points a client at a local fake service. The fake
// server listens on http://127.0.0.1:<port>, which is split into the
// BaseURL and Port fields.
func newRecordedClient(t *testing.T, config Config, body string) (*WalletClient, *recorder) {
	rec := &recorder{body: body}
	srv := stdhttptest.NewServer(rec)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	config.BaseURL = "http://" + u.Hostname() + "/"
	config.Port = port

	client, err := NewWalletClient(context.Background(), config, WithoutProbe())
	require.NoError(t, err)
	return client, rec
}

func query(uri string) string {
	parts := strings.SplitN(uri, "?", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func TestNewWalletClient_config(t *testing.T) {
	ctx := context.Background()

	_, err := NewWalletClient(ctx, Config{MainPassword: "pw"}, WithoutProbe())
	require.Error(t, err)
	assert.Equal(t, ErrMissingGUID, errors.Cause(err))

	_, err = NewWalletClient(ctx, Config{GUID: "abc"}, WithoutProbe())
	require.Error(t, err)
	assert.Equal(t, ErrMissingPassword, errors.Cause(err))

	client, err := NewWalletClient(ctx, Config{GUID: "abc", MainPassword: "pw"}, WithoutProbe())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.Config().BaseURL)
	assert.Equal(t, DefaultPort, client.Config().Port)

	client, err = NewWalletClient(ctx, Config{
		GUID:         "abc",
		MainPassword: "pw",
		BaseURL:      "http://host//",
		Port:         8000,
	}, WithoutProbe())
	require.NoError(t, err)
	assert.Equal(t, "http://host", client.Config().BaseURL)
	assert.Equal(t, "http://host:8000", client.Config().Address())
}

func TestNewWalletClient_probe(t *testing.T) {
	ctx := context.Background()
	config := Config{GUID: "abc", MainPassword: "pw", BaseURL: "http://localhost", Port: 3000}

	t.Run("reachable", func(t *testing.T) {
		hmock := httptest.NewClient()
		hmock.On("GET", "http://localhost:3000/").ReturnString(200, `{"status":"ok"}`)

		client, err := NewWalletClient(ctx, config, WithHTTPClient(hmock))
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("unreachable", func(t *testing.T) {
		hmock := httptest.NewClient()
		hmock.On("GET", "http://localhost:3000/").ReturnError("connection refused")

		client, err := NewWalletClient(ctx, config, WithHTTPClient(hmock))
		require.Error(t, err)
		assert.Equal(t, ErrServiceUnreachable, errors.Cause(err))
		// the client stays usable
		require.NotNil(t, client)
		assert.Equal(t, "abc", client.Config().GUID)
	})

	t.Run("not json", func(t *testing.T) {
		hmock := httptest.NewClient()
		hmock.On("GET", "http://localhost:3000/").ReturnString(200, "<html>hello</html>")

		client, err := NewWalletClient(ctx, config, WithHTTPClient(hmock))
		require.Error(t, err)
		assert.Equal(t, ErrServiceUnreachable, errors.Cause(err))
		assert.NotNil(t, client)
	})
}

func TestWalletBalance_endToEnd(t *testing.T) {
	client, rec := newRecordedClient(t, Config{GUID: "abc", MainPassword: "pw"}, `{"balance": 150000}`)

	resp := client.WalletBalance(context.Background())
	require.True(t, resp.OK())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	balance, ok := resp.Value.Get("balance").AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(150000), balance)

	assert.Equal(t, "/merchant/abc/balance/?password=pw", rec.last(t))
}

func TestWalletBalance_exactURL(t *testing.T) {
	hmock := httptest.NewClient()
	hmock.On("GET", "http://localhost:3000/merchant/abc/balance/?password=pw").
		ReturnString(200, `{"balance": 1}`)

	client, err := NewWalletClient(context.Background(), Config{
		GUID:         "abc",
		MainPassword: "pw",
		BaseURL:      "http://localhost",
		Port:         3000,
	}, WithHTTPClient(hmock), WithoutProbe())
	require.NoError(t, err)

	resp := client.WalletBalance(context.Background())
	require.True(t, resp.OK())
	assert.Equal(t, "http://localhost:3000/merchant/abc/balance/?password=pw",
		client.url(client.merchantEndpoint("balance"), client.credentials(false)))
}

func TestOperations_query(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		config Config
		call   func(c *WalletClient) models.Response
		path   string
		query  string
	}{
		{
			name:   "create wallet minimal",
			config: Config{GUID: "abc", MainPassword: "pw"},
			call: func(c *WalletClient) models.Response {
				return c.CreateWallet(ctx, CreateWalletOptions{Password: "0123456789"})
			},
			path:  "/api/v2/create/",
			query: "password=0123456789",
		},
		{
			name:   "create wallet full",
			config: Config{GUID: "abc", MainPassword: "pw", APICode: "code"},
			call: func(c *WalletClient) models.Response {
				return c.CreateWallet(ctx, CreateWalletOptions{
					Password:   "0123456789",
					PrivateKey: "L1key",
					Email:      "me@example.com",
					Label:      "my wallet",
				})
			},
			path:  "/api/v2/create/",
			query: "password=0123456789&api_code=code&priv=L1key&label=my+wallet&email=me%40example.com",
		},
		{
			name:   "send minimal",
			config: Config{GUID: "abc", MainPassword: "pw"},
			call: func(c *WalletClient) models.Response {
				return c.Send(ctx, "1Addr", 5000, SendOptions{})
			},
			path:  "/merchant/abc/payment/",
			query: "password=pw&to=1Addr&amount=5000",
		},
		{
			name:   "send zero amount is still sent",
			config: Config{GUID: "abc", MainPassword: "pw"},
			call: func(c *WalletClient) models.Response {
				return c.Send(ctx, "1Addr", 0, SendOptions{})
			},
			path:  "/merchant/abc/payment/",
			query: "password=pw&to=1Addr&amount=0",
		},
		{
			name:   "send full",
			config: Config{GUID: "abc", MainPassword: "pw", SecondPassword: "pw2"},
			call: func(c *WalletClient) models.Response {
				return c.Send(ctx, "1Addr", 5000, SendOptions{From: "1From", Fee: 1000})
			},
			path:  "/merchant/abc/payment/",
			query: "password=pw&to=1Addr&amount=5000&second_password=pw2&from=1From&fee=1000",
		},
		{
			name:   "wallet balance",
			config: Config{GUID: "abc", MainPassword: "pw", SecondPassword: "pw2"},
			call:   func(c *WalletClient) models.Response { return c.WalletBalance(ctx) },
			path:   "/merchant/abc/balance/",
			query:  "password=pw",
		},
		{
			name:   "list addresses",
			config: Config{GUID: "abc", MainPassword: "pw", SecondPassword: "pw2"},
			call:   func(c *WalletClient) models.Response { return c.ListAddresses(ctx) },
			path:   "/merchant/abc/list/",
			query:  "password=pw",
		},
		{
			name:   "address balance",
			config: Config{GUID: "abc", MainPassword: "pw"},
			call:   func(c *WalletClient) models.Response { return c.AddressBalance(ctx, "1Addr") },
			path:   "/merchant/abc/address_balance/",
			query:  "password=pw&address=1Addr",
		},
		{
			name:   "new address without label",
			config: Config{GUID: "abc", MainPassword: "pw"},
			call:   func(c *WalletClient) models.Response { return c.NewAddress(ctx, "") },
			path:   "/merchant/abc/new_address/",
			query:  "password=pw",
		},
		{
			name:   "new address with label",
			config: Config{GUID: "abc", MainPassword: "pw", SecondPassword: "pw2"},
			call:   func(c *WalletClient) models.Response { return c.NewAddress(ctx, "savings") },
			path:   "/merchant/abc/new_address/",
			query:  "password=pw&second_password=pw2&label=savings",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, rec := newRecordedClient(t, tc.config, `{"ok": true}`)

			resp := tc.call(client)
			require.True(t, resp.OK(), "response: %+v", resp)

			uri := rec.last(t)
			assert.True(t, strings.HasPrefix(uri, tc.path+"?"), "uri %s", uri)
			assert.Equal(t, tc.query, query(uri))
		})
	}
}

func TestOperations_omitOptional(t *testing.T) {
	ctx := context.Background()
	client, rec := newRecordedClient(t, Config{GUID: "abc", MainPassword: "pw"}, `{}`)

	client.Send(ctx, "1Addr", 10, SendOptions{})
	client.SendMany(ctx, models.Recipients{}.Add("1Addr", 10), SendOptions{})
	client.NewAddress(ctx, "")
	client.CreateWallet(ctx, CreateWalletOptions{Password: "0123456789"})

	require.Equal(t, 4, rec.count())
	for _, uri := range rec.all() {
		for _, name := range []string{"from=", "fee=", "label=", "email=", "priv=", "second_password=", "api_code="} {
			assert.NotContains(t, uri, "&"+name, uri)
		}
	}
}

func TestSendMany_recipients(t *testing.T) {
	client, rec := newRecordedClient(t, Config{GUID: "abc", MainPassword: "pw"}, `{"tx_hash": "f00"}`)

	recipients := models.Recipients{}.Add("addr2", 2000).Add("addr1", 1000)
	resp := client.SendMany(context.Background(), recipients, SendOptions{Fee: 500})
	require.True(t, resp.OK())

	uri := rec.last(t)
	assert.True(t, strings.HasPrefix(uri, "/merchant/abc/sendmany/?"))

	q := query(uri)
	assert.Equal(t,
		"password=pw&recipients="+url.QueryEscape(`{"addr2":2000,"addr1":1000}`)+"&fee=500",
		q,
	)
	assert.Equal(t, 1, strings.Count(q, "recipients="))

	values, err := url.ParseQuery(q)
	require.NoError(t, err)
	assert.Equal(t, `{"addr2":2000,"addr1":1000}`, values.Get("recipients"))
}

func TestGUIDIsEscaped(t *testing.T) {
	client, rec := newRecordedClient(t, Config{GUID: "a/b c", MainPassword: "pw"}, `{}`)

	client.WalletBalance(context.Background())
	assert.Equal(t, "/merchant/a%2Fb%20c/balance/?password=pw", rec.last(t))
}

func TestQueryValuesAreEscaped(t *testing.T) {
	client, rec := newRecordedClient(t, Config{GUID: "abc", MainPassword: "p&w=1 2"}, `{}`)

	client.WalletBalance(context.Background())
	assert.Equal(t, "/merchant/abc/balance/?password=p%26w%3D1+2", rec.last(t))
}

func TestCreateWallet_shortPassword(t *testing.T) {
	hmock := httptest.NewClient()
	// no expectation registered, so a request would come back as no-result
	client, err := NewWalletClient(context.Background(),
		Config{GUID: "abc", MainPassword: "pw"},
		WithHTTPClient(hmock), WithoutProbe())
	require.NoError(t, err)

	for _, password := range []string{"", "short", "123456789"} {
		resp := client.CreateWallet(context.Background(), CreateWalletOptions{Password: password})
		assert.True(t, resp.IsValidationError())
		assert.False(t, resp.OK())
		assert.False(t, resp.IsNoResult())
		msg, ok := resp.ErrorMessage()
		require.True(t, ok)
		assert.Equal(t, "Password must be at least 10 characters", msg)
	}
}

func TestCreateWallet_shortPasswordNoRequest(t *testing.T) {
	client, rec := newRecordedClient(t, Config{GUID: "abc", MainPassword: "pw"}, `{}`)

	resp := client.CreateWallet(context.Background(), CreateWalletOptions{Password: "123456789"})
	assert.True(t, resp.IsValidationError())
	assert.Equal(t, 0, rec.count())

	resp = client.CreateWallet(context.Background(), CreateWalletOptions{Password: "1234567890"})
	assert.True(t, resp.OK())
	assert.Equal(t, 1, rec.count())
}

func TestOperations_transportFailure(t *testing.T) {
	ctx := context.Background()
	hmock := httptest.NewClient()
	for _, path := range []string{
		"api/v2/create/",
		"merchant/abc/payment/",
		"merchant/abc/sendmany/",
		"merchant/abc/balance/",
		"merchant/abc/list/",
		"merchant/abc/address_balance/",
		"merchant/abc/new_address/",
	} {
		hmock.On("GET", "http://localhost:3000/"+path).ReturnError("connection refused")
	}

	client, err := NewWalletClient(ctx, Config{
		GUID:         "abc",
		MainPassword: "pw",
		BaseURL:      "http://localhost",
		Port:         3000,
	}, WithHTTPClient(hmock), WithoutProbe())
	require.NoError(t, err)

	responses := map[string]models.Response{
		"create_wallet":   client.CreateWallet(ctx, CreateWalletOptions{Password: "0123456789"}),
		"send":            client.Send(ctx, "1Addr", 1, SendOptions{}),
		"send_many":       client.SendMany(ctx, models.Recipients{}.Add("1Addr", 1), SendOptions{}),
		"wallet_balance":  client.WalletBalance(ctx),
		"list_addresses":  client.ListAddresses(ctx),
		"address_balance": client.AddressBalance(ctx, "1Addr"),
		"new_address":     client.NewAddress(ctx, ""),
	}

	for name, resp := range responses {
		assert.True(t, resp.IsNoResult(), name)
		assert.False(t, resp.OK(), name)
		assert.Equal(t, 0, resp.StatusCode, name)
		assert.Equal(t, models.ErrNoResult, errors.Cause(resp.Err), name)
	}
}

func TestCall_statusCodesAreNotInterpreted(t *testing.T) {
	client, rec := newRecordedClient(t, Config{GUID: "abc", MainPassword: "pw"}, `{"error": "Unexpected error, please try again"}`)
	rec.respond(http.StatusInternalServerError)

	resp := client.WalletBalance(context.Background())
	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	msg, ok := resp.ErrorMessage()
	require.True(t, ok)
	assert.Equal(t, "Unexpected error, please try again", msg)
}

func TestCall_undecodableBodies(t *testing.T) {
	for _, body := range []string{"", "null", "not json", `{"a": 1} trailing`} {
		client, rec := newRecordedClient(t, Config{GUID: "abc", MainPassword: "pw"}, body)
		rec.respond(http.StatusBadGateway)

		resp := client.ListAddresses(context.Background())
		assert.True(t, resp.IsNoResult(), "body %q", body)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, models.ErrNoResult, errors.Cause(resp.Err))
	}
}

func TestCall_timeout(t *testing.T) {
	srv := stdhttptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	client, err := NewWalletClient(context.Background(), Config{
		GUID:         "abc",
		MainPassword: "pw",
		BaseURL:      "http://" + u.Hostname(),
		Port:         port,
		Timeout:      50 * time.Millisecond,
	}, WithoutProbe())
	require.NoError(t, err)

	resp := client.WalletBalance(context.Background())
	assert.True(t, resp.IsNoResult())
}

func TestCall_logsRedactedURL(t *testing.T) {
	logger := log.New()
	done := logger.StartTest(log.DebugLevel)

	hmock := httptest.NewClient()
	hmock.On("GET", "http://localhost:3000/merchant/abc/new_address/").ReturnString(200, `{"address": "1New"}`)

	client, err := NewWalletClient(context.Background(), Config{
		GUID:           "abc",
		MainPassword:   "topsecret",
		SecondPassword: "alsosecret",
		BaseURL:        "http://localhost",
		Port:           3000,
	}, WithHTTPClient(hmock), WithLogger(logger), WithoutProbe())
	require.NoError(t, err)

	resp := client.NewAddress(context.Background(), "savings")
	require.True(t, resp.OK())

	var urls []string
	for _, entry := range done() {
		if u, ok := entry.Data["url"].(string); ok {
			urls = append(urls, u)
		}
	}
	require.Len(t, urls, 1)
	assert.Equal(t,
		"http://localhost:3000/merchant/abc/new_address/?password=REDACTED&second_password=REDACTED&label=savings",
		urls[0],
	)
	assert.NotContains(t, urls[0], "topsecret")
	assert.NotContains(t, urls[0], "alsosecret")
}
