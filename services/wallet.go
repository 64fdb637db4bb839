package services

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/saif727/wallet-service-client/models"
	"github.com/stellar/go/support/errors"
	"github.com/stellar/go/support/log"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CreateWalletOptions are the inputs for CreateWallet. Only Password is
// required.
type CreateWalletOptions struct {
	Password   string
	PrivateKey string
	Email      string
	Label      string
}

// SendOptions are the optional inputs shared by Send and SendMany
type SendOptions struct {
	From string
	Fee  int64 // satoshi; zero lets the service pick
}

// WalletClient talks to a wallet service over its HTTP API
type WalletClient struct {
	config Config
	http   Doer
	log    *log.Entry
	probe  bool
}

// Option customizes a WalletClient
type Option func(*WalletClient)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(doer Doer) Option {
	return func(c *WalletClient) { c.http = doer }
}

// WithLogger replaces the default logger
func WithLogger(logger *log.Entry) Option {
	return func(c *WalletClient) { c.log = logger }
}

// WithoutProbe skips the connectivity check done at construction
func WithoutProbe() Option {
	return func(c *WalletClient) { c.probe = false }
}

// NewWalletClient creates a WalletClient and checks that the wallet service
// answers.
//
// A missing guid or main password is fatal and no client is returned. An
// unreachable service is not: the returned client is usable and the error's
// cause is ErrServiceUnreachable.
func NewWalletClient(ctx context.Context, config Config, opts ...Option) (*WalletClient, error) {
	config, err := config.normalize()
	if err != nil {
		return nil, err
	}

	c := &WalletClient{
		config: config,
		http:   &http.Client{},
		log:    log.DefaultLogger.WithField("service", "wallet_client"),
		probe:  true,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log.WithFields(log.F{
		"base_url": c.config.BaseURL,
		"port":     c.config.Port,
	}).Info("Wallet client initialized")

	if !c.probe {
		return c, nil
	}

	if err := c.Ping(ctx); err != nil {
		c.log.WithField("err", err).Warn("Wallet service is not reachable")
		return c, err
	}
	return c, nil
}

// Config returns a copy of the client's configuration
func (c *WalletClient) Config() Config {
	return c.config
}

// Ping performs an empty-endpoint call and reports whether a decodable
// response came back.
func (c *WalletClient) Ping(ctx context.Context) error {
	resp := c.Call(ctx, "", nil)
	if resp.IsNoResult() {
		return errors.Wrapf(ErrServiceUnreachable, "%s (%v)", c.config.Address(), resp.Err)
	}
	return nil
}

// CreateWallet creates a new wallet. Passwords shorter than
// MinPasswordLength are rejected without contacting the service.
func (c *WalletClient) CreateWallet(ctx context.Context, opts CreateWalletOptions) models.Response {
	if len(opts.Password) < MinPasswordLength {
		return models.ValidationFailed(models.ErrPasswordTooShort)
	}

	params := Params{}.
		Set("password", opts.Password).
		Set("api_code", c.config.APICode).
		Set("priv", opts.PrivateKey).
		Set("label", opts.Label).
		Set("email", opts.Email)

	return c.Call(ctx, "api/v2/create", params)
}

// Send pays amount satoshi to the address to
func (c *WalletClient) Send(ctx context.Context, to string, amount int64, opts SendOptions) models.Response {
	params := c.credentials(false).
		Set("to", to).
		MustSetInt("amount", amount).
		Set("second_password", c.config.SecondPassword).
		Set("from", opts.From).
		SetInt("fee", opts.Fee)

	return c.Call(ctx, c.merchantEndpoint("payment"), params)
}

// SendMany pays several recipients in a single transaction
func (c *WalletClient) SendMany(ctx context.Context, recipients models.Recipients, opts SendOptions) models.Response {
	encoded, err := recipients.MarshalJSON()
	if err != nil {
		return models.NoResult(0, errors.Wrap(err, "encode recipients"))
	}

	params := c.credentials(true).
		Set("recipients", string(encoded)).
		Set("from", opts.From).
		SetInt("fee", opts.Fee)

	return c.Call(ctx, c.merchantEndpoint("sendmany"), params)
}

// WalletBalance fetches the wallet's total balance
func (c *WalletClient) WalletBalance(ctx context.Context) models.Response {
	return c.Call(ctx, c.merchantEndpoint("balance"), c.credentials(false))
}

// ListAddresses lists the wallet's addresses with their balances
func (c *WalletClient) ListAddresses(ctx context.Context) models.Response {
	return c.Call(ctx, c.merchantEndpoint("list"), c.credentials(false))
}

// AddressBalance fetches the balance of a single address
func (c *WalletClient) AddressBalance(ctx context.Context, address string) models.Response {
	params := c.credentials(false).Set("address", address)
	return c.Call(ctx, c.merchantEndpoint("address_balance"), params)
}

// NewAddress generates a new address, optionally labelled
func (c *WalletClient) NewAddress(ctx context.Context, label string) models.Response {
	params := c.credentials(true).Set("label", label)
	return c.Call(ctx, c.merchantEndpoint("new_address"), params)
}

// Call issues a GET against endpoint and decodes the JSON body. It never
// returns an error value of its own: failures come back as the no-result
// Response.
func (c *WalletClient) Call(ctx context.Context, endpoint string, params Params) models.Response {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(endpoint, params), nil)
	if err != nil {
		return models.NoResult(0, errors.Wrap(err, "build request"))
	}

	resp, err := c.http.Do(req)
	c.log.WithField("url", c.url(endpoint, params.Redact())).Debug("Wallet service URL executed")
	if err != nil {
		c.log.WithFields(log.F{"endpoint": endpoint, "err": err}).Warn("Wallet service request failed")
		return models.NoResult(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NoResult(resp.StatusCode, errors.Wrap(err, "read response body"))
	}

	value, err := models.DecodeValue(body)
	if err != nil {
		c.log.WithFields(log.F{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Debug("Wallet service returned a non-JSON body")
		return models.NoResult(resp.StatusCode, err)
	}
	if value.IsNull() {
		return models.NoResult(resp.StatusCode, nil)
	}

	return models.Response{Value: value, StatusCode: resp.StatusCode}
}

// credentials starts a parameter list with the main password and, when
// withSecond is set, the second password.
func (c *WalletClient) credentials(withSecond bool) Params {
	params := Params{}.Set("password", c.config.MainPassword)
	if withSecond {
		params = params.Set("second_password", c.config.SecondPassword)
	}
	return params
}

func (c *WalletClient) merchantEndpoint(action string) string {
	return "merchant/" + url.PathEscape(c.config.GUID) + "/" + action
}

// url builds {base}:{port}/{endpoint}/?{query}
func (c *WalletClient) url(endpoint string, params Params) string {
	var b strings.Builder
	b.WriteString(c.config.Address())
	b.WriteByte('/')
	if endpoint = strings.Trim(endpoint, "/"); endpoint != "" {
		b.WriteString(endpoint)
		b.WriteByte('/')
	}
	if query := params.Encode(); query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String()
}
