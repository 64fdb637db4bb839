package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/stellar/go/support/errors"
)

const (
	// DefaultBaseURL is where a locally installed wallet service listens
	DefaultBaseURL = "http://127.0.0.1"
	// DefaultPort is the wallet service's default port
	DefaultPort = 3000
	// MinPasswordLength is the shortest password accepted for new wallets
	MinPasswordLength = 10
)

var (
	ErrMissingGUID        = errors.New("guid is required")
	ErrMissingPassword    = errors.New("main password is required")
	ErrServiceUnreachable = errors.New("unable to connect to wallet service")
)

// Config holds the wallet service connection settings. It is copied into
// the client at construction and never changed afterwards.
type Config struct {
	GUID           string
	MainPassword   string
	SecondPassword string // only for wallets with double encryption
	APICode        string // only needed to create wallets
	BaseURL        string
	Port           int
	Timeout        time.Duration // zero leaves requests unbounded
}

// normalize validates c and fills in defaults
func (c Config) normalize() (Config, error) {
	if c.GUID == "" {
		return Config{}, errors.Wrap(ErrMissingGUID, "invalid wallet client config")
	}
	if c.MainPassword == "" {
		return Config{}, errors.Wrap(ErrMissingPassword, "invalid wallet client config")
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	return c, nil
}

// Address is the base URL joined with the port, e.g. http://127.0.0.1:3000
func (c Config) Address() string {
	return c.BaseURL + ":" + strconv.Itoa(c.Port)
}
