package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/saif727/wallet-service-client/services"
	stellarconfig "github.com/stellar/go/support/config"
	"github.com/stellar/go/support/errors"
)

// DefaultPath is read when no other config file is given
const DefaultPath = "walletd.toml"

type (
	// Config is the walletd configuration. Values come from a TOML file or,
	// when no file is used, from the environment.
	Config struct {
		ListenAddress string `toml:"listen_address" env:"LISTEN_ADDRESS" envDefault:":8080" valid:"optional"`
		LogLevel      string `toml:"log_level" env:"LOG_LEVEL" envDefault:"info" valid:"optional"`
		Wallet        Wallet `toml:"wallet" envPrefix:"WALLET_" valid:"required"`
	}

	// Wallet holds the wallet service connection settings
	Wallet struct {
		GUID           string `toml:"guid" env:"GUID" valid:"required"`
		MainPassword   string `toml:"main_password" env:"MAIN_PASSWORD" valid:"required"`
		SecondPassword string `toml:"second_password" env:"SECOND_PASSWORD" valid:"optional"`
		APICode        string `toml:"api_code" env:"API_CODE" valid:"optional"`
		BaseURL        string `toml:"base_url" env:"BASE_URL" envDefault:"http://127.0.0.1" valid:"optional"`
		Port           int    `toml:"port" env:"PORT" envDefault:"3000" valid:"optional"`
		TimeoutSeconds int    `toml:"timeout_seconds" env:"TIMEOUT_SECONDS" valid:"optional"`
	}
)

// Default returns the configuration used for keys the file leaves out
func Default() Config {
	return Config{
		ListenAddress: ":8080",
		LogLevel:      "info",
		Wallet: Wallet{
			BaseURL: services.DefaultBaseURL,
			Port:    services.DefaultPort,
		},
	}
}

// Load reads the TOML file at path. An empty path means DefaultPath, and
// only then does a missing file fall back to environment variables.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		conf := Default()
		if err := stellarconfig.Read(path, &conf); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
		return conf, nil
	case explicit:
		return Config{}, errors.Wrapf(err, "config file %s", path)
	}

	var conf Config
	if err := env.Parse(&conf); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	return conf, nil
}

// Client converts the wallet section into the client's configuration
func (w Wallet) Client() services.Config {
	return services.Config{
		GUID:           w.GUID,
		MainPassword:   w.MainPassword,
		SecondPassword: w.SecondPassword,
		APICode:        w.APICode,
		BaseURL:        w.BaseURL,
		Port:           w.Port,
		Timeout:        time.Duration(w.TimeoutSeconds) * time.Second,
	}
}
