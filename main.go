package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saif727/wallet-service-client/config"
	"github.com/saif727/wallet-service-client/controllers"
	"github.com/saif727/wallet-service-client/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stellar/go/support/errors"
	"github.com/stellar/go/support/log"
)

var (
	configPath string
	noProbe    bool
)

var rootCmd = &cobra.Command{
	Use:           "walletd",
	Short:         "Client and HTTP gateway for the wallet service API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP gateway",
	Long: `Serves every wallet operation as a JSON endpoint under /api/v1, plus /healthz and /metrics.
The gateway passes credentials from its own config to the wallet service and should not be exposed to the Internet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, client, err := setup(cmd)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), conf, client)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "TOML config file; without this flag, environment variables are used when "+config.DefaultPath+" does not exist")
	rootCmd.PersistentFlags().BoolVar(&noProbe, "no-probe", false, "skip the wallet service connectivity check at startup")
	rootCmd.AddCommand(serveCmd)
	addOperationCommands(rootCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithField("err", err).Error("walletd failed")
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration and builds the wallet client. An
// unreachable wallet service is logged and tolerated.
func setup(cmd *cobra.Command) (config.Config, *services.WalletClient, error) {
	ctx := cmd.Context()

	path := ""
	if cmd.Flags().Changed("config") {
		path = configPath
	}
	conf, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		return config.Config{}, nil, errors.Wrap(err, "invalid log_level")
	}
	log.SetLevel(level)

	var opts []services.Option
	if noProbe {
		opts = append(opts, services.WithoutProbe())
	}

	client, err := services.NewWalletClient(ctx, conf.Wallet.Client(), opts...)
	if err != nil {
		if errors.Cause(err) != services.ErrServiceUnreachable {
			return config.Config{}, nil, err
		}
		log.WithField("err", err).Warn("Continuing; the wallet service may come up later")
	}
	return conf, client, nil
}

func serve(ctx context.Context, conf config.Config, client *services.WalletClient) error {
	if conf.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := log.DefaultLogger.WithField("service", "walletd")
	ctrl := controllers.NewWalletController(client, controllers.NewMetrics())
	srv := &http.Server{
		Addr:              conf.ListenAddress,
		Handler:           controllers.NewRouter(ctrl, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithField("address", conf.ListenAddress).Info("Starting gateway")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "gateway stopped")
	case <-ctx.Done():
	}

	logger.Info("Shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
