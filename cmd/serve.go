package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/porthorian/fedcheck"
	httptransport "github.com/porthorian/fedcheck/pkg/transport/http"
)

type serveConfig struct {
	ListenAddress string
	MetricsPath   string
	Metrics       bool
	Verbosity     int
}

func init() {
	rootCmd.AddCommand(newServeCommand())
}

func newServeCommand() *cobra.Command {
	cfg := serveConfig{
		ListenAddress: ":8080",
		MetricsPath:   "/metrics",
		Metrics:       true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the federation config validation HTTP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfg)
		},
	}

	serveCmd.Flags().StringVar(&cfg.ListenAddress, "listen", cfg.ListenAddress, "Address for the HTTP listener.")
	serveCmd.Flags().StringVar(&cfg.MetricsPath, "metrics-path", cfg.MetricsPath, "Path for the Prometheus metrics handler.")
	serveCmd.Flags().BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "Expose Prometheus metrics.")
	serveCmd.Flags().IntVarP(&cfg.Verbosity, "verbosity", "v", 0, "Log verbosity level.")

	return serveCmd
}

func runServe(cmd *cobra.Command, cfg serveConfig) error {
	logger := funcr.New(func(prefix, args string) {
		fmt.Fprintln(os.Stderr, prefix, args)
	}, funcr.Options{Verbosity: cfg.Verbosity})

	metricsBackend := fedcheck.MetricsBackendNone
	if cfg.Metrics {
		metricsBackend = fedcheck.MetricsBackendPrometheus
	}

	client, err := fedcheck.New(fedcheck.Config{
		Logger: logger,
		Runtime: fedcheck.RuntimeConfig{
			HTTP:    fedcheck.HTTPConfig{ListenAddress: cfg.ListenAddress},
			Metrics: fedcheck.MetricsConfig{Backend: metricsBackend},
		},
	})
	if err != nil {
		return err
	}

	handlerConfig := httptransport.Config{
		Dispatcher: client,
		Logger:     logger,
	}

	mux := http.NewServeMux()
	if cfg.Metrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		handlerConfig.Metrics = httptransport.NewMetrics(registry)
		mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", httptransport.NewHandler(handlerConfig))

	runtime := client.Runtime().HTTP
	server := &http.Server{
		Addr:         runtime.ListenAddress,
		Handler:      mux,
		ReadTimeout:  runtime.ReadTimeout,
		WriteTimeout: runtime.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("fedcheck endpoint listening", "address", runtime.ListenAddress)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), client.Runtime().HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown did not complete cleanly: %w", err)
	}
	return nil
}
