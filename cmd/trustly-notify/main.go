// Command trustly-notify receives payment notifications, verifies their
// signature and answers with a signed acknowledgment. Verified
// notifications are logged; Prometheus metrics are served on /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sebamiro/trustly"
	"github.com/sebamiro/trustly/internal/logger"
	"github.com/sebamiro/trustly/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, listen, path string

	flagSet := pflag.NewFlagSet("trustly-notify", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	flagSet.StringVar(&listen, "listen", ":8080", "address to listen on")
	flagSet.StringVar(&path, "path", "/notifications", "path notifications are posted to")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := trustly.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := trustly.New(*cfg, trustly.WithLogger(log), trustly.WithMetrics(trustly.NewMetrics(reg)))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(path, client.NotificationHandler(func(_ context.Context, n *message.NotificationRequest) error {
		fields := []zap.Field{
			zap.String("method", n.Method()),
			zap.String("uuid", n.UUID()),
			zap.String("orderid", n.DataAt("orderid").Text()),
			zap.String("notificationid", n.DataAt("notificationid").Text()),
		}
		if amount, ok := n.Amount(); ok {
			fields = append(fields, zap.String("amount", amount.StringFixed(2)), zap.String("currency", n.DataAt("currency").Text()))
		}
		log.Info("notification received", fields...)
		return nil
	}))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", listen), zap.String("path", path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
