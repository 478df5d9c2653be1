package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/worldevents/pkg/worldevents"
	"github.com/randalmurphal/worldevents/pkg/worldevents/api"
	"github.com/randalmurphal/worldevents/pkg/worldevents/archive"
	"github.com/randalmurphal/worldevents/pkg/worldevents/forecast"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
)

const shutdownTimeout = 5 * time.Second

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the engine and serve the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "HTTP listen address")
	cmd.Flags().String("kafka-brokers", "", "comma-separated Kafka brokers to forward notifications to")
	cmd.Flags().String("kafka-topic", "worldevents", "Kafka topic for forwarded notifications")
	cmd.Flags().String("archive-sqlite", "", "SQLite file that resolved events are exported to")
	cmd.Flags().String("archive-s3-bucket", "", "S3 bucket that resolved events are exported to")
	cmd.Flags().String("archive-s3-prefix", "worldevents", "key prefix inside the S3 bucket")
	cmd.Flags().Int64("forecast-seed", 1, "seed for the built-in forecast providers")
	cmd.Flags().Bool("otel", false, "record metrics and spans through the global OpenTelemetry providers")
	for _, name := range []string{"addr", "kafka-brokers", "kafka-topic", "archive-sqlite", "archive-s3-bucket", "archive-s3-prefix", "forecast-seed", "otel"} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func serve(ctx context.Context) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	opts, err := engineOptions()
	if err != nil {
		return err
	}
	opts = append(opts,
		worldevents.WithLogger(logger),
		worldevents.WithForecastProviders(forecast.NoiseProviders(cat, viper.GetInt64("forecast-seed"))...),
	)
	if viper.GetBool("otel") {
		opts = append(opts,
			worldevents.WithMetrics(observability.NewMetricsRecorder()),
			worldevents.WithTracing(observability.NewSpanManager()),
		)
	}

	sink, err := openArchive(ctx)
	if err != nil {
		return err
	}
	if sink != nil {
		opts = append(opts, worldevents.WithArchive(sink))
	}

	engine, err := worldevents.New(cat, opts...)
	if err != nil {
		if sink != nil {
			_ = sink.Close()
		}
		return err
	}

	if brokers := viper.GetString("kafka-brokers"); brokers != "" {
		topic := viper.GetString("kafka-topic")
		fwd := notify.NewKafkaForwarder(
			notify.NewKafkaWriter(strings.Split(brokers, ","), topic),
			notify.WithForwarderLogger(logger),
		)
		fwd.Attach(engine.Bus())
		defer fwd.Close()
		logger.Info("forwarding notifications to kafka", slog.String("brokers", brokers), slog.String("topic", topic))
	}

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	addr := viper.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(engine, api.WithLogger(logger)).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

func openArchive(ctx context.Context) (archive.Sink, error) {
	sqlitePath := viper.GetString("archive-sqlite")
	bucket := viper.GetString("archive-s3-bucket")
	switch {
	case sqlitePath != "" && bucket != "":
		return nil, errors.New("--archive-sqlite and --archive-s3-bucket are mutually exclusive")
	case sqlitePath != "":
		return archive.NewSQLiteStore(sqlitePath)
	case bucket != "":
		return archive.NewS3ArchiverFromEnv(ctx, bucket, viper.GetString("archive-s3-prefix"))
	default:
		return nil, nil
	}
}
