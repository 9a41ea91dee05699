package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/revpay/internal/auth"
	"github.com/dmitrijs2005/revpay/internal/billing"
	"github.com/dmitrijs2005/revpay/internal/cli"
	"github.com/dmitrijs2005/revpay/internal/config"
	"github.com/dmitrijs2005/revpay/internal/logging"
	"github.com/dmitrijs2005/revpay/internal/notify"
	"github.com/dmitrijs2005/revpay/internal/repositories/repomanager"
	"github.com/dmitrijs2005/revpay/internal/wallet"
)

func initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*cli.App, error) {

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	guard := auth.NewGuard(m, cfg.MaxFailedLoginAttempts, []byte(cfg.SecretKey), cfg.SessionValidityDuration)
	notifySvc := notify.NewService(m)
	ledger := wallet.NewLedger(m, cfg.LockTimeout)
	walletSvc := wallet.NewService(m, ledger, notifySvc, logger)
	billingSvc := billing.NewService(m, []byte(cfg.FieldEncryptionKey))

	exporter := &wallet.S3Exporter{
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		BaseEndpoint: cfg.S3BaseEndpoint,
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
	}

	local := &wallet.FileExporter{Dir: "exports"}

	return cli.NewApp(guard, walletSvc, notifySvc, billingSvc, exporter, local, logger, os.Stdin, os.Stdout), nil
}

func main() {

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	initSignalHandler(cancelFunc)

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	cfg := config.LoadConfig()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
