package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [file.gz ...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Imports gzipped CODE,AMOUNT coupon files. Without arguments the files")
		fmt.Fprintln(flag.CommandLine.Output(), "listed in COUPON_IMPORT_FILES are used. With S3 enabled each file is")
		fmt.Fprintln(flag.CommandLine.Output(), "read from S3_BUCKET under S3_PREFIX first.")
	}
	flag.Parse()

	dbCfg, logCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	s3Cfg := config.LoadS3()
	if err := s3Cfg.Validate(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(logCfg, "storefront-couponimport")

	files := flag.Args()
	if len(files) == 0 {
		files = config.LoadCoupon().ImportFiles
	}
	if len(files) == 0 {
		flag.Usage()
		return fmt.Errorf("no coupon files given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, dbCfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	importer := coupon.NewImporter(
		coupon.NewConfiguredLoader(ctx, s3Cfg, logger),
		repository.NewCouponRepository(pool, logger),
		logger,
	)

	result, err := importer.Import(ctx, files)
	if err != nil {
		return err
	}

	logger.Info().
		Int("files", result.Files).
		Int("coupons", result.Coupons).
		Msg("coupon import finished")

	return nil
}
