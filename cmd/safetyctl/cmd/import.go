package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steven-d-pennington/restricted-diet-app/backend/config"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/cache"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/database"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/refdata"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Load reference data into the database",
	Long: `Upsert restrictions, ingredient ratings and products from a reference data
file. The path is a local file or an s3://bucket/key URI. Cached assessments
are purged once the import commits.

Database, redis and AWS settings come from the same environment as the API.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	assessmentCache := cache.NewAssessmentCache(nil, 0)
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn("redis unavailable, skipping assessment cache purge", "error", err)
		} else {
			defer client.Close()
			assessmentCache = cache.NewAssessmentCache(client, cfg.AssessmentCacheTTL)
		}
	}

	var objects refdata.ObjectOpener
	if _, _, ok := config.ParseS3URI(args[0]); ok {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		objects = s3cfg
	}

	stats, err := refdata.NewImporter(db, assessmentCache, objects, log).ImportPath(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d restrictions, %d ingredients (%d ratings), %d products; purged %d cached assessments\n",
		stats.Restrictions, stats.Ingredients, stats.Ratings, stats.Products, stats.Purged)
	return nil
}
