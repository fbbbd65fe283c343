package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"masta/config"
	"masta/core/catalog"
	"masta/core/fetch"
	"masta/core/ingest"
	"masta/db"
	"masta/logger"
	"masta/repository"

	"github.com/spf13/cobra"
)

var metadataOpts ingest.Options

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Reconcile library metadata against the external catalog",
	Long: `Run the offline metadata passes: artist enrichment (name, bio,
banner, album discovery), profile pictures and track discovery. Flags
select which passes run; with no flags the command does nothing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogPath,
		})

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database with GORM: %v", err)
		}
		defer db.CloseGormDB()

		artistRepo := repository.NewArtistRepository(db.GormDB)
		albumRepo := repository.NewAlbumRepository(db.GormDB)
		trackRepo := repository.NewTrackRepository(db.GormDB)

		client := catalog.NewClient(cfg.CatalogAPIURL, cfg.CatalogTimeout)
		prober := fetch.NewFetcher(cfg.YtdlpPath, cfg.FFmpegPath, cfg.TempDir, cfg.FragmentRetries, cfg.DownloadRetries)
		images := ingest.NewImageFetcher(cfg.MediaRoot, cfg.ImageTimeout)
		nfo := ingest.NewNFOWriter(cfg.MediaRoot)

		driver := ingest.NewDriver(artistRepo, albumRepo, trackRepo, client, prober, images, nfo, cfg.ChannelURLPrefix)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := driver.Run(ctx, metadataOpts); err != nil {
			log.Fatalf("Metadata reconciliation failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(metadataCmd)

	metadataCmd.Flags().BoolVar(&metadataOpts.Name, "name", false, "refresh artists with an empty name")
	metadataCmd.Flags().BoolVar(&metadataOpts.Banner, "banner", false, "fetch banners for artists without one")
	metadataCmd.Flags().BoolVar(&metadataOpts.Albums, "album", false, "discover albums for artists without any")
	metadataCmd.Flags().BoolVar(&metadataOpts.ProfilePics, "pp", false, "fetch profile pictures for artists without one")
	metadataCmd.Flags().BoolVar(&metadataOpts.Tracks, "tracks", false, "discover tracks for albums without any")

	metadataCmd.Example = `  # Full first-time reconciliation
  masta metadata --name --banner --album --tracks --pp

  # Only pick up tracks for newly discovered albums
  masta metadata --tracks`
}
