package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"masta/config"
	"masta/core/fetch"
	"masta/core/ingest"
	"masta/core/tag"
	"masta/db"
	"masta/logger"
	"masta/repository"
	"masta/storage"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download audio for tracks missing a file",
	Long: `Fetch audio for every track without a downloaded file, tag it and
move it into the media tree. Interrupted runs resume where they left
off. When the MinIO mirror is enabled, finished files are also uploaded
to the archive bucket.`,
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

		trackRepo := repository.NewTrackRepository(db.GormDB)
		fetcher := fetch.NewFetcher(cfg.YtdlpPath, cfg.FFmpegPath, cfg.TempDir, cfg.FragmentRetries, cfg.DownloadRetries)

		var archiver ingest.Archiver
		if cfg.MinioEnabled {
			a, err := storage.NewMinioArchiver(cfg)
			if err != nil {
				log.Fatalf("Failed to connect to MinIO: %v", err)
			}
			archiver = a
		}

		downloader := ingest.NewDownloader(trackRepo, fetcher, tag.Tagger{}, archiver, cfg.MediaRoot, rate.Every(cfg.DownloadDelay))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := downloader.Run(ctx); err != nil {
			log.Fatalf("Download run failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
