// Package main is the entry point for the claimflow maintenance CLI.
package main

import (
	"fmt"
	"os"

	"gitlab.com/campusworks/claimflow/internal/config"
	"gitlab.com/campusworks/claimflow/internal/export"
	"gitlab.com/campusworks/claimflow/internal/logger"
	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/repository"
	"gitlab.com/campusworks/claimflow/internal/service"
	"gitlab.com/campusworks/claimflow/internal/storage"
	"gitlab.com/campusworks/claimflow/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `usage: claimflow <command>

commands:
  version                          print build information
  stats <managerEmail>             pending/approved/rejected summary for a manager
  summary <lecturerEmail>          claim summary for a lecturer
  cleanup                          remove orphaned files from the registry
  storage                          storage statistics
  export <managerEmail> <out.csv>  export a manager's claims as CSV
  chart <managerEmail> <out.png>   render a claims-by-status chart
`

// initLogging configures the log level and enforces a real LOG_HASH_SALT so
// email hashes in log output are not computed from the development default.
func initLogging(cfg *config.Config) {
	logger.SetLevel(cfg.LogLevel)
	logger.InitHashSalt()
}

type app struct {
	claims  *repository.ClaimRepository
	service *service.ClaimService
	files   *storage.FileStorage
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}
	if os.Args[1] == "version" {
		fmt.Printf("claimflow %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}
	initLogging(cfg)

	claims := repository.NewClaimRepository(
		store.New[models.Claim](cfg.ClaimsPath(), "claims"))
	notifications := repository.NewNotificationRepository(
		store.New[models.Notification](cfg.NotificationsPath(), "notifications"))
	registry := store.New[models.FileRegistryEntry](cfg.FileRegistryPath(), "file registry")

	files, err := storage.New(cfg.StorageDir, registry)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open file storage")
	}

	a := &app{
		claims:  claims,
		service: service.NewClaimService(claims, notifications, files),
		files:   files,
	}

	if err := a.run(os.Args[1:]); err != nil {
		logger.Log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

func (a *app) run(args []string) error {
	switch args[0] {
	case "stats":
		if len(args) < 2 {
			return fmt.Errorf("usage: claimflow stats <managerEmail>")
		}
		stats := a.claims.Stats(args[1])
		fmt.Printf("Pending claims:      %d\n", stats.PendingClaims)
		fmt.Printf("Approved this month: %d\n", stats.ApprovedThisMonth)
		fmt.Printf("Rejected this month: %d\n", stats.RejectedThisMonth)
		fmt.Printf("Pending amount:      R%s\n", stats.TotalPendingAmount.StringFixed(2))
		return nil

	case "summary":
		if len(args) < 2 {
			return fmt.Errorf("usage: claimflow summary <lecturerEmail>")
		}
		summary := a.claims.LecturerSummary(args[1])
		fmt.Printf("Claims in flight: %d\n", summary.PendingClaims)
		fmt.Printf("Approved claims:  %d\n", summary.ApprovedClaims)
		fmt.Printf("Total earnings:   R%s\n", summary.TotalEarnings.StringFixed(2))
		return nil

	case "cleanup":
		removed := a.service.CleanupOrphanedFiles()
		fmt.Printf("Removed %d orphaned file(s)\n", removed)
		return nil

	case "storage":
		stats := a.files.GetStorageStatistics()
		fmt.Printf("Files: %d, total size: %s\n", stats.TotalFiles, storage.FormatFileSize(stats.TotalSizeBytes))
		for kind, count := range stats.FilesByType {
			fmt.Printf("  %s: %d\n", kind, count)
		}
		return nil

	case "export":
		if len(args) < 3 {
			return fmt.Errorf("usage: claimflow export <managerEmail> <out.csv>")
		}
		data, err := export.ClaimsCSV(a.claims.GetByManager(args[1]))
		if err != nil {
			return err
		}
		return os.WriteFile(args[2], data, 0o600)

	case "chart":
		if len(args) < 3 {
			return fmt.Errorf("usage: claimflow chart <managerEmail> <out.png>")
		}
		data, err := export.StatusChart(a.claims.GetByManager(args[1]), "Claims by Status")
		if err != nil {
			return err
		}
		return os.WriteFile(args[2], data, 0o600)

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}
