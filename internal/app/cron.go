package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/config"
	"github.com/emogo-app/core/internal/database"
	"github.com/emogo-app/core/internal/modules/backup"
	"github.com/emogo-app/core/internal/modules/records"
	pkgcron "github.com/emogo-app/core/internal/pkg/cron"
	"github.com/emogo-app/core/internal/pkg/nativelog"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *database.Database, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	if cfg.Backup.Enable {
		interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
		if interval <= 0 {
			interval = 24 * time.Hour
		}
		store := records.NewMongoStore(db.Collection(cfg.MongoDB.CollectionName()))
		backupSvc := backup.NewService(store, cfg, logger)

		sched.Register(pkgcron.Job{
			Name:        "auto_backup",
			Description: "定時備份心情紀錄到本地",
			Interval:    interval,
			Fn: func(ctx context.Context) error {
				cronLogger.Info("備份心情紀錄中...")
				if _, err := backupSvc.CreateArchive(ctx); err != nil {
					cronLogger.Warn("備份失敗", zap.Error(err))
					return err
				}
				return nil
			},
		})
	}

	sched.Register(pkgcron.Job{
		Name:        "cleanup_logs",
		Description: "清理 30 天以上的日誌檔",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			dir := nativelog.ResolveDir()
			entries, err := os.ReadDir(dir)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil
				}
				return err
			}

			cutoff := time.Now().AddDate(0, 0, -30)
			removed := 0
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil || info.ModTime().After(cutoff) {
					continue
				}
				if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
					removed++
				}
			}
			if removed > 0 {
				cronLogger.Info(fmt.Sprintf("清理日誌完成，共刪除 %d 個檔案", removed))
			}
			return nil
		},
	})
}
