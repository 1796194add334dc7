package app

import (
	"os"
	"time"

	"github.com/emogo-app/core/internal/config"
	"github.com/emogo-app/core/internal/pkg/nativelog"
)

// applyRuntimeSettings propagates config-derived paths to the packages
// that read them from the environment.
func applyRuntimeSettings(cfg *config.AppConfig) {
	_ = os.Setenv(nativelog.EnvLogDir, cfg.LogDir())
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Truncate(time.Second).String()
	}
	if d < time.Hour {
		return d.Truncate(time.Minute).String()
	}
	if d < 24*time.Hour {
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}
