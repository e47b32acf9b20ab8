package main

import (
	"os"

	"github.com/joho/godotenv"

	"vinylhub/internal/config"
	apphttp "vinylhub/internal/http"
	applog "vinylhub/internal/log"
	"vinylhub/internal/repos"
)

func main() {
	if err := godotenv.Load(); err != nil {
		applog.Logger().Warn().Msg("no .env file found, using environment")
	}
	cfg := config.Load()

	closer, err := applog.Setup(applog.Options{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		applog.Logger().Warn().Err(err).Str("file", cfg.LogFile).Msg("log file unavailable")
	}
	defer closer.Close()
	cfg.LogSummary()

	db, err := repos.OpenDB(cfg.DBDSN, repos.AdminSeed{Username: cfg.AdminUser, Password: cfg.AdminPass})
	if err != nil {
		applog.Logger().Error().Err(err).Str("dsn", cfg.DBDSN).Msg("db.open")
		os.Exit(1)
	}
	defer db.Close()

	app := apphttp.NewApp(cfg, db)
	applog.Logger().Info().Str("addr", ":"+cfg.Port).Msg("VinylHub listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Logger().Error().Err(err).Msg("server.listen")
		os.Exit(1)
	}
}
