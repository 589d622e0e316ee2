package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cppla/gamehouse/config"
	"github.com/cppla/gamehouse/models"
	"github.com/cppla/gamehouse/routes"
	"github.com/cppla/gamehouse/utils"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML or JSON config file (default: config/config.yaml, then config/config.json)")
	migrateOnly := pflag.Bool("migrate-only", false, "apply schema migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Logger.Sync()

	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		utils.Logger.Fatal("database init failed", zap.Error(err))
	}
	if *migrateOnly {
		utils.Sugar.Infof("migrations applied to %s database", cfg.DBDriver)
		return
	}

	rdb := utils.NewRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	r := routes.SetupRouter(cfg, db, rdb)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
