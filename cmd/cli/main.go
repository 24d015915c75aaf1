package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/storeadmin/internal/buildinfo"
	"github.com/dmitrijs2005/storeadmin/internal/client/cli"
	"github.com/dmitrijs2005/storeadmin/internal/client/config"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
