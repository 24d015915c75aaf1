package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/storeadmin/internal/buildinfo"
	"github.com/dmitrijs2005/storeadmin/internal/fakeapi"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := fakeapi.LoadConfig(os.Args[1:], os.Environ())
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app, err := fakeapi.NewApp(cfg, logging.NewText(os.Stderr, cfg.LogLevel))
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
