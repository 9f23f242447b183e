package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/home-bridge/cmd"
)

func main() {
	app := &cli.App{
		Name:  "home-bridge",
		Usage: "REST bridge for rf outlets, shutters, tradfri lights and temperature sensors",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the bridge",
				Action: cmd.ServeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "device inventory yaml file, overrides CONFIG_FILE",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "overrides LOG_LEVEL",
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "http listen address, overrides LISTEN_ADDR",
					},
				},
			},
			{
				Name:   "keygen",
				Usage:  "generate an api key for a user of the inventory",
				Action: cmd.KeygenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Required: true,
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
