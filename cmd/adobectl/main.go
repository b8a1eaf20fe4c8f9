// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

// Command adobectl talks to a running Adobe destination: it publishes events
// and settings onto the bus, inspects the settings store and tails the
// analytics calls published by the bus sink.
//
//	adobectl send events --nats-url nats://127.0.0.1:4222 events.jsonl
//	adobectl send settings --type initial settings.yaml
//	adobectl settings show --store /data/settings
//	adobectl calls tail --prefix adobe.sdk
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/adobe-destination/internal/logging"
)

const appName = "adobectl"

// Set at build time.
var version = "dev"

func main() {
	logging.Init(logging.Config{Level: "warn", Format: "console", Service: appName})

	if err := newApp().Run(os.Args); err != nil {
		logging.Fatal().Err(err).Msg("adobectl failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    appName,
		Usage:   "Operate an Adobe destination over NATS and its settings store",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "log level: trace, debug, info, warn, error",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logging.SetLevelString(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			sendCmd(),
			settingsCmd(),
			callsCmd(),
		},
	}
}

// natsURLFlag is shared by the commands that connect to the bus.
func natsURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "nats-url",
		Value:   "nats://127.0.0.1:4222",
		Usage:   "NATS server URL",
		EnvVars: []string{"NATS_URL"},
	}
}
