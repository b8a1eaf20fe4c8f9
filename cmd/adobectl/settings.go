// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/store"
)

func settingsCmd() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Inspect the persisted initial settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the stored snapshot and the settings the plugin resolves from it",
				Flags: []cli.Flag{storeFlag()},
				Action: func(c *cli.Context) error {
					return showSettings(c, c.String("store"))
				},
			},
			{
				Name:  "clear",
				Usage: "Delete the stored snapshot so the next boot reads the seed file",
				Flags: []cli.Flag{storeFlag()},
				Action: func(c *cli.Context) error {
					s, err := store.Open(c.String("store"))
					if err != nil {
						return err
					}
					defer s.Close()
					if err := s.Clear(c.Context); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "settings snapshot cleared")
					return nil
				},
			},
		},
	}
}

func storeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "store",
		Usage:    "settings store directory (stop the server first, Badger holds a lock)",
		EnvVars:  []string{"STORE_PATH"},
		Required: true,
	}
}

// settingsView is what settings show prints.
type settingsView struct {
	Snapshot *store.Snapshot `json:"snapshot"`
	Resolved adobe.Settings  `json:"resolved"`
}

func showSettings(c *cli.Context, path string) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.Snapshot(c.Context)
	if err != nil {
		return err
	}
	if snap == nil {
		fmt.Fprintln(c.App.Writer, "no settings snapshot stored")
		return nil
	}

	out, err := json.MarshalIndent(settingsView{Snapshot: snap, Resolved: adobe.Resolve(snap.Settings)}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}
