// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/adobe-destination/internal/eventprocessor"
	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/store"
	"github.com/tomtom215/adobe-destination/internal/validation"
)

// maxLineBytes bounds one JSON line in an events file.
const maxLineBytes = 1 << 20

func sendCmd() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Publish events or settings onto the bus",
		Subcommands: []*cli.Command{
			{
				Name:      "events",
				Usage:     "Publish the envelopes of a JSON lines file, in file order",
				ArgsUsage: "<file|->",
				Flags: []cli.Flag{
					natsURLFlag(),
					&cli.BoolFlag{Name: "dry-run", Usage: "validate and print subjects without publishing"},
				},
				Action: sendEvents,
			},
			{
				Name:      "settings",
				Usage:     "Publish a settings blob read from a YAML or JSON file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					natsURLFlag(),
					&cli.StringFlag{Name: "type", Value: string(models.UpdateInitial), Usage: "update type: initial or refresh"},
				},
				Action: sendSettings,
			},
		},
	}
}

func sendEvents(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one events file", 2)
	}

	in, closeIn, err := openInput(c.Args().First())
	if err != nil {
		return err
	}
	defer closeIn()

	envelopes, err := readEnvelopes(c.Context, in)
	if err != nil {
		return err
	}

	if c.Bool("dry-run") {
		for _, env := range envelopes {
			fmt.Fprintf(c.App.Writer, "%s %s\n", eventprocessor.EventTopic(env.Type), env.MessageID)
		}
		return nil
	}

	publisher, err := newPublisher(c.String("nats-url"))
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Published one by one: the destination's video tracker depends on order.
	for _, env := range envelopes {
		if err := publisher.PublishEnvelope(c.Context, env); err != nil {
			return fmt.Errorf("publish %s: %w", env.MessageID, err)
		}
		logging.Debug().Str("message_id", env.MessageID).Str("type", string(env.Type)).Msg("Envelope published")
	}
	fmt.Fprintf(c.App.Writer, "published %d events\n", len(envelopes))
	return nil
}

func sendSettings(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one settings file", 2)
	}

	settings, err := store.LoadSettingsFile(c.Args().First())
	if err != nil {
		return err
	}
	update := &models.SettingsUpdate{Settings: settings, Type: models.UpdateType(c.String("type"))}
	if verr := validation.ValidateStruct(update); verr != nil {
		return verr
	}

	publisher, err := newPublisher(c.String("nats-url"))
	if err != nil {
		return err
	}
	defer publisher.Close()

	if err := publisher.PublishSettings(c.Context, update); err != nil {
		return fmt.Errorf("publish settings: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "published %s settings (%d keys)\n", update.Type, len(settings))
	return nil
}

func newPublisher(url string) (*eventprocessor.Publisher, error) {
	publisher, err := eventprocessor.NewPublisher(eventprocessor.DefaultPublisherConfig(url), logging.NewWatermillAdapter())
	if err != nil {
		return nil, fmt.Errorf("connect publisher to %s: %w", url, err)
	}
	return publisher, nil
}

// openInput opens path, or stdin for "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// readEnvelopes decodes one envelope per non-blank line. Lines are decoded
// and validated concurrently; the result keeps file order and every
// envelope gets a message id.
func readEnvelopes(ctx context.Context, r io.Reader) ([]*models.Envelope, error) {
	var lines [][]byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			lines = append(lines, nil)
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	decoded := make([]*models.Envelope, len(lines))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, line := range lines {
		if line == nil {
			continue
		}
		g.Go(func() error {
			var env models.Envelope
			if err := json.Unmarshal(line, &env); err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			if verr := validation.ValidateStruct(&env); verr != nil {
				return fmt.Errorf("line %d: %w", i+1, verr)
			}
			env.EnsureMessageID()
			decoded[i] = &env
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	envelopes := make([]*models.Envelope, 0, len(decoded))
	for _, env := range decoded {
		if env != nil {
			envelopes = append(envelopes, env)
		}
	}
	return envelopes, nil
}
