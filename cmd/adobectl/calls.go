// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v2"

	"github.com/tomtom215/adobe-destination/internal/sink"
)

func callsCmd() *cli.Command {
	return &cli.Command{
		Name:  "calls",
		Usage: "Watch the analytics calls published by the bus sink",
		Subcommands: []*cli.Command{
			{
				Name:  "tail",
				Usage: "Print calls as they are published until interrupted",
				Flags: []cli.Flag{
					natsURLFlag(),
					&cli.StringFlag{
						Name:    "prefix",
						Value:   sink.DefaultSubjectPrefix,
						Usage:   "subject prefix of the bus sink",
						EnvVars: []string{"ADOBE_SUBJECT_PREFIX"},
					},
				},
				Action: tailCalls,
			},
		},
	}
}

func tailCalls(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := natsgo.Connect(c.String("nats-url"), natsgo.Name(appName))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	subject := c.String("prefix") + ".>"
	sub, err := nc.Subscribe(subject, func(msg *natsgo.Msg) {
		printCall(c.App.Writer, msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	fmt.Fprintf(c.App.ErrWriter, "tailing %s\n", subject)
	<-ctx.Done()
	return nil
}

// printCall writes one line per call: time, op, name and payload sizes.
func printCall(w io.Writer, subject string, data []byte) {
	call, err := sink.DecodeCall(data)
	if err != nil {
		fmt.Fprintf(w, "%s undecodable call: %v\n", subject, err)
		return
	}

	line := fmt.Sprintf("%s %-20s", call.Time.Format(time.RFC3339Nano), call.Op)
	if call.Name != "" {
		line += " name=" + call.Name
	}
	if call.ObjectType != "" {
		line += " object=" + call.ObjectType
	}
	if call.Position != nil {
		line += fmt.Sprintf(" position=%g", *call.Position)
	}
	if len(call.Data) > 0 {
		line += fmt.Sprintf(" data=%d", len(call.Data))
	}
	if len(call.Metadata) > 0 {
		line += fmt.Sprintf(" metadata=%d", len(call.Metadata))
	}
	fmt.Fprintln(w, line)
}
