// Command activity-tail prints note and account activity from the NATS stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"notekeeper-be/internal/config"
	"notekeeper-be/pkg/events"
	natsstream "notekeeper-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	durable := flag.String("durable", "activity-tail", "durable consumer name")
	eventType := flag.String("type", "*", "event type to follow, e.g. NOTE_CREATED")
	flag.Parse()

	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := natsstream.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatal("Error: Failed to connect to NATS:", err)
	}
	defer sub.Close()

	if err := sub.Subscribe(ctx, natsstream.Subject(*eventType), *durable, printEvent); err != nil {
		log.Fatal("Error:", err)
	}

	color.Cyan("Following %s on %s", natsstream.Subject(*eventType), cfg.App.NatsURL)
	<-ctx.Done()
}

func printEvent(_ context.Context, event events.Event) error {
	label := color.New(color.FgGreen, color.Bold)
	if event.EventType() == events.NoteDeleted {
		label = color.New(color.FgRed, color.Bold)
	}
	fmt.Printf("%s %s %v\n",
		color.HiBlackString(event.Timestamp().Local().Format("15:04:05")),
		label.Sprint(event.EventType()),
		event.Payload())
	return nil
}
