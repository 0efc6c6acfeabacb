package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gpt-commenter/internal/admin"
	"gpt-commenter/internal/config"
	"gpt-commenter/internal/gameevent"
	"gpt-commenter/internal/history"
	"gpt-commenter/internal/llm"
	"gpt-commenter/internal/metrics"
	"gpt-commenter/internal/orchestrator"
	"gpt-commenter/internal/ratelimit"
	"gpt-commenter/internal/storage"
)

// consoleSink writes generated messages to stdout, one per line, in the
// framing the server-side consumer expects.
type consoleSink struct{}

func (consoleSink) Broadcast(text string) {
	fmt.Printf("[broadcast] %s\n", text)
}

func (consoleSink) Reply(userID, text string) {
	fmt.Printf("[reply:%s] %s\n", userID, text)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfgm, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := cfgm.Current()

	factory := llm.NewFactory(cfg)
	client, err := factory.CreateClient(cfg.LLMProvider)
	if err != nil {
		// Degraded mode: requests short-circuit to a fixed message
		// instead of crashing the host.
		log.Printf("SEVERE: completion client could not be constructed, responses degraded: %v", err)
		client = nil
	}

	var rec storage.Recorder
	switch cfg.TranscriptBackend {
	case "file":
		fr, err := storage.NewFileRecorder(cfg.TranscriptFilePath)
		if err != nil {
			log.Printf("failed to init transcript file recorder: %v", err)
		} else {
			rec = fr
		}
	case "sqlite":
		sr, err := storage.NewSQLiteRecorder(cfg.TranscriptDBPath)
		if err != nil {
			log.Printf("failed to init transcript sqlite recorder: %v", err)
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	collector := metrics.NewCollector()
	flusher := metrics.NewFlusher(collector, time.Duration(cfg.MetricsFlushMinutes)*time.Minute)
	if err := flusher.Start(); err != nil {
		log.Fatalf("failed to start metrics flusher: %v", err)
	}
	defer flusher.Stop()

	sink := consoleSink{}
	orch := orchestrator.New(
		cfgm,
		client,
		factory,
		history.NewManager(cfg.MaxHistory),
		ratelimit.NewLimiter(),
		collector,
		rec,
		sink,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	orch.Start(ctx)
	defer orch.Stop()

	adminHandler := admin.NewHandler(orch)

	source := gameevent.NewStreamSource(os.Stdin)
	err = source.Run(ctx, func(ev gameevent.Event) {
		if ev.Kind == gameevent.KindAdmin {
			sink.Reply(ev.UserID, adminHandler.Execute(ev.Payload))
			return
		}
		orch.Handle(ev)
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("event source failed: %v", err)
	}
	log.Printf("event stream closed, shutting down")
}
