// Command backline drives the indicator pipeline: stream replays a feed
// bar-by-bar, batch evaluates a fixed-size feed in one RunBatch call, and
// serve stands up the broadcast/metrics/fanout layers, streams the fixture
// feed through the pipeline, then waits for SIGINT/SIGTERM.
// Wiring order and graceful shutdown follow cmd/orderflow's shape: build
// the feed, build the graph, build the supporting infrastructure, start
// background servers, drive the pipeline, cancel on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backline/internal/barbus"
	"backline/internal/broadcast"
	"backline/internal/config"
	"backline/internal/export"
	"backline/internal/fanout"
	"backline/internal/feed"
	"backline/internal/fixture"
	"backline/internal/metrics"
	"backline/internal/pipeline"
	"backline/internal/state"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Default()
	root := &cobra.Command{
		Use:   "backline",
		Short: "Streaming indicator pipeline driver",
	}
	config.RegisterFlags(root.PersistentFlags(), &cfg)

	root.AddCommand(
		streamCmd(&cfg),
		batchCmd(&cfg),
		serveCmd(&cfg),
	)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func streamCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Replay a fixture feed through the pipeline bar-by-bar, broadcasting and exporting live",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreaming(cfg)
		},
	}
}

func batchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Evaluate the full fixture feed in one RunBatch pass and print the final snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cfg)
		},
	}
}

func serveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start broadcast, metrics, and fanout, then stream the fixture feed until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}
}

func runBatch(cfg *config.Config) error {
	f := fixture.Generate(fixture.Bars)
	g, err := pipeline.BuildDefaultGraph(f)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	n := f.Len()
	start := time.Now()
	g.RunBatch(n)
	if n > 0 {
		perBar := time.Since(start) / time.Duration(n)
		for i := 0; i < n; i++ {
			metrics.ObserveBar(perBar)
		}
	}
	metrics.SetNodesRegistered(g.Len())

	snap := g.Snapshot(&pipeline.Context{Bar: n - 1, ClockUnix: int64(n - 1)})
	for _, v := range snap.Values {
		fmt.Printf("%s = %.6f\n", v.Name, v.V)
	}
	return nil
}

func runStreaming(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyShutdown(cancel)

	f := feed.New()
	bars := fixture.GenerateBars(fixture.Bars)
	g, err := pipeline.BuildDefaultGraph(f)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	p := pipeline.NewPipeline(g, cfg.Savemem)
	metrics.SetNodesRegistered(g.Len())

	bus := barbus.New()
	writer := export.NewWriter(cfg.ExportDir)
	defer writer.Close()

	sub := bus.Subscribe(1024)
	go func() {
		for snap := range sub {
			writer.Log(snap)
		}
	}()

	for bar, b := range bars {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		f.Append(b)
		start := time.Now()
		p.Tick(int64(bar))
		metrics.ObserveBar(time.Since(start))
		bus.Publish(g.Snapshot(p.Ctx))
	}
	return nil
}

func runServe(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyShutdown(cancel)

	f := feed.New()
	bars := fixture.GenerateBars(fixture.Bars)
	g, err := pipeline.BuildDefaultGraph(f)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	p := pipeline.NewPipeline(g, cfg.Savemem)
	metrics.SetNodesRegistered(g.Len())

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr)
		defer srv.Close()
	}

	bus := barbus.New()
	ring := state.NewRingBuffer(cfg.HistorySize)
	for _, snap := range state.LoadFromCSV(cfg.ExportDir, cfg.HistorySize) {
		ring.Add(snap)
	}
	writer := export.NewWriter(cfg.ExportDir)
	defer writer.Close()

	broadcastSub := bus.Subscribe(1024)
	exportSub := bus.Subscribe(1024)
	go func() {
		for snap := range exportSub {
			ring.Add(snap)
			writer.Log(snap)
		}
	}()

	broadcaster := broadcast.NewBroadcaster(broadcastSub, ring)
	go func() {
		if err := broadcaster.Start(cfg.Listen); err != nil {
			log.Printf("serve: broadcaster stopped: %v", err)
		}
	}()

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		relay := fanout.NewRelay(client, "backline:"+cfg.Symbol)
		relaySub := bus.Subscribe(1024)
		go func() {
			for snap := range relaySub {
				if err := relay.Publish(ctx, snap); err != nil {
					log.Printf("serve: fanout publish failed: %v", err)
				}
			}
		}()
	}

	for bar, b := range bars {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		f.Append(b)
		start := time.Now()
		p.Tick(int64(bar))
		metrics.ObserveBar(time.Since(start))
		bus.Publish(g.Snapshot(p.Ctx))
	}

	<-ctx.Done()
	return nil
}

func notifyShutdown(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("backline: shutting down")
		cancel()
	}()
}
