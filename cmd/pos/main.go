package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"restaurant_pos/internal/client/cache"
	"restaurant_pos/internal/client/queue"
	"restaurant_pos/internal/client/storage"
	"restaurant_pos/internal/client/syncer"
	"restaurant_pos/internal/config"
	"restaurant_pos/pkg/apiclient"

	"github.com/spf13/cobra"
)

var (
	actorID  uint64
	actorPIN string
)

type posApp struct {
	store       storage.Store
	queue       *queue.Queue
	cache       *cache.Cache
	fetcher     *cache.Fetcher
	coordinator *syncer.Coordinator
	api         *apiclient.Client
}

// newPosApp wires the device-side components. A failed sqlite open degrades
// to the in-memory store: the POS stays usable online, without offline
// durability.
func newPosApp(cfg *config.Config) *posApp {
	store, err := storage.OpenSQLite(cfg.ClientDBPath)
	if err != nil {
		log.Printf("Warning: client storage unavailable (%v); running online-only", err)
		store = storage.NewMemoryStore()
	}

	api := apiclient.NewClient(cfg.APIBaseURL, uint(actorID), actorPIN,
		time.Duration(cfg.RequestTimeoutSec)*time.Second)
	q := queue.New(store, api)
	c := cache.New(store)
	fetcher := cache.NewFetcher(c, time.Duration(cfg.StalenessThresholdMin)*time.Minute)
	coordinator := syncer.New(q, c, cfg.SyncLogSize, time.Duration(cfg.SyncIntervalSec)*time.Second)

	return &posApp{store: store, queue: q, cache: c, fetcher: fetcher, coordinator: coordinator, api: api}
}

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "pos",
		Short: "Restaurant POS device agent: offline queue, snapshot cache, sync",
	}
	rootCmd.PersistentFlags().Uint64Var(&actorID, "actor", 1, "acting staff member id")
	rootCmd.PersistentFlags().StringVar(&actorPIN, "pin", "", "staff PIN")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sync coordinator until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newPosApp(cfg)
			defer app.store.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			log.Println("Sync coordinator running; SIGINT to stop")
			app.coordinator.TriggerSync()
			app.coordinator.Run(ctx)
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Drain the offline mutation queue once",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newPosApp(cfg)
			defer app.store.Close()

			report := app.coordinator.SyncNow(context.Background())
			if report == nil {
				fmt.Println("offline; nothing drained")
				return nil
			}
			out, _ := json.MarshalIndent(report, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show aggregate sync status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newPosApp(cfg)
			defer app.store.Close()

			status, err := app.coordinator.Status()
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(status, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "List queued mutations awaiting sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newPosApp(cfg)
			defer app.store.Close()

			entries, err := app.queue.ListPending()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%d\t%s\t%s %s\tkey=%s", e.ID, e.Status, e.Method, e.TargetEndpoint, e.IdempotencyKey)
				if e.LastError != "" {
					fmt.Printf("\tlast_error=%s", e.LastError)
				}
				fmt.Println()
			}
			return nil
		},
	}

	discardCmd := &cobra.Command{
		Use:   "discard <id>",
		Short: "Discard a FAILED or CONFLICT queue entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid entry id: %w", err)
			}
			app := newPosApp(cfg)
			defer app.store.Close()

			if err := app.queue.Discard(uint(id)); err != nil {
				return err
			}
			fmt.Printf("entry %d discarded\n", id)
			return nil
		},
	}

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the menu via the cache-first read path",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newPosApp(cfg)
			defer app.store.Close()

			result, err := app.fetcher.Fetch(context.Background(), "menu", func(ctx context.Context) ([]byte, error) {
				return app.api.Get(ctx, "/api/menu")
			})
			if result == nil {
				return err
			}
			if result.Source == cache.SourceNone {
				return fmt.Errorf("no menu data available: %w", err)
			}
			fmt.Printf("source=%s stale=%v\n%s\n", result.Source, result.IsStale, result.Data)
			return nil
		},
	}

	queueCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(runCmd, syncCmd, statusCmd, queueCmd, menuCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
