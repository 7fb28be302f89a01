package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/protocol"
	"github.com/vocdoni/trustcore/service"
	"github.com/vocdoni/trustcore/storage"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	host := flag.String("host", "0.0.0.0", "API host to bind")
	port := flag.Int("port", 8080, "API port to bind")
	dataDir := flag.String("datadir", filepath.Join(os.TempDir(), "trustcore"), "data directory")
	dbType := flag.String("dbType", db.TypePebble, "key-value database type")
	logLevel := flag.String("logLevel", log.LogLevelInfo, "log level (debug, info, warn, error)")
	snapshotInterval := flag.Duration("snapshotInterval", 10*time.Minute, "ledger snapshot interval")
	flag.Parse()

	log.Init(*logLevel, "stdout", nil)

	database, err := metadb.New(*dbType, *dataDir)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	p, err := protocol.New(stg)
	if err != nil {
		log.Fatalf("could not initialize protocol: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiService := service.NewAPI(p, *host, *port)
	if err := apiService.Start(ctx); err != nil {
		log.Fatalf("could not start API service: %v", err)
	}
	defer apiService.Stop()

	snapService := service.NewSnapshot(p, *snapshotInterval)
	if err := snapService.Start(ctx); err != nil {
		log.Fatalf("could not start snapshot service: %v", err)
	}
	defer snapService.Stop()

	log.Infow("trustcore running",
		"host", *host,
		"port", *port,
		"datadir", *dataDir,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infow("shutting down", "signal", sig.String())
}
