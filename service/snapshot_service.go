package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/protocol"
	"github.com/vocdoni/trustcore/types"
)

// SnapshotService periodically captures and persists the ledger root of
// every election that is open for voting, so there is always a recent
// snapshot available for external anchoring.
type SnapshotService struct {
	protocol *protocol.Protocol
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSnapshot creates a snapshot service with the given capture interval.
func NewSnapshot(p *protocol.Protocol, interval time.Duration) *SnapshotService {
	return &SnapshotService{
		protocol: p,
		interval: interval,
	}
}

// Start begins the periodic snapshot loop. It returns an error if the
// service is already running.
func (ss *SnapshotService) Start(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.cancel != nil {
		return fmt.Errorf("service already running")
	}
	ctx, ss.cancel = context.WithCancel(ctx)

	ss.wg.Add(1)
	go func() {
		defer ss.wg.Done()
		ticker := time.NewTicker(ss.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ss.captureAll()
			}
		}
	}()
	return nil
}

// Stop halts the snapshot loop and waits for it to finish.
func (ss *SnapshotService) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.cancel == nil {
		return
	}
	ss.cancel()
	ss.cancel = nil
	ss.wg.Wait()
}

// captureAll snapshots every election currently open for voting.
func (ss *SnapshotService) captureAll() {
	ids, err := ss.protocol.ListElections()
	if err != nil {
		log.Warnw("snapshot service could not list elections", "error", err)
		return
	}
	for _, id := range ids {
		election, err := ss.protocol.Election(id)
		if err != nil {
			continue
		}
		if election.Status != types.ElectionStatusVoting {
			continue
		}
		snap, err := ss.protocol.Snapshot(election.ID)
		if err != nil {
			log.Warnw("snapshot capture failed",
				"electionId", election.ID.String(), "error", err)
			continue
		}
		log.Debugw("ledger snapshot captured",
			"electionId", election.ID.String(),
			"root", snap.Root.String(),
			"votes", snap.VoteCount,
		)
	}
}
