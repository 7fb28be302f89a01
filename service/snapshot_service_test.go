package service

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/trustcore/protocol"
	"github.com/vocdoni/trustcore/storage"
	"github.com/vocdoni/trustcore/types"
	"github.com/vocdoni/trustcore/util"
	"go.vocdoni.io/dvote/db/metadb"
)

func TestSnapshotService(t *testing.T) {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))
	p, err := protocol.New(stg)
	c.Assert(err, qt.IsNil)
	defer p.Close()

	election, err := p.CreateElection(&protocol.ElectionParams{
		OrganizationID: common.BytesToAddress(util.RandomBytes(20)),
		Nonce:          1,
		ChainID:        420,
		Threshold:      2,
		MaxTrustees:    2,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusVoting), qt.IsNil)

	ss := NewSnapshot(p, 50*time.Millisecond)
	c.Assert(ss.Start(context.Background()), qt.IsNil)
	c.Assert(ss.Start(context.Background()), qt.ErrorMatches, "service already running")

	// wait until at least one snapshot lands
	deadline := time.Now().Add(5 * time.Second)
	for {
		snaps, err := stg.Snapshots(election.ID)
		c.Assert(err, qt.IsNil)
		if len(snaps) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no snapshot captured before deadline")
		}
		time.Sleep(20 * time.Millisecond)
	}
	ss.Stop()

	// a second Stop is a no-op, and the service can start again
	ss.Stop()
	c.Assert(ss.Start(context.Background()), qt.IsNil)
	ss.Stop()
}
