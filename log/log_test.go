package log

import (
	"errors"
	"io"
	"testing"
	"time"
)

var (
	sampleCount    = 7
	sampleRoot     = []byte("deadbeef")
	samplePrimes   = []int64{2, 3, 5}
	sampleDuration = 250 * time.Millisecond
	sampleTime     = time.Unix(1700000000, 0)

	errSample = errors.New("ledger unavailable")
)

func doLogs() {
	Infof("appended %d entries with root %x", sampleCount, sampleRoot)
	Debugw("ceremony finalized", "threshold", 3, "participants", 5)
	Errorf("cannot persist snapshot: %v", errSample)
	Warnw("various types",
		"list", samplePrimes,
		"duration", sampleDuration,
		"time", sampleTime,
	)
	Error(errSample)
}

func TestCheckInvalidChars(t *testing.T) {
	t.Cleanup(func() { panicOnInvalidChars = false })

	v := []byte{'r', 'o', 'o', 't', 0xff, 'h', 'a', 's', 'h'}
	panicOnInvalidChars = false
	Init("debug", "stderr", nil)
	Debugf("%s", v)
	// should not panic since the check is disabled

	// now enable the check: Debugf should panic and recover() should
	// keep the test from reaching t.Errorf
	panicOnInvalidChars = true
	Init("debug", "stderr", nil)
	defer func() { recover() }()
	Debugf("%s", v)
	t.Errorf("Debugf(%s) should have panicked because of invalid char", v)
}

func BenchmarkLogger(b *testing.B) {
	logTestWriter = io.Discard // to not grow a buffer
	Init("debug", logTestWriterName, nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		doLogs()
	}
}
