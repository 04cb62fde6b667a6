package session

import (
	"testing"
	"time"
)

func TestStatsSnapshotDerivesRates(t *testing.T) {
	start := time.Now().Add(-10 * time.Second)
	s := Stats{
		BytesReceived:    1000,
		BytesSent:        500,
		MessagesReceived: 42,
		SessionStart:     start,
	}

	snap := s.Snapshot(start.Add(10 * time.Second))
	if snap.UptimeSeconds != 10 {
		t.Errorf("uptime = %d, want 10", snap.UptimeSeconds)
	}
	if snap.RxRate != 100 {
		t.Errorf("rxRate = %v, want 100", snap.RxRate)
	}
	if snap.TxRate != 50 {
		t.Errorf("txRate = %v, want 50", snap.TxRate)
	}
	if snap.MessagesReceived != 42 {
		t.Errorf("messagesReceived = %d, want 42", snap.MessagesReceived)
	}
}

func TestStatsSnapshotFloorsDivisor(t *testing.T) {
	now := time.Now()
	s := Stats{BytesReceived: 300, SessionStart: now}

	// Uptime of zero must not divide by zero; the divisor floors at one.
	snap := s.Snapshot(now)
	if snap.UptimeSeconds != 0 {
		t.Errorf("uptime = %d, want 0", snap.UptimeSeconds)
	}
	if snap.RxRate != 300 {
		t.Errorf("rxRate = %v, want 300 (divisor floored at 1)", snap.RxRate)
	}
}
