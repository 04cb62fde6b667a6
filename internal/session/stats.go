package session

import (
	"time"

	"github.com/Sigmakib2/serialconsole/internal/sysinfo"
)

// Stats accumulates traffic counters for the whole session. Counters are
// cumulative across reconnects; sessionStart is set once at creation and
// never reset, so uptime and rates cover the session, not the current
// connection.
type Stats struct {
	BytesReceived    uint64
	BytesSent        uint64
	MessagesReceived uint64
	SessionStart     time.Time
}

// StatsSnapshot is a Stats copy plus the derived values, computed on demand
// and never stored.
type StatsSnapshot struct {
	BytesReceived    uint64            `json:"bytesReceived"`
	BytesSent        uint64            `json:"bytesSent"`
	MessagesReceived uint64            `json:"messagesReceived"`
	SessionStart     time.Time         `json:"sessionStart"`
	UptimeSeconds    int64             `json:"uptimeSeconds"`
	RxRate           float64           `json:"rxRate"` // bytes/sec
	TxRate           float64           `json:"txRate"` // bytes/sec
	Footprint        sysinfo.Footprint `json:"footprint"`
}

// Snapshot derives uptime and rates at the given instant. The divisor is
// floored at one second so rates are defined from the first tick.
func (s *Stats) Snapshot(now time.Time) StatsSnapshot {
	uptime := int64(now.Sub(s.SessionStart).Seconds())
	divisor := uptime
	if divisor < 1 {
		divisor = 1
	}
	return StatsSnapshot{
		BytesReceived:    s.BytesReceived,
		BytesSent:        s.BytesSent,
		MessagesReceived: s.MessagesReceived,
		SessionStart:     s.SessionStart,
		UptimeSeconds:    uptime,
		RxRate:           float64(s.BytesReceived) / float64(divisor),
		TxRate:           float64(s.BytesSent) / float64(divisor),
	}
}
