package attest

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// NTPAttestor corrects the local clock with the offset measured against
// an NTP server before applying the drift check. The offset is cached
// and refreshed lazily so attestation itself never waits on the network
// more than once per refresh interval.
type NTPAttestor struct {
	sync.RWMutex

	local   *LocalAttestor
	server  string
	refresh time.Duration

	offset      time.Duration
	refreshedAt time.Time
}

func NewNTPAttestor(server string, driftTolerance, maxAge, refresh time.Duration) *NTPAttestor {
	return &NTPAttestor{
		local:   NewLocalAttestor(driftTolerance, maxAge),
		server:  server,
		refresh: refresh,
	}
}

// Sync queries the NTP server and stores the measured clock offset.
func (a *NTPAttestor) Sync() error {
	resp, err := ntp.Query(a.server)
	if err != nil {
		return err
	}

	a.Lock()
	defer a.Unlock()

	a.offset = resp.ClockOffset
	a.refreshedAt = time.Now()

	return nil
}

func (a *NTPAttestor) currentOffset() time.Duration {
	a.RLock()
	stale := time.Since(a.refreshedAt) > a.refresh
	offset := a.offset
	a.RUnlock()

	if stale {
		// keep the last known offset when the server is unreachable
		if err := a.Sync(); err == nil {
			a.RLock()
			offset = a.offset
			a.RUnlock()
		}
	}

	return offset
}

func (a *NTPAttestor) Attest(castAt, now time.Time) (Attestation, error) {
	return a.local.Attest(castAt, now.Add(a.currentOffset()))
}
