package deck

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ConnectionQuality is the network quality signal supplied by the host. Below
// the minimum quality the engine refuses to play instead of stuttering.
type ConnectionQuality int

const (
	ConnectionOffline ConnectionQuality = iota
	ConnectionPoor
	ConnectionFair
	ConnectionGood
	ConnectionExcellent
)

var connectionQualityNames = [...]string{"offline", "poor", "fair", "good", "excellent"}

func (q ConnectionQuality) String() string {
	if q < 0 || int(q) >= len(connectionQualityNames) {
		return fmt.Sprintf("ConnectionQuality(%d)", int(q))
	}
	return connectionQualityNames[q]
}

func ParseConnectionQuality(s string) (ConnectionQuality, error) {
	for i, n := range connectionQualityNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return ConnectionQuality(i), nil
		}
	}
	return 0, fmt.Errorf("unknown connection quality %q", s)
}

// SetConnectivity updates the connection quality. Playback that is already
// running is left alone; only new Play calls are refused.
func (e *Engine) SetConnectivity(q ConnectionQuality) {
	if q == e.connectivity {
		return
	}
	was := e.blocked()
	e.connectivity = q
	if now := e.blocked(); now != was {
		e.log.Info("connectivity gate changed", zap.Stringer("quality", q), zap.Bool("blocked", now))
	}
}

func (e *Engine) blocked() bool { return e.connectivity < e.minConnectivity }
