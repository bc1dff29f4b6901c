package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoResponders is what a broker returns for a request nobody answers.
// Clients translate their broker-specific error to it.
var ErrNoResponders = errors.New("no responders available for request")

// HealthSubject is pinged by CheckClientHealth. Nothing subscribes to it; a
// "no responders" reply proves the round trip works.
const HealthSubject = "_HEALTH.ping"

// HealthStatus is the health of a broker connection.
type HealthStatus struct {
	Connected bool   `json:"connected"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// CheckClientHealth reports whether client is connected and measures a
// request round trip.
func CheckClientHealth(ctx context.Context, client Client) HealthStatus {
	var status HealthStatus

	if client == nil {
		status.Error = "client is nil"
		return status
	}

	status.Connected = client.IsConnected()
	if !status.Connected {
		status.Error = "not connected to message broker"
		return status
	}

	start := time.Now()
	_, err := client.Request(ctx, HealthSubject, []byte("ping"), 2*time.Second)
	status.LatencyMS = time.Since(start).Milliseconds()

	if err != nil && !errors.Is(err, ErrNoResponders) {
		status.Error = fmt.Sprintf("health check failed: %v", err)
	}
	return status
}
