package wsbroker

import (
	"sort"
	"sync"

	"github.com/pezzottify/catalog-server/internal/logging"
	"github.com/pezzottify/catalog-server/internal/sync"
)

// Broker owns one userHub per user with at least one connected device. A
// user with no devices connected has no hub and no goroutine.
type Broker struct {
	mu    sync.Mutex
	users map[string]*userHub
}

func NewBroker() *Broker {
	return &Broker{users: make(map[string]*userHub)}
}

// userHub fans one user's broadcasts out to that user's devices, in order,
// from a single goroutine.
type userHub struct {
	userID    string
	broadcast chan broadcastMsg

	mu      sync.RWMutex
	devices map[string]*Client // device_id -> client
	closed  bool               // true once broadcast has been closed
}

type broadcastMsg struct {
	sourceDeviceID string
	event          sync.StoredEvent
}

func newUserHub(userID string) *userHub {
	h := &userHub{
		userID:    userID,
		broadcast: make(chan broadcastMsg, 256),
		devices:   make(map[string]*Client),
	}
	go h.run()
	return h
}

func (h *userHub) run() {
	for msg := range h.broadcast {
		h.mu.RLock()
		devices := make([]*Client, 0, len(h.devices))
		for deviceID, c := range h.devices {
			if deviceID == msg.sourceDeviceID {
				continue
			}
			devices = append(devices, c)
		}
		h.mu.RUnlock()

		sort.Slice(devices, func(i, j int) bool { return devices[i].deviceID < devices[j].deviceID })

		out := ServerMessage{Type: TypeSync, Event: &msg.event}
		for _, c := range devices {
			select {
			case c.send <- out:
			default:
				logging.Warn().Str("user_id", h.userID).Str("device_id", c.deviceID).Msg("sync broadcast dropped, client send buffer full")
			}
		}
	}
}

// Register attaches a device's client to its user's hub, starting the hub
// if this is the user's first connected device.
func (b *Broker) Register(userID string, c *Client) {
	b.mu.Lock()
	h, ok := b.users[userID]
	if !ok {
		h = newUserHub(userID)
		b.users[userID] = h
	}
	b.mu.Unlock()

	h.mu.Lock()
	h.devices[c.deviceID] = c
	h.mu.Unlock()
}

// Unregister detaches a device, tearing down the user's hub goroutine once
// its last device disconnects. The broadcast channel is closed while still
// holding h.mu so a concurrent BroadcastToOthers either completes its send
// before the close (holding the same RLock) or sees closed and skips it —
// never a send racing the close itself.
func (b *Broker) Unregister(userID string, c *Client) {
	b.mu.Lock()
	h, ok := b.users[userID]
	if !ok {
		b.mu.Unlock()
		return
	}

	h.mu.Lock()
	if existing, present := h.devices[c.deviceID]; present && existing == c {
		delete(h.devices, c.deviceID)
	}
	empty := len(h.devices) == 0
	if empty {
		h.closed = true
		close(h.broadcast)
	}
	h.mu.Unlock()

	if empty {
		delete(b.users, userID)
	}
	b.mu.Unlock()
}

// BroadcastToOthers sends event to every device of userID except
// sourceDeviceID. A no-op if the user has no connected devices, or if the
// user's hub has since been torn down.
func (b *Broker) BroadcastToOthers(userID, sourceDeviceID string, event sync.StoredEvent) {
	b.mu.Lock()
	h, ok := b.users[userID]
	b.mu.Unlock()
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.broadcast <- broadcastMsg{sourceDeviceID: sourceDeviceID, event: event}:
	default:
		logging.Warn().Str("user_id", userID).Msg("sync broadcast channel full, dropping event")
	}
}

// DeviceCount reports how many devices of userID currently hold a
// connection, for diagnostics.
func (b *Broker) DeviceCount(userID string) int {
	b.mu.Lock()
	h, ok := b.users[userID]
	b.mu.Unlock()
	if !ok {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.devices)
}
