package server

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/tlawson/trivium/internal/core/client"
)

// PlayerID is a player's stable identity within a session, assigned in join
// order. Everything above the registry refers to players by ID, never by
// socket.
type PlayerID int

// Player is one seat in the session. The connection handle is owned
// exclusively by the Registry.
type Player struct {
	ID        PlayerID
	Name      string
	Score     int
	Connected bool

	conn *client.Client
}

// ErrSessionFull is returned by Seat when every configured seat is taken.
var ErrSessionFull = errors.New("session is full")

// Registry tracks every accepted connection and its player identity, and
// abstracts send/broadcast/removal over the raw socket set. It is owned by
// the session event loop and must not be shared across goroutines.
type Registry struct {
	logger   *logrus.Logger
	capacity int

	players []*Player
	byConn  map[*client.Client]*Player
	nextID  PlayerID

	// Players whose connection died since the last TakeDeparted call.
	departed []*Player
}

func NewRegistry(capacity int, logger *logrus.Logger) *Registry {
	return &Registry{
		logger:   logger,
		capacity: capacity,
		byConn:   make(map[*client.Client]*Player),
		nextID:   1,
	}
}

// Seat registers a connection under a new player identity. It fails when the
// session has no free seats.
func (r *Registry) Seat(conn *client.Client, name string) (*Player, error) {
	if len(r.players) >= r.capacity {
		return nil, ErrSessionFull
	}

	p := &Player{ID: r.nextID, Name: name, Connected: true, conn: conn}
	r.nextID++
	r.players = append(r.players, p)
	r.byConn[conn] = p
	return p, nil
}

// Release frees a seat entirely. Only valid before the game starts, when no
// score or round state references the player yet.
func (r *Registry) Release(p *Player) {
	for i, other := range r.players {
		if other == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
}

// Lookup resolves a connection to its player, or nil for connections that
// were never seated (or already departed).
func (r *Registry) Lookup(conn *client.Client) *Player {
	return r.byConn[conn]
}

// ByID resolves a player identity.
func (r *Registry) ByID(id PlayerID) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Players returns every seated player, connected or not, in identity order.
func (r *Registry) Players() []*Player {
	return r.players
}

// ConnectedIDs returns the identities of all connected players in ascending
// order.
func (r *Registry) ConnectedIDs() []PlayerID {
	var ids []PlayerID
	for _, p := range r.players {
		if p.Connected {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *Registry) ConnectedCount() int {
	count := 0
	for _, p := range r.players {
		if p.Connected {
			count++
		}
	}
	return count
}

func (r *Registry) SeatedCount() int {
	return len(r.players)
}

// Send enqueues a message for one player. A player whose socket is no longer
// writable is marked departed and the send is dropped; the failure is never
// surfaced to callers.
func (r *Registry) Send(p *Player, message interface{}) {
	if !p.Connected {
		return
	}
	if err := p.conn.Send(message); err != nil {
		r.logger.Warnf("dropping send to player %d (%s): %v", p.ID, p.Name, err)
		r.MarkDeparted(p)
	}
}

// Broadcast sends a message to every connected player not excluded, in
// identity order.
func (r *Registry) Broadcast(message interface{}, excluding ...PlayerID) {
	for _, p := range r.players {
		if !p.Connected {
			continue
		}
		skip := false
		for _, id := range excluding {
			if p.ID == id {
				skip = true
				break
			}
		}
		if !skip {
			r.Send(p, message)
		}
	}
}

// MarkDeparted records that a player's connection is gone: the player is
// disconnected, the socket closed, and the departure queued for the session
// to observe exactly once. Repeat calls for the same player are no-ops.
func (r *Registry) MarkDeparted(p *Player) {
	if !p.Connected {
		return
	}
	p.Connected = false
	delete(r.byConn, p.conn)
	_ = p.conn.Close()
	r.departed = append(r.departed, p)
}

// TakeDeparted drains the pending departure notifications.
func (r *Registry) TakeDeparted() []*Player {
	departed := r.departed
	r.departed = nil
	return departed
}

// CloseAll closes every remaining connection. Scores and connection states
// are left intact for final standings.
func (r *Registry) CloseAll() {
	for _, p := range r.players {
		if p.Connected {
			_ = p.conn.Close()
		}
	}
}
