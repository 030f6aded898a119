package websocket

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool manages a set of outbound Client connections, dialed
// concurrently and driven as a unit: Broadcast fans a message out to
// every member, and a write failure on one member auto-evicts it
// without affecting the others.
//
// Unlike a server-side hub, a Pool never accepts connections; it only
// ever holds Clients this process dialed out itself (e.g. fanning one
// message out to several upstream relays, or load-testing a server
// with many concurrent client connections).
type Pool struct {
	mu      sync.RWMutex
	members map[*Client]struct{}
	closed  bool
}

// NewPool returns an empty, ready-to-use Pool.
func NewPool() *Pool {
	return &Pool{members: make(map[*Client]struct{})}
}

// DialAll dials every URL in urls concurrently (bounded by
// golang.org/x/sync/errgroup's default unlimited fan-out - callers
// wanting a cap should use errgroup.SetLimit on their own group and
// call Dial directly instead), registering each successfully
// connected Client with the Pool. If any dial fails, DialAll returns
// the first error after all attempts complete; Clients that did
// connect remain registered.
func (p *Pool) DialAll(ctx context.Context, urls []string, opts DialOptions) error {
	var g errgroup.Group
	for _, u := range urls {
		g.Go(func() error {
			client, _, err := Dial(ctx, u, opts)
			if err != nil {
				return err
			}
			p.Register(client)
			return nil
		})
	}
	return g.Wait()
}

// Register adds client to the Pool. It is a no-op once the Pool has
// been closed.
func (p *Pool) Register(client *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.members[client] = struct{}{}
}

// Unregister removes client from the Pool. client itself is not
// closed; callers that want that should close it themselves.
func (p *Pool) Unregister(client *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.members, client)
}

// Len returns the number of Clients currently registered.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// Broadcast sends a Binary frame carrying data to every registered
// Client concurrently. A member whose send fails is unregistered; the
// first such error is returned once every send has completed (other
// members are unaffected by one member's failure).
func (p *Pool) Broadcast(ctx context.Context, data []byte) error {
	return p.broadcast(ctx, func(c *Client) error {
		return c.SendBinary(ctx, data)
	})
}

// BroadcastText is Broadcast for a Text frame.
func (p *Pool) BroadcastText(ctx context.Context, text string) error {
	return p.broadcast(ctx, func(c *Client) error {
		return c.SendText(ctx, []byte(text))
	})
}

func (p *Pool) broadcast(ctx context.Context, send func(*Client) error) error {
	p.mu.RLock()
	targets := make([]*Client, 0, len(p.members))
	for c := range p.members {
		targets = append(targets, c)
	}
	p.mu.RUnlock()

	g, _ := errgroup.WithContext(ctx)
	for _, c := range targets {
		g.Go(func() error {
			if err := send(c); err != nil {
				p.Unregister(c)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Close unregisters every member. It does not close their underlying
// connections: Pool has no ownership opinion over Client lifetime,
// since Clients may have been registered by something other than
// DialAll.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.members = make(map[*Client]struct{})
}
