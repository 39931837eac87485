// Package fanout relays pipeline snapshots across multiple broadcast
// instances over Redis pub/sub, so a fleet of broadcast servers behind a
// load balancer can all serve clients from one upstream pipeline run. The
// client surface is abstracted to the minimal interface this package
// needs, the same narrow-interface-over-go-redis idiom the pack's
// ratelimiter persistence layer uses for its Lua-eval commits — easy to
// fake in tests without standing up a real Redis instance.
package fanout

import (
	"context"
	"fmt"

	"backline/internal/pipeline"

	"github.com/redis/go-redis/v9"
)

// Publisher abstracts the minimal redis.Cmdable surface a Relay needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Subscriber abstracts subscribing to a channel and receiving messages.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// Client is the combined surface Relay needs from a *redis.Client.
type Client interface {
	Publisher
	Subscriber
}

// Relay publishes snapshots to, and receives them from, a shared Redis
// channel so independent broadcast processes stay in sync.
type Relay struct {
	client  Client
	channel string
}

// NewRelay builds a Relay publishing/subscribing on the given channel.
func NewRelay(client Client, channel string) *Relay {
	return &Relay{client: client, channel: channel}
}

// Publish encodes snap with the same MsgPack wire format the broadcaster
// uses for clients and publishes it to the shared channel.
func (r *Relay) Publish(ctx context.Context, snap pipeline.Snapshot) error {
	msg := snap.AppendMsgPack(make([]byte, 0, 128))
	if err := r.client.Publish(ctx, r.channel, msg).Err(); err != nil {
		return fmt.Errorf("fanout: publish to %s: %w", r.channel, err)
	}
	return nil
}

// Relayed is a snapshot's raw wire bytes as received from another
// instance over Redis — already MsgPack-encoded, so a subscribing
// broadcaster only needs to push it straight onto client.send without
// re-encoding it.
type Relayed struct {
	Payload []byte
}

// Listen subscribes to the shared channel and forwards each message's raw,
// undecoded payload bytes to out until ctx is cancelled or the
// subscription's channel closes. A message is dropped when out is full.
func (r *Relay) Listen(ctx context.Context, out chan<- Relayed) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			select {
			case out <- Relayed{Payload: []byte(msg.Payload)}:
			default:
			}
		}
	}
}
