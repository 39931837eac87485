package fanout

import (
	"context"
	"errors"
	"testing"

	"backline/internal/pipeline"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	published   []publishedCall
	publishErr  error
}

type publishedCall struct {
	channel string
	message []byte
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.publishErr != nil {
		cmd.SetErr(f.publishErr)
		return cmd
	}
	f.published = append(f.published, publishedCall{channel: channel, message: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

func (f *fakeClient) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return nil
}

func TestRelay_PublishEncodesSnapshotAsMsgPack(t *testing.T) {
	fake := &fakeClient{}
	r := NewRelay(fake, "backline:snapshots")

	snap := pipeline.Snapshot{Bar: 5, Time: 100, Values: []pipeline.Value{{Name: "sma", V: 3.5}}}
	require.NoError(t, r.Publish(context.Background(), snap))

	require.Len(t, fake.published, 1)
	assert.Equal(t, "backline:snapshots", fake.published[0].channel)
	assert.Equal(t, snap.AppendMsgPack(nil), fake.published[0].message)
}

func TestRelay_PublishPropagatesClientError(t *testing.T) {
	fake := &fakeClient{publishErr: errors.New("boom")}
	r := NewRelay(fake, "ch")
	err := r.Publish(context.Background(), pipeline.Snapshot{})
	assert.ErrorContains(t, err, "boom")
}
