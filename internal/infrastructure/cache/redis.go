package cache

import (
	"context"
	"encoding/json"
	"time"

	"agrifi-backend/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// channelPrefix namespaces event channels per ledger:
// agrifi:events:token, agrifi:events:loan, agrifi:events:agreement.
const channelPrefix = "agrifi:events:"

var _ event.Publisher = (*Publisher)(nil)

// Publisher pushes committed ledger events onto redis pub/sub for off-service
// observers (dashboards, indexers). Best-effort by contract.
type Publisher struct{ rdb *redis.Client }

func NewPublisher(rdb *redis.Client) *Publisher { return &Publisher{rdb: rdb} }

func (p *Publisher) Publish(ctx context.Context, e *event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, channelPrefix+e.Ledger, payload).Err()
}
