package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamDecisions = "banbot.decisions"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// DecisionStream appends moderation decisions to a redis stream so external
// tooling (server-side ban scripts, audit dashboards) can follow the ledger
// without polling it.
type DecisionStream struct {
	rdb *redis.Client
}

func NewDecisionStream(rdb *redis.Client) *DecisionStream {
	return &DecisionStream{rdb: rdb}
}

func (s *DecisionStream) PublishDecision(ctx context.Context, payload map[string]interface{}) error {
	_, err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamDecisions,
		Values: payload,
	}).Result()
	return err
}
