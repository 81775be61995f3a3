// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisQueue is the durable, cross-process Queue backed by a single Redis
// list key (§4.3, §6): Put is LPUSH, Fetch is a blocking BRPOP so pop is
// destructive and there is no acknowledgement step.
//
// Each call is a single Redis command. There is deliberately no
// TxPipelined wrapping: a prior implementation's "transactional" decorator
// opened a connection per call without actually pipelining commands
// together, so it provided connection management only, never multi-command
// atomicity (SPEC_FULL.md §9). RedisQueue makes that honest: callers must
// not assume atomicity across a Put followed by anything else.
type RedisQueue struct {
	client     redis.UniversalClient
	key        string
	popTimeout time.Duration
	log        zerolog.Logger
}

// NewRedisQueue creates a RedisQueue using key as the list key. popTimeout
// bounds each blocking BRPOP call so Fetch remains ctx-cancellable even
// though the Redis client's own BRPOP call blocks the connection.
func NewRedisQueue(client redis.UniversalClient, key string, popTimeout time.Duration, log zerolog.Logger) *RedisQueue {
	if popTimeout <= 0 {
		popTimeout = time.Second
	}
	return &RedisQueue{client: client, key: key, popTimeout: popTimeout, log: log}
}

// Put serialises e and LPUSHes it onto the queue's list key.
func (q *RedisQueue) Put(ctx context.Context, e Envelope) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("task: marshal envelope: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("task: redis lpush: %w", err)
	}
	return nil
}

// Fetch blocks up to popTimeout waiting for an item via BRPOP, decodes
// it, and returns ErrEmpty on timeout so the dispatcher's pump loop can
// retry (§5, suspension point 3). Deserialisation failures are logged and
// reported as ErrUnregisteredType/decode errors so the caller drops the
// task per §7, rather than blocking the pump.
func (q *RedisQueue) Fetch(ctx context.Context) (Envelope, error) {
	res, err := q.client.BRPop(ctx, q.popTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return Envelope{}, ErrEmpty
	}
	if err != nil {
		return Envelope{}, fmt.Errorf("task: redis brpop: %w", err)
	}
	if len(res) != 2 {
		return Envelope{}, fmt.Errorf("task: unexpected brpop reply shape: %v", res)
	}
	e, err := UnmarshalEnvelope([]byte(res[1]))
	if err != nil {
		q.log.Error().Err(err).Msg("task: dropping undecodable task")
		return Envelope{}, err
	}
	return e, nil
}
