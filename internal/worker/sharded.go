package worker

import (
	"context"
	"hash/fnv"

	"github.com/hifzlab/scheduler/internal/logger"
)

// ShardedPool routes jobs to one of N single-worker Pools keyed by a
// caller-supplied string, so that every job submitted under the same key
// runs strictly after the previous one for that key completes, while jobs
// under different keys run concurrently across shards. This is how the
// per-(user, ayah) reducer serialization in §5 is achieved without a
// per-item lock: each shard's single worker is the lock.
type ShardedPool struct {
	shards []*Pool
	log    *logger.Logger
}

// NewShardedPool creates shardCount single-worker Pools, each with the
// given per-shard queue size.
func NewShardedPool(shardCount, queueSize int) *ShardedPool {
	if shardCount <= 0 {
		shardCount = 8
	}
	shards := make([]*Pool, shardCount)
	for i := range shards {
		shards[i] = NewPool(1, queueSize)
	}
	return &ShardedPool{shards: shards, log: logger.Default().WithPrefix("sharded-pool")}
}

func (p *ShardedPool) Start(ctx context.Context) {
	p.log.Info("starting sharded pool with %d shards", len(p.shards))
	for _, s := range p.shards {
		s.Start(ctx)
	}
}

func (p *ShardedPool) Stop() {
	for _, s := range p.shards {
		s.Stop()
	}
}

// Submit enqueues job on the shard owned by key.
func (p *ShardedPool) Submit(key string, job Job) {
	p.shards[p.shardFor(key)].Submit(job)
}

func (p *ShardedPool) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(p.shards)
}
