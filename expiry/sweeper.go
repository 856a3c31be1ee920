package expiry

import (
	"context"
	"errors"
	"time"

	"coordination-api/coordination/keeper"
	"coordination-api/coordination/types"
	"coordination-api/logging"
)

// Sweeper periodically expires queries whose time-to-live has elapsed.
// Expiry stays permissionless through the API; the sweeper just guarantees
// it happens even when nobody calls it.
type Sweeper struct {
	keeper    *keeper.Keeper
	interval  time.Duration
	batchSize int64

	stop chan struct{}
	done chan struct{}
}

// NewSweeper creates and starts a sweeper. It runs until Close() is called.
func NewSweeper(k *keeper.Keeper, interval time.Duration, batchSize int64) *Sweeper {
	s := &Sweeper{
		keeper:    k,
		interval:  interval,
		batchSize: batchSize,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	logging.Info("expiry sweeper started", types.Queries, "interval", interval, "batchSize", batchSize)
	return s
}

// Close stops the sweeper and waits for it to finish.
func (s *Sweeper) Close() {
	close(s.stop)
	<-s.done
	logging.Info("expiry sweeper stopped", types.Queries)
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	ids, err := s.keeper.ListExpirableQueries(ctx, s.batchSize)
	if err != nil {
		logging.Error("failed to list expirable queries", types.Queries, "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	expired := 0
	for _, id := range ids {
		err := s.keeper.ExpireQuery(ctx, id)
		if err == nil {
			expired++
			continue
		}
		// A responder may have claimed or completed the query between the
		// listing and the transition. That is not a sweeper failure.
		if errors.Is(err, types.ErrInvalidTransition) || errors.Is(err, types.ErrUnknownQuery) {
			continue
		}
		logging.Error("failed to expire query", types.Queries, "queryId", id, "error", err)
	}
	if expired > 0 {
		logging.Info("expired stale queries", types.Queries, "count", expired)
	}
}
