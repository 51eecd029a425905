package trust

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const signalQueueKey = "trust:signals"

// Dispatcher hands signals to the engine without ever blocking the producer.
// With redis configured the handoff is a list push/pop shared across
// instances, redelivered on handler failure. Without redis it degrades to an
// in-process buffered channel where a full queue drops the signal.
type Dispatcher struct {
	engine *Engine
	rdb    *redis.Client
	queue  chan Signal
	log    *zap.Logger
}

func NewDispatcher(engine *Engine, rdb *redis.Client, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		engine: engine,
		rdb:    rdb,
		log:    log,
	}

	if rdb != nil {
		go d.redisWorker()
		return d
	}

	d.queue = make(chan Signal, 100)
	go d.channelWorker()
	return d
}

// Dispatch enqueues a signal. Fire-and-forget: failures are logged, never
// returned, and never fail the booking that produced the signal.
func (d *Dispatcher) Dispatch(sig Signal) {
	if sig.OccurredAt.IsZero() {
		sig.OccurredAt = time.Now().UTC()
	}

	if d.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		payload, err := json.Marshal(sig)
		if err != nil {
			d.log.Error("failed to encode trust signal", zap.Error(err))
			return
		}

		if err := d.rdb.LPush(ctx, signalQueueKey, payload).Err(); err != nil {
			d.log.Error("failed to enqueue trust signal", zap.Error(err))
		}
		return
	}

	select {
	case d.queue <- sig:
	default:
		// queue full: losing a signal only degrades abuse detection
		d.log.Warn("trust signal queue full, dropping signal",
			zap.String("kind", sig.Kind))
	}
}

func (d *Dispatcher) channelWorker() {
	for sig := range d.queue {
		if err := d.engine.HandleSignal(context.Background(), sig); err != nil {
			d.log.Error("trust signal handling failed",
				zap.String("kind", sig.Kind),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) redisWorker() {
	for {
		res, err := d.rdb.BRPop(context.Background(), 5*time.Second, signalQueueKey).Result()
		if err != nil {
			if err != redis.Nil {
				d.log.Error("trust signal dequeue failed", zap.Error(err))
				time.Sleep(time.Second)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var sig Signal
		if err := json.Unmarshal([]byte(res[1]), &sig); err != nil {
			d.log.Error("malformed trust signal dropped", zap.Error(err))
			continue
		}

		if err := d.engine.HandleSignal(context.Background(), sig); err != nil {
			d.log.Error("trust signal handling failed, re-queueing",
				zap.String("kind", sig.Kind),
				zap.Error(err),
			)

			// at-least-once: push back and back off before the next pop
			if perr := d.rdb.LPush(context.Background(), signalQueueKey, res[1]).Err(); perr != nil {
				d.log.Error("trust signal re-queue failed", zap.Error(perr))
			}
			time.Sleep(time.Second)
		}
	}
}
