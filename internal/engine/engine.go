package engine

// #region imports
import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/eval"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/gate"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #endregion

// #region engine-struct

// Engine runs one clarity computation per call: fetch, score, smooth, bucket,
// and a background write-back of the new fog state.
type Engine struct {
	store        Store
	cache        *PrevCache
	gate         *gate.Gate
	producer     *signals.Producer
	harness      *eval.EvalHarness
	logger       *log.Logger
	writeTimeout time.Duration
	now          func() time.Time

	writes sync.WaitGroup
}

// #endregion

// #region constructor

// New wires an engine around store. A nil logger uses log.Default().
func New(store Store, config Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Engine{
		store:        store,
		cache:        NewPrevCache(),
		gate:         gate.NewGate(config.Gate),
		producer:     signals.NewProducer(signals.ProducerConfig{Location: config.Location}),
		harness:      eval.NewEvalHarness(config.Eval),
		logger:       logger,
		writeTimeout: config.WriteTimeout,
		now:          time.Now,
	}
}

// Cache exposes the per-process previous-value cache.
func (e *Engine) Cache() *PrevCache {
	return e.cache
}

// #endregion

// #region compute

// Compute produces the clarity score and fog state for userID. Persistence
// failures never surface here: unreadable activity counts as no activity,
// an unreadable previous value falls back to the cache and then the default,
// and the write runs after Compute returns. The only error is a blank userID.
func (e *Engine) Compute(ctx context.Context, userID string) (Result, error) {
	if err := activity.CheckUser(userID); err != nil {
		return Result{}, err
	}
	now := e.now()

	w, err := e.store.FetchActivityWindow(ctx, userID, now)
	if err != nil {
		e.logger.Printf("[ENGINE] fetch activity for %s: %v", userID, err)
	}
	w, report := e.gate.Screen(w, now)
	if !report.Clean() {
		e.logger.Printf("[ENGINE] screened %d records for %s", len(report.Dropped), userID)
	}

	scores := e.producer.Produce(w)
	prev, source := e.previous(ctx, userID)
	r := fog.Update(scores, prev)

	res := Result{
		UserID:     userID,
		ComputedAt: now,
		Fog:        r,
		PrevSource: source,
		Screen:     report,
		Eval:       e.harness.Run(r),
	}
	if !res.Eval.Passed {
		e.logger.Printf("[ENGINE] not persisting %s: %s", userID, res.Eval.Reason)
		return res, nil
	}

	e.cache.Put(userID, r.State.FogValue)
	e.writeBack(ctx, userID, r)
	res.WriteQueued = true

	e.logger.Printf("[ENGINE] %s: score=%.4f fog=%.4f bucket=%s prev=%s",
		userID, r.Score, r.State.FogValue, r.State.FogBucket, source)
	return res, nil
}

// previous resolves the fog value to smooth against. nil means none is known.
func (e *Engine) previous(ctx context.Context, userID string) (*float64, PrevSource) {
	v, ok, err := e.store.ReadPreviousFog(ctx, userID)
	if err != nil {
		e.logger.Printf("[ENGINE] read fog for %s: %v", userID, err)
	}
	if err == nil && ok {
		e.cache.Put(userID, v)
		return &v, PrevPersisted
	}
	if c, ok := e.cache.Get(userID); ok {
		return &c, PrevCached
	}
	return nil, PrevDefault
}

// #endregion

// #region write-back

// writeBack persists r without blocking the caller. The write outlives ctx's
// cancellation but is bounded by the write timeout.
func (e *Engine) writeBack(ctx context.Context, userID string, r fog.Result) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.writeTimeout)
	e.writes.Add(1)
	go func() {
		defer e.writes.Done()
		defer cancel()
		if err := e.store.WriteFogState(wctx, userID, r.State, r.Scores); err != nil {
			e.logger.Printf("[ENGINE] write fog for %s: %v", userID, err)
		}
	}()
}

// Flush blocks until every write started so far has finished.
func (e *Engine) Flush() {
	e.writes.Wait()
}

// #endregion
