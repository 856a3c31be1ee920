package keeper

import (
	"sync"
	"time"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
	"coordination-api/logging"
)

// EventEmitter publishes committed coordination events. Implementations must
// tolerate being called after the state change has already committed: a
// failed publish is logged, never rolled back into the operation.
type EventEmitter interface {
	Emit(ev types.Event)
}

// Keeper is the coordination engine. Every mutating entry point takes the
// caller identity, performs its capability check first, runs all bookkeeping
// inside one store transaction, and emits events only after the transaction
// commits. A single mutex gives the global serialization order the design
// requires.
type Keeper struct {
	mu      sync.Mutex
	store   *store.Store
	emitter EventEmitter

	authority  string
	responders map[string]struct{}

	queryTTL time.Duration
	now      func() time.Time
}

// Option configures optional Keeper dependencies.
type Option func(*Keeper)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(k *Keeper) {
		k.now = now
	}
}

func NewKeeper(s *store.Store, emitter EventEmitter, authority string, responders []string, queryTTL time.Duration, opts ...Option) *Keeper {
	k := &Keeper{
		store:      s,
		emitter:    emitter,
		authority:  authority,
		responders: make(map[string]struct{}, len(responders)),
		queryTTL:   queryTTL,
		now:        time.Now,
	}
	for _, r := range responders {
		k.responders[r] = struct{}{}
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Authority returns the configured owning authority identity.
func (k *Keeper) Authority() string {
	return k.authority
}

// QueryTTL returns the configured time-to-live after which a query becomes
// expirable.
func (k *Keeper) QueryTTL() time.Duration {
	return k.queryTTL
}

func (k *Keeper) requireAuthority(caller string) error {
	if caller != k.authority {
		return types.ErrUnauthorized.Wrapf("authority required, caller %q", caller)
	}
	return nil
}

// requireResponder checks the authorized-responder capability. The responder
// role is deliberately distinct from the authority: deployment control and
// analytics responses are independently revocable.
func (k *Keeper) requireResponder(caller string) error {
	if _, ok := k.responders[caller]; !ok {
		return types.ErrUnauthorized.Wrapf("responder capability required, caller %q", caller)
	}
	return nil
}

// AddResponder grants the responder capability. Authority only.
func (k *Keeper) AddResponder(caller, responder string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.requireAuthority(caller); err != nil {
		return err
	}
	k.responders[responder] = struct{}{}
	logging.Info("responder granted", types.Config, "responder", responder)
	return nil
}

// RemoveResponder revokes the responder capability. Authority only.
func (k *Keeper) RemoveResponder(caller, responder string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.requireAuthority(caller); err != nil {
		return err
	}
	delete(k.responders, responder)
	logging.Info("responder revoked", types.Config, "responder", responder)
	return nil
}

// Responders returns the current responder set.
func (k *Keeper) Responders() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, 0, len(k.responders))
	for r := range k.responders {
		out = append(out, r)
	}
	return out
}

// emitAll publishes staged events after a successful commit, preserving the
// order in which the operation produced them.
func (k *Keeper) emitAll(events []types.Event) {
	if k.emitter == nil {
		return
	}
	for _, ev := range events {
		k.emitter.Emit(ev)
	}
}

func (k *Keeper) newEvent(eventType string, payload any) types.Event {
	return types.Event{
		Type:       eventType,
		OccurredAt: k.now().UnixMilli(),
		Payload:    payload,
	}
}
