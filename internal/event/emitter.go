package event

import (
	"encoding/json"

	"coordination-api/coordination/types"
	"coordination-api/logging"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NatsEmitter publishes committed coordination events to JetStream. Emit is
// called after the state change committed, so a failed publish is logged and
// dropped, never surfaced back into the operation.
type NatsEmitter struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

func NewNatsEmitter(url string) (*NatsEmitter, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, errors.Wrap(err, "connect to NATS")
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, errors.Wrap(err, "get JetStream context")
	}
	return &NatsEmitter{nc: nc, js: js}, nil
}

func (e *NatsEmitter) Emit(ev types.Event) {
	if ev.Id == "" {
		ev.Id = uuid.NewString()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logging.Error("failed to marshal event", types.Events, "type", ev.Type, "error", err)
		return
	}

	if _, err := e.js.Publish(ev.Subject(), data); err != nil {
		logging.Error("failed to publish event", types.Events,
			"type", ev.Type, "subject", ev.Subject(), "error", err)
		return
	}
	logging.Debug("event published", types.Events, "type", ev.Type, "subject", ev.Subject(), "id", ev.Id)
}

func (e *NatsEmitter) Close() {
	e.nc.Close()
}

// NopEmitter discards events. Used in tests and when eventing is disabled.
type NopEmitter struct{}

func (NopEmitter) Emit(types.Event) {}

// MultiEmitter fans one event out to several sinks in order.
type MultiEmitter []interface{ Emit(types.Event) }

func (m MultiEmitter) Emit(ev types.Event) {
	if ev.Id == "" {
		ev.Id = uuid.NewString()
	}
	for _, e := range m {
		e.Emit(ev)
	}
}
