package keeper

import (
	"context"
	"errors"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
	"coordination-api/logging"

	"github.com/shopspring/decimal"
)

// ConfigureAIService replaces the AI-service descriptor wholesale. Partial
// updates are not supported: the whole record is validated and written
// atomically so the service can never be enabled without an endpoint.
func (k *Keeper) ConfigureAIService(ctx context.Context, caller string, cfg types.AIServiceConfig) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireAuthority(caller); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.PutAIServiceConfig(cfg); err != nil {
			return err
		}
		events = append(events, k.newEvent(types.EventMCPServerConfigured, types.ConfigChangedPayload{
			What: "ai_service",
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("ai service configured", types.Config,
		"endpoint", cfg.Endpoint, "active", cfg.Active)
	return nil
}

// SetQueryTypeFee sets the required payment for a query type. Authority only.
// Support for the type is governed independently by SetQueryTypeSupported.
func (k *Keeper) SetQueryTypeFee(ctx context.Context, caller, queryType string, fee decimal.Decimal) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireAuthority(caller); err != nil {
		return err
	}
	if queryType == "" {
		return types.ErrMalformedConfig.Wrap("query type is required")
	}
	if fee.IsNegative() {
		return types.ErrMalformedConfig.Wrapf("fee must not be negative, got %s", fee)
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		entry, err := tx.GetFeeEntry(queryType)
		if errors.Is(err, store.ErrNotFound) {
			entry = types.FeeScheduleEntry{QueryType: queryType}
		} else if err != nil {
			return err
		}
		entry.Fee = fee
		if err := tx.PutFeeEntry(entry); err != nil {
			return err
		}
		events = append(events, k.newEvent(types.EventFeeScheduleUpdated, types.ConfigChangedPayload{
			What: "fee:" + queryType,
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("query type fee set", types.Config, "queryType", queryType, "fee", fee.String())
	return nil
}

// SetQueryTypeSupported toggles admission for a query type. Authority only.
func (k *Keeper) SetQueryTypeSupported(ctx context.Context, caller, queryType string, supported bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireAuthority(caller); err != nil {
		return err
	}
	if queryType == "" {
		return types.ErrMalformedConfig.Wrap("query type is required")
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		entry, err := tx.GetFeeEntry(queryType)
		if errors.Is(err, store.ErrNotFound) {
			entry = types.FeeScheduleEntry{QueryType: queryType, Fee: decimal.Zero}
		} else if err != nil {
			return err
		}
		entry.Supported = supported
		if err := tx.PutFeeEntry(entry); err != nil {
			return err
		}
		events = append(events, k.newEvent(types.EventFeeScheduleUpdated, types.ConfigChangedPayload{
			What: "supported:" + queryType,
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("query type support set", types.Config, "queryType", queryType, "supported", supported)
	return nil
}

// SeedFeeSchedule writes fee entries that do not exist yet. Called once at
// startup with the configured defaults; existing entries win so operator
// changes survive restarts.
func (k *Keeper) SeedFeeSchedule(ctx context.Context, entries []types.FeeScheduleEntry) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.store.Update(ctx, func(tx *store.Tx) error {
		for _, e := range entries {
			_, err := tx.GetFeeEntry(e.QueryType)
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if err := tx.PutFeeEntry(e); err != nil {
				return err
			}
			logging.Info("fee schedule seeded", types.Config,
				"queryType", e.QueryType, "fee", e.Fee.String(), "supported", e.Supported)
		}
		return nil
	})
}
