package keeper

import (
	"context"
	"errors"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
	"coordination-api/logging"
)

// RequestDeployment records a new explorer deployment in PENDING state.
// Authority only. A live previous deployment must be suspended or failed
// first; the single-record model makes two concurrent deployments
// structurally impossible.
func (k *Keeper) RequestDeployment(ctx context.Context, caller string, d types.DeploymentConfig) (types.DeploymentConfig, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireAuthority(caller); err != nil {
		return types.DeploymentConfig{}, err
	}
	if d.ExplorerName == "" || d.ChainName == "" || d.RpcUrl == "" {
		return types.DeploymentConfig{}, types.ErrMalformedConfig.Wrap("explorer_name, chain_name and rpc_url are required")
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		prev, err := tx.GetDeployment()
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil && !prev.Status.Supersedable() {
			return types.ErrInvalidTransition.Wrapf("deployment %s is %s, suspend or fail it first", prev.ExplorerName, prev.Status)
		}

		d.Deployer = caller
		d.DeployedAt = k.now().UnixMilli()
		d.Status = types.DeploymentStatusPending
		if err := tx.PutDeployment(d); err != nil {
			return err
		}

		st, err := tx.GetStats()
		if err != nil {
			return err
		}
		st.TotalDeployments++
		if err := tx.PutStats(st); err != nil {
			return err
		}

		events = append(events, k.newEvent(types.EventDeploymentRequested, types.DeploymentPayload{
			ExplorerName: d.ExplorerName,
			ChainId:      d.ChainId,
			Status:       d.Status,
		}))
		return nil
	})
	if err != nil {
		return types.DeploymentConfig{}, err
	}

	k.emitAll(events)
	logging.Info("deployment requested", types.Deployments,
		"explorer", d.ExplorerName, "chainId", d.ChainId)
	return d, nil
}

func (k *Keeper) MarkDeploymentDeploying(ctx context.Context, caller string) error {
	return k.setDeploymentStatus(ctx, caller, types.DeploymentStatusDeploying)
}

func (k *Keeper) MarkDeploymentActive(ctx context.Context, caller string) error {
	return k.setDeploymentStatus(ctx, caller, types.DeploymentStatusActive)
}

func (k *Keeper) MarkDeploymentUpdating(ctx context.Context, caller string) error {
	return k.setDeploymentStatus(ctx, caller, types.DeploymentStatusUpdating)
}

func (k *Keeper) MarkDeploymentFailed(ctx context.Context, caller string) error {
	return k.setDeploymentStatus(ctx, caller, types.DeploymentStatusFailed)
}

func (k *Keeper) MarkDeploymentSuspended(ctx context.Context, caller string) error {
	return k.setDeploymentStatus(ctx, caller, types.DeploymentStatusSuspended)
}

func (k *Keeper) setDeploymentStatus(ctx context.Context, caller string, next types.DeploymentStatus) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireAuthority(caller); err != nil {
		return err
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		d, err := tx.GetDeployment()
		if errors.Is(err, store.ErrNotFound) {
			return types.ErrNoDeployment
		}
		if err != nil {
			return err
		}
		if !d.Status.CanTransitionTo(next) {
			return types.ErrInvalidTransition.Wrapf("deployment: %s -> %s", d.Status, next)
		}

		liveBefore := deploymentLive(d.Status)
		d.Status = next
		d.DeployedAt = k.now().UnixMilli()
		if err := tx.PutDeployment(d); err != nil {
			return err
		}

		if liveBefore != deploymentLive(next) {
			st, err := tx.GetStats()
			if err != nil {
				return err
			}
			if deploymentLive(next) {
				st.ActiveDeployments++
			} else if st.ActiveDeployments > 0 {
				st.ActiveDeployments--
			}
			if err := tx.PutStats(st); err != nil {
				return err
			}
		}

		eventType := types.EventDeploymentStatusChanged
		if next == types.DeploymentStatusActive {
			eventType = types.EventDeploymentCompleted
		}
		events = append(events, k.newEvent(eventType, types.DeploymentPayload{
			ExplorerName: d.ExplorerName,
			ChainId:      d.ChainId,
			Status:       next,
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("deployment status changed", types.Deployments, "status", string(next))
	return nil
}

// deploymentLive reports whether a state counts toward the active-deployments
// gauge. UPDATING is a live deployment being reconfigured, not an outage.
func deploymentLive(s types.DeploymentStatus) bool {
	return s == types.DeploymentStatusActive || s == types.DeploymentStatusUpdating
}
