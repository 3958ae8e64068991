package reconcile

import (
	"context"
	"fmt"
)

// ReconcileWithPlan reconciles both sides and plans actions without executing them.
func ReconcileWithPlan(ctx context.Context, spec *Spec, opts Options) (*Plan, error) {
	var (
		cache *Cache
		err   error
	)
	if spec.CacheTTL > 0 {
		cache, err = GetOrBuildCache(ctx, spec)
	} else {
		cache, err = BuildCache(ctx, spec)
	}
	if err != nil {
		return nil, err
	}

	results := reconcileFromCache(cache)
	summary, actions := buildPlanFromResults(results, opts)

	return &Plan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes the planned actions in order and returns how many ran.
// Nothing runs unless opts.Confirmed is set and opts.DryRun is not.
func ApplyPlan(ctx context.Context, spec *Spec, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	mutator, ok := spec.Adapter.(Mutator)
	if !ok {
		return 0, fmt.Errorf("adapter %s does not implement Mutator interface", spec.Adapter.Name())
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return executed, err
		}
		switch action.Type {
		case ActionUpload:
			err = mutator.UploadKey(ctx, spec, action.Key)
		case ActionDeleteBlob:
			err = mutator.DeleteKey(ctx, spec, action.Key)
		default:
			err = fmt.Errorf("unknown action type %q", action.Type)
		}
		if err != nil {
			return executed, fmt.Errorf("failed to %s %s: %w", action.Type, action.Key, err)
		}
		executed++
	}

	if executed > 0 {
		InvalidateCache(spec)
	}
	return executed, nil
}

// ReconcileAndApply plans and, when confirmed, applies the plan.
func ReconcileAndApply(ctx context.Context, spec *Spec, opts Options) (*Plan, int, error) {
	plan, err := ReconcileWithPlan(ctx, spec, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, spec, plan, opts)
	return plan, executed, err
}

func buildPlanFromResults(results []Result, opts Options) (PlanSummary, []Action) {
	var summary PlanSummary
	var actions []Action

	summary.TotalItems = len(results)

	for _, result := range results {
		if result.SourcePresent && !result.ContainerPresent {
			summary.MissingContainer++
		}
		if result.ContainerPresent && !result.SourcePresent {
			summary.MissingSource++
		}
		if len(result.Mismatch) > 0 {
			summary.Mismatches++
		}

		switch {
		case opts.DoUpload && result.SourcePresent && !result.ContainerPresent:
			actions = append(actions, Action{Type: ActionUpload, Key: result.Key, Reason: "missing in container"})
			summary.UploadActions++
		case opts.DoUpload && len(result.Mismatch) > 0:
			actions = append(actions, Action{
				Type:   ActionUpload,
				Key:    result.Key,
				Reason: fmt.Sprintf("mismatch: %v", result.Mismatch),
			})
			summary.UploadActions++
		case opts.DoPurge && result.ContainerPresent && !result.SourcePresent:
			actions = append(actions, Action{Type: ActionDeleteBlob, Key: result.Key, Reason: "missing in source"})
			summary.PurgeActions++
		}
	}

	return summary, actions
}
