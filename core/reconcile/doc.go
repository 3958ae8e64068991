// Package reconcile compares an S3-compatible source bucket with a blob container.
//
// Both sides are indexed once, concurrently, with a single listing each. The
// union of keys yields one Result per object with presence flags and any
// mismatch, and a Plan turns those results into uploads and purges.
//
// # Components
//
//   - Engine: Builds the key union and per-key results.
//   - Adapter: Loads the indices. Adapters that also implement Mutator can apply plans.
//   - Cache: TTL-based index cache with stampede protection for repeated plans.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Adapter:      adapter,
//	    Bucket:       "exports",
//	    SourcePrefix: "daily/",
//	    CacheTTL:     time.Minute,
//	}
//
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, reconcile.Options{DoUpload: true})
//	executed, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.Options{DoUpload: true, Confirmed: true})
package reconcile
