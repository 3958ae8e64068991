package reconcile

import (
	"context"
	"fmt"
	"sort"
)

// ReconcileAll builds both indices, computes the union of keys and returns a
// result for each key sorted by key.
func ReconcileAll(ctx context.Context, spec *Spec) ([]Result, error) {
	cache, err := BuildCache(ctx, spec)
	if err != nil {
		return nil, err
	}
	return reconcileFromCache(cache), nil
}

// ReconcileOne reconciles a single key, reusing cached indices when the spec allows it.
func ReconcileOne(ctx context.Context, spec *Spec, key string) (*Result, error) {
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

	result := buildResult(key, cache.SourceIndex, cache.ContainerIndex)
	return &result, nil
}

func reconcileFromCache(cache *Cache) []Result {
	union := buildUnion(cache.SourceIndex, cache.ContainerIndex)

	results := make([]Result, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, cache.SourceIndex, cache.ContainerIndex))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})
	return results
}

func buildUnion(source, container map[string]Entry) map[string]struct{} {
	union := make(map[string]struct{}, len(source)+len(container))
	for key := range source {
		union[key] = struct{}{}
	}
	for key := range container {
		union[key] = struct{}{}
	}
	return union
}

func buildResult(key string, source, container map[string]Entry) Result {
	src, srcPresent := source[key]
	dst, dstPresent := container[key]

	result := Result{
		Key:              key,
		SourcePresent:    srcPresent,
		ContainerPresent: dstPresent,
		SourceSize:       src.Size,
		ContainerSize:    dst.Size,
		Mismatch:         []string{},
	}

	if srcPresent && dstPresent && src.Size != dst.Size {
		result.Mismatch = append(result.Mismatch, fmt.Sprintf("size: source=%d container=%d", src.Size, dst.Size))
	}
	return result
}
