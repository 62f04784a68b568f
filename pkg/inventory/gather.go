package inventory

import (
	"context"
	"log/slog"
	"time"
)

// Lister is the cluster-access collaborator. Implementations issue list
// requests against a live cluster (pkg/kube) or replay canned objects
// (test doubles).
type Lister interface {
	// ListResources lists all objects of a kind in the target namespace.
	// Implementations should return ErrKindNotListable-classifiable errors
	// for forbidden or unsupported kinds so callers can tell expected
	// absences from transport failures.
	ListResources(ctx context.Context, kind Kind) ([]*Resource, error)

	// ResolveListableName maps a kind to whatever identifier the access
	// layer lists it by. ok=false means the kind is not known to this
	// cluster at all; the gatherer records it as unavailable without
	// attempting a list call.
	ResolveListableName(kind Kind) (name string, ok bool)

	// KindFor maps an ownerReference's (kind, apiVersion) pair to a
	// gatherable Kind. ok=false means the owner kind is not listable in
	// this cluster.
	KindFor(objectKind, apiVersion string) (Kind, bool)
}

// Gatherer recursively lists resources by kind, following each object's
// owner chain to discover and fetch owner kinds, memoizing per-kind results
// in the cache it populates.
type Gatherer struct {
	Lister    Lister
	Namespace string

	// Seed is the kind whose listing failure is fatal. Defaults to Pods.
	Seed Kind

	// StripAnnotations overrides the default set of annotation key
	// patterns removed at ingest.
	StripAnnotations []string
}

func (g *Gatherer) seed() Kind {
	if g.Seed == "" {
		return KindPods
	}
	return g.Seed
}

func (g *Gatherer) stripPatterns() []string {
	if g.StripAnnotations != nil {
		return g.StripAnnotations
	}
	return defaultStripAnnotations
}

// Gather lists all objects of a kind into the cache and recursively gathers
// every kind referenced by their ownerReferences. A kind already present in
// the cache short-circuits immediately, which makes Gather idempotent and
// bounds the owner walk even on cyclic owner graphs.
//
// Listing failures are fatal only for the seed kind; any other kind is
// recorded with Available=false and zero items so the report can degrade
// instead of aborting.
func (g *Gatherer) Gather(ctx context.Context, cache Cache, kind Kind) error {
	if _, done := cache[kind]; done {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()

	var resources []*Resource
	available := true

	if _, ok := g.Lister.ResolveListableName(kind); !ok {
		// kind unknown to this cluster, record it without a list call
		available = false
	} else {
		var err error
		resources, err = g.Lister.ListResources(ctx, kind)
		if err != nil {
			if kind == g.seed() {
				gatherKindTotal.WithLabelValues("fatal").Inc()
				return &SeedUnavailableError{Kind: kind, Namespace: g.Namespace, Err: err}
			}
			slog.Debug("kind not listable, continuing without it",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
			available = false
			resources = nil
		}
	}

	bucket := &Bucket{
		Available: available,
		Count:     len(resources),
		Items:     make(map[string]*Entry, len(resources)),
	}
	cache[kind] = bucket

	// collect the distinct owner kinds seen across all items before
	// recursing, so each discovered kind is gathered exactly once
	var ownerKinds []Kind
	seenOwnerKinds := map[Kind]bool{}

	for _, res := range resources {
		stripNoise(res.Unstructured(), g.stripPatterns())

		entry := &Entry{
			Resource:      res,
			Relationships: []Edge{},
		}
		bucket.Items[res.Name()] = entry

		if noOwnerWalkKinds[kind] {
			continue
		}

		for _, owner := range res.OwnerReferences() {
			ownerKind, ok := g.Lister.KindFor(owner.Kind, owner.APIVersion)
			if !ok {
				slog.Debug("owner kind not listable in this cluster",
					slog.String("ownerKind", owner.Kind),
					slog.String("apiVersion", owner.APIVersion))
				continue
			}
			entry.AddRelationship(Edge{Kind: ownerKind, Name: owner.Name})
			if !seenOwnerKinds[ownerKind] {
				seenOwnerKinds[ownerKind] = true
				ownerKinds = append(ownerKinds, ownerKind)
			}
		}
	}

	gatherKindDuration.Observe(time.Since(start).Seconds())
	gatherKindTotal.WithLabelValues(availabilityLabel(available)).Inc()

	slog.Debug("gathered kind",
		slog.String("kind", string(kind)),
		slog.Bool("available", available),
		slog.Int("count", bucket.Count))

	for _, ownerKind := range ownerKinds {
		if err := g.Gather(ctx, cache, ownerKind); err != nil {
			return err
		}
	}
	return nil
}

// GatherAll builds the full cache for a report run: the seed kind and its
// ownership closure, the standalone kinds (nodes, configmaps, secrets), and,
// when any seed object exists, the networking kinds plus any extra kinds the
// caller wants attempted (typically platform custom resources).
//
// The returned cache is complete: relationship inference and aggregation
// must not run before GatherAll returns.
func (g *Gatherer) GatherAll(ctx context.Context, extraKinds []Kind) (Cache, error) {
	cache := NewCache()

	// the seed first: its owner walk discovers the controller kinds, and
	// its failure is the only fatal one
	if err := g.Gather(ctx, cache, g.seed()); err != nil {
		return nil, err
	}

	// standalone kinds that are never owned by application components but
	// still belong in the report
	for _, kind := range []Kind{KindNodes, KindConfigMaps, KindSecrets} {
		if err := g.Gather(ctx, cache, kind); err != nil {
			return nil, err
		}
	}

	// networking and custom kinds only matter when there are seed objects
	// to relate them to
	if seedBucket, ok := cache.Bucket(g.seed()); ok && seedBucket.Count > 0 {
		kinds := append([]Kind{KindServices}, AllIngressKinds()...)
		kinds = append(kinds, extraKinds...)
		for _, kind := range kinds {
			if err := g.Gather(ctx, cache, kind); err != nil {
				return nil, err
			}
		}
	}

	gatherCacheKinds.Set(float64(len(cache)))
	return cache, nil
}

func availabilityLabel(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}
