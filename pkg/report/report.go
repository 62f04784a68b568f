// Package report orchestrates the inventory pipeline into a single report
// document: gather, detect ingress, infer relationships, aggregate
// components, and optionally attach pod log snippets.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kubinv/kubinv/pkg/inventory"
	"github.com/kubinv/kubinv/pkg/platform"
)

// KindSummary is the per-kind rollup included in the report header.
type KindSummary struct {
	Available bool `json:"available" yaml:"available"`
	Count     int  `json:"count" yaml:"count"`

	// PlatformCRD marks kinds that were gathered because their API group
	// belongs to the platform domain, not because an owner chain or the
	// standard kind set reached them.
	PlatformCRD bool `json:"platformCRD,omitempty" yaml:"platformCRD,omitempty"`
}

// Report is the complete inventory document produced by one run.
type Report struct {
	RunID     string    `json:"runID" yaml:"runID"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Gathered  time.Time `json:"gathered" yaml:"gathered"`
	Namespace string    `json:"namespace" yaml:"namespace"`

	IngressController inventory.Controller `json:"ingressController" yaml:"ingressController"`

	// UnavailableKinds lists kinds that could not be listed and whose
	// absence is NOT explained by the detected ingress controller.
	UnavailableKinds []inventory.Kind `json:"unavailableKinds" yaml:"unavailableKinds"`

	Kinds map[inventory.Kind]KindSummary `json:"kinds" yaml:"kinds"`

	// Nodes is the cluster overview: every Node, each carrying edges to the
	// namespace Pods scheduled on it.
	Nodes map[string]*inventory.Entry `json:"nodes" yaml:"nodes"`

	PlatformComponents map[string]*inventory.Component `json:"platformComponents" yaml:"platformComponents"`
	OtherComponents    map[string]*inventory.Component `json:"otherComponents" yaml:"otherComponents"`
}

// Assembler runs the pipeline. Lister and Matcher are required; the rest is
// optional.
type Assembler struct {
	Lister    inventory.Lister
	Matcher   *platform.Matcher
	Namespace string

	// Version stamps the report with the producing tool's version.
	Version string

	// PlatformKinds are custom resource kinds gathered explicitly, found by
	// discovery from the platform domain's API groups.
	PlatformKinds []inventory.Kind

	// Logs, when non-nil, attaches a log snippet to every gathered Pod.
	Logs    LogReader
	LogTail int
}

// Assemble produces the full report. The only fatal gathering failure is the
// Pod kind itself; everything else degrades into UnavailableKinds.
func (a *Assembler) Assemble(ctx context.Context) (*Report, error) {
	if a.Matcher == nil {
		a.Matcher = platform.NewMatcher("")
	}

	slog.Debug("starting inventory report",
		slog.String("namespace", a.Namespace),
		slog.String("platformDomain", a.Matcher.Domain))

	gatherer := &inventory.Gatherer{
		Lister:    a.Lister,
		Namespace: a.Namespace,
	}

	cache, err := gatherer.GatherAll(ctx, a.PlatformKinds)
	if err != nil {
		return nil, fmt.Errorf("failed to gather resources: %w", err)
	}

	isPlatform := a.Matcher.Matches
	controller := inventory.DetectIngressController(cache, isPlatform)
	slog.Debug("detected ingress controller", slog.String("controller", string(controller)))

	inventory.DefineNodeToPodRelationships(cache)
	inventory.DefinePodToServiceRelationships(cache)
	inventory.DefineServiceToIngressRelationships(cache, controller)

	if a.Logs != nil {
		if err := CollectPodLogs(ctx, cache, a.Logs, a.LogTail); err != nil {
			return nil, fmt.Errorf("failed to collect pod logs: %w", err)
		}
	}

	platformComponents, otherComponents := inventory.BuildComponents(
		cache, isPlatform, a.Matcher.ComponentNameAnnotation())

	report := &Report{
		RunID:              uuid.NewString(),
		Version:            a.Version,
		Gathered:           time.Now().UTC(),
		Namespace:          a.Namespace,
		IngressController:  controller,
		UnavailableKinds:   unavailableKinds(cache, controller),
		Kinds:              kindSummaries(cache, a.PlatformKinds),
		Nodes:              nodeOverview(cache),
		PlatformComponents: platformComponents,
		OtherComponents:    otherComponents,
	}

	slog.Debug("inventory report assembled",
		slog.String("runID", report.RunID),
		slog.Int("kinds", len(report.Kinds)),
		slog.Int("platformComponents", len(platformComponents)),
		slog.Int("otherComponents", len(otherComponents)))

	return report, nil
}

// unavailableKinds returns the kinds that could not be listed, excluding
// those whose absence the detected ingress controller makes unremarkable.
func unavailableKinds(cache inventory.Cache, controller inventory.Controller) []inventory.Kind {
	kinds := []inventory.Kind{}
	for _, kind := range cache.Kinds() {
		bucket, _ := cache.Bucket(kind)
		if bucket.Available {
			continue
		}
		if inventory.IgnorableIfUnavailable(controller, kind) {
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

func nodeOverview(cache inventory.Cache) map[string]*inventory.Entry {
	nodes, ok := cache.Bucket(inventory.KindNodes)
	if !ok {
		return map[string]*inventory.Entry{}
	}
	return nodes.Items
}

func kindSummaries(cache inventory.Cache, platformKinds []inventory.Kind) map[inventory.Kind]KindSummary {
	isPlatformCRD := make(map[inventory.Kind]bool, len(platformKinds))
	for _, kind := range platformKinds {
		isPlatformCRD[kind] = true
	}

	summaries := make(map[inventory.Kind]KindSummary, len(cache))
	for _, kind := range cache.Kinds() {
		bucket, _ := cache.Bucket(kind)
		summaries[kind] = KindSummary{
			Available:   bucket.Available,
			Count:       bucket.Count,
			PlatformCRD: isPlatformCRD[kind],
		}
	}
	return summaries
}
