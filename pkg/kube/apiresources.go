package kube

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"

	"github.com/kubinv/kubinv/pkg/inventory"
)

// maxSuggestDistance bounds how dissimilar a "did you mean" suggestion may
// be before it is withheld.
const maxSuggestDistance = 5

type apiResourceEntry struct {
	gvr        schema.GroupVersionResource
	objectKind string
	namespaced bool
}

// APIResourceIndex maps the cluster's discovered API resources in both
// directions: qualified kind name to GVR for listing, and object
// (kind, apiVersion) pairs back to qualified kind names for resolving
// ownerReferences.
type APIResourceIndex struct {
	byName map[inventory.Kind]apiResourceEntry
	names  []string
}

// NewAPIResourceIndex discovers all listable API resources in the cluster.
// Partial discovery (some group unreachable) degrades the index rather than
// failing it, matching the best-effort posture of the report.
func NewAPIResourceIndex(d discovery.DiscoveryInterface) (*APIResourceIndex, error) {
	lists, err := d.ServerPreferredResources()
	if err != nil {
		if lists == nil {
			return nil, fmt.Errorf("failed to discover API resources: %w", err)
		}
		// discovery errors for individual groups still return the rest
		slog.Debug("partial API resource discovery", slog.String("error", err.Error()))
	}

	index := &APIResourceIndex{byName: make(map[inventory.Kind]apiResourceEntry)}

	for _, list := range lists {
		if list == nil {
			continue
		}
		gv, err := schema.ParseGroupVersion(list.GroupVersion)
		if err != nil {
			continue
		}
		for _, resource := range list.APIResources {
			// skip subresources such as "pods/status"
			if resource.Name == "" || strings.Contains(resource.Name, "/") {
				continue
			}
			name := qualifiedName(resource.Name, gv.Group)
			if _, taken := index.byName[name]; taken {
				continue
			}
			index.byName[name] = apiResourceEntry{
				gvr: schema.GroupVersionResource{
					Group:    gv.Group,
					Version:  gv.Version,
					Resource: resource.Name,
				},
				objectKind: resource.Kind,
				namespaced: resource.Namespaced,
			}
			index.names = append(index.names, string(name))
		}
	}
	sort.Strings(index.names)

	return index, nil
}

func qualifiedName(resource, group string) inventory.Kind {
	if group == "" {
		return inventory.Kind(resource)
	}
	return inventory.Kind(resource + "." + group)
}

// Lookup resolves a qualified kind name to its GVR and scope.
func (x *APIResourceIndex) Lookup(kind inventory.Kind) (schema.GroupVersionResource, bool, bool) {
	entry, ok := x.byName[kind]
	return entry.gvr, entry.namespaced, ok
}

// KindFor maps an ownerReference's object kind and apiVersion to the
// qualified kind name it is listed under. ok=false when the pair is unknown
// to this cluster.
func (x *APIResourceIndex) KindFor(objectKind, apiVersion string) (inventory.Kind, bool) {
	gv, err := schema.ParseGroupVersion(apiVersion)
	if err != nil {
		return "", false
	}
	for name, entry := range x.byName {
		if entry.objectKind == objectKind && entry.gvr.Group == gv.Group {
			return name, true
		}
	}
	return "", false
}

// PlatformKinds returns the qualified names of custom resource kinds whose
// API group contains the platform domain. These are attempted explicitly
// during gathering even when no owner chain reaches them.
func (x *APIResourceIndex) PlatformKinds(domain string) []inventory.Kind {
	var kinds []inventory.Kind
	for name, entry := range x.byName {
		if entry.gvr.Group != "" && strings.Contains(entry.gvr.Group, domain) {
			kinds = append(kinds, name)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Suggest returns the discovered kind name closest to the given one, for
// "did you mean" diagnostics, or "" when nothing is plausibly close.
func (x *APIResourceIndex) Suggest(name string) string {
	best := ""
	bestDistance := maxSuggestDistance + 1
	for _, candidate := range x.names {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best
}
