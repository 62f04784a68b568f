package kube

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/dynamic"

	"github.com/kubinv/kubinv/pkg/inventory"
)

// Default client-side rate limit for list calls. A report issues one list
// per kind, so this only matters on clusters with many platform CRDs.
const (
	defaultListRate  = rate.Limit(20)
	defaultListBurst = 20
)

// DynamicLister implements inventory.Lister over the dynamic client and a
// discovery index.
type DynamicLister struct {
	client    dynamic.Interface
	index     *APIResourceIndex
	namespace string
	limiter   *rate.Limiter
}

// NewDynamicLister builds a lister scoped to one namespace. Cluster-scoped
// kinds (Nodes) are listed without the namespace automatically.
func NewDynamicLister(client dynamic.Interface, index *APIResourceIndex, namespace string) *DynamicLister {
	return &DynamicLister{
		client:    client,
		index:     index,
		namespace: namespace,
		limiter:   rate.NewLimiter(defaultListRate, defaultListBurst),
	}
}

// ListResources lists all objects of a kind. Unknown kinds report an error
// that classifies as not-listable; so do forbidden and unsupported responses
// from the API server.
func (l *DynamicLister) ListResources(ctx context.Context, kind inventory.Kind) ([]*inventory.Resource, error) {
	gvr, namespaced, ok := l.index.Lookup(kind)
	if !ok {
		msg := fmt.Sprintf("kind %q is not known to this cluster", kind)
		if suggestion := l.index.Suggest(string(kind)); suggestion != "" {
			msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
		}
		return nil, &NotListableError{Kind: kind, Reason: msg}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var iface dynamic.ResourceInterface = l.client.Resource(gvr)
	if namespaced {
		iface = l.client.Resource(gvr).Namespace(l.namespace)
	}

	list, err := iface.List(ctx, metav1.ListOptions{})
	if err != nil {
		if apierrors.IsForbidden(err) || apierrors.IsNotFound(err) || apierrors.IsMethodNotSupported(err) {
			return nil, &NotListableError{Kind: kind, Reason: err.Error(), Err: err}
		}
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	resources := make([]*inventory.Resource, 0, len(list.Items))
	for i := range list.Items {
		item := list.Items[i]
		resources = append(resources, inventory.NewResource(&item))
	}

	slog.Debug("listed resources",
		slog.String("kind", string(kind)),
		slog.Int("count", len(resources)))
	return resources, nil
}

// ResolveListableName maps a kind to the canonical name the cluster lists it
// by; ok=false means the kind is unknown to this cluster.
func (l *DynamicLister) ResolveListableName(kind inventory.Kind) (string, bool) {
	gvr, _, ok := l.index.Lookup(kind)
	if !ok {
		return "", false
	}
	return string(qualifiedName(gvr.Resource, gvr.Group)), true
}

// KindFor maps an ownerReference (kind, apiVersion) to a gatherable kind.
func (l *DynamicLister) KindFor(objectKind, apiVersion string) (inventory.Kind, bool) {
	return l.index.KindFor(objectKind, apiVersion)
}

// NotListableError marks a kind whose listing is forbidden or unsupported,
// the tolerated failure class for non-seed kinds.
type NotListableError struct {
	Kind   inventory.Kind
	Reason string
	Err    error
}

func (e *NotListableError) Error() string {
	return fmt.Sprintf("cannot list %s: %s", e.Kind, e.Reason)
}

func (e *NotListableError) Unwrap() error { return e.Err }
