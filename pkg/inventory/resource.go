package inventory

import (
	"encoding/json"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Resource is one Kubernetes object as returned by the cluster. It wraps the
// raw unstructured definition and exposes the handful of accessors the
// inventory pipeline needs. A Resource is immutable once gathered; the only
// mutation is the one-time metadata strip performed at ingest.
type Resource struct {
	u *unstructured.Unstructured
}

// NewResource wraps an unstructured object.
func NewResource(u *unstructured.Unstructured) *Resource {
	return &Resource{u: u}
}

// NewResourceFromMap wraps a raw object map. Convenient for tests.
func NewResourceFromMap(obj map[string]interface{}) *Resource {
	return NewResource(&unstructured.Unstructured{Object: obj})
}

// Unstructured returns the underlying object.
func (r *Resource) Unstructured() *unstructured.Unstructured { return r.u }

// APIVersion returns the object's apiVersion value.
func (r *Resource) APIVersion() string { return r.u.GetAPIVersion() }

// ObjectKind returns the object's kind value (e.g. "Pod"), as opposed to the
// qualified Kind the cache is keyed by.
func (r *Resource) ObjectKind() string { return r.u.GetKind() }

// Name returns the object's metadata.name.
func (r *Resource) Name() string { return r.u.GetName() }

// Namespace returns the object's metadata.namespace.
func (r *Resource) Namespace() string { return r.u.GetNamespace() }

// Labels returns the object's labels, never nil.
func (r *Resource) Labels() map[string]string {
	if l := r.u.GetLabels(); l != nil {
		return l
	}
	return map[string]string{}
}

// Label returns a single label value, or "" if unset.
func (r *Resource) Label(key string) string { return r.Labels()[key] }

// Annotations returns the object's annotations, never nil.
func (r *Resource) Annotations() map[string]string {
	if a := r.u.GetAnnotations(); a != nil {
		return a
	}
	return map[string]string{}
}

// Annotation returns a single annotation value, or "" if unset.
func (r *Resource) Annotation(key string) string { return r.Annotations()[key] }

// OwnerReferences returns the object's metadata.ownerReferences.
func (r *Resource) OwnerReferences() []metav1.OwnerReference {
	return r.u.GetOwnerReferences()
}

// NodeName returns spec.nodeName, or "" when the object has none (non-Pod
// kinds, or a Pod that has not been scheduled yet).
func (r *Resource) NodeName() string {
	name, _, _ := unstructured.NestedString(r.u.Object, "spec", "nodeName")
	return name
}

// Selector returns spec.selector as a flat string map, or nil when absent.
// Only plain equality selectors (the Service schema) are represented.
func (r *Resource) Selector() map[string]string {
	sel, found, err := unstructured.NestedStringMap(r.u.Object, "spec", "selector")
	if !found || err != nil {
		return nil
	}
	return sel
}

// SpecSlice returns a list-valued spec field, or nil when absent or of the
// wrong shape.
func (r *Resource) SpecSlice(fields ...string) []interface{} {
	path := append([]string{"spec"}, fields...)
	v, found, err := unstructured.NestedSlice(r.u.Object, path...)
	if !found || err != nil {
		return nil
	}
	return v
}

// SpecString returns a string-valued spec field, or "" when absent.
func (r *Resource) SpecString(fields ...string) string {
	path := append([]string{"spec"}, fields...)
	v, found, err := unstructured.NestedString(r.u.Object, path...)
	if !found || err != nil {
		return ""
	}
	return v
}

// MarshalJSON emits the raw object definition.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.u.Object)
}

// MarshalYAML emits the raw object definition.
func (r *Resource) MarshalYAML() (interface{}, error) {
	return r.u.Object, nil
}
