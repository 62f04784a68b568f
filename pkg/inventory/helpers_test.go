package inventory

import (
	"context"
	"fmt"
	"strings"
)

// fakeLister replays canned objects per kind, tracking list calls.
type fakeLister struct {
	objects map[Kind][]map[string]interface{}
	errors  map[Kind]error
	calls   map[Kind]int
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		objects: make(map[Kind][]map[string]interface{}),
		errors:  make(map[Kind]error),
		calls:   make(map[Kind]int),
	}
}

func (f *fakeLister) add(kind Kind, objs ...map[string]interface{}) *fakeLister {
	f.objects[kind] = append(f.objects[kind], objs...)
	return f
}

func (f *fakeLister) fail(kind Kind, err error) *fakeLister {
	f.errors[kind] = err
	// the kind must still resolve or the gatherer never issues the call
	if _, ok := f.objects[kind]; !ok {
		f.objects[kind] = nil
	}
	return f
}

func (f *fakeLister) ListResources(_ context.Context, kind Kind) ([]*Resource, error) {
	f.calls[kind]++
	if err := f.errors[kind]; err != nil {
		return nil, err
	}
	objs, ok := f.objects[kind]
	if !ok {
		return nil, fmt.Errorf("kind %q is not known to this cluster", kind)
	}
	resources := make([]*Resource, 0, len(objs))
	for _, obj := range objs {
		resources = append(resources, NewResourceFromMap(obj))
	}
	return resources, nil
}

func (f *fakeLister) ResolveListableName(kind Kind) (string, bool) {
	_, ok := f.objects[kind]
	return string(kind), ok
}

// ownerKindNames mirrors the (kind, group) pairs a cluster's discovery would
// resolve for the workload kinds used in tests.
var ownerKindNames = map[string]Kind{
	"Pod/":             KindPods,
	"Node/":            KindNodes,
	"Service/":         KindServices,
	"ConfigMap/":       KindConfigMaps,
	"Secret/":          KindSecrets,
	"ReplicaSet/apps":  KindReplicaSets,
	"Deployment/apps":  KindDeployments,
	"StatefulSet/apps": KindStatefulSets,
	"DaemonSet/apps":   KindDaemonSets,
	"Job/batch":        KindJobs,
	"CronJob/batch":    KindCronJobs,
}

func (f *fakeLister) KindFor(objectKind, apiVersion string) (Kind, bool) {
	group := ""
	if i := strings.LastIndex(apiVersion, "/"); i >= 0 {
		group = apiVersion[:i]
	}
	kind, ok := ownerKindNames[objectKind+"/"+group]
	return kind, ok
}

// obj builds a minimal unstructured object map.
func obj(apiVersion, kind, name string) map[string]interface{} {
	return map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": "test-ns",
		},
	}
}

func metadata(o map[string]interface{}) map[string]interface{} {
	return o["metadata"].(map[string]interface{})
}

func spec(o map[string]interface{}) map[string]interface{} {
	s, ok := o["spec"].(map[string]interface{})
	if !ok {
		s = map[string]interface{}{}
		o["spec"] = s
	}
	return s
}

func withOwner(o map[string]interface{}, apiVersion, kind, name string) map[string]interface{} {
	md := metadata(o)
	owners, _ := md["ownerReferences"].([]interface{})
	md["ownerReferences"] = append(owners, map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"name":       name,
	})
	return o
}

func withLabels(o map[string]interface{}, labels map[string]string) map[string]interface{} {
	converted := map[string]interface{}{}
	for k, v := range labels {
		converted[k] = v
	}
	metadata(o)["labels"] = converted
	return o
}

func withAnnotations(o map[string]interface{}, annotations map[string]string) map[string]interface{} {
	converted := map[string]interface{}{}
	for k, v := range annotations {
		converted[k] = v
	}
	metadata(o)["annotations"] = converted
	return o
}

func withNodeName(o map[string]interface{}, node string) map[string]interface{} {
	spec(o)["nodeName"] = node
	return o
}

func withSelector(o map[string]interface{}, selector map[string]string) map[string]interface{} {
	converted := map[string]interface{}{}
	for k, v := range selector {
		converted[k] = v
	}
	spec(o)["selector"] = converted
	return o
}

func pod(name string) map[string]interface{} {
	return obj("v1", "Pod", name)
}

func node(name string) map[string]interface{} {
	o := obj("v1", "Node", name)
	delete(metadata(o), "namespace")
	return o
}

func service(name string, selector map[string]string) map[string]interface{} {
	o := obj("v1", "Service", name)
	if selector != nil {
		withSelector(o, selector)
	}
	return o
}
