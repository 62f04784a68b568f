package inventory

import "log/slog"

// The relationship inferencers add non-ownership edges to a fully populated
// cache. Each is a no-op when either of its buckets is absent or empty, so
// they can run in any order once GatherAll has returned. All of them
// suppress duplicate (kind, name) edges via Entry.AddRelationship.

// DefineNodeToPodRelationships appends a Pod edge to each Node that has a
// Pod scheduled on it. Pods without a resolvable Node (not yet scheduled, or
// the Node kind unavailable) are skipped silently.
func DefineNodeToPodRelationships(cache Cache) {
	pods, podsOK := cache.Bucket(KindPods)
	nodes, nodesOK := cache.Bucket(KindNodes)
	if !podsOK || !nodesOK || pods.Count == 0 || nodes.Count == 0 {
		return
	}

	for _, podName := range pods.ItemNames() {
		pod := pods.Items[podName].Resource

		nodeName := pod.NodeName()
		if nodeName == "" {
			continue
		}
		node, ok := nodes.Items[nodeName]
		if !ok {
			continue
		}
		node.AddRelationship(Edge{Kind: KindPods, Name: pod.Name()})
	}
}

// DefinePodToServiceRelationships appends a Service edge to each Pod whose
// labels satisfy a Service's selector. A Pod matches only when every
// selector key/value pair is present as an equal-valued Pod label; a missing
// or mismatched label disqualifies the Pod for that Service.
func DefinePodToServiceRelationships(cache Cache) {
	services, servicesOK := cache.Bucket(KindServices)
	pods, podsOK := cache.Bucket(KindPods)
	if !servicesOK || !podsOK || services.Count == 0 || pods.Count == 0 {
		return
	}

	for _, serviceName := range services.ItemNames() {
		service := services.Items[serviceName].Resource

		selector := service.Selector()
		if len(selector) == 0 {
			continue
		}

		for _, podName := range pods.ItemNames() {
			podEntry := pods.Items[podName]
			if selectorMatches(selector, podEntry.Resource.Labels()) {
				podEntry.AddRelationship(Edge{Kind: KindServices, Name: service.Name()})
			}
		}
	}
}

// selectorMatches reports whether labels satisfy every selector pair.
func selectorMatches(selector, labels map[string]string) bool {
	for key, want := range selector {
		if labels[key] != want {
			return false
		}
	}
	return true
}

// DefineServiceToIngressRelationships appends edges from each Service to the
// ingress-family objects that route traffic to it, using the extractor for
// the detected controller. Note the direction: the edge lives on the
// Service, pointing at its controlling ingress object. A referenced Service
// name not present in the cache is ignored without error.
func DefineServiceToIngressRelationships(cache Cache, controller Controller) {
	services, ok := cache.Bucket(KindServices)
	if !ok || services.Count == 0 {
		return
	}

	extractor, ok := ExtractorFor(controller)
	if !ok {
		return
	}

	for _, kind := range extractor.Kinds() {
		bucket, ok := cache.Bucket(kind)
		if !ok || bucket.Count == 0 {
			continue
		}

		for _, objName := range bucket.ItemNames() {
			obj := bucket.Items[objName].Resource

			for _, serviceName := range extractor.ServiceNames(obj, kind) {
				service, ok := services.Items[serviceName]
				if !ok {
					// the Service may not have been gathered or may
					// belong to another namespace or controller
					slog.Debug("ingress object references unknown service",
						slog.String("kind", string(kind)),
						slog.String("object", obj.Name()),
						slog.String("service", serviceName))
					continue
				}
				service.AddRelationship(Edge{Kind: kind, Name: obj.Name()})
			}
		}
	}
}
