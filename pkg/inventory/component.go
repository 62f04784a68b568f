package inventory

// Component is the set of all objects transitively reachable from one root
// Pod via ownership and relationship edges, given one logical name.
type Component struct {
	Name  string                     `json:"name" yaml:"name"`
	Items map[Kind]map[string]*Entry `json:"items" yaml:"items"`
}

// has reports whether a (kind, name) is already part of the component. This
// doubles as the cycle guard during aggregation.
func (c *Component) has(kind Kind, name string) bool {
	items, ok := c.Items[kind]
	if !ok {
		return false
	}
	_, ok = items[name]
	return ok
}

func (c *Component) add(kind Kind, name string, entry *Entry) {
	if c.Items[kind] == nil {
		c.Items[kind] = make(map[string]*Entry)
	}
	c.Items[kind][name] = entry
}

// Aggregate builds the component rooted at one entry: the transitive closure
// of the union of ownership and inferred relationship edges, collected by
// kind and name. Edge targets missing from the cache (transient objects
// already deleted) are skipped; objects already in the component are not
// revisited, which terminates the walk even when edges form a cycle.
//
// The component's name comes from the nameAnnotation if any visited object
// carries it (the last visited carrier wins; traversal order is
// deterministic because relationship lists preserve insertion order), else
// from the root object's own name.
func Aggregate(rootKind Kind, root *Entry, cache Cache, nameAnnotation string) *Component {
	component := &Component{Items: make(map[Kind]map[string]*Entry)}
	aggregate(rootKind, root, cache, nameAnnotation, component)

	if component.Name == "" {
		component.Name = root.Resource.Name()
	}
	return component
}

func aggregate(kind Kind, entry *Entry, cache Cache, nameAnnotation string, component *Component) {
	res := entry.Resource

	// an explicit component-name annotation is the most canonical value;
	// re-checked on every visit
	if nameAnnotation != "" {
		if name := res.Annotation(nameAnnotation); name != "" {
			component.Name = name
		}
	}

	component.add(kind, res.Name(), entry)

	for _, edge := range entry.Relationships {
		if component.has(edge.Kind, edge.Name) {
			continue
		}
		related, ok := cache.Entry(edge.Kind, edge.Name)
		if !ok {
			// transient target already gone from the cluster
			continue
		}
		aggregate(edge.Kind, related, cache, nameAnnotation, component)
	}
}

// mergeInto folds a component into an accumulating map keyed by resolved
// name. Multi-replica controllers commonly yield several roots resolving to
// the same component name; their items merge by kind and object name, and a
// later root never clobbers an earlier entry of the same kind+name.
func mergeInto(components map[string]*Component, component *Component) {
	existing, ok := components[component.Name]
	if !ok {
		components[component.Name] = component
		return
	}
	for kind, items := range component.Items {
		if existing.Items[kind] == nil {
			existing.Items[kind] = items
			continue
		}
		for name, entry := range items {
			if _, taken := existing.Items[kind][name]; !taken {
				existing.Items[kind][name] = entry
			}
		}
	}
}

// BuildComponents aggregates one component per root Pod and partitions the
// results: a component any of whose members satisfies isPlatform is
// platform-owned, all others are classified as other. Roots are visited in
// sorted name order so merge results are stable run-to-run.
func BuildComponents(cache Cache, isPlatform func(*Resource) bool, nameAnnotation string) (platform, other map[string]*Component) {
	platform = make(map[string]*Component)
	other = make(map[string]*Component)

	pods, ok := cache.Bucket(KindPods)
	if !ok {
		return platform, other
	}

	for _, podName := range pods.ItemNames() {
		component := Aggregate(KindPods, pods.Items[podName], cache, nameAnnotation)

		if componentIsPlatform(component, isPlatform) {
			mergeInto(platform, component)
		} else {
			mergeInto(other, component)
		}
		componentsAggregated.Inc()
	}
	return platform, other
}

// componentIsPlatform walks all aggregated objects after the closure is
// complete; one platform-owned member marks the whole component.
func componentIsPlatform(component *Component, isPlatform func(*Resource) bool) bool {
	for _, items := range component.Items {
		for _, entry := range items {
			if isPlatform(entry.Resource) {
				return true
			}
		}
	}
	return false
}
