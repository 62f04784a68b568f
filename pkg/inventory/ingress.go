package inventory

import "strings"

// Controller identifies the ingress technology in effect in the cluster.
type Controller string

const (
	ControllerContour   Controller = "Contour"
	ControllerIstio     Controller = "Istio"
	ControllerOpenShift Controller = "OpenShift"
	ControllerNGINX     Controller = "NGINX"
	ControllerNone      Controller = ""
)

// detectionOrder fixes the evaluation order for controller detection.
// NGINX is evaluated last intentionally: generic Ingress objects can coexist
// with another controller's native kind in the same cluster, and checking
// NGINX last avoids a false positive when that other controller is
// authoritative.
var detectionOrder = []Controller{
	ControllerContour,
	ControllerIstio,
	ControllerOpenShift,
	ControllerNGINX,
}

// controllerKinds maps each controller to the ingress-family kinds it owns.
func controllerKinds(c Controller) []Kind {
	switch c {
	case ControllerContour:
		return []Kind{KindContourHTTPProxies}
	case ControllerIstio:
		return []Kind{KindIstioVirtualServices}
	case ControllerOpenShift:
		return []Kind{KindOpenShiftRoutes}
	case ControllerNGINX:
		return []Kind{KindNetworkingIngresses, KindExtensionsIngresses}
	}
	return nil
}

// AllIngressKinds returns every ingress-family kind across the supported
// controllers, in detection order.
func AllIngressKinds() []Kind {
	var kinds []Kind
	for _, c := range detectionOrder {
		kinds = append(kinds, controllerKinds(c)...)
	}
	return kinds
}

// DetectIngressController decides which ingress technology is in effect: the
// first controller (in detection order) with at least one platform-owned
// object of its kind wins. Returns ControllerNone when no kind yields a
// platform-owned object.
func DetectIngressController(cache Cache, isPlatform func(*Resource) bool) Controller {
	for _, controller := range detectionOrder {
		for _, kind := range controllerKinds(controller) {
			bucket, ok := cache.Bucket(kind)
			if !ok {
				continue
			}
			for _, name := range bucket.ItemNames() {
				if isPlatform(bucket.Items[name].Resource) {
					return controller
				}
			}
		}
	}
	return ControllerNone
}

// IgnorableIfUnavailable reports whether a kind being unlistable is expected
// given the detected controller, e.g. missing HTTPProxy, Route, and
// VirtualService kinds are unremarkable when NGINX controls ingress.
func IgnorableIfUnavailable(controller Controller, kind Kind) bool {
	switch controller {
	case ControllerContour:
		return kind == KindExtensionsIngresses ||
			kind == KindNetworkingIngresses ||
			kind == KindOpenShiftRoutes ||
			kind == KindIstioVirtualServices
	case ControllerIstio:
		return kind == KindContourHTTPProxies ||
			kind == KindExtensionsIngresses ||
			kind == KindNetworkingIngresses ||
			kind == KindOpenShiftRoutes
	case ControllerNGINX:
		return kind == KindContourHTTPProxies ||
			kind == KindOpenShiftRoutes ||
			kind == KindIstioVirtualServices
	case ControllerOpenShift:
		return kind == KindContourHTTPProxies ||
			kind == KindExtensionsIngresses ||
			kind == KindNetworkingIngresses ||
			kind == KindIstioVirtualServices
	}
	return false
}

// EdgeExtractor locates the Service names an ingress-family object routes
// traffic to. One implementation exists per supported controller; the
// detector's result selects which one runs.
type EdgeExtractor interface {
	// Kinds returns the ingress-family kinds this extractor reads.
	Kinds() []Kind

	// ServiceNames returns the backend Service names referenced by one
	// ingress-family object. Unparseable or missing route blocks yield an
	// empty result, never an error.
	ServiceNames(res *Resource, kind Kind) []string
}

// ExtractorFor returns the edge extractor for a detected controller.
// ok=false for ControllerNone.
func ExtractorFor(c Controller) (EdgeExtractor, bool) {
	switch c {
	case ControllerContour:
		return contourExtractor{}, true
	case ControllerIstio:
		return istioExtractor{}, true
	case ControllerOpenShift:
		return openshiftExtractor{}, true
	case ControllerNGINX:
		return nginxExtractor{}, true
	}
	return nil, false
}

// contourExtractor reads spec.routes[].services[].name from HTTPProxy
// objects.
type contourExtractor struct{}

func (contourExtractor) Kinds() []Kind { return controllerKinds(ControllerContour) }

func (contourExtractor) ServiceNames(res *Resource, _ Kind) []string {
	var names []string
	for _, route := range res.SpecSlice("routes") {
		routeMap, ok := route.(map[string]interface{})
		if !ok {
			continue
		}
		services, ok := routeMap["services"].([]interface{})
		if !ok {
			continue
		}
		for _, svc := range services {
			svcMap, ok := svc.(map[string]interface{})
			if !ok {
				continue
			}
			if name, ok := svcMap["name"].(string); ok && name != "" {
				names = appendUnique(names, name)
			}
		}
	}
	return names
}

// istioExtractor reads spec.http[].route[].destination.host from
// VirtualService objects, falling back to spec.tcp[] when no http block is
// defined. TCP destinations given as full addresses are truncated to the
// first label.
type istioExtractor struct{}

func (istioExtractor) Kinds() []Kind { return controllerKinds(ControllerIstio) }

func (istioExtractor) ServiceNames(res *Resource, _ Kind) []string {
	var names []string

	if httpDefs := res.SpecSlice("http"); httpDefs != nil {
		for _, host := range destinationHosts(httpDefs) {
			names = appendUnique(names, host)
		}
		return names
	}

	for _, host := range destinationHosts(res.SpecSlice("tcp")) {
		// tcp hosts may be full service addresses; keep the first label
		if dot := strings.Index(host, "."); dot >= 0 {
			host = host[:dot]
		}
		names = appendUnique(names, host)
	}
	return names
}

// destinationHosts walks http/tcp definition blocks for route[].destination.host.
func destinationHosts(definitions []interface{}) []string {
	var hosts []string
	for _, def := range definitions {
		defMap, ok := def.(map[string]interface{})
		if !ok {
			continue
		}
		routes, ok := defMap["route"].([]interface{})
		if !ok {
			continue
		}
		for _, route := range routes {
			routeMap, ok := route.(map[string]interface{})
			if !ok {
				continue
			}
			destination, ok := routeMap["destination"].(map[string]interface{})
			if !ok {
				continue
			}
			if host, ok := destination["host"].(string); ok && host != "" {
				hosts = append(hosts, host)
			}
		}
	}
	return hosts
}

// nginxExtractor reads spec.rules[].http.paths[] from Ingress objects. The
// backend Service name lives at backend.service.name in the
// networking.k8s.io schema and at backend.serviceName in the deprecated
// extensions schema; both variants are supported.
type nginxExtractor struct{}

func (nginxExtractor) Kinds() []Kind { return controllerKinds(ControllerNGINX) }

func (nginxExtractor) ServiceNames(res *Resource, _ Kind) []string {
	currentSchema := strings.HasPrefix(res.APIVersion(), "networking.k8s.io")

	var names []string
	for _, rule := range res.SpecSlice("rules") {
		ruleMap, ok := rule.(map[string]interface{})
		if !ok {
			continue
		}
		httpBlock, ok := ruleMap["http"].(map[string]interface{})
		if !ok {
			continue
		}
		paths, ok := httpBlock["paths"].([]interface{})
		if !ok {
			continue
		}
		for _, path := range paths {
			pathMap, ok := path.(map[string]interface{})
			if !ok {
				continue
			}
			backend, ok := pathMap["backend"].(map[string]interface{})
			if !ok {
				continue
			}

			var name string
			if currentSchema {
				if svc, ok := backend["service"].(map[string]interface{}); ok {
					name, _ = svc["name"].(string)
				}
			} else {
				name, _ = backend["serviceName"].(string)
			}
			if name != "" {
				names = appendUnique(names, name)
			}
		}
	}
	return names
}

// openshiftExtractor reads the single spec.to.name target of Route objects.
type openshiftExtractor struct{}

func (openshiftExtractor) Kinds() []Kind { return controllerKinds(ControllerOpenShift) }

func (openshiftExtractor) ServiceNames(res *Resource, _ Kind) []string {
	if name := res.SpecString("to", "name"); name != "" {
		return []string{name}
	}
	return nil
}

func appendUnique(names []string, name string) []string {
	for _, existing := range names {
		if existing == name {
			return names
		}
	}
	return append(names, name)
}
