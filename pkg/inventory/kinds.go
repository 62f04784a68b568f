package inventory

// Kind identifies a gatherable resource kind by its qualified listable name:
// the lowercase plural resource name, suffixed with the API group for
// non-core kinds. Using qualified names keeps kinds that share a short name
// across groups (most notably Ingress under networking.k8s.io and the
// deprecated extensions group) distinct in the cache.
type Kind string

// Core and workload kinds routinely discovered through the owner walk or
// gathered explicitly by the assembler.
const (
	KindPods       Kind = "pods"
	KindNodes      Kind = "nodes"
	KindServices   Kind = "services"
	KindConfigMaps Kind = "configmaps"
	KindSecrets    Kind = "secrets"

	KindDeployments  Kind = "deployments.apps"
	KindReplicaSets  Kind = "replicasets.apps"
	KindStatefulSets Kind = "statefulsets.apps"
	KindDaemonSets   Kind = "daemonsets.apps"
	KindJobs         Kind = "jobs.batch"
	KindCronJobs     Kind = "cronjobs.batch"
)

// Ingress-family kinds used by the supported ingress controllers.
const (
	KindContourHTTPProxies   Kind = "httpproxies.projectcontour.io"
	KindIstioVirtualServices Kind = "virtualservices.networking.istio.io"
	KindOpenShiftRoutes      Kind = "routes.route.openshift.io"
	KindNetworkingIngresses  Kind = "ingresses.networking.k8s.io"
	KindExtensionsIngresses  Kind = "ingresses.extensions"
)

// noOwnerWalkKinds are gathered for the report but never followed through
// their ownerReferences. ConfigMaps and Secrets are frequently owned by
// operators outside the inspected application and would drag unrelated
// controller kinds into the cache.
var noOwnerWalkKinds = map[Kind]bool{
	KindConfigMaps: true,
	KindSecrets:    true,
}
