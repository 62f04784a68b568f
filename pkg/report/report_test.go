package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubinv/kubinv/pkg/inventory"
	"github.com/kubinv/kubinv/pkg/platform"
)

// clusterLister replays a canned namespace against the inventory.Lister
// contract.
type clusterLister struct {
	objects map[inventory.Kind][]map[string]interface{}
	errors  map[inventory.Kind]error
}

func (c *clusterLister) ListResources(_ context.Context, kind inventory.Kind) ([]*inventory.Resource, error) {
	if err := c.errors[kind]; err != nil {
		return nil, err
	}
	objs, ok := c.objects[kind]
	if !ok {
		return nil, fmt.Errorf("kind %q is not known to this cluster", kind)
	}
	resources := make([]*inventory.Resource, 0, len(objs))
	for _, obj := range objs {
		resources = append(resources, inventory.NewResourceFromMap(obj))
	}
	return resources, nil
}

func (c *clusterLister) ResolveListableName(kind inventory.Kind) (string, bool) {
	if _, ok := c.objects[kind]; ok {
		return string(kind), true
	}
	_, failing := c.errors[kind]
	return string(kind), failing
}

var testOwnerKinds = map[string]inventory.Kind{
	"ReplicaSet/apps": inventory.KindReplicaSets,
	"Deployment/apps": inventory.KindDeployments,
	"Job/batch":       inventory.KindJobs,
}

func (c *clusterLister) KindFor(objectKind, apiVersion string) (inventory.Kind, bool) {
	group := ""
	if i := strings.LastIndex(apiVersion, "/"); i >= 0 {
		group = apiVersion[:i]
	}
	kind, ok := testOwnerKinds[objectKind+"/"+group]
	return kind, ok
}

func object(apiVersion, kind, name string, mutate ...func(map[string]interface{})) map[string]interface{} {
	o := map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": "apps",
		},
	}
	for _, m := range mutate {
		m(o)
	}
	return o
}

func meta(o map[string]interface{}) map[string]interface{} {
	return o["metadata"].(map[string]interface{})
}

func ownedBy(apiVersion, kind, name string) func(map[string]interface{}) {
	return func(o map[string]interface{}) {
		meta(o)["ownerReferences"] = []interface{}{
			map[string]interface{}{"apiVersion": apiVersion, "kind": kind, "name": name},
		}
	}
}

func labeled(key, value string) func(map[string]interface{}) {
	return func(o map[string]interface{}) {
		meta(o)["labels"] = map[string]interface{}{key: value}
	}
}

func annotated(key, value string) func(map[string]interface{}) {
	return func(o map[string]interface{}) {
		meta(o)["annotations"] = map[string]interface{}{key: value}
	}
}

func onNode(name string) func(map[string]interface{}) {
	return func(o map[string]interface{}) {
		o["spec"] = map[string]interface{}{"nodeName": name}
	}
}

// testCluster is the canonical scenario: one platform workload chain
// (p1 <- rs1 <- d1, selected by s1, routed by NGINX ingress i1, scheduled on
// n1) and one unrelated bare pod.
func testCluster() *clusterLister {
	return &clusterLister{
		objects: map[inventory.Kind][]map[string]interface{}{
			inventory.KindPods: {
				object("v1", "Pod", "p1",
					labeled("app", "x"),
					ownedBy("apps/v1", "ReplicaSet", "rs1"),
					onNode("n1")),
				object("v1", "Pod", "lonely"),
			},
			inventory.KindReplicaSets: {
				object("apps/v1", "ReplicaSet", "rs1", ownedBy("apps/v1", "Deployment", "d1")),
			},
			inventory.KindDeployments: {
				object("apps/v1", "Deployment", "d1", annotated("platform.io/component-name", "frontend")),
			},
			inventory.KindNodes: {
				object("v1", "Node", "n1"),
			},
			inventory.KindConfigMaps: {},
			inventory.KindSecrets:    {},
			inventory.KindServices: {
				object("v1", "Service", "s1", func(o map[string]interface{}) {
					o["spec"] = map[string]interface{}{
						"selector": map[string]interface{}{"app": "x"},
					}
				}),
			},
			inventory.KindNetworkingIngresses: {
				object("networking.k8s.io/v1", "Ingress", "i1",
					annotated("platform.io/managed", "true"),
					func(o map[string]interface{}) {
						o["spec"] = map[string]interface{}{
							"rules": []interface{}{
								map[string]interface{}{
									"http": map[string]interface{}{
										"paths": []interface{}{
											map[string]interface{}{
												"backend": map[string]interface{}{
													"service": map[string]interface{}{"name": "s1"},
												},
											},
										},
									},
								},
							},
						}
					}),
			},
			inventory.KindExtensionsIngresses: {},
		},
		errors: map[inventory.Kind]error{},
	}
}

func TestAssembler_EndToEnd(t *testing.T) {
	assembler := &Assembler{
		Lister:    testCluster(),
		Matcher:   platform.NewMatcher("platform.io"),
		Namespace: "apps",
		Version:   "v0.test",
	}

	rep, err := assembler.Assemble(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "v0.test", rep.Version)
	assert.Equal(t, "apps", rep.Namespace)
	assert.Equal(t, inventory.ControllerNGINX, rep.IngressController)

	// contour/istio/openshift kinds are missing but explained by NGINX
	assert.Empty(t, rep.UnavailableKinds)

	assert.Equal(t, 2, rep.Kinds[inventory.KindPods].Count)
	assert.True(t, rep.Kinds[inventory.KindPods].Available)
	assert.False(t, rep.Kinds[inventory.KindContourHTTPProxies].Available)

	require.Contains(t, rep.PlatformComponents, "frontend")
	frontend := rep.PlatformComponents["frontend"]
	assert.Contains(t, frontend.Items[inventory.KindPods], "p1")
	assert.Contains(t, frontend.Items[inventory.KindReplicaSets], "rs1")
	assert.Contains(t, frontend.Items[inventory.KindDeployments], "d1")
	assert.Contains(t, frontend.Items[inventory.KindServices], "s1")
	assert.Contains(t, frontend.Items[inventory.KindNetworkingIngresses], "i1")

	// the bare pod is its own non-platform component
	require.Contains(t, rep.OtherComponents, "lonely")
	assert.NotContains(t, rep.OtherComponents, "frontend")

	// the node overview carries the scheduled-pod edge
	require.Contains(t, rep.Nodes, "n1")
	assert.Contains(t, rep.Nodes["n1"].Relationships,
		inventory.Edge{Kind: inventory.KindPods, Name: "p1"})
}

func TestAssembler_SeedFailurePropagates(t *testing.T) {
	cluster := testCluster()
	cluster.errors[inventory.KindPods] = errors.New("forbidden")

	assembler := &Assembler{
		Lister:    cluster,
		Matcher:   platform.NewMatcher("platform.io"),
		Namespace: "apps",
	}

	_, err := assembler.Assemble(context.Background())
	require.Error(t, err)

	var seedErr *inventory.SeedUnavailableError
	assert.ErrorAs(t, err, &seedErr)
}

func TestAssembler_UnexplainedUnavailableKindReported(t *testing.T) {
	cluster := testCluster()
	cluster.errors[inventory.KindSecrets] = errors.New("forbidden")

	assembler := &Assembler{
		Lister:    cluster,
		Matcher:   platform.NewMatcher("platform.io"),
		Namespace: "apps",
	}

	rep, err := assembler.Assemble(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []inventory.Kind{inventory.KindSecrets}, rep.UnavailableKinds)
	assert.False(t, rep.Kinds[inventory.KindSecrets].Available)
}

func TestAssembler_PlatformKindsMarkedInSummary(t *testing.T) {
	cluster := testCluster()
	customKind := inventory.Kind("casdeployments.orchestration.platform.io")
	cluster.objects[customKind] = []map[string]interface{}{
		object("orchestration.platform.io/v1alpha1", "CASDeployment", "cas1",
			annotated("platform.io/component-name", "cas")),
	}

	assembler := &Assembler{
		Lister:        cluster,
		Matcher:       platform.NewMatcher("platform.io"),
		Namespace:     "apps",
		PlatformKinds: []inventory.Kind{customKind},
	}

	rep, err := assembler.Assemble(context.Background())
	require.NoError(t, err)

	summary := rep.Kinds[customKind]
	assert.True(t, summary.Available)
	assert.True(t, summary.PlatformCRD)
	assert.Equal(t, 1, summary.Count)
	assert.False(t, rep.Kinds[inventory.KindPods].PlatformCRD)
}

type fakeLogReader struct {
	lines map[string][]string
	fail  map[string]error
}

func (f *fakeLogReader) PodLogs(_ context.Context, name string, _ int) ([]string, error) {
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	return f.lines[name], nil
}

func TestAssembler_AttachesPodLogs(t *testing.T) {
	assembler := &Assembler{
		Lister:    testCluster(),
		Matcher:   platform.NewMatcher("platform.io"),
		Namespace: "apps",
		Logs: &fakeLogReader{
			lines: map[string][]string{
				"p1": {"starting up", "ready"},
			},
			fail: map[string]error{
				"lonely": errors.New("container not started"),
			},
		},
		LogTail: 2,
	}

	rep, err := assembler.Assemble(context.Background())
	require.NoError(t, err)

	frontend := rep.PlatformComponents["frontend"]
	p1 := frontend.Items[inventory.KindPods]["p1"]
	assert.Equal(t, []string{"starting up", "ready"}, p1.LogSnip)

	// a failing pod is skipped, not fatal
	lonely := rep.OtherComponents["lonely"].Items[inventory.KindPods]["lonely"]
	assert.Empty(t, lonely.LogSnip)
}
