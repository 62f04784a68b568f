package report

import (
	"bufio"
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"

	"github.com/kubinv/kubinv/pkg/inventory"
)

// DefaultLogTail is the number of trailing log lines attached to each Pod
// when the caller does not choose one.
const DefaultLogTail = 25

// logFetchConcurrency caps parallel log requests to the API server.
const logFetchConcurrency = 8

// LogReader fetches the trailing log lines of one Pod.
type LogReader interface {
	PodLogs(ctx context.Context, name string, tail int) ([]string, error)
}

// ClientLogReader reads Pod logs through a standard Kubernetes clientset.
type ClientLogReader struct {
	Client    kubernetes.Interface
	Namespace string
}

// PodLogs streams the last tail lines of the Pod's current container logs.
func (r *ClientLogReader) PodLogs(ctx context.Context, name string, tail int) ([]string, error) {
	req := r.Client.CoreV1().Pods(r.Namespace).GetLogs(name, &corev1.PodLogOptions{
		TailLines: ptr.To(int64(tail)),
	})

	stream, err := req.Stream(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var lines []string
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// CollectPodLogs attaches a log snippet to every Pod entry in the cache,
// fetching in parallel. A Pod whose logs cannot be read (terminated,
// forbidden, container not started) is skipped; log snippets are best-effort
// and never fail the report.
func CollectPodLogs(ctx context.Context, cache inventory.Cache, reader LogReader, tail int) error {
	pods, ok := cache.Bucket(inventory.KindPods)
	if !ok || pods.Count == 0 {
		return nil
	}
	if tail <= 0 {
		tail = DefaultLogTail
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(logFetchConcurrency)

	for _, name := range pods.ItemNames() {
		entry := pods.Items[name]
		podName := name

		g.Go(func() error {
			lines, err := reader.PodLogs(ctx, podName, tail)
			if err != nil {
				slog.Debug("could not read pod logs, skipping",
					slog.String("pod", podName),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			entry.LogSnip = lines
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}
