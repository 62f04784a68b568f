package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/kubinv/kubinv/pkg/inventory"
	"github.com/kubinv/kubinv/pkg/kube"
	"github.com/kubinv/kubinv/pkg/logging"
	"github.com/kubinv/kubinv/pkg/platform"
	"github.com/kubinv/kubinv/pkg/report"
	"github.com/kubinv/kubinv/pkg/serializer"
	"github.com/kubinv/kubinv/pkg/version"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "report",
		EnableShellCompletion: true,
		Usage:                 "Build an inventory report of the components deployed in a namespace",
		Description: `Builds a full inventory of the software components deployed in a namespace:
every Pod, its ownership chain (ReplicaSets, Deployments, StatefulSets, ...),
the Services selecting it, the ingress objects routing to those Services, and
the Nodes the Pods run on. Objects are grouped into logical components and
partitioned into platform-owned and other components.

The ingress controller in effect (Contour, Istio, OpenShift, or NGINX) is
detected automatically from platform-owned ingress objects.

The report can be output in JSON, YAML, or table format.

# Examples

Report on the default namespace to stdout:
  kubinv report

Report on a platform namespace with pod log snippets, saved to a file:
  kubinv report -n viya --platform-domain sas.com --pod-logs -o report.json

Render a quick summary table:
  kubinv report -n apps --format table`,
		Flags: []cli.Flag{
			namespaceFlag,
			&cli.StringFlag{
				Name:  "platform-domain",
				Value: platform.DefaultDomain,
				Usage: "Annotation/label key domain marking platform-owned objects",
			},
			&cli.StringFlag{
				Name:  "platform-name-prefix",
				Usage: "Additionally treat objects with this name prefix as platform-owned",
			},
			&cli.BoolFlag{
				Name:  "pod-logs",
				Usage: "Attach a trailing log snippet to every gathered Pod",
			},
			&cli.IntFlag{
				Name:  "log-tail",
				Value: report.DefaultLogTail,
				Usage: "Number of trailing log lines per Pod (with --pod-logs)",
			},
			outputFlag,
			formatFlag,
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Setup(logging.Options{
				Debug: cmd.Bool("debug"),
				JSON:  cmd.Bool("log-json"),
			})

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			namespace := cmd.String("namespace")
			kubeconfig := cmd.String("kubeconfig")

			matcher := platform.NewMatcher(cmd.String("platform-domain"))
			matcher.NamePrefix = cmd.String("platform-name-prefix")

			client, config, err := kube.BuildKubeClient(kubeconfig)
			if err != nil {
				return err
			}
			dynamicClient, err := kube.BuildDynamicClient(config)
			if err != nil {
				return err
			}

			index, err := kube.NewAPIResourceIndex(client.Discovery())
			if err != nil {
				return err
			}

			assembler := &report.Assembler{
				Lister:        kube.NewDynamicLister(dynamicClient, index, namespace),
				Matcher:       matcher,
				Namespace:     namespace,
				Version:       version.Version,
				PlatformKinds: index.PlatformKinds(matcher.Domain),
			}
			if cmd.Bool("pod-logs") {
				assembler.Logs = &report.ClientLogReader{Client: client, Namespace: namespace}
				assembler.LogTail = int(cmd.Int("log-tail"))
			}

			slog.Info("building inventory report",
				slog.String("namespace", namespace),
				slog.String("platformDomain", matcher.Domain),
			)

			rep, err := assembler.Assemble(ctx)
			if err != nil {
				var seedErr *inventory.SeedUnavailableError
				if errors.As(err, &seedErr) {
					return fmt.Errorf("%w; check that the kubeconfig user can list pods in namespace %q", err, namespace)
				}
				slog.Error("report assembly failed", "error", err)
				return err
			}

			slog.Info("inventory report complete",
				"runID", rep.RunID,
				"ingressController", string(rep.IngressController),
				"platformComponents", len(rep.PlatformComponents),
				"otherComponents", len(rep.OtherComponents),
			)

			writer, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			if err != nil {
				return err
			}
			defer func() {
				if closer, ok := writer.(serializer.Closer); ok {
					if closeErr := closer.Close(); closeErr != nil {
						slog.Warn("failed to close output writer", "error", closeErr)
					}
				}
			}()

			if err := writer.Serialize(ctx, rep); err != nil {
				slog.Error("failed to serialize report", slog.String("error", err.Error()))
				return fmt.Errorf("failed to serialize report: %w", err)
			}
			return nil
		},
	}
}
