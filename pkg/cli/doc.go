// Package cli implements the command-line interface for the kubinv tool.
//
// # Commands
//
// report - Build a namespace inventory:
//
//	kubinv report [--namespace NS] [--platform-domain DOMAIN] [--pod-logs]
//	              [--output FILE] [--format yaml|json|table]
//
// Gathers every Pod in the namespace, walks ownership chains to their
// controllers, relates Pods to Nodes and Services, relates Services to the
// ingress objects routing to them, and aggregates everything into named
// components partitioned by platform ownership.
//
// # Environment Variables
//
//	LOG_LEVEL    Set logging verbosity (debug, info, warn, error)
//	KUBECONFIG   Path to kubeconfig file
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized packages:
//   - pkg/kube - Cluster access, discovery index, dynamic lister
//   - pkg/inventory - Gathering, relationship inference, component aggregation
//   - pkg/platform - Platform-ownership classification
//   - pkg/report - Pipeline orchestration and the report document
//   - pkg/serializer - Output formatting
//   - pkg/logging - Structured logging
package cli
