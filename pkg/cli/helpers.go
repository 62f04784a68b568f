package cli

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kubinv/kubinv/pkg/serializer"
)

var kubeconfigFlag = &cli.StringFlag{
	Name:  "kubeconfig",
	Usage: "Path to the kubeconfig file (default: KUBECONFIG, then ~/.kube/config, then in-cluster)",
}

var namespaceFlag = &cli.StringFlag{
	Name:    "namespace",
	Aliases: []string{"n"},
	Value:   "default",
	Usage:   "Namespace to inventory",
}

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Value:   serializer.StdoutURI,
	Usage:   "Output file path, or '-' for stdout",
}

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Value:   string(serializer.FormatJSON),
	Usage:   fmt.Sprintf("Output format (%v)", serializer.SupportedFormats()),
}

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: yaml, json, table", outFormat)
	}
	return outFormat, nil
}
