package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"iondetect/pkg/network"
)

func runNetwork(cmd *cobra.Command, args []string) error {
	builder := &network.Builder{SkipInvalidInputs: skipInvalid}
	net, err := builder.Build(args)
	if err != nil {
		return err
	}

	if err := net.WriteJSONFile(networkOut); err != nil {
		return err
	}

	fmt.Printf("Network built from %d corpus files\n", len(args))
	fmt.Printf("Nodes: %d\n", len(net.Nodes))
	fmt.Printf("Edges: %d\n", len(net.Edges))
	fmt.Printf("Output: %s\n", networkOut)
	return nil
}
