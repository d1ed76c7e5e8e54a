// iondetect - LCMS validation of predicted metabolites
package main

import (
	"fmt"
	"os"

	"iondetect/cmd/iondetect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
