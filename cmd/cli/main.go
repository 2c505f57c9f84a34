package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

/* gateway-cli - operator tool for the webhook gateway
 * Usage: go run ./cmd/cli <validate|probe|forward|sweep-images> [flags]
 * Exit codes: 0 = ok, 1 = failed
 */

func main() {
	const appName, appVersion = "gateway-cli", "1.0.0"

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"validate":     newValidateCmd,
		"probe":        newProbeCmd,
		"forward":      newForwardCmd,
		"sweep-images": newSweepCmd,
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitStatus)
}
