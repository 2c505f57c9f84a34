package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/marcelsud/n8n-gateway/config"
	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/gateway"
	"github.com/marcelsud/n8n-gateway/image"
	"github.com/marcelsud/n8n-gateway/image/filesystem"
	"github.com/mitchellh/cli"
)

const (
	exitSuccess = 0
	exitErr     = 1
)

var (
	_ cli.Command = (*validateCmd)(nil)
	_ cli.Command = (*probeCmd)(nil)
	_ cli.Command = (*forwardCmd)(nil)
	_ cli.Command = (*sweepCmd)(nil)
)

// loadRegistry loads the webhook table the same way the API server does
func loadRegistry(file string) (*config.Config, *endpoints.Registry, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, nil, err
	}
	if file == "" {
		file = cfg.WebhooksFile
	}
	registry, err := endpoints.Load(file, endpoints.Overrides{
		ProductionURL: cfg.N8NWebhookURL,
		TestURL:       cfg.N8NWebhookTestURL,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, registry, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

/* validate - checks the webhook table and lists the resulting endpoints */

type validateCmd struct {
	flags *flag.FlagSet
	file  string
}

func newValidateCmd() (cli.Command, error) {
	c := &validateCmd{flags: flag.NewFlagSet("validate", flag.ContinueOnError)}
	c.flags.StringVar(&c.file, "file", "", "Webhook table to validate (default: WEBHOOKS_FILE)")
	return c, nil
}

func (c *validateCmd) Synopsis() string { return "Validate the webhook table" }

func (c *validateCmd) Help() string {
	return "Usage: gateway-cli validate [-file webhooks.yaml]\n\n" + c.Synopsis()
}

func (c *validateCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return exitErr
	}

	_, registry, err := loadRegistry(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\nError: %v\n", err)
		return exitErr
	}

	list := registry.List()
	fmt.Printf("VALIDATION PASSED\n\nLoaded %d endpoint(s):\n", len(list))
	for i, e := range list {
		fmt.Printf("\n%d. Endpoint: %s\n", i+1, e.Key)
		fmt.Printf("   URL:      %s\n", e.URL)
		if e.TestURL != "" {
			fmt.Printf("   Test URL: %s\n", e.TestURL)
		}
		fmt.Printf("   Timeout:  %s\n", e.Timeout)
		if len(e.Aliases) > 0 {
			fmt.Printf("   Aliases:  %s\n", strings.Join(e.Aliases, ", "))
		}
		if e.HasFallback() {
			fmt.Printf("   Fallback: %d demo payload(s)\n", len(e.Fallback))
		}
	}
	return exitSuccess
}

/* probe - single health probe of a webhook key or URL */

type probeCmd struct {
	flags  *flag.FlagSet
	target string
}

func newProbeCmd() (cli.Command, error) {
	c := &probeCmd{flags: flag.NewFlagSet("probe", flag.ContinueOnError)}
	c.flags.StringVar(&c.target, "endpoint", "", "Endpoint key or absolute URL (default: PROBE_ENDPOINT)")
	return c, nil
}

func (c *probeCmd) Synopsis() string { return "Probe a webhook once and print its health" }

func (c *probeCmd) Help() string {
	return "Usage: gateway-cli probe [-endpoint key|url]\n\n" + c.Synopsis()
}

func (c *probeCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return exitErr
	}

	cfg, registry, err := loadRegistry("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitErr
	}

	prober := gateway.NewProber(registry, nil, cfg.ProbeTimeout(), cfg.ProbeEndpoint)
	status := prober.Probe(context.Background(), c.target)
	printJSON(status)
	if status.State != gateway.Active {
		return exitErr
	}
	return exitSuccess
}

/* forward - sends a JSON payload to a webhook and prints the reply */

type forwardCmd struct {
	flags   *flag.FlagSet
	key     string
	data    string
	timeout time.Duration
}

func newForwardCmd() (cli.Command, error) {
	c := &forwardCmd{flags: flag.NewFlagSet("forward", flag.ContinueOnError)}
	c.flags.StringVar(&c.key, "endpoint", "", "Endpoint key (required)")
	c.flags.StringVar(&c.data, "data", "", "JSON payload; '-' reads stdin (default: {})")
	c.flags.DurationVar(&c.timeout, "timeout", 0, "Override the endpoint timeout")
	return c, nil
}

func (c *forwardCmd) Synopsis() string { return "Forward a JSON payload to a webhook" }

func (c *forwardCmd) Help() string {
	return "Usage: gateway-cli forward -endpoint key [-data '{...}'|-] [-timeout 30s]\n\n" + c.Synopsis()
}

func (c *forwardCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return exitErr
	}
	if c.key == "" {
		fmt.Fprintln(os.Stderr, c.Help())
		return exitErr
	}

	payload := []byte(c.data)
	if c.data == "-" {
		var err error
		if payload, err = io.ReadAll(os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "reading stdin: %v\n", err)
			return exitErr
		}
	}

	_, registry, err := loadRegistry("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitErr
	}

	forwarder := gateway.NewForwarder(registry, nil)
	result, err := forwarder.Forward(context.Background(), c.key, payload, c.timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitErr
	}
	printJSON(map[string]any{
		"status": result.StatusCode,
		"data":   result.Data(),
	})
	if !result.OK() {
		return exitErr
	}
	return exitSuccess
}

/* sweep-images - one retention pass over the image directory */

type sweepCmd struct {
	flags     *flag.FlagSet
	dir       string
	olderThan time.Duration
}

func newSweepCmd() (cli.Command, error) {
	c := &sweepCmd{flags: flag.NewFlagSet("sweep-images", flag.ContinueOnError)}
	c.flags.StringVar(&c.dir, "dir", "", "Image directory (default: IMAGES_DIR)")
	c.flags.DurationVar(&c.olderThan, "older-than", 0, "Remove images older than this (default: IMAGE_RETENTION_HOURS)")
	return c, nil
}

func (c *sweepCmd) Synopsis() string { return "Remove stored images past their retention" }

func (c *sweepCmd) Help() string {
	return "Usage: gateway-cli sweep-images [-dir path] [-older-than 72h]\n\n" + c.Synopsis()
}

func (c *sweepCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return exitErr
	}

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitErr
	}
	if c.dir == "" {
		c.dir = cfg.ImagesDir
	}
	if c.olderThan == 0 {
		c.olderThan = cfg.ImageRetention()
	}
	if c.olderThan <= 0 {
		fmt.Fprintln(os.Stderr, "retention is disabled; pass -older-than or set IMAGE_RETENTION_HOURS")
		return exitErr
	}

	images := image.NewService(filesystem.NewStore(c.dir), "")
	n, err := images.Sweep(context.Background(), c.olderThan)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitErr
	}
	fmt.Printf("Removed %d image(s) older than %s from %s\n", n, c.olderThan, c.dir)
	return exitSuccess
}
