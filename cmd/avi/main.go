package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akl7777777/avi-intl/internal/batch"
	"github.com/akl7777777/avi-intl/internal/config"
	"github.com/akl7777777/avi-intl/internal/lookup"
	"github.com/akl7777777/avi-intl/internal/model"
)

const (
	exitOK            = 0
	exitLookupFailed  = 1
	exitInvalidInput  = 2
	exitPartialFailed = 3
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitInvalidInput)
	}

	switch os.Args[1] {
	case "lookup":
		os.Exit(runLookup(os.Args[2:]))
	case "batch":
		os.Exit(runBatch(os.Args[2:]))
	default:
		printUsage()
		os.Exit(exitInvalidInput)
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	config    *string
	transport *string
	trial     *bool
}

func addCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:    fs.String("config", os.Getenv("AVI_CONFIG"), "path to avi.yaml (optional)"),
		transport: fs.String("transport", "", "rest | soap (default from config)"),
		trial:     fs.Bool("trial", false, "use the trial endpoint instead of the live mirrors"),
	}
}

func (c commonFlags) load() (*config.Config, error) {
	cfg, err := config.LoadFromPath(*c.config)
	if err != nil {
		return nil, err
	}
	if *c.trial {
		cfg.Live = false
	}
	return cfg, nil
}

func runLookup(args []string) int {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	common := addCommon(fs)
	var req model.AddressRequest
	fs.StringVar(&req.Address1, "address1", "", "first address line")
	fs.StringVar(&req.Address2, "address2", "", "second address line")
	fs.StringVar(&req.Address3, "address3", "", "third address line")
	fs.StringVar(&req.Address4, "address4", "", "fourth address line")
	fs.StringVar(&req.Address5, "address5", "", "fifth address line")
	fs.StringVar(&req.Locality, "locality", "", "city or town")
	fs.StringVar(&req.AdministrativeArea, "admin-area", "", "state, province or region")
	fs.StringVar(&req.PostalCode, "postal-code", "", "postal code")
	fs.StringVar(&req.Country, "country", "", "country name or ISO code")
	fs.StringVar(&req.LicenseKey, "license-key", "", "overrides the configured license key")
	fs.IntVar(&req.TimeoutSeconds, "timeout", 0, "per-attempt deadline in seconds, 0 = transport default")
	lang := fs.String("lang", "ENGLISH", "ENGLISH | BOTH | LOCAL_ROMAN | LOCAL")
	asJSON := fs.Bool("json", false, "print the response as JSON")
	if err := fs.Parse(args); err != nil {
		return fail(err.Error(), exitInvalidInput)
	}

	l, err := model.ParseOutputLanguage(*lang)
	if err != nil {
		return fail(err.Error(), exitInvalidInput)
	}
	req.OutputLanguage = l

	cfg, err := common.load()
	if err != nil {
		return fail(err.Error(), exitInvalidInput)
	}
	svc := lookup.NewService(cfg, nil)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := svc.Lookup(ctx, *common.transport, req)
	if err != nil {
		return fail(err.Error(), exitLookupFailed)
	}
	if *asJSON {
		if err := printJSON(res); err != nil {
			return fail(err.Error(), exitLookupFailed)
		}
		return exitOK
	}
	fmt.Println(res.Response.String())
	return exitOK
}

func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	common := addCommon(fs)
	input := fs.String("input", "", "YAML batch file, - for stdin")
	output := fs.String("output", "", "JSON lines output file (default stdout)")
	concurrency := fs.Int("concurrency", 0, "lookups in flight (default from config)")
	if err := fs.Parse(args); err != nil {
		return fail(err.Error(), exitInvalidInput)
	}
	if *input == "" {
		return fail("input is required", exitInvalidInput)
	}

	in := os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			return fail(err.Error(), exitInvalidInput)
		}
		defer f.Close()
		in = f
	}
	parsed, err := batch.ReadInput(in)
	if err != nil {
		return fail(err.Error(), exitInvalidInput)
	}

	cfg, err := common.load()
	if err != nil {
		return fail(err.Error(), exitInvalidInput)
	}
	if *concurrency <= 0 {
		*concurrency = cfg.BatchConcurrency
	}
	transport := *common.transport
	if transport == "" {
		transport = parsed.Transport
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fail(err.Error(), exitInvalidInput)
		}
		defer f.Close()
		out = f
	}

	svc := lookup.NewService(cfg, nil)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	items, runErr := batch.Run(ctx, svc, transport, parsed.Addresses, *concurrency)
	if err := batch.WriteResults(out, items); err != nil {
		return fail(err.Error(), exitLookupFailed)
	}
	if runErr != nil {
		return fail(runErr.Error(), exitLookupFailed)
	}
	for _, it := range items {
		if it.Error != "" {
			return exitPartialFailed
		}
	}
	return exitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "avi <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  lookup  [--config path] [--transport rest|soap] [--trial] --address1 ... [--locality ...] [--postal-code ...] [--country ...] [--lang ENGLISH] [--json]")
	fmt.Fprintln(os.Stderr, "  batch   [--config path] [--transport rest|soap] [--trial] --input file.yaml [--output results.jsonl] [--concurrency n]")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail reports msg on stderr and returns code for the caller to exit with.
func fail(msg string, code int) int {
	fmt.Fprintln(os.Stderr, msg)
	return code
}
