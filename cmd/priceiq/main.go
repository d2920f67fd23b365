// Package main provides the priceiq command line: it researches the prices
// of one or more products across a list of shops and exports the results.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/entrhq/priceiq/pkg/agent"
	"github.com/entrhq/priceiq/pkg/config"
	"github.com/entrhq/priceiq/pkg/logging"
	"github.com/entrhq/priceiq/pkg/session"
	"github.com/entrhq/priceiq/pkg/types"
	"github.com/joho/godotenv"
)

const (
	version = "0.1.0"

	defaultProducts = "nöm Joghurt gerührt 3,6% | Danone Dany Sahne Schokolade"
	defaultWebsites = "https://shop.billa.at/ | https://www.gurkerl.at/ | https://hausbrot.at/"
	defaultUser     = "localUser"
	defaultStreamID = "test_"
)

// Options holds the command line options.
type Options struct {
	ConfigPath  string
	EnvFile     string
	Products    string
	Websites    string
	Turns       int
	User        string
	Copy        bool
	ShowVersion bool
}

func main() {
	opts := parseFlags()

	if opts.ShowVersion {
		fmt.Printf("priceiq v%s\n", version)
		return
	}

	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", opts.EnvFile, err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logging.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if runErr := run(ctx, cfg, opts); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
}

func parseFlags() *Options {
	opts := &Options{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML configuration file (optional)")
	flag.StringVar(&opts.EnvFile, "env", ".env", "Dotenv file to load before reading the environment")
	flag.StringVar(&opts.Products, "products", "", "Products to research, separated by ' | ' (prompted when empty)")
	flag.StringVar(&opts.Websites, "websites", "", "Websites to search, separated by ' | ' (prompted when empty)")
	flag.IntVar(&opts.Turns, "turns", 0, "Research turns per product (prompted when 0)")
	flag.StringVar(&opts.User, "user", defaultUser, "User name; selects the workspace folder")
	flag.BoolVar(&opts.Copy, "copy", false, "Copy the final JSON to the clipboard")
	flag.BoolVar(&opts.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "priceiq - product price research agent\n\n")
		fmt.Fprintf(os.Stderr, "Usage: priceiq [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %-18s OpenAI API key\n", config.EnvOpenAIKey)
		fmt.Fprintf(os.Stderr, "  %-18s OpenAI API base URL (for compatible APIs)\n", config.EnvOpenAIBaseURL)
		fmt.Fprintf(os.Stderr, "  %-18s SerpAPI key for web_search\n", config.EnvSerpAPIKey)
		fmt.Fprintf(os.Stderr, "  %-18s browserless token for screenshot\n", config.EnvBrowserlessToken)
		fmt.Fprintf(os.Stderr, "  %-18s log level (debug, info, warn, error)\n", config.EnvLogLevel)
		fmt.Fprintf(os.Stderr, "  %-18s log directory (default ~/.priceiq/logs)\n", logging.EnvDirectory)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  priceiq\n")
		fmt.Fprintf(os.Stderr, "  priceiq -products 'Oat milk 1L' -websites 'https://shop.billa.at/ | https://www.gurkerl.at/' -turns 8\n")
		fmt.Fprintf(os.Stderr, "  priceiq -config priceiq.yaml -copy\n")
	}

	flag.Parse()
	return opts
}

func run(ctx context.Context, cfg *config.Config, opts *Options) error {
	printWelcome()

	in := newPrompter(os.Stdin, os.Stdout)
	products := splitList(orPrompt(in, opts.Products, "Enter products to analyze (separate with ' | ')", defaultProducts))
	websites := splitList(orPrompt(in, opts.Websites, "Enter websites to search (separate with ' | ')", defaultWebsites))
	turns := opts.Turns
	if turns <= 0 {
		turns = in.askInt("Enter number of turns", cfg.Agent.Turns)
	}
	if len(products) == 0 || len(websites) == 0 {
		return errors.New("at least one product and one website are required")
	}

	app, err := newApp(cfg, agent.WithTurns(turns))
	if err != nil {
		return err
	}
	defer app.Close()

	sess, err := app.sessions.Open(opts.User)
	if err != nil {
		return err
	}

	stop := newStopRequest(func() {
		fmt.Println("\n[STOP] Stop signal received!")
		sess.Flag.Stop()
	})
	go listenForStop(in.reader, stop.Stop)

	collected := researchAll(ctx, products, stop, func(i int, product string) (types.Results, bool) {
		printProduct(product, i, len(products))
		return research(ctx, app.pricer, sess, product, websites)
	})

	if len(collected) == 0 {
		return nil
	}
	path, data, err := saveResults(sess.Dir, opts.User, collected)
	if err != nil {
		return err
	}
	printSaved(path)
	if opts.Copy {
		if err := clipboard.WriteAll(string(data)); err != nil {
			printError(fmt.Sprintf("Failed to copy results to clipboard: %v", err))
		}
	}
	return nil
}

// researchAll researches products in order until one is stopped or the
// user asks to stop. Each pricer run restarts the session flag, so the stop
// request is checked between products too.
func researchAll(ctx context.Context, products []string, stop *stopRequest, research func(i int, product string) (types.Results, bool)) []productResult {
	var collected []productResult
	for i, product := range products {
		if ctx.Err() != nil {
			break
		}
		if stop.Requested() {
			printStopped()
			break
		}

		results, stopped := research(i, product)
		if results != nil {
			collected = append(collected, productResult{Product: product, Data: results})
		}
		if stopped || stop.Requested() {
			printStopped()
			break
		}
	}
	return collected
}

// research runs the pricer for one product and renders its events. stopped
// reports whether the session was stopped before a result arrived.
func research(ctx context.Context, pricer *agent.Pricer, sess *session.Session, product string, websites []string) (types.Results, bool) {
	events := pricer.Run(ctx, agent.Request{
		Product:  product,
		Websites: websites,
		Session:  sess,
		StreamID: defaultStreamID,
	})

	var results types.Results
	stopped := true
	for ev := range events {
		switch ev.Type {
		case types.EventTypeToolProgress:
			printProgress(ev.ToolName, ev.Progress)
		case types.EventTypeToolResult:
			stopped = false
			if ev.Content == "" {
				printError(ev.Result)
				continue
			}
			parsed, err := parseResults(ev.Content)
			if err != nil {
				printError(fmt.Sprintf("Unreadable results: %v", err))
				continue
			}
			results = parsed
			printResults(product, websites, results)
			printJSON(ev.Content)
		case types.EventTypeEndOfMessage:
			stopped = true
		}
	}
	return results, stopped
}
