// Command domdeck converts a rendered HTML page into slide draw commands,
// written as JSON lines for a document builder to consume.
//
// Usage:
//
//	domdeck -url https://example.com/slide.html      # render in Chrome and convert
//	domdeck -html slide.html -selector .slide        # local HTML file
//	domdeck -tree tree.json                          # previously captured tree
//	domdeck -config domdeck.yaml -url ... -out cmds.jsonl
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/domdeck/deck"
	"github.com/hazyhaar/domdeck/visual"
)

func main() {
	configPath := flag.String("config", "", "path to domdeck.yaml config file")
	pageURL := flag.String("url", "", "URL of the page to convert")
	htmlPath := flag.String("html", "", "HTML file to convert")
	treePath := flag.String("tree", "", "captured tree (JSON) to convert without a browser")
	selector := flag.String("selector", "", "CSS selector of the slide root (default body)")
	outPath := flag.String("out", "", "output file (default stdout)")
	fileName := flag.String("file", "", "file name passed through to the builder")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &deck.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = deck.LoadConfigFile(*configPath); err != nil {
			logger.Error("domdeck: fatal", "error", err)
			os.Exit(1)
		}
	}
	cfg.Logger = logger
	if *selector != "" {
		cfg.Browser.Selector = *selector
	}
	if *fileName != "" {
		cfg.FileName = *fileName
	}

	if err := run(ctx, cfg, *pageURL, *htmlPath, *treePath, *outPath); err != nil {
		logger.Error("domdeck: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *deck.Config, pageURL, htmlPath, treePath, outPath string) error {
	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	conv, err := deck.New(*cfg)
	if err != nil {
		return err
	}
	defer conv.Close()
	sink := deck.NewJSONSink(out, cfg.FileName)

	switch {
	case pageURL != "":
		return conv.ConvertURL(ctx, pageURL, sink)
	case htmlPath != "":
		data, err := os.ReadFile(htmlPath)
		if err != nil {
			return fmt.Errorf("read html: %w", err)
		}
		return conv.ConvertHTML(ctx, string(data), sink)
	case treePath != "":
		data, err := os.ReadFile(treePath)
		if err != nil {
			return fmt.Errorf("read tree: %w", err)
		}
		root, err := visual.Decode(data)
		if err != nil {
			return err
		}
		return conv.Convert(ctx, &visual.Tree{Node: root}, sink)
	}

	fmt.Fprintln(os.Stderr, "usage: domdeck -url <url> | -html <file> | -tree <file> [-config <file>] [-out <file>]")
	os.Exit(2)
	return nil
}
