package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/config"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var (
		schemaFlag = flag.String("schema", cfg.SchemaPath, "JSON or YAML form document (bundled forms when empty)")
		formFlag   = flag.String("form", schema.SampleFormID, "form ID to fill in")
		formatFlag = flag.String("format", string(render.OutputFormatJSON), "output format (json, form, pretty)")
		outputFlag = flag.String("output", "", "optional file path for the payload (stdout when empty)")
		listFlag   = flag.Bool("list", false, "list the available form IDs and exit")
	)
	flag.Parse()

	store, err := formstate.LoadStore(strings.TrimSpace(*schemaFlag))
	if err != nil {
		logger.Fatalf("load forms: %v", err)
	}
	if *listFlag {
		for _, id := range store.IDs() {
			fmt.Println(id)
		}
		return
	}

	form, ok := store.Form(*formFlag)
	if !ok {
		logger.Fatalf("form %q not found (available: %v)", *formFlag, store.IDs())
	}
	eng, err := formstate.New(form)
	if err != nil {
		logger.Fatalf("compile form: %v", err)
	}

	renderer, err := tui.New(
		tui.WithOutputFormat(render.OutputFormat(*formatFlag)),
		tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
	)
	if err != nil {
		logger.Fatalf("renderer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	payload, err := renderer.Render(ctx, eng, nil)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			logger.Info("aborted")
			os.Exit(130)
		}
		logger.Fatalf("fill form: %v", err)
	}

	if *outputFlag == "" {
		fmt.Print(string(payload))
		return
	}
	if err := writeFile(*outputFlag, payload); err != nil {
		logger.Fatalf("write output: %v", err)
	}
	logger.WithField("form", form.ID).Infof("wrote %d bytes to %s", len(payload), *outputFlag)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
