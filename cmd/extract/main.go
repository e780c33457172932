package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/extract/internal/config"
	"github.com/go-scripts/extract/internal/extractor"
	"github.com/go-scripts/extract/internal/progress"
	"github.com/go-scripts/extract/internal/server"
	"github.com/go-scripts/extract/internal/types"
)

// CLI flags structure
type CLI struct {
	Config string `help:"Path to YAML config file" type:"path"`

	Serve struct {
		Addr string `help:"Control API listen address" short:"a"`
	} `cmd:"" help:"Serve the HTTP control API for the browser page"`

	Run struct {
		Parent   string   `help:"Parent sitemap index URL to expand into leaf sitemaps" short:"p"`
		Sitemaps []string `help:"Leaf sitemap URLs to process directly" short:"s"`
		Format   string   `help:"Output format (csv or json)" short:"f"`
		Output   string   `help:"Output directory" short:"o"`
		Workers  int      `help:"Number of concurrent workers" short:"c"`
	} `cmd:"" help:"Run one extraction in the terminal and exit"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("extract"),
		kong.Description("Extract property listing metadata from XML sitemaps."))

	cfg := config.Default()
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			log.Fatal("could not load config", "error", err)
		}
		cfg = loaded
	}

	ctrl := extractor.New()

	switch ctx.Command() {
	case "serve":
		addr := cli.Serve.Addr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		if err := server.New(ctrl).ListenAndServe(addr); err != nil {
			log.Fatal("control API failed", "error", err)
		}

	case "run":
		if err := runOnce(ctrl, cfg, &cli); err != nil {
			log.Fatal("extraction failed", "error", err)
		}
	}
}

// runOnce drives a single extraction from the terminal: expand the parent
// sitemap if one was given, start the run, and poll status for the bar.
func runOnce(ctrl *extractor.Controller, cfg *config.Config, cli *CLI) error {
	sitemaps := cli.Run.Sitemaps
	parents := cfg.ParentSitemaps
	if cli.Run.Parent != "" {
		parents = []string{cli.Run.Parent}
	}

	if len(sitemaps) == 0 {
		if len(parents) == 0 {
			return fmt.Errorf("no sitemaps given: pass --parent, --sitemaps, or configure parent_sitemaps")
		}

		sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
		sp.Suffix = " discovering child sitemaps..."
		sp.Start()
		for _, parent := range parents {
			children, err := ctrl.ListChildSitemaps(parent)
			if err != nil {
				sp.Stop()
				return fmt.Errorf("listing children of %s: %w", parent, err)
			}
			sitemaps = append(sitemaps, children...)
		}
		sp.Stop()
		log.Info("discovered child sitemaps", "count", len(sitemaps))
	}

	runCfg := types.RunConfig{
		SitemapURLs:  sitemaps,
		OutputFormat: cfg.OutputFormat,
		OutputDir:    cfg.OutputDir,
		WorkerCount:  cfg.Workers,
	}
	if cli.Run.Format != "" {
		runCfg.OutputFormat = cli.Run.Format
	}
	if cli.Run.Output != "" {
		runCfg.OutputDir = cli.Run.Output
	}
	if cli.Run.Workers > 0 {
		runCfg.WorkerCount = cli.Run.Workers
	}

	if err := ctrl.Start(runCfg); err != nil {
		return err
	}

	bar := progress.New()
	for ctrl.Status().Running {
		bar.Render(ctrl.Status())
		time.Sleep(500 * time.Millisecond)
	}
	ctrl.Wait()
	bar.Render(ctrl.Status())
	bar.Finish()

	snap := ctrl.Status()
	fmt.Fprintf(os.Stdout, "Extracted %d listings into %d files under %s\n",
		snap.TotalRecordCount, len(snap.Files), snap.OutputDir)

	return nil
}
