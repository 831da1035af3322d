package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/milk9111/ldtkloader/assets"
	"github.com/milk9111/ldtkloader/config"
	"github.com/milk9111/ldtkloader/ldtk"
	"github.com/milk9111/ldtkloader/levels"
	"github.com/milk9111/ldtkloader/project"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $LDTK_CONFIG)")
	root := flag.String("root", "", "asset root directory, overrides the config")
	watch := flag.Bool("watch", false, "reload and print again whenever a project file or image changes")
	sample := flag.Bool("sample", false, "load the built-in sample projects instead of the asset root")
	flag.Parse()

	projectPath := flag.Arg(0)
	if flag.NArg() > 1 || (projectPath == "" && !*sample) {
		fmt.Fprintln(os.Stderr, "usage: ldtkinfo [-config file] [-root dir] [-watch] [-sample] <project.ldtk>")
		os.Exit(2)
	}
	if *sample && projectPath == "" {
		projectPath = levels.SampleProject
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *root != "" {
		cfg.AssetRoot = *root
	}
	if *watch {
		cfg.Watch = true
	}

	var source fs.FS = os.DirFS(cfg.AssetRoot)
	if *sample {
		source = levels.Sample()
		cfg.Watch = false
	}

	logger := cfg.NewLogger(os.Stderr)
	server := assets.NewServer(source,
		assets.WithLogger(logger),
		assets.WithFallbackLoader(assets.RawLoader{}),
	)
	server.Register(assets.ImageLoader{})
	server.Register(project.NewLoader(cfg.ProjectFeatures()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := server.Load(ctx, projectPath)
	if err != nil {
		log.Fatal(err)
	}
	handle := assets.Typed[*project.Project](h)
	printSummary(os.Stdout, server, handle)

	if !cfg.Watch {
		return
	}

	w, err := assets.NewWatcher(cfg.AssetRoot, server, ldtk.Extension, "ldtkl", "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp")
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()

	logger.Info("watching for changes", "root", cfg.AssetRoot)
	for {
		select {
		case <-ctx.Done():
			return
		case reloaded := <-w.Reloaded:
			logger.Info("reloaded", "asset", reloaded.String())
			// dependencies are reloaded on their own, the project only needs
			// printing again when its own file changed
			if reloaded.ID() == h.ID() {
				printSummary(os.Stdout, server, handle)
			}
		case err := <-w.Errors:
			logger.Error("reload failed", "err", err)
		}
	}
}

func printSummary(out io.Writer, server *assets.Server, h assets.Handle[*project.Project]) {
	p, ok := assets.Get(server, h)
	if !ok {
		fmt.Fprintf(out, "%s: not loaded (%s)\n", h, server.State(h.Untyped()))
		return
	}

	doc := p.Document()
	layout := "internal levels"
	if doc.ExternalLevels {
		layout = "external levels"
	}
	fmt.Fprintf(out, "%s\n", h)
	fmt.Fprintf(out, "  iid:      %s\n", doc.Iid)
	fmt.Fprintf(out, "  version:  %s\n", doc.JSONVersion)
	fmt.Fprintf(out, "  layout:   %s\n", layout)
	fmt.Fprintf(out, "  worlds:   %d\n", len(p.RawWorlds()))
	fmt.Fprintf(out, "  levels:   %d\n", ldtk.LevelCount(p))

	for indices, level := range ldtk.RawLevelsWithIndices(p) {
		meta, _ := p.LevelMetadataByIid(level.Iid)
		bg := "-"
		if meta.BgImage != nil {
			bg = fmt.Sprintf("%s [%s]", meta.BgImage, server.State(meta.BgImage.Untyped()))
		}
		fmt.Fprintf(out, "    %-20s %-24s %-36s bg=%s\n", indices, level.Identifier, level.Iid, bg)
		if parent, ok := p.Parent(); ok {
			if ext, ok := parent.ExternalLevelMetadataByIid(level.Iid); ok {
				fmt.Fprintf(out, "      file=%s [%s]\n", ext.ExternalHandle, server.State(ext.ExternalHandle.Untyped()))
			}
		}
	}

	tilesets := p.TilesetMap()
	fmt.Fprintf(out, "  tilesets: %d\n", len(tilesets))
	for _, def := range doc.Defs.Tilesets {
		th, ok := tilesets[def.UID]
		if !ok {
			fmt.Fprintf(out, "    %-4d %-24s skipped\n", def.UID, def.Identifier)
			continue
		}
		img, ok := assets.Get(server, th)
		if !ok {
			fmt.Fprintf(out, "    %-4d %-24s %s [%s]\n", def.UID, def.Identifier, th, server.State(th.Untyped()))
			continue
		}
		fmt.Fprintf(out, "    %-4d %-24s %s %dx%d\n", def.UID, def.Identifier, th, img.Bounds().Dx(), img.Bounds().Dy())
	}

	if grid, ok := p.IntGridImage(); ok {
		if img, ok := assets.Get(server, grid); ok {
			fmt.Fprintf(out, "  int grid: %s, max value %d\n", grid, img.Bounds().Dx()-1)
		}
	}

	fmt.Fprintf(out, "  dependencies: %d\n", len(server.Dependencies(h.Untyped())))
}
