package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planetgen.ai/internal/datapack"
	"planetgen.ai/internal/persistence/indexdb"
	persistlog "planetgen.ai/internal/persistence/log"
	"planetgen.ai/internal/planet"
	"planetgen.ai/internal/presets"
	"planetgen.ai/internal/sampler"
)

func main() {
	logger := log.New(os.Stdout, "[planetgen] ", log.LstdFlags|log.Lmicroseconds)
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "build":
			buildCmd(os.Args[2:], logger)
			return
		case "sample":
			sampleCmd(os.Args[2:], logger)
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "index":
			indexCmd(os.Args[2:])
			return
		case "serve":
			serveCmd(os.Args[2:], logger)
			return
		}
	}
	buildCmd(os.Args[1:], logger)
}

// loadConfig reads planets.yaml, falling back to the built-in planets when
// the file does not exist.
func loadConfig(path string, logger *log.Logger) planet.Config {
	path = strings.TrimSpace(path)
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.Printf("%s not found; using built-in planets", path)
			path = ""
		}
	}
	cfg, err := planet.Load(path)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	return cfg
}

// selectPlanets keeps the comma separated ids, or all planets for "".
func selectPlanets(cfg planet.Config, ids string) planet.Config {
	ids = strings.TrimSpace(ids)
	if ids == "" {
		return cfg
	}
	var keep []planet.PlanetSpec
	for _, id := range strings.Split(ids, ",") {
		p, ok := cfg.Find(strings.TrimSpace(id))
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown planet %q\n", id)
			os.Exit(2)
		}
		keep = append(keep, p)
	}
	cfg.Planets = keep
	return cfg
}

func buildCmd(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "./configs/planets.yaml", "planets config path")
	planets := fs.String("planet", "", "comma separated planet ids (default: all)")
	outDir := fs.String("out", "./data/datapack", "datapack output directory")
	bundlePath := fs.String("bundle", "./data/planets.pack.zst", "bundle output path (empty to skip)")
	dbPath := fs.String("db", "./data/index/builds.sqlite", "build index path")
	disableDB := fs.Bool("disable_db", false, "skip recording the build in the index")
	_ = fs.Parse(args)

	cfg := selectPlanets(loadConfig(*configPath, logger), *planets)
	arts, err := planet.Assemble(cfg, logger)
	if err != nil {
		logger.Fatalf("assemble: %v", err)
	}
	v, err := datapack.NewValidator()
	if err != nil {
		logger.Fatalf("schemas: %v", err)
	}
	pack, err := datapack.Render(arts, v)
	if err != nil {
		logger.Fatalf("render: %v", err)
	}
	if err := pack.WriteDir(*outDir); err != nil {
		logger.Fatalf("write datapack: %v", err)
	}
	logger.Printf("wrote %d file(s) to %s (digest %s)", len(pack.Files), *outDir, pack.Digest())

	cat, err := presets.Default()
	if err != nil {
		logger.Fatalf("presets: %v", err)
	}
	ids := make([]string, len(arts))
	for i, a := range arts {
		ids[i] = a.Spec.ID
	}
	bundle := strings.TrimSpace(*bundlePath)
	if bundle != "" {
		b := datapack.NewBundle(pack, datapack.BundleHeader{
			Planets:        ids,
			Seed:           cfg.Seed,
			SplinesDigest:  cat.Splines.Digest,
			TectonicDigest: cat.Tectonic.Digest,
		})
		if err := datapack.WriteBundle(bundle, b); err != nil {
			logger.Fatalf("write bundle: %v", err)
		}
		logger.Printf("wrote bundle %s", bundle)
	}

	if *disableDB {
		return
	}
	idx, err := indexdb.OpenSQLite(*dbPath, logger)
	if err != nil {
		logger.Printf("index disabled: %v", err)
		return
	}
	defer idx.Close()
	for _, a := range arts {
		gaps := 0
		if a.Gaps != nil {
			gaps = a.Gaps.Cells
		}
		idx.RecordBuild(indexdb.Build{
			Planet:         a.Spec.ID,
			Namespace:      a.Namespace,
			Preset:         a.Spec.Preset,
			Seed:           cfg.Seed,
			SplinesDigest:  cat.Splines.Digest,
			TectonicDigest: cat.Tectonic.Digest,
			PackDigest:     pack.Digest(),
			Noises:         len(a.Noises),
			Biomes:         a.Biomes.Len(),
			GapCells:       gaps,
			BundlePath:     bundle,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := idx.Flush(ctx); err != nil {
		logger.Printf("index flush: %v", err)
	}
}

func sampleCmd(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	configPath := fs.String("config", "./configs/planets.yaml", "planets config path")
	planetID := fs.String("planet", "", "planet id")
	x := fs.Int("x", 0, "start x")
	z := fs.Int("z", 0, "start z")
	width := fs.Int("width", 16, "columns along x")
	depth := fs.Int("depth", 16, "columns along z")
	stride := fs.Int("stride", 16, "blocks between columns")
	workers := fs.Int("workers", 0, "sampling workers (default: GOMAXPROCS)")
	outPath := fs.String("out", "", "write columns to a .jsonl.zst log instead of stdout")
	_ = fs.Parse(args)

	if strings.TrimSpace(*planetID) == "" {
		fmt.Fprintln(os.Stderr, "missing -planet")
		os.Exit(2)
	}
	cfg := selectPlanets(loadConfig(*configPath, logger), *planetID)
	arts, err := planet.Assemble(cfg, logger)
	if err != nil {
		logger.Fatalf("assemble: %v", err)
	}
	reg, err := arts[0].Registry(cfg.Seed)
	if err != nil {
		logger.Fatalf("noises: %v", err)
	}
	smp, err := sampler.New(arts[0], reg)
	if err != nil {
		logger.Fatalf("sampler: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	cols, err := smp.SampleRegion(ctx, sampler.Region{X: *x, Z: *z, Width: *width, Depth: *depth, Stride: *stride}, *workers)
	if err != nil {
		logger.Fatalf("sample: %v", err)
	}
	if *outPath != "" {
		l, err := persistlog.NewColumnLog(*outPath)
		if err != nil {
			logger.Fatalf("column log: %v", err)
		}
		if err := l.WriteColumns(arts[0].Spec.ID, cols); err != nil {
			logger.Fatalf("column log: %v", err)
		}
		if err := l.Close(); err != nil {
			logger.Fatalf("column log: %v", err)
		}
		logger.Printf("wrote %d column(s) to %s", len(cols), *outPath)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	for _, c := range cols {
		_ = enc.Encode(c)
	}
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	bundlePath := fs.String("bundle", "./data/planets.pack.zst", "bundle path")
	file := fs.String("file", "", "print one document from the bundle")
	extract := fs.String("extract", "", "write the bundled datapack to this directory")
	_ = fs.Parse(args)

	if *file == "" && *extract == "" {
		h, err := datapack.ReadBundleHeader(*bundlePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read bundle:", err)
			os.Exit(1)
		}
		b, _ := json.MarshalIndent(h, "", "  ")
		fmt.Println(string(b))
	}

	bundle, err := datapack.ReadBundle(*bundlePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read bundle:", err)
		os.Exit(1)
	}
	pack := bundle.Pack()
	switch {
	case *file != "":
		f, ok := pack.Lookup(filepath.ToSlash(*file))
		if !ok {
			fmt.Fprintf(os.Stderr, "%s not in bundle\n", *file)
			os.Exit(1)
		}
		_, _ = os.Stdout.Write(f.Data)
	case *extract != "":
		if err := pack.WriteDir(*extract); err != nil {
			fmt.Fprintln(os.Stderr, "extract:", err)
			os.Exit(1)
		}
		fmt.Printf("extracted %d file(s) to %s\n", len(pack.Files), *extract)
	default:
		for _, f := range pack.Files {
			fmt.Printf("%-16s %7d  %s\n", f.Kind, len(f.Data), f.Path)
		}
	}
}

func indexCmd(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	dbPath := fs.String("db", "./data/index/builds.sqlite", "build index path")
	planetID := fs.String("planet", "", "show only the latest build of this planet")
	limit := fs.Int("limit", 20, "max builds to list")
	_ = fs.Parse(args)

	idx, err := indexdb.OpenSQLite(*dbPath, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx := context.Background()
	enc := json.NewEncoder(os.Stdout)
	if id := strings.TrimSpace(*planetID); id != "" {
		b, ok, err := idx.LatestBuild(ctx, id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Printf("no builds for %s\n", id)
			return
		}
		_ = enc.Encode(b)
		return
	}
	builds, err := idx.Builds(ctx, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, b := range builds {
		_ = enc.Encode(b)
	}
}
