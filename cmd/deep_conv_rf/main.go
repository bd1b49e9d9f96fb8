package main

import "context"
import "flag"
import "fmt"
import "log"
import "os"
import "strconv"
import "strings"

import "github.com/klauspost/cpuid/v2"
import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/datasets/mnist"
import "github.com/neurlang/savanna/forest"
import "github.com/neurlang/savanna/layer/convrf"
import "github.com/neurlang/savanna/metrics"
import "github.com/neurlang/savanna/results"
import "github.com/neurlang/savanna/trainer"

func parseInts(s string) (o []int, err error) {
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		o = append(o, n)
	}
	return
}

func main() {
	dataset := flag.String("dataset", "mnist", "dataset: mnist or fashion")
	classes := flag.String("classes", "3,5", "comma separated classes to keep")
	samples := flag.String("samples", "10,50,100", "comma separated numbers of train images per run")
	layers := flag.Int("layers", 0, "run only 1 or 2 layers, both when 0")
	kind := flag.String("type", string(convrf.Shared), "ConvRF type: shared, unshared or rerf_shared")
	trees := flag.Int("trees", 0, "trees per layer forest, type default when 0")
	seed := flag.Int64("seed", 0, "subset and forest seed")
	cores := flag.Int("cores", forest.DefaultCores(), "forest workers")
	cacheDir := flag.String("cache", "", "dataset cache directory")
	db := flag.String("db", "", "sqlite file to record results in")
	csv := flag.String("csv", "", "csv file to write results to")
	verbose := flag.Bool("v", false, "log forest progress")
	pgo := flag.Bool("pgo", false, "write a cpu profile to default.pgo until interrupted")
	flag.Parse()

	if *pgo {
		profile()
	}

	k, err := mnist.ParseKind(*dataset)
	if err != nil {
		panic(err.Error())
	}
	t, err := convrf.ParseKind(*kind)
	if err != nil {
		panic(err.Error())
	}
	chosen, err := parseInts(*classes)
	if err != nil {
		panic(err.Error())
	}
	sizes, err := parseInts(*samples)
	if err != nil {
		panic(err.Error())
	}

	fmt.Println(cpuid.CPU.BrandName, "cores:", cpuid.CPU.LogicalCores, "workers:", *cores)

	var store *results.Store
	if *db != "" {
		store, err = results.Open(*db)
		if err != nil {
			panic(err.Error())
		}
		defer store.Close()
	}

	ctx := context.Background()
	train, test, err := mnist.Load(ctx, k, mnist.Options{CacheDir: *cacheDir})
	if err != nil {
		panic(err.Error())
	}
	// number of train images of the chosen classes
	filtered, _, err := datasets.Subset(train, datasets.Raw{}, chosen, nil)
	if err != nil {
		panic(err.Error())
	}

	cfg := trainer.ConvConfig{Type: t, Trees: *trees, Cores: *cores, Seed: *seed}
	if *verbose {
		cfg.Verbose = log.New(os.Stderr, "", log.LstdFlags)
	}
	runners := []struct {
		name string
		run  func(context.Context, datasets.Raw, datasets.Raw, []int, []int, trainer.ConvConfig) (float64, metrics.Timing, error)
	}{
		{"1 layer", trainer.RunOneLayer},
		{"2 layer", trainer.RunTwoLayer},
	}

	run := results.NewRunID()
	var all []results.Result
	for _, n := range sizes {
		if n > filtered.Len() {
			panic(fmt.Sprintf("%d samples requested, %d available", n, filtered.Len()))
		}
		indices := datasets.Permutation(filtered.Len(), *seed)[:n]
		for i, r := range runners {
			if *layers != 0 && *layers != i+1 {
				continue
			}
			acc, timing, err := r.run(ctx, train, test, chosen, indices, cfg)
			if err != nil {
				panic(err.Error())
			}
			name := fmt.Sprintf("%s %s %d samples", r.name, t, n)
			fmt.Println(name)
			fmt.Println("Accuracy:", acc)
			fmt.Println("Time:", timing)

			rr := results.NewResult(run, k.String(), name, acc, timing)
			all = append(all, rr)
			if store != nil {
				if err := store.Record(ctx, rr); err != nil {
					panic(err.Error())
				}
			}
		}
	}

	fmt.Println("Best per experiment")
	fmt.Println(results.Best(all))

	if *csv != "" {
		f, err := os.Create(*csv)
		if err != nil {
			panic(err.Error())
		}
		defer f.Close()
		if err := results.WriteCSV(f, all); err != nil {
			panic(err.Error())
		}
	}
}
