package main

import "context"
import "flag"
import "fmt"
import "log"
import "os"

import "github.com/klauspost/cpuid/v2"
import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/datasets/mnist"
import "github.com/neurlang/savanna/forest"
import "github.com/neurlang/savanna/results"
import "github.com/neurlang/savanna/trainer"

func main() {
	dataset := flag.String("dataset", "", "run only this dataset: mnist or fashion")
	trees := flag.Int("trees", 100, "trees of the small variants, large variants get three times more")
	trainSize := flag.Int("train", datasets.DefaultTrainSize, "train partition size")
	testSize := flag.Int("test", datasets.DefaultTestSize, "test partition size")
	seed := flag.Int64("seed", 0, "permutation and forest seed")
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

	kinds := mnist.Kinds
	if *dataset != "" {
		kind, err := mnist.ParseKind(*dataset)
		if err != nil {
			panic(err.Error())
		}
		kinds = []mnist.Kind{kind}
	}

	fmt.Println(cpuid.CPU.BrandName, "cores:", cpuid.CPU.LogicalCores, "workers:", *cores)

	var store *results.Store
	if *db != "" {
		var err error
		store, err = results.Open(*db)
		if err != nil {
			panic(err.Error())
		}
		defer store.Close()
	}

	opts := trainer.BenchmarkOptions{
		Trees:  *trees,
		Height: mnist.ImgSize,
		Width:  mnist.ImgSize,
		Cores:  *cores,
		Seed:   *seed,
	}
	if *verbose {
		opts.Verbose = log.New(os.Stderr, "", log.LstdFlags)
	}

	ctx := context.Background()
	run := results.NewRunID()
	var all []results.Result
	for _, kind := range kinds {
		fmt.Println(kind)
		raw, err := mnist.Fetch(ctx, kind, mnist.Options{CacheDir: *cacheDir})
		if err != nil {
			panic(err.Error())
		}
		split, _, err := datasets.ProcessData(raw, datasets.ProcessOptions{
			Seed:      *seed,
			TrainSize: *trainSize,
			TestSize:  *testSize,
		})
		if err != nil {
			panic(err.Error())
		}
		res, err := trainer.RunBenchmark(ctx, os.Stdout, split, opts)
		if err != nil {
			panic(err.Error())
		}
		for _, r := range res {
			rr := results.NewResult(run, kind.String(), r.Name, r.Accuracy, r.Timing)
			all = append(all, rr)
			if store == nil {
				continue
			}
			if err := store.Record(ctx, rr); err != nil {
				panic(err.Error())
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
