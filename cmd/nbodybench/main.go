// nbodybench builds a tree over a generated or loaded particle
// dataset, walks it once, and reports accuracy against the exact
// evaluator and timing, rather than running an animated simulation.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MichaelSB/rakau/internal/gen"
	"github.com/MichaelSB/rakau/snapshot"
	"github.com/MichaelSB/rakau/store"
	"github.com/MichaelSB/rakau/tree"
	"github.com/MichaelSB/rakau/viz"
)

func main() {
	nparts := flag.Int("n", 10000, "number of particles")
	idx := flag.Int("idx", 0, "query index for a single exact-vs-tree comparison")
	maxLeafN := flag.Uint("max-leaf-n", tree.DefaultMaxLeafN, "maximum particles per leaf")
	ncrit := flag.Uint("ncrit", tree.DefaultNcrit, "maximum target batch size")
	workers := flag.Int("workers", 0, "worker count (0 = GOMAXPROCS)")
	bsize := flag.Float64("bsize", 0, "box size (0 = deduce from data)")
	plummerA := flag.Float64("plummer-a", 1, "Plummer scale radius (ignored for -dist=cube)")
	theta := flag.Float64("theta", 0.75, "MAC opening angle")
	eps := flag.Float64("eps", 0.01, "softening length")
	split := flag.String("split", "parallel", "batch split mode: none|serial|parallel")
	macKind := flag.String("mac", "bh", "MAC variant: bh|bh_geom")
	dist := flag.String("dist", "plummer", "particle distribution: cube|plummer")
	useFloat32 := flag.Bool("float", false, "use float32 instead of float64")
	ordered := flag.Bool("ordered", true, "report results in tree (Morton) order instead of input order")
	parallelInit := flag.Bool("parallel-init", true, "build the worker pool up front instead of lazily (kept for CLI parity; has no effect: the tree creates its worker pool per call)")
	seed := flag.Int64("seed", 42, "PRNG seed")
	snapshotPath := flag.String("snapshot", "", "load/save the generated dataset from/to this path")
	dbPath := flag.String("db", "", "record this run's results to a sqlite database at this path")
	vizPath := flag.String("viz", "", "write a debug PNG of the resulting tree to this path")
	flag.Parse()

	_ = parallelInit // no separate init phase to defer: the pool is always created per call.

	log := logrus.WithFields(logrus.Fields{
		"nparts":     *nparts,
		"max_leaf_n": *maxLeafN,
		"ncrit":      *ncrit,
		"theta":      *theta,
		"mac":        *macKind,
	})

	var mac tree.MacKind
	switch *macKind {
	case "bh":
		mac = tree.MacBH
	case "bh_geom":
		mac = tree.MacBHGeom
	default:
		log.Fatalf("unknown mac kind %q", *macKind)
	}

	var splitMode tree.SplitMode
	switch *split {
	case "none":
		splitMode = tree.SplitNone
	case "serial":
		splitMode = tree.SplitSerial
	case "parallel":
		splitMode = tree.SplitParallel
	default:
		log.Fatalf("unknown split mode %q", *split)
	}

	ds, err := loadOrGenerate(*snapshotPath, *dist, *nparts, *plummerA, *seed)
	if err != nil {
		log.WithError(err).Fatal("failed to prepare dataset")
	}

	cfg := tree.Config{
		BoxSize:  *bsize,
		MaxLeafN: *maxLeafN,
		Ncrit:    *ncrit,
		Split:    splitMode,
		Mac:      mac,
		Workers:  *workers,
	}

	var buildMs, walkMs, maxRelErr, medianRelErr float64
	if *useFloat32 {
		buildMs, walkMs, maxRelErr, medianRelErr, err = run32(ds, cfg, float32(*theta), float32(*eps), *ordered, *idx, log)
	} else {
		buildMs, walkMs, maxRelErr, medianRelErr, err = run64(ds, cfg, *theta, *eps, *ordered, *idx, log, *vizPath)
	}
	if err != nil {
		log.WithError(err).Fatal("benchmark run failed")
	}

	fmt.Printf("build: %.2fms  walk: %.2fms  max_rel_err: %.3e  median_rel_err: %.3e\n",
		buildMs, walkMs, maxRelErr, medianRelErr)

	if *dbPath != "" {
		s, err := store.Open(*dbPath)
		if err != nil {
			log.WithError(err).Fatal("failed to open result store")
		}
		defer s.Close()
		err = s.Record(store.Run{
			StartedAt:    time.Now(),
			NParts:       *nparts,
			MaxLeafN:     *maxLeafN,
			Ncrit:        *ncrit,
			Theta:        *theta,
			Eps:          *eps,
			Mac:          *macKind,
			Workers:      *workers,
			BuildMs:      buildMs,
			WalkMs:       walkMs,
			MaxRelErr:    maxRelErr,
			MedianRelErr: medianRelErr,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to record run")
		}
	}
}

func loadOrGenerate(snapshotPath, dist string, n int, plummerA float64, seed int64) (*gen.Dataset, error) {
	if snapshotPath != "" {
		if _, err := os.Stat(snapshotPath); err == nil {
			d, err := snapshot.Load(snapshotPath)
			if err != nil {
				return nil, err
			}
			return &gen.Dataset{X: d.X, Y: d.Y, Z: d.Z, Mass: d.Mass}, nil
		}
	}

	rng := rand.New(rand.NewSource(seed))
	var ds *gen.Dataset
	switch dist {
	case "cube":
		ds = gen.UniformCube(rng, n, 2, float64(n))
	case "plummer":
		ds = gen.PlummerSphere(rng, n, plummerA, float64(n))
	default:
		return nil, fmt.Errorf("unknown distribution %q", dist)
	}

	if snapshotPath != "" {
		err := snapshot.Save(snapshotPath, snapshot.Dataset{X: ds.X, Y: ds.Y, Z: ds.Z, Mass: ds.Mass})
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func run64(ds *gen.Dataset, cfg tree.Config, theta, eps float64, ordered bool, idx int, log *logrus.Entry, vizPath string) (buildMs, walkMs, maxRelErr, medianRelErr float64, err error) {
	start := time.Now()
	t, err := tree.New(ds.X, ds.Y, ds.Z, ds.Mass, cfg)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	buildMs = float64(time.Since(start).Microseconds()) / 1000

	log.WithField("box_size", t.BoxSize()).Info("tree built")

	start = time.Now()
	var accs [3][]float64
	if ordered {
		accs, err = t.AccsOrdered(theta, eps)
	} else {
		accs, err = t.AccsUnordered(theta, eps)
	}
	if err != nil {
		return 0, 0, 0, 0, err
	}
	walkMs = float64(time.Since(start).Microseconds()) / 1000

	if idx >= 0 && idx < t.NParts() {
		exactAcc := t.ExactAccOrdered
		if !ordered {
			exactAcc = t.ExactAccUnordered
		}
		exact, err := exactAcc(idx, eps)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		log.WithFields(logrus.Fields{
			"approx": [3]float64{accs[0][idx], accs[1][idx], accs[2][idx]},
			"exact":  exact,
		}).Info("single-particle comparison")
	}

	maxRelErr, medianRelErr = relativeErrorStats(t, accs, eps, ordered)

	if vizPath != "" {
		if err := viz.RenderTree(vizPath, t, viz.DefaultOptions()); err != nil {
			log.WithError(err).Warn("failed to render debug visualization")
		}
	}

	return buildMs, walkMs, maxRelErr, medianRelErr, nil
}

func run32(ds *gen.Dataset, cfg tree.Config, theta, eps float32, ordered bool, idx int, log *logrus.Entry) (buildMs, walkMs, maxRelErr, medianRelErr float64, err error) {
	x32, y32, z32, m32 := toFloat32(ds.X), toFloat32(ds.Y), toFloat32(ds.Z), toFloat32(ds.Mass)

	start := time.Now()
	t, err := tree.New(x32, y32, z32, m32, cfg)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	buildMs = float64(time.Since(start).Microseconds()) / 1000

	start = time.Now()
	var accs [3][]float32
	if ordered {
		accs, err = t.AccsOrdered(theta, eps)
	} else {
		accs, err = t.AccsUnordered(theta, eps)
	}
	if err != nil {
		return 0, 0, 0, 0, err
	}
	walkMs = float64(time.Since(start).Microseconds()) / 1000

	_ = idx
	maxRelErr, medianRelErr = relativeErrorStats(t, accs, eps, ordered)
	log.Info("float32 run complete")
	return buildMs, walkMs, maxRelErr, medianRelErr, nil
}

// relativeErrorStats compares accs against the exact evaluator,
// particle by particle. accs must be indexed the same way ordered
// says: tree (Morton) order when true, input order when false.
func relativeErrorStats[T tree.Float](t *tree.Tree[T], accs [3][]T, eps T, ordered bool) (maxRelErr, medianRelErr float64) {
	n := t.NParts()
	if n == 0 {
		return 0, 0
	}
	relErrs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		var exact [tree.Dim]T
		var err error
		if ordered {
			exact, err = t.ExactAccOrdered(i, eps)
		} else {
			exact, err = t.ExactAccUnordered(i, eps)
		}
		if err != nil {
			continue
		}
		var num, denom float64
		for d := 0; d < tree.Dim; d++ {
			diff := float64(accs[d][i] - exact[d])
			num += diff * diff
			denom += float64(exact[d]) * float64(exact[d])
		}
		if denom < 1e-18 {
			continue
		}
		relErr := math.Sqrt(num / denom)
		relErrs = append(relErrs, relErr)
		if relErr > maxRelErr {
			maxRelErr = relErr
		}
	}
	if len(relErrs) == 0 {
		return 0, 0
	}
	insertionSort(relErrs)
	return maxRelErr, relErrs[len(relErrs)/2]
}

func insertionSort(s []float64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
