// bench-hibernation measures heap memory before and after interval tree
// Hibernate() calls with a synthetic interval population.
//
// Usage:
//
//	go run ./scripts/bench-hibernation --intervals 1000000 --holes 0.3 \
//	  --cycles 3 --profile-dir docs/profiles/interval-hibernation
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/interval"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

const intervalWidth = 100

func main() {
	intervals := flag.Int("intervals", 1_000_000, "Number of intervals to insert")
	holes := flag.Float64("holes", 0.3, "Fraction of intervals to remove before hibernating (arena fragmentation)")
	cycles := flag.Int("cycles", 3, "Number of hibernate/boot cycles")
	profileDir := flag.String("profile-dir", "", "Directory to write heap profiles (empty = skip profiles)")
	cpuProfile := flag.Bool("cpu-profile", false, "Write CPU profile to profile-dir/cpu.prof")

	flag.Parse()

	if *holes < 0 || *holes >= 1 {
		log.Fatal("--holes must be in [0, 1)")
	}

	if *profileDir != "" {
		if err := os.MkdirAll(*profileDir, 0o755); err != nil {
			log.Fatalf("mkdir profile-dir: %v", err)
		}
	}

	if *cpuProfile {
		if *profileDir == "" {
			log.Fatal("--cpu-profile requires --profile-dir")
		}

		cpuPath := filepath.Join(*profileDir, "cpu.prof")

		cpuFile, cpuErr := os.Create(cpuPath)
		if cpuErr != nil {
			log.Fatalf("create cpu profile: %v", cpuErr)
		}
		defer cpuFile.Close()

		if startErr := pprof.StartCPUProfile(cpuFile); startErr != nil {
			log.Fatalf("start cpu profile: %v", startErr)
		}

		defer pprof.StopCPUProfile()

		log.Printf("CPU profiling enabled -> %s", cpuPath)
	}

	takeSnapshot := func(label string) {
		runtime.GC()
		runtime.GC()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		log.Printf("  [heap] %-40s inuse=%6.1f MB  sys=%6.1f MB  idle=%6.1f MB",
			label, float64(m.HeapInuse)/1e6, float64(m.HeapSys)/1e6, float64(m.HeapIdle)/1e6)
	}

	writeHeapProfile := func(name string) {
		if *profileDir == "" {
			return
		}

		runtime.GC()
		runtime.GC()

		path := filepath.Join(*profileDir, name)

		f, ferr := os.Create(path)
		if ferr != nil {
			log.Printf("warning: create heap profile %s: %v", path, ferr)

			return
		}
		defer f.Close()

		if perr := pprof.WriteHeapProfile(f); perr != nil {
			log.Printf("warning: write heap profile %s: %v", path, perr)
		}
	}

	tree := interval.New[int]()
	base := timed.FromTime(time.Now())

	log.Printf("inserting %d intervals", *intervals)

	insertStart := time.Now()

	for i := range *intervals {
		start := base + timed.Timestamp(i)
		if err := tree.Insert(start, start+intervalWidth, i); err != nil {
			log.Fatalf("insert %d: %v", i, err)
		}
	}

	log.Printf("inserted in %s", time.Since(insertStart).Round(time.Millisecond))

	// Punch holes so the arena free list is populated, the realistic state
	// for a tree that has seen prunes.
	if *holes > 0 {
		stride := int(1 / *holes)
		removed := 0

		for i := 0; i < *intervals; i += stride {
			start := base + timed.Timestamp(i)
			if tree.Remove(start, start+intervalWidth, i) {
				removed++
			}
		}

		log.Printf("removed %d intervals (%d remain)", removed, tree.Len())
	}

	takeSnapshot("after_population")
	writeHeapProfile("heap_after_population.prof")

	for cycle := 1; cycle <= *cycles; cycle++ {
		log.Printf("cycle %d/%d", cycle, *cycles)

		hStart := time.Now()
		tree.Hibernate()
		log.Printf("  hibernated in %s", time.Since(hStart).Round(time.Millisecond))

		takeSnapshot(fmt.Sprintf("cycle_%d_after_hibernate", cycle))
		writeHeapProfile(fmt.Sprintf("heap_cycle_%d_after_hibernate.prof", cycle))

		bStart := time.Now()
		tree.Boot()
		log.Printf("  booted in %s", time.Since(bStart).Round(time.Millisecond))

		takeSnapshot(fmt.Sprintf("cycle_%d_after_boot", cycle))

		// Sanity query: the tree must answer correctly after a round trip.
		spans, err := tree.Overlap(base, base+timed.Timestamp(intervalWidth))
		if err != nil {
			log.Fatalf("overlap after boot: %v", err)
		}

		log.Printf("  overlap probe returned %d spans, len=%d", len(spans), tree.Len())
	}

	log.Printf("done")
}
