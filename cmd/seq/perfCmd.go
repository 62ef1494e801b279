package seq

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/dSEQ/cmd/util"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for dSEQ servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfSeqPrefix  = "__test"
	perfNumThreads = 10
	perfRequests   = 10000
	perfSeqSpread  = 100
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. next,exists)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "requests"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of requests each benchmark performs"))
	key = "sequences"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different sequences to use for the spread tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfRequests = viper.GetInt("requests")
	perfSeqSpread = viper.GetInt("sequences")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for dSEQ servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Requests: %d\n", perfRequests)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]metrics.Timer)

	// Benchmark: all threads hammer a single hot sequence
	hotTimer := benchmark("next", func(i int) {
		if _, err := rpcSeq.GenerateID(perfSeqPrefix + "/hot"); err != nil {
			log.Printf("(next) - error generating id: %v\n", err)
		}
	})
	results["next"] = hotTimer
	printResult("next", hotTimer)

	// Benchmark: ids drawn across many sequences
	spreadTimer := benchmark("next-spread", func(i int) {
		name := fmt.Sprintf("%s/seq-%d", perfSeqPrefix, i%perfSeqSpread)
		if _, err := rpcSeq.GenerateID(name); err != nil {
			log.Printf("(next-spread) - error generating id: %v\n", err)
		}
	})
	results["next-spread"] = spreadTimer
	printResult("next-spread", spreadTimer)

	// Benchmark: existence checks for known sequences
	existsTimer := benchmark("exists", func(i int) {
		name := fmt.Sprintf("%s/seq-%d", perfSeqPrefix, i%perfSeqSpread)
		if _, err := rpcSeq.Exists(name); err != nil {
			log.Printf("(exists) - error checking sequence: %v\n", err)
		}
	})
	results["exists"] = existsTimer
	printResult("exists", existsTimer)

	// Benchmark: resetting sequences
	initTimer := benchmark("init", func(i int) {
		name := fmt.Sprintf("%s/seq-%d", perfSeqPrefix, i%perfSeqSpread)
		if err := rpcSeq.SetInitialValue(name, 0); err != nil {
			log.Printf("(init) - error setting initial value: %v\n", err)
		}
	})
	results["init"] = initTimer
	printResult("init", initTimer)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// benchmark runs op perfRequests times across perfNumThreads goroutines and
// records each call in a timer
func benchmark(name string, op func(i int)) metrics.Timer {
	timer := metrics.NewTimer()

	if shouldSkip(name) {
		return timer
	}

	var wg sync.WaitGroup
	perThread := perfRequests / perfNumThreads

	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				start := time.Now()
				op(offset + i)
				timer.UpdateSince(start)
			}
		}(t * perThread)
	}

	wg.Wait()
	return timer
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// printResult prints count, throughput and latency percentiles of a timer
func printResult(test string, timer metrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20s\tskipped\n", test)
		return
	}

	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-20s\t%d ops\t%.2f ops/sec\tp50: %s\tp95: %s\tp99: %s\n",
		test,
		timer.Count(),
		timer.RateMean(),
		time.Duration(int64(ps[0])),
		time.Duration(int64(ps[1])),
		time.Duration(int64(ps[2])),
	)
}

// writeResultsToCSV exports all timers to a CSV file
func writeResultsToCSV(path string, results map[string]metrics.Timer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Header
	if err := writer.Write([]string{"test", "count", "ops_per_sec", "p50_ns", "p95_ns", "p99_ns"}); err != nil {
		return err
	}

	for test, timer := range results {
		ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
		record := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			strconv.FormatFloat(timer.RateMean(), 'f', 2, 64),
			strconv.FormatInt(int64(ps[0]), 10),
			strconv.FormatInt(int64(ps[1]), 10),
			strconv.FormatInt(int64(ps[2]), 10),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
