package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/netcas/splitter/splitter"
	"github.com/netcas/splitter/splitter/telemetry"
)

var (
	loadtestWorkers      int
	loadtestPerWorker    int
	loadtestRatioPercent int
)

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Hammer the dispatcher with concurrent callers and report how closely it realized the target ratio",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		table, err := loadBandwidthTable(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		s := splitter.New(splitter.Config{
			Table:   table,
			Sampler: telemetry.NullSampler{},
			IODepth: cfg.IODepth,
			NumJobs: cfg.NumJobs,
		})
		s.SetRatioForLoadTest(uint64(loadtestRatioPercent) * 100)

		samples := runConcurrentDispatch(s, loadtestWorkers, loadtestPerWorker)

		mean, stddev := stat.MeanStdDev(samples, nil)
		fmt.Printf("target=%d%% workers=%d per_worker=%d observed_backend_fraction_mean=%.4f stddev=%.4f\n",
			loadtestRatioPercent, loadtestWorkers, loadtestPerWorker, mean, stddev)
	},
}

// runConcurrentDispatch fans loadtestWorkers goroutines out against a shared
// Splitter and returns each worker's observed backend fraction, for
// stat.MeanStdDev to summarize. errgroup carries the first worker error (none
// are expected; ShouldSendToBackend cannot fail) and bounds the group to a
// single cancellation signal.
func runConcurrentDispatch(s *splitter.Splitter, workers, perWorker int) []float64 {
	samples := make([]float64, workers)
	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			backend := 0
			for i := 0; i < perWorker; i++ {
				if s.ShouldSendToBackend(nil) {
					backend++
				}
			}
			samples[w] = float64(backend) / float64(perWorker)
			return nil
		})
	}
	_ = g.Wait()
	return samples
}

func init() {
	loadtestCmd.Flags().IntVar(&loadtestWorkers, "workers", 8, "Number of concurrent dispatching goroutines")
	loadtestCmd.Flags().IntVar(&loadtestPerWorker, "per-worker", 5000, "Dispatch calls issued per goroutine")
	loadtestCmd.Flags().IntVar(&loadtestRatioPercent, "ratio-percent", 70, "Cache-bound percentage to hold fixed for the test")

	rootCmd.AddCommand(loadtestCmd)
}
