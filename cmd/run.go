package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netcas/splitter/splitter"
	"github.com/netcas/splitter/splitter/telemetry"
	"github.com/netcas/splitter/splitter/tunables"
)

var (
	runTicks             uint64
	runRampTicks         uint64
	runCongestionAtTick  uint64
	runRecoverAtTick     uint64
	runBaseBandwidth     uint64
	runBaseLatencyNS     uint64
	runBaseIOPS          uint64
	runCongestionLatency uint64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the splitter against a simulated telemetry profile and print a summary",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		table, err := loadBandwidthTable(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		sampler := telemetry.NewSimulatedSampler(
			runRampTicks, runCongestionAtTick, runRecoverAtTick,
			runBaseBandwidth, runBaseLatencyNS, runBaseIOPS, runCongestionLatency,
		)
		s := splitter.New(splitter.Config{
			Table:   table,
			Sampler: sampler,
			IODepth: cfg.IODepth,
			NumJobs: cfg.NumJobs,
		})

		var cache, backend int
		for i := uint64(0); i < runTicks; i++ {
			if s.ShouldSendToBackend(nil) {
				backend++
			} else {
				cache++
			}
		}

		snap := s.Snapshot()
		fmt.Printf("mode=%s ratio=%d/%d cache=%d backend=%d bw_avg=%d lat_avg_ns=%d\n",
			snap.Mode, snap.Ratio, tunables.SplitScale, cache, backend, snap.ThroughputAvg, snap.LatencyAvg)
	},
}

func init() {
	runCmd.Flags().Uint64Var(&runTicks, "ticks", 5000, "Number of dispatch calls to simulate")
	runCmd.Flags().Uint64Var(&runRampTicks, "ramp-ticks", 50, "Ticks before traffic reaches steady load")
	runCmd.Flags().Uint64Var(&runCongestionAtTick, "congestion-at", 2000, "Tick at which a congestion episode begins")
	runCmd.Flags().Uint64Var(&runRecoverAtTick, "recover-at", 3000, "Tick at which the congestion episode ends")
	runCmd.Flags().Uint64Var(&runBaseBandwidth, "base-bandwidth", 8000, "Steady-state RDMA bandwidth sample")
	runCmd.Flags().Uint64Var(&runBaseLatencyNS, "base-latency-ns", 500_000, "Steady-state RDMA latency sample, in nanoseconds")
	runCmd.Flags().Uint64Var(&runBaseIOPS, "base-iops", 8000, "Steady-state IOPS sample")
	runCmd.Flags().Uint64Var(&runCongestionLatency, "congestion-latency-ns", 1_200_000, "Latency sample during the congestion episode, in nanoseconds")

	rootCmd.AddCommand(runCmd)
}
