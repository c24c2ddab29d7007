package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netcas/splitter/splitter"
	"github.com/netcas/splitter/splitter/telemetry"
	"github.com/netcas/splitter/splitter/tunables"
)

var monitorRefresh time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live TUI showing the splitter's mode, ratio, and moving averages",
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
			Sampler: telemetry.NewSimulatedSampler(50, 2000, 3000, 8000, 500_000, 8000, 1_200_000),
			IODepth: cfg.IODepth,
			NumJobs: cfg.NumJobs,
		})

		p := tea.NewProgram(newMonitorModel(s, monitorRefresh))
		if _, err := p.Run(); err != nil {
			logrus.Fatalf("monitor: %v", err)
		}
	},
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorRefresh, "refresh", 200*time.Millisecond, "UI refresh interval")
	rootCmd.AddCommand(monitorCmd)
}

// monitorTickMsg drives both the splitter's dispatch loop and the redraw;
// each tick issues one ShouldSendToBackend call so the monitor also exercises
// the control loop it is displaying.
type monitorTickMsg time.Time

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("243"))
	modeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

type monitorModel struct {
	s        *splitter.Splitter
	refresh  time.Duration
	requests uint64
	cache    uint64
	backend  uint64
}

func newMonitorModel(s *splitter.Splitter, refresh time.Duration) monitorModel {
	return monitorModel{s: s, refresh: refresh}
}

func (m monitorModel) Init() tea.Cmd {
	return monitorTick(m.refresh)
}

func monitorTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return monitorTickMsg(t) })
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case monitorTickMsg:
		if m.s.ShouldSendToBackend(nil) {
			m.backend++
		} else {
			m.cache++
		}
		m.requests++
		return m, monitorTick(m.refresh)
	}
	return m, nil
}

func (m monitorModel) View() string {
	snap := m.s.Snapshot()
	return fmt.Sprintf(
		"%s %s\n%s %d / %d\n%s bw_avg=%d lat_avg_ns=%d\n%s bw_drop=%d‰ lat_incr=%d‰\n%s requests=%d cache=%d backend=%d\n\n%s\n",
		labelStyle.Render("mode:"), modeStyle.Render(snap.Mode),
		labelStyle.Render("ratio:"), snap.Ratio, tunables.SplitScale,
		labelStyle.Render("telemetry:"), snap.ThroughputAvg, snap.LatencyAvg,
		labelStyle.Render("derived:"), snap.BWDropPermil, snap.LatIncreasePermil,
		labelStyle.Render("dispatch:"), m.requests, m.cache, m.backend,
		lipgloss.NewStyle().Faint(true).Render("press q to quit"),
	)
}
