package main

import (
	"os"

	"github.com/san-kum/strucsim/internal/config"
	"github.com/san-kum/strucsim/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	profile     string
	dt          float64
	duration    float64
	sampleEvery int
	frameRate   int
	tolerance   float64
	noSave      bool
	jsonOut     bool
	settle      float64
	fromRun     string
	outFile     string
	columns     []string
	column      string
	maxFreq     float64
	sweepSpec   sweep.Sweep
	sweepFile   string
	trials      int
	jitter      float64
	seed        int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "strucsim",
		Short:        "2D structural physics sandbox",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultStoreDir, "run store directory")

	runCmd := &cobra.Command{
		Use:   "run [preset|file.yaml]",
		Short: "simulate a structure and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample", 1, "keep one frame every N steps")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write the run as JSON to stdout")

	jointsCmd := &cobra.Command{
		Use:   "joints [preset|file.yaml]",
		Short: "print joint angle pairs and torque",
		Args:  cobra.ExactArgs(1),
		RunE:  showJoints,
	}
	addSimFlags(jointsCmd)
	jointsCmd.Flags().Float64Var(&settle, "settle", 0, "simulate this many seconds first")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list segment materials",
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list structure presets and run profiles",
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset|file.yaml]",
		Short: "run a structure with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot columns of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", []string{"peak_torque", "slack_count"}, "frame columns to plot")
	plotCmd.Flags().StringVarP(&outFile, "output", "o", "", "write the first column as SVG instead")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "peak_torque", "frame column to analyze")
	analyzeCmd.Flags().Float64Var(&maxFreq, "max-freq", 10, "highest frequency to plot (hz)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [preset|file.yaml]",
		Short: "render a structure to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSVG,
	}
	addSimFlags(svgCmd)
	svgCmd.Flags().Float64Var(&settle, "settle", 0, "simulate this many seconds first")
	svgCmd.Flags().StringVar(&fromRun, "run", "", "render the final structure of a stored run")
	svgCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench [preset...]",
		Short: "run presets concurrently and compare metrics",
		RunE:  benchPresets,
	}
	addSimFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset|file.yaml]",
		Short: "run a structure across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepFile, "file", "", "sweep definition (yaml)")
	sweepCmd.Flags().StringVar(&sweepSpec.Param, "param", "gravity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepSpec.Min, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepSpec.Max, "max", 980, "last value")
	sweepCmd.Flags().IntVar(&sweepSpec.Steps, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepSpec.Metric, "metric", "", "metric to rank values by")
	sweepCmd.Flags().BoolVar(&sweepSpec.Maximize, "maximize", false, "rank by highest metric instead of lowest")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset|file.yaml]",
		Short: "run a structure with randomly displaced nodes",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of runs")
	monteCarloCmd.Flags().Float64Var(&jitter, "jitter", 10, "maximum node displacement per axis")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, jointsCmd, materialsCmd, presetsCmd, liveCmd, listCmd,
		plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, svgCmd, benchCmd, sweepCmd, monteCarloCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&profile, "profile", "", "run profile (see presets)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0.005, "slack tolerance ratio")
}
