package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/strucsim/internal/analysis"
	"github.com/san-kum/strucsim/internal/config"
	"github.com/san-kum/strucsim/internal/export"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/metrics"
	"github.com/san-kum/strucsim/internal/physics"
	"github.com/san-kum/strucsim/internal/sim"
	"github.com/san-kum/strucsim/internal/slack"
	"github.com/san-kum/strucsim/internal/storage"
	"github.com/san-kum/strucsim/internal/structure"
	"github.com/san-kum/strucsim/internal/sweep"
	"github.com/san-kum/strucsim/internal/viz"
	"github.com/spf13/cobra"
)

// resolveConfig layers defaults, the profile, the config file and finally
// explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if profile != "" {
		cfg = config.GetProfile(profile)
		if cfg == nil {
			return nil, fmt.Errorf("unknown profile: %s (available: %v)", profile, config.ListProfiles())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("tolerance") {
		cfg.Slack.ToleranceRatio = tolerance
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("data") {
		cfg.StoreDir = dataDir
	}
	return cfg, nil
}

// loadStructure resolves a preset name first, then a YAML path.
func loadStructure(arg string) (*structure.Structure, string, error) {
	if _, ok := structure.Presets[arg]; ok {
		s, err := structure.Preset(arg)
		return s, arg, err
	}
	s, err := structure.Load(arg)
	if err != nil {
		return nil, "", fmt.Errorf("%s is neither a preset (%v) nor a readable structure file: %w", arg, structure.ListPresets(), err)
	}
	return s, arg, nil
}

// loadDocument is loadStructure for callers that rebuild the structure
// once per run.
func loadDocument(arg string) (structure.Document, error) {
	if doc, ok := structure.Presets[arg]; ok {
		return doc, nil
	}
	s, _, err := loadStructure(arg)
	if err != nil {
		return structure.Document{}, err
	}
	return structure.Encode(s), nil
}

func newSimulator(cfg *config.Config) *sim.Simulator {
	s := sim.New(physics.NewManager(cfg.PhysicsConfig()), joint.NewEngine(cfg.Joint))
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	return s
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, name, err := loadStructure(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	simCfg := cfg.SimConfig()
	start := time.Now()
	result, err := newSimulator(cfg).Run(ctx, s, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if jsonOut {
		return storage.ExportJSON(os.Stdout, name, simCfg, result)
	}

	fmt.Printf("structure: %s\n", name)
	fmt.Printf("steps: %d (%.2fs simulated in %v)\n\n", result.StepsTaken, simCfg.Duration, elapsed.Round(time.Millisecond))
	if err := printMetrics(os.Stdout, result.Metrics); err != nil {
		return err
	}

	if noSave {
		return nil
	}
	st := storage.New(cfg.StoreDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, simCfg, s, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func printMetrics(out io.Writer, values map[string]float64) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, m := range metrics.Standard() {
		if v, ok := values[m.Name()]; ok {
			fmt.Fprintf(w, "%s\t%.4f\n", m.Name(), v)
		}
	}
	return w.Flush()
}

// settleStructure runs physics for the given time and returns the last
// slack states and joints before stopping. Node positions stay in s.
func settleStructure(cfg *config.Config, s *structure.Structure, seconds float64) (map[structure.SegmentID]slack.State, map[structure.NodeID]joint.Joint, error) {
	engine := joint.NewEngine(cfg.Joint)
	if seconds <= 0 {
		return nil, engine.Compute(s, nil, nil), nil
	}

	m := physics.NewManager(cfg.PhysicsConfig())
	if err := m.Start(s); err != nil {
		return nil, nil, err
	}
	defer m.Stop(s)

	steps := int(math.Round(seconds / cfg.Dt))
	for i := 0; i < steps; i++ {
		m.Advance(cfg.Dt)
	}
	return m.SegmentStates(), m.Joints(s, engine), nil
}

func showJoints(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, name, err := loadStructure(args[0])
	if err != nil {
		return err
	}

	_, joints, err := settleStructure(cfg, s, settle)
	if err != nil {
		return err
	}

	fmt.Printf("joints: %s (after %.2fs)\n\n", name, settle)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tPAIR\tANGLE\tREST\tTORQUE\tNORM\tLOAD")
	for _, id := range joint.SortedNodes(joints) {
		for _, p := range joints[id].Pairs {
			fmt.Fprintf(w, "%d\t%d/%d\t%.1f°\t%.1f°\t%.4f\t%.3f\t%.3f\n",
				id, p.SegmentA, p.SegmentB,
				p.Angle*180/math.Pi, p.RestAngle*180/math.Pi,
				p.Torque, p.NormalizedTorque, p.LoadPathStress)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if node, peak := joint.Peak(joints); node != 0 {
		fmt.Printf("\npeak: node %d at %.3f\n", node, peak)
	}
	return nil
}

func listMaterials(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTIFFNESS\tDAMPING\tMODE\tCONTRACTION")
	for _, m := range material.All() {
		mode := "both"
		switch {
		case m.TensionOnly:
			mode = "tension"
		case m.CompressionOnly:
			mode = "compression"
		}
		contraction := "-"
		if m.Contraction.Active() {
			contraction = fmt.Sprintf("%.0f%% / %.1fs", m.Contraction.Ratio*100, m.Contraction.Period)
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%.1f\t%s\t%s\n", m.ID, m.Name, m.Stiffness, m.Damping, mode, contraction)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("structures:")
	for _, name := range structure.ListPresets() {
		fmt.Printf("  - %s: %s\n", name, structure.Presets[name].Name)
	}
	fmt.Println("\nprofiles:")
	for _, name := range config.ListProfiles() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, name, err := loadStructure(args[0])
	if err != nil {
		return err
	}

	size := physics.NewCanvasSize(cfg.Canvas.Width, cfg.Canvas.Height)
	pc := cfg.PhysicsConfig()
	pc.Canvas = size.Size
	m, err := viz.NewModel(name, s, physics.NewManager(pc), joint.NewEngine(cfg.Joint), size, cfg.Dt, cfg.FPS)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTRUCTURE\tTIME\tDURATION\tDT\tSEGMENTS\tPEAK TORQUE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%.3f\n",
			run.ID,
			run.Structure,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Segments,
			run.Metrics["peak_torque"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if outFile != "" {
		times, _ := table.Column("time")
		data, ok := table.Column(columns[0])
		if !ok {
			return fmt.Errorf("unknown column %q", columns[0])
		}
		return os.WriteFile(outFile, []byte(export.SeriesToSVG(times, data, 800, 300, "#00ff88")), 0644)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("structure: %s\n", meta.Structure)
	fmt.Printf("samples: %d\n\n", len(table.Rows))

	for _, name := range columns {
		data, ok := table.Column(name)
		if !ok {
			fmt.Printf("no column %q\n\n", name)
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	data, ok := table.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	times, _ := table.Column("time")

	spectrum, err := analysis.NewSpectrum(data, analysis.SampleInterval(times))
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("structure: %s\n\n", meta.Structure)

	band := spectrum.Band(maxFreq)
	if len(band.Power) > 1 {
		graph := asciigraph.Plot(band.Power,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s, 0-%.1f hz)", column, maxFreq)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq, _ := spectrum.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	table, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.Write(table.Header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	table, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Metadata *storage.RunMetadata `json:"metadata"`
		Columns  []string             `json:"columns"`
		Rows     [][]float64          `json:"rows"`
	}{meta, table.Header, table.Rows})
}

func renderSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var s *structure.Structure
	switch {
	case fromRun != "":
		s, err = storage.New(dataDir).LoadStructure(fromRun)
	case len(args) == 1:
		s, _, err = loadStructure(args[0])
	default:
		return fmt.Errorf("need a structure argument or --run")
	}
	if err != nil {
		return err
	}

	states, joints, err := settleStructure(cfg, s, settle)
	if err != nil {
		return err
	}

	pc := cfg.PhysicsConfig()
	snap := export.Snapshot{
		Structure:  s,
		States:     states,
		Joints:     joints,
		Width:      cfg.Canvas.Width,
		Height:     cfg.Canvas.Height,
		GroundY:    cfg.Canvas.Height - pc.GroundHeight,
		NodeRadius: pc.NodeRadius,
	}

	out := io.Writer(os.Stdout)
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.StructureSVG(out, snap)
}

func benchPresets(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = structure.ListPresets()
	}
	jobs := make([]sim.Job, 0, len(names))
	for _, name := range names {
		s, label, err := loadStructure(name)
		if err != nil {
			return err
		}
		jobs = append(jobs, sim.Job{Name: label, Structure: s})
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.NewBatch(func() *sim.Simulator { return newSimulator(cfg) }).Run(ctx, jobs, cfg.SimConfig())
	if err != nil {
		return err
	}

	fmt.Printf("%d structures, %.2fs each, %v wall\n\n", len(jobs), cfg.Duration, time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "STRUCTURE\tSTEPS")
	standard := metrics.Standard()
	for _, m := range standard {
		fmt.Fprintf(w, "\t%s", m.Name())
	}
	fmt.Fprintln(w)
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%d", jobs[i].Name, r.StepsTaken)
		for _, m := range standard {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[m.Name()])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sw := &sweepSpec
	if sweepFile != "" {
		if sw, err = sweep.Load(sweepFile); err != nil {
			return err
		}
	}
	if len(args) > 0 {
		sw.Structure = args[0]
	}
	if sw.Structure == "" {
		sw.Structure = cfg.Structure
	}

	doc, err := loadDocument(sw.Structure)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	points, err := sw.Run(ctx, cfg, doc, newSimulator)
	if err != nil {
		return err
	}

	fmt.Printf("sweep: %s over %s (%d values)\n\n", sw.Structure, sw.Param, len(points))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, strings.ToUpper(sw.Param))
	standard := metrics.Standard()
	for _, m := range standard {
		fmt.Fprintf(w, "\t%s", m.Name())
	}
	fmt.Fprintln(w)
	for _, p := range points {
		fmt.Fprintf(w, "%.4g", p.Value)
		for _, m := range standard {
			fmt.Fprintf(w, "\t%.4f", p.Metrics[m.Name()])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sw.Metric != "" {
		best, ok := sweep.Best(points, sw.Metric, sw.Maximize)
		if !ok {
			return fmt.Errorf("no run reported metric %q", sw.Metric)
		}
		fmt.Printf("\nbest %s: %.4g (%s=%.4f)\n", sw.Param, best.Value, sw.Metric, best.Metrics[sw.Metric])
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mc := &sweep.MonteCarlo{Trials: trials, Perturbation: jitter, Seed: seed}
	results := mc.Run(ctx, cfg, doc, newSimulator)

	stableCount, unstableCount := sweep.Stats(results)
	fmt.Printf("monte carlo: %s, %d trials, jitter %.1f\n", args[0], len(results), jitter)
	fmt.Printf("stable: %d  unstable: %d\n", stableCount, unstableCount)

	torques := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("trial %d: %v\n", r.ID, r.Err)
			continue
		}
		torques = append(torques, r.Metrics["peak_torque"])
	}
	if len(torques) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(torques,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("peak torque per trial"),
		))
	}
	return nil
}
