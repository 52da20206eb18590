package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/strucsim/internal/sim"
	"github.com/san-kum/strucsim/internal/slack"
)

// FrameHeader names the CSV columns for a run layout.
func FrameHeader(result *sim.Result) []string {
	header := []string{"time", "step", "peak_torque", "peak_node", "slack_count"}
	for _, id := range result.Nodes {
		header = append(header, fmt.Sprintf("n%d_x", id), fmt.Sprintf("n%d_y", id))
	}
	for _, id := range result.Segments {
		header = append(header,
			fmt.Sprintf("s%d_len", id),
			fmt.Sprintf("s%d_strain", id),
			fmt.Sprintf("s%d_stress", id),
			fmt.Sprintf("s%d_slack", id),
		)
	}
	return header
}

func WriteFramesCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(FrameHeader(result)); err != nil {
		return err
	}

	for i := range result.Frames {
		f := &result.Frames[i]
		row := []string{
			formatFloat(f.Time),
			strconv.Itoa(f.Step),
			formatFloat(f.PeakTorque),
			strconv.Itoa(int(f.PeakNode)),
			strconv.Itoa(f.SlackCount()),
		}
		for _, p := range f.Positions {
			row = append(row, formatFloat(p[0]), formatFloat(p[1]))
		}
		for j := range f.Lengths {
			row = append(row,
				formatFloat(f.Lengths[j]),
				formatFloat(f.Strain[j]),
				formatFloat(f.Stress[j]),
				boolDigit(f.Slack[j]),
			)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type ExportSegment struct {
	ID      int       `json:"id"`
	Lengths []float64 `json:"lengths"`
	Stress  []float64 `json:"stress"`
	Slack   []bool    `json:"slack"`
}

type ExportData struct {
	Structure  string             `json:"structure"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Positions  [][][2]float64     `json:"positions"`
	Segments   []ExportSegment    `json:"segments"`
	PeakTorque []float64          `json:"peak_torque"`
	LastStats  slack.Stats        `json:"last_stats"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewExportData(name string, cfg sim.Config, result *sim.Result) ExportData {
	data := ExportData{
		Structure:  name,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      result.StepsTaken,
		Times:      result.Times(),
		Positions:  make([][][2]float64, len(result.Frames)),
		Segments:   make([]ExportSegment, len(result.Segments)),
		PeakTorque: result.Series(func(f *sim.Frame) float64 { return f.PeakTorque }),
		Metrics:    result.Metrics,
	}

	for i, id := range result.Segments {
		data.Segments[i] = ExportSegment{
			ID:      int(id),
			Lengths: make([]float64, len(result.Frames)),
			Stress:  make([]float64, len(result.Frames)),
			Slack:   make([]bool, len(result.Frames)),
		}
	}

	for i := range result.Frames {
		f := &result.Frames[i]
		data.Positions[i] = make([][2]float64, len(f.Positions))
		for j, p := range f.Positions {
			data.Positions[i][j] = [2]float64{p[0], p[1]}
		}
		for j := range data.Segments {
			data.Segments[j].Lengths[i] = f.Lengths[j]
			data.Segments[j].Stress[i] = f.Stress[j]
			data.Segments[j].Slack[i] = f.Slack[j]
		}
	}

	if final := result.Final(); final != nil {
		data.LastStats = final.Stats
	}
	return data
}

func ExportJSON(w io.Writer, name string, cfg sim.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(name, cfg, result))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
