package metrics

import "github.com/san-kum/strucsim/internal/sim"

// SlackFraction averages, over all frames, the share of segments that are
// slack.
type SlackFraction struct {
	name    string
	total   float64
	samples int
}

func NewSlackFraction() *SlackFraction {
	return &SlackFraction{name: "slack_fraction"}
}

func (s *SlackFraction) Name() string { return s.name }

func (s *SlackFraction) Observe(f *sim.Frame) {
	s.samples++
	if len(f.Slack) == 0 {
		return
	}
	s.total += float64(f.SlackCount()) / float64(len(f.Slack))
}

func (s *SlackFraction) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.total / float64(s.samples)
}

func (s *SlackFraction) Reset() {
	s.total = 0
	s.samples = 0
}
