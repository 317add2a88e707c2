package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/ragcompare/internal/orchestration"
)

// rateHistory is the number of samples kept for each sparkline.
const rateHistory = 24

// channelRate tracks how fast one channel reveals words.
type channelRate struct {
	words      int
	speed      float64 // words per second, smoothed
	lastWords  int
	lastUpdate time.Time
	history    *RingBuffer
}

// MetricsModel displays the reveal speed of both channels.
type MetricsModel struct {
	rates [orchestration.NumChannels]*channelRate
	width int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	m := MetricsModel{}
	for i := range m.rates {
		m.rates[i] = &channelRate{history: NewRingBuffer(rateHistory)}
	}
	return m
}

// SetWidth updates the available width.
func (m *MetricsModel) SetWidth(w int) {
	m.width = w
}

// Reset clears the figures of both channels.
func (m *MetricsModel) Reset() {
	for _, r := range m.rates {
		r.words, r.speed, r.lastWords = 0, 0, 0
		r.lastUpdate = time.Time{}
		r.history.Reset()
	}
}

// UpdateWords records that ch now shows words words at now.
func (m *MetricsModel) UpdateWords(ch orchestration.ChannelID, words int, now time.Time) {
	r := m.rates[ch]
	r.words = words
	if r.lastUpdate.IsZero() || words < r.lastWords {
		r.lastWords = words
		r.lastUpdate = now
		return
	}
	dt := now.Sub(r.lastUpdate).Seconds()
	if dt < 0.05 {
		return
	}
	instant := float64(words-r.lastWords) / dt
	if r.speed > 0 {
		r.speed = 0.7*r.speed + 0.3*instant
	} else {
		r.speed = instant
	}
	r.history.Push(r.speed)
	r.lastWords = words
	r.lastUpdate = now
}

// Speed returns the smoothed words per second of ch.
func (m MetricsModel) Speed(ch orchestration.ChannelID) float64 {
	return m.rates[ch].speed
}

// View renders one line per channel.
func (m MetricsModel) View() string {
	rows := make([]string, 0, orchestration.NumChannels)
	for _, ch := range orchestration.AllChannels {
		r := m.rates[ch]
		cell := fmt.Sprintf(" %s %s %s %s",
			channelStyles[ch].Render(fmt.Sprintf("%-16s", ch.String())),
			metricValueStyle.Render(fmt.Sprintf("%4d", r.words)),
			metricLabelStyle.Render("words"),
			metricValueStyle.Render(fmt.Sprintf("%5.1f w/s", r.speed)),
		)
		spark := RenderSparkline(r.history.Slice())
		if room := m.width - lipgloss.Width(cell) - 2; room > 0 && spark != "" {
			runes := []rune(spark)
			if len(runes) > room {
				runes = runes[len(runes)-room:]
			}
			cell += "  " + channelStyles[ch].Render(string(runes))
		}
		rows = append(rows, cell)
	}
	return strings.Join(rows, "\n")
}
