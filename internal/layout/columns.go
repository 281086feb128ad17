package layout

import (
	"math"
	"unicode/utf8"

	"github.com/Ekats/mycelica-layout/internal/models"
)

// ColumnConfig holds the sizing constants for conversation columns. The
// defaults were tuned against real Signal imports; the config file can
// override them.
type ColumnConfig struct {
	Width        float64 `yaml:"width"`          // fixed message rectangle width
	Gap          float64 `yaml:"gap"`            // horizontal space between columns
	CharsPerLine float64 `yaml:"chars_per_line"` // empirical wrap estimate
	LineHeight   float64 `yaml:"line_height"`
	AuthorHeight float64 `yaml:"author_height"` // author label above the text
	Padding      float64 `yaml:"padding"`
	MaxHeight    float64 `yaml:"max_height"` // cap for very long messages
	MessageGap   float64 `yaml:"message_gap"`
}

// DefaultColumnConfig returns the standard conversation sizing.
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		Width:        260,
		Gap:          40,
		CharsPerLine: 38,
		LineHeight:   16,
		AuthorHeight: 18,
		Padding:      16,
		MaxHeight:    220,
		MessageGap:   12,
	}
}

// normalize fills zero fields with defaults so a partially specified config
// file still produces a sane layout.
func (c ColumnConfig) normalize() ColumnConfig {
	d := DefaultColumnConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Gap <= 0 {
		c.Gap = d.Gap
	}
	if c.CharsPerLine <= 0 {
		c.CharsPerLine = d.CharsPerLine
	}
	if c.LineHeight <= 0 {
		c.LineHeight = d.LineHeight
	}
	if c.AuthorHeight <= 0 {
		c.AuthorHeight = d.AuthorHeight
	}
	if c.Padding <= 0 {
		c.Padding = d.Padding
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = d.MaxHeight
	}
	if c.MessageGap <= 0 {
		c.MessageGap = d.MessageGap
	}
	return c
}

// messageHeight estimates the rendered height of a word-wrapped message from
// its character count.
func (c ColumnConfig) messageHeight(text string) float64 {
	lines := math.Ceil(float64(utf8.RuneCountInString(text)) / c.CharsPerLine)
	if lines < 1 {
		lines = 1
	}
	h := lines*c.LineHeight + c.AuthorHeight + c.Padding
	if h > c.MaxHeight {
		h = c.MaxHeight
	}
	return h
}

// LayoutColumns lays each cluster out as a vertical column of variable-height
// message rectangles, columns left-to-right in the order given (sequencer
// order), the whole group centered in the viewport. Positions are rectangle
// centers with W/H set. Merged bursts size by their concatenated body.
func LayoutColumns(clusters []Cluster, index map[string]*models.DisplayNode, mergedBodies map[string]string, vp models.Viewport, cfg ColumnConfig) map[string]models.Position {
	cfg = cfg.normalize()
	positions := make(map[string]models.Position)
	if len(clusters) == 0 {
		return positions
	}

	cx, cy := vp.Center()
	totalWidth := float64(len(clusters))*cfg.Width + float64(len(clusters)-1)*cfg.Gap
	startX := cx - totalWidth/2

	for col, cluster := range clusters {
		x := startX + float64(col)*(cfg.Width+cfg.Gap) + cfg.Width/2

		heights := make([]float64, len(cluster.Members))
		columnHeight := 0.0
		for i, id := range cluster.Members {
			text := ""
			if merged, ok := mergedBodies[id]; ok {
				text = merged
			} else if n, ok := index[id]; ok {
				text = n.Body()
			}
			heights[i] = cfg.messageHeight(text)
			columnHeight += heights[i]
		}
		if len(cluster.Members) > 1 {
			columnHeight += float64(len(cluster.Members)-1) * cfg.MessageGap
		}

		y := cy - columnHeight/2
		for i, id := range cluster.Members {
			positions[id] = models.Position{
				X: x,
				Y: y + heights[i]/2,
				W: cfg.Width,
				H: heights[i],
			}
			y += heights[i] + cfg.MessageGap
		}
	}
	return positions
}
