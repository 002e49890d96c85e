// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/statescope/statescope/wire"
)

// Theme defines the tail renderer's color palette. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	Timestamp lipgloss.Color
	Value     lipgloss.Color
	Aux       lipgloss.Color

	// Tag path colors, keyed by record category.
	CatSystem  lipgloss.Color
	CatMachine lipgloss.Color
	CatCPU     lipgloss.Color
	CatMemory  lipgloss.Color
	CatDisplay lipgloss.Color
	CatOther   lipgloss.Color
}

// CategoryColor returns the tag color for a record category. Unknown
// categories get CatOther.
func (t Theme) CategoryColor(cat string) lipgloss.Color {
	switch cat {
	case "sys":
		return t.CatSystem
	case "mach":
		return t.CatMachine
	case "cpu":
		return t.CatCPU
	case "mem":
		return t.CatMemory
	case "display":
		return t.CatDisplay
	default:
		return t.CatOther
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	Timestamp: lipgloss.Color("245"), // gray
	Value:     lipgloss.Color("252"), // near-white
	Aux:       lipgloss.Color("245"), // gray

	CatSystem:  lipgloss.Color("220"), // amber: hello, goodbye, operator events
	CatMachine: lipgloss.Color("114"), // green
	CatCPU:     lipgloss.Color("75"),  // blue
	CatMemory:  lipgloss.Color("141"), // light purple
	CatDisplay: lipgloss.Color("208"), // orange
	CatOther:   lipgloss.Color("245"), // gray
}

// Column widths for aligned tail output. Tag paths longer than the
// column push the value right rather than truncating.
const (
	timestampColumnWidth = 12
	tagColumnWidth       = 24
)

// renderer formats record lines for terminal display. With color
// disabled it emits plain aligned text.
type renderer struct {
	color     bool
	theme     Theme
	timestamp lipgloss.Style
	value     lipgloss.Style
	aux       lipgloss.Style
	tags      map[string]lipgloss.Style
}

func newRenderer(color bool) *renderer {
	r := &renderer{color: color, theme: DefaultTheme}
	if color {
		r.timestamp = lipgloss.NewStyle().Foreground(r.theme.Timestamp)
		r.value = lipgloss.NewStyle().Foreground(r.theme.Value)
		r.aux = lipgloss.NewStyle().Foreground(r.theme.Aux)
		r.tags = make(map[string]lipgloss.Style)
	}
	return r
}

func (r *renderer) tagStyle(cat string) lipgloss.Style {
	style, ok := r.tags[cat]
	if !ok {
		style = lipgloss.NewStyle().Foreground(r.theme.CategoryColor(cat)).Bold(cat == "sys")
		r.tags[cat] = style
	}
	return style
}

// line renders one record. Lines that do not parse as records pass
// through untouched, so interleaved noise stays visible.
func (r *renderer) line(raw string) string {
	parsed, err := wire.ParseRecord(raw)
	if err != nil {
		return raw
	}

	timestamp := strings.Repeat(" ", timestampColumnWidth)
	if parsed.HasTS {
		timestamp = fmt.Sprintf("%-*s", timestampColumnWidth,
			time.UnixMilli(parsed.TS).Local().Format("15:04:05.000"))
	}
	tags := fmt.Sprintf("%-*s", tagColumnWidth, parsed.Cat+"/"+parsed.Sec+"/"+parsed.Fld)

	var auxPart string
	if len(parsed.Aux) > 0 {
		keys := make([]string, 0, len(parsed.Aux))
		for key := range parsed.Aux {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, key := range keys {
			pairs = append(pairs, key+"="+parsed.Aux[key])
		}
		auxPart = "  [" + strings.Join(pairs, " ") + "]"
	}

	if !r.color {
		return timestamp + " " + tags + " " + parsed.Val + auxPart
	}

	var b strings.Builder
	b.WriteString(r.timestamp.Render(timestamp))
	b.WriteString(" ")
	b.WriteString(r.tagStyle(parsed.Cat).Render(tags))
	b.WriteString(" ")
	b.WriteString(r.value.Render(parsed.Val))
	if auxPart != "" {
		b.WriteString(r.aux.Render(auxPart))
	}
	return b.String()
}
