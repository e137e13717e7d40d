package ui

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/closeboard/internal/engine"
)

// GraphRenderer draws a sequenced board as one row per dependency level,
// each task followed by arrows to the tasks that depend on it.
//
//	Level 0: [Bank rec] → [Accruals]
//	                    → [Payroll]
//	Level 1: [Accruals]
type GraphRenderer struct {
	// StatusFunc returns the status used to color a task. If nil, tasks
	// are drawn without status color.
	StatusFunc func(id string) engine.Status
}

// Render produces the level graph. The input order within a level is kept.
func (r *GraphRenderer) Render(seq []engine.Sequenced) string {
	if len(seq) == 0 {
		return ""
	}

	titles := make(map[string]string, len(seq))
	for _, s := range seq {
		titles[s.Task.ID] = s.Task.Title
	}
	children := make(map[string][]string)
	for _, s := range seq {
		for _, dep := range s.Task.DependsOn {
			if _, ok := titles[dep]; ok {
				children[dep] = append(children[dep], s.Task.ID)
			}
		}
	}

	var sb strings.Builder
	level := -1
	for _, s := range seq {
		label := fmt.Sprintf("Level %d: ", s.Level)
		if s.Level != level {
			if level >= 0 {
				sb.WriteByte('\n')
			}
			level = s.Level
			sb.WriteString(styleDim.Render(label))
		} else {
			sb.WriteString(strings.Repeat(" ", len(label)))
		}

		node := r.node(s.Task.ID, titles[s.Task.ID])
		sb.WriteString(node)
		for i, child := range children[s.Task.ID] {
			if i > 0 {
				sb.WriteByte('\n')
				sb.WriteString(strings.Repeat(" ", len(label)+len([]rune(nodeText(s.Task.ID, titles[s.Task.ID])))))
			}
			sb.WriteString(" → ")
			sb.WriteString(r.node(child, titles[child]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *GraphRenderer) node(id, title string) string {
	text := nodeText(id, title)
	if r.StatusFunc == nil {
		return text
	}
	style, ok := statusStyles[r.StatusFunc(id)]
	if !ok {
		return text
	}
	return style.Render(text)
}

func nodeText(id, title string) string {
	if title == "" {
		title = id
	}
	return "[" + title + "]"
}
