package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/worshipkit/stemdeck/deck"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	statusView struct {
		Title    string
		State    string
		Position float64
		Duration float64
		Ready    bool
		Progress float64
		Blocked  bool
		Loop     deck.LoopRegion
		Tracks   []deck.Track
	}

	statusPrinter struct {
		tmpl *template.Template
		last string
	}
)

const statusTemplate = `{{.Title}} [{{.State | upper}}] {{clock .Position}} / {{clock .Duration}}
{{- if .Loop.Enabled}} loop {{clock .Loop.Start}}-{{clock .Loop.End}}{{end}}
{{- if not .Ready}} loading {{.Progress | int}}%{{end}}
{{- if .Blocked}} connection too poor to play{{end}}
{{range $i, $t := .Tracks -}}
{{add1 $i | printf "%2d"}} {{$t.DisplayName | trunc 20 | printf "%-20s"}} {{$t.InstrumentTag | titleCase | default "-" | printf "%-10s"}} {{printf "%3.0f" $t.Volume}}
{{- if $t.Muted}} M{{else}}  {{end}}{{if $t.Soloed}}S{{else}} {{end}} {{meter $t.VULevel}}
{{- if $t.LoadError}} load failed{{else if lt $t.LoadProgress 100.0}} {{$t.LoadProgress | int}}%{{end}}
{{end}}`

const meterWidth = 20

func newStatusPrinter() (*statusPrinter, error) {
	title := cases.Title(language.English)
	funcs := sprig.TxtFuncMap()
	funcs["titleCase"] = title.String
	funcs["clock"] = clock
	funcs["meter"] = meter
	tmpl, err := template.New("status").Funcs(funcs).Parse(statusTemplate)
	if err != nil {
		return nil, fmt.Errorf("could not parse status template: %w", err)
	}
	return &statusPrinter{tmpl: tmpl}, nil
}

// Print writes the status if it differs from the one printed last.
func (p *statusPrinter) Print(w io.Writer, v statusView) error {
	var b strings.Builder
	if err := p.tmpl.Execute(&b, v); err != nil {
		return err
	}
	if b.String() == p.last {
		return nil
	}
	p.last = b.String()
	_, err := io.WriteString(w, p.last)
	return err
}

// snapshot must be called in the engine goroutine.
func snapshot(e *deck.Engine, title string) statusView {
	s := e.Session()
	st := e.Status()
	return statusView{
		Title:    title,
		State:    s.State.String(),
		Position: s.Position,
		Duration: s.Duration,
		Ready:    st.Ready,
		Progress: st.OverallProgress,
		Blocked:  st.Blocked,
		Loop:     e.Loop().Region(),
		Tracks:   e.Tracks(),
	}
}

func clock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func meter(level float64) string {
	n := int(math.Round(min(max(level, 0), 100) * meterWidth / 100))
	return "[" + strings.Repeat("#", n) + strings.Repeat(" ", meterWidth-n) + "]"
}
