package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"bellweaver-backend/internal/icsexport"
	"bellweaver-backend/internal/scrapers/compass"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJson  = "json"
	formatYaml  = "yaml"
	formatIcs   = "ics"
)

var outputFormats = []string{formatTable, formatJson, formatYaml, formatIcs}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func formatWhen(event compass.Event, loc *time.Location) string {
	start, err := event.Start(loc)
	if err != nil {
		return "?"
	}
	if event.AllDay() {
		return start.Format("Mon 02 Jan") + " (all day)"
	}
	out := start.Format("Mon 02 Jan 15:04")
	finish, err := event.Finish(loc)
	if err == nil && finish.After(start) {
		out += finish.Format(" - 15:04")
	}
	return out
}

func writeEvents(w io.Writer, format string, events []compass.Event, loc *time.Location) error {
	switch format {
	case formatTable:
		t := newTable(w)
		t.AppendHeader(table.Row{"When", "Title", "Subject", "Location", "Staff"})
		for _, event := range events {
			t.AppendRow(table.Row{
				formatWhen(event, loc),
				event.Title(),
				event.Subject(),
				strings.Join(event.Locations(), ", "),
				strings.Join(event.Managers(), ", "),
			})
		}
		t.AppendFooter(table.Row{fmt.Sprintf("%d events", len(events))})
		t.Render()
		return nil
	case formatJson:
		return writeJson(w, events)
	case formatYaml:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		err := encoder.Encode(events)
		if err != nil {
			return err
		}
		return encoder.Close()
	case formatIcs:
		_, err := icsexport.Write(w, events, loc)
		return err
	default:
		return fmt.Errorf("unknown output format %q, expected one of %s", format, strings.Join(outputFormats, ", "))
	}
}

func writeJson(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
