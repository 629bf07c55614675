package view

import (
	"errors"

	"github.com/dvdash/dashboard/internal/model"
)

var ErrUnknownTable = errors.New("unknown table")

// WaitingText fills every table until its first update arrives.
const WaitingText = "Waiting for data…"

// Definition describes one named table target.
type Definition struct {
	Name      model.TableName `json:"name"`
	Title     string          `json:"title"`
	Headers   []string        `json:"headers"`
	EmptyText string          `json:"-"`
}

// Columns is the header width, used as the placeholder colspan.
func (d Definition) Columns() int {
	return len(d.Headers)
}

var definitions = []Definition{
	{
		Name:      model.TableClientsTalking,
		Title:     "Clients Talking",
		Headers:   []string{"#", "Source", "Callsign", "Details", "Status", "Start", "End"},
		EmptyText: "No clients talking",
	},
	{
		Name:      model.TableLastHeard,
		Title:     "Last Heard",
		Headers:   []string{"#", "Source", "Callsign", "Protocol", "Target", "Time"},
		EmptyText: "No stations heard",
	},
	{
		Name:      model.TablePeers,
		Title:     "M17 Peers",
		Headers:   []string{"#", "Callsign", "Module", "IP", "Time"},
		EmptyText: "No peers linked",
	},
	{
		Name:      model.TableMMDVMStatus,
		Title:     "DMR (MMDVM_Bridge)",
		Headers:   []string{"Master", "Version", "Last TX", "From", "To", "Slot", "CC", "Meta"},
		EmptyText: "No DMR activity",
	},
	{
		Name:      model.TableP25Status,
		Title:     "P25",
		Headers:   []string{"Time", "From", "RID", "TG"},
		EmptyText: "No P25 activity",
	},
	{
		Name:      model.TableYSFStatus,
		Title:     "YSF",
		Headers:   []string{"Time", "Callsign", "DG-ID", "Note", "Event"},
		EmptyText: "No YSF activity",
	},
}

// Definitions returns the six table definitions in page order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Names returns the table names in page order.
func Names() []model.TableName {
	names := make([]model.TableName, 0, len(definitions))
	for _, d := range definitions {
		names = append(names, d.Name)
	}
	return names
}

func Lookup(name model.TableName) (Definition, error) {
	for _, d := range definitions {
		if d.Name == name {
			return d, nil
		}
	}
	return Definition{}, ErrUnknownTable
}

func placeholderRow(text string, columns int) model.Row {
	return model.Row{
		Cells:       []model.Cell{{Text: text}},
		Placeholder: true,
		Colspan:     columns,
	}
}
