package view

import (
	"strconv"
	"strings"

	"github.com/dvdash/dashboard/internal/model"
)

func clientsRows(records []model.ClientTalkingRecord) []model.Row {
	rows := make([]model.Row, 0, len(records))
	for i, r := range records {
		rows = append(rows, model.Row{Cells: []model.Cell{
			text(strconv.Itoa(i + 1)),
			sourceCell(r.Source),
			text(r.Callsign),
			text(r.Module),
			text(r.Status),
			text(r.StartTime),
			text(r.EndTime),
		}})
	}
	return rows
}

func lastHeardRows(records []model.LastHeardRecord) []model.Row {
	rows := make([]model.Row, 0, len(records))
	for i, r := range records {
		rows = append(rows, model.Row{Cells: []model.Cell{
			text(strconv.Itoa(i + 1)),
			sourceCell(r.Source),
			text(r.Callsign),
			text(r.Protocol),
			text(r.ModuleOrTG),
			text(r.Timestamp),
		}})
	}
	return rows
}

func peerRows(records []model.PeerRecord) []model.Row {
	rows := make([]model.Row, 0, len(records))
	for i, r := range records {
		rows = append(rows, model.Row{Cells: []model.Cell{
			text(strconv.Itoa(i + 1)),
			text(r.Callsign),
			text(r.Module),
			text(r.IPOrMaster),
			text(r.Timestamp),
		}})
	}
	return rows
}

func mmdvmRows(s *model.MMDVMStatus) []model.Row {
	tx := s.LastTX
	return []model.Row{{Cells: []model.Cell{
		text(s.Master),
		text(s.Version),
		text(tx.Timestamp),
		text(tx.Src),
		text(tx.Dst),
		text(tx.Slot),
		text(tx.CC),
		text(tx.Metadata),
	}}}
}

func p25Rows(s *model.P25Status) []model.Row {
	tx := s.LastTX
	return []model.Row{{Cells: []model.Cell{
		text(tx.Timestamp),
		text(tx.At),
		text(tx.RID),
		text(tx.TG),
	}}}
}

func ysfRows(s *model.YSFStatus) []model.Row {
	tx := s.LastTX
	return []model.Row{{Cells: []model.Cell{
		text(tx.Timestamp),
		text(tx.Callsign),
		text(tx.DGID),
		text(tx.Note),
		text(s.LastEvent),
	}}}
}

func text(v string) model.Cell {
	if strings.TrimSpace(v) == "" {
		return model.Cell{Text: model.Placeholder}
	}
	return model.Cell{Text: v}
}

// sourceCell shows known protocols with their badge and anything else as sent.
func sourceCell(src model.Source) model.Cell {
	known := model.ParseSource(string(src))
	if known == model.SourceUnknown {
		return text(string(src))
	}
	return model.Cell{Text: string(known), Badge: strings.ToLower(string(known))}
}
