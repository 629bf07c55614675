package model

import "time"

// TableName identifies one of the rendered table views.
type TableName string

const (
	TableClientsTalking TableName = "clients-talking"
	TableLastHeard      TableName = "last-heard"
	TablePeers          TableName = "peers"
	TableMMDVMStatus    TableName = "mmdvm-status"
	TableP25Status      TableName = "p25-status"
	TableYSFStatus      TableName = "ysf-status"
)

// Cell is one rendered table cell. Badge carries a protocol badge class
// (m17, dmr, p25, ysf) when the cell shows a known source.
type Cell struct {
	Text  string `json:"text"`
	Badge string `json:"badge,omitempty"`
}

// Row is one rendered row. Placeholder rows hold a single cell spanning
// Colspan columns.
type Row struct {
	Cells       []Cell `json:"cells"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Colspan     int    `json:"colspan,omitempty"`
}

// TableState is the stored row set of one table.
type TableState struct {
	Name      TableName `json:"name"`
	Rows      []Row     `json:"rows"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
