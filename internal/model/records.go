package model

// ClientTalkingRecord is one currently reporting client. Source keeps the raw
// feed label so that rollup labels (ASL) still display as sent.
type ClientTalkingRecord struct {
	Source    Source `json:"source"`
	Callsign  string `json:"callsign"`
	Module    string `json:"module"`
	Status    string `json:"status"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// LastHeardRecord is one entry of the last-heard list. Duplicates are expected.
type LastHeardRecord struct {
	Source     Source `json:"source"`
	Callsign   string `json:"callsign"`
	Protocol   string `json:"protocol"`
	ModuleOrTG string `json:"module_or_tg"`
	Timestamp  string `json:"timestamp"`
}

// PeerRecord is one linked peer or master.
type PeerRecord struct {
	Source     Source `json:"source"`
	Callsign   string `json:"callsign"`
	Module     string `json:"module"`
	IPOrMaster string `json:"ip_or_master"`
	Timestamp  string `json:"timestamp"`
}

// MMDVMTransmission is the most recent DMR transmission seen by MMDVM_Bridge.
type MMDVMTransmission struct {
	Timestamp string `json:"timestamp"`
	Src       string `json:"src"`
	Dst       string `json:"dst"`
	Slot      string `json:"slot"`
	CC        string `json:"cc"`
	Metadata  string `json:"metadata"`
}

// MMDVMStatus is the DMR protocol status snapshot.
type MMDVMStatus struct {
	Master  string            `json:"master"`
	Version string            `json:"version"`
	LastTX  MMDVMTransmission `json:"last_tx"`
}

// P25Transmission is the most recent P25 reflector transmission.
type P25Transmission struct {
	Timestamp string `json:"timestamp"`
	At        string `json:"at"`
	RID       string `json:"rid"`
	TG        string `json:"tg"`
}

// P25Status is the P25 protocol status snapshot.
type P25Status struct {
	LastTX P25Transmission `json:"last_tx"`
}

// YSFTransmission is the most recent YSF transmission.
type YSFTransmission struct {
	Timestamp string `json:"timestamp"`
	Callsign  string `json:"callsign"`
	DGID      string `json:"dgid"`
	Note      string `json:"note"`
}

// YSFStatus is the YSF protocol status snapshot.
type YSFStatus struct {
	LastTX    YSFTransmission `json:"last_tx"`
	LastEvent string          `json:"last_event"`
}

// Update is the canonical result of normalizing one snapshot. A nil list or
// status pointer means the message did not touch that domain; a non-nil empty
// list means the domain is touched and has no rows.
type Update struct {
	ClientsTalking []ClientTalkingRecord
	LastHeard      []LastHeardRecord
	Peers          []PeerRecord

	MMDVM *MMDVMStatus
	P25   *P25Status
	YSF   *YSFStatus

	UptimeSeconds *float64
}

// Empty reports whether the update touches nothing at all.
func (u Update) Empty() bool {
	return u.ClientsTalking == nil && u.LastHeard == nil && u.Peers == nil &&
		u.MMDVM == nil && u.P25 == nil && u.YSF == nil && u.UptimeSeconds == nil
}
