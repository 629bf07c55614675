package feed

// Snapshot is one message pushed by the feed. Every key is optional; pointer
// and map fields stay nil when the key is absent from the message.
type Snapshot struct {
	UptimeSeconds *float64 `json:"-"`

	Combined *Combined `json:"combined"`

	Clients   map[string]LegacyClient `json:"clients"`
	LastHeard *[]LegacyLastHeard      `json:"last_heard"`
	Peers     *[]LegacyPeer           `json:"peers"`

	MMDVM *MMDVM `json:"mmdvm"`
	P25   *P25   `json:"p25"`
	YSF   *YSF   `json:"ysf"`

	rejected []string
}

// Combined holds the pre-aggregated multi-protocol lists.
type Combined struct {
	ClientsTalking *[]CombinedClient    `json:"clients_talking"`
	LastHeard      *[]CombinedLastHeard `json:"last_heard"`
	Peers          *[]CombinedPeer      `json:"peers"`
}

type CombinedClient struct {
	Source    Text `json:"source"`
	Callsign  Text `json:"callsign"`
	Module    Text `json:"module"`
	Status    Text `json:"status"`
	StartTime Text `json:"start_time"`
	EndTime   Text `json:"end_time"`
}

type CombinedLastHeard struct {
	Source     Text `json:"source"`
	Callsign   Text `json:"callsign"`
	Protocol   Text `json:"protocol"`
	ModuleOrTG Text `json:"module_or_tg"`
	Timestamp  Text `json:"timestamp"`
}

type CombinedPeer struct {
	Source     Text `json:"source"`
	Callsign   Text `json:"callsign"`
	Module     Text `json:"module"`
	IPOrMaster Text `json:"ip_or_master"`
	Timestamp  Text `json:"timestamp"`
}

// LegacyClient is the M17-only client info, keyed by callsign in Snapshot.Clients.
type LegacyClient struct {
	Module    Text `json:"module"`
	Status    Text `json:"status"`
	StartTime Text `json:"start_time"`
	EndTime   Text `json:"end_time"`
}

type LegacyLastHeard struct {
	Source    Text `json:"source"`
	Callsign  Text `json:"callsign"`
	Protocol  Text `json:"protocol"`
	Module    Text `json:"module"`
	Timestamp Text `json:"timestamp"`
}

type LegacyPeer struct {
	Callsign  Text `json:"callsign"`
	Module    Text `json:"module"`
	IP        Text `json:"ip"`
	Timestamp Text `json:"timestamp"`
}

type MMDVM struct {
	Master  Text     `json:"master"`
	Version Text     `json:"version"`
	LastTX  *MMDVMTX `json:"last_tx"`
}

type MMDVMTX struct {
	Timestamp Text `json:"timestamp"`
	Src       Text `json:"src"`
	Dst       Text `json:"dst"`
	Slot      Text `json:"slot"`
	CC        Text `json:"cc"`
	Metadata  Text `json:"metadata"`
}

type P25 struct {
	LastTX *P25TX `json:"last_tx"`
}

type P25TX struct {
	Timestamp Text `json:"timestamp"`
	At        Text `json:"at"`
	RID       Text `json:"rid"`
	TG        Text `json:"tg"`
}

type YSF struct {
	LastTX    *YSFTX    `json:"last_tx"`
	LastEvent *YSFEvent `json:"last_event"`
}

type YSFTX struct {
	Timestamp Text `json:"timestamp"`
	Callsign  Text `json:"callsign"`
	DGID      Text `json:"dgid"`
	Note      Text `json:"note"`
}

type YSFEvent struct {
	Msg Text `json:"msg"`
}
