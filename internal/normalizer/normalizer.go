package normalizer

import (
	"sort"

	"github.com/dvdash/dashboard/internal/feed"
	"github.com/dvdash/dashboard/internal/model"
)

// Shapes reports which schema each list domain of a snapshot was read from.
type Shapes struct {
	ClientsTalking Shape
	LastHeard      Shape
	Peers          Shape
}

// Describe classifies the list domains of snap without building records.
func Describe(snap *feed.Snapshot) Shapes {
	if snap == nil {
		return Shapes{}
	}
	return Shapes{
		ClientsTalking: classifyClients(snap).shape,
		LastHeard:      classifyLastHeard(snap).shape,
		Peers:          classifyPeers(snap).shape,
	}
}

// Normalize maps a decoded snapshot onto canonical records. Untouched domains
// stay nil in the returned update; touched domains without rows are empty,
// non-nil slices.
func Normalize(snap *feed.Snapshot) model.Update {
	var out model.Update
	if snap == nil {
		return out
	}
	out.ClientsTalking = clientsFrom(classifyClients(snap))
	out.LastHeard = lastHeardFrom(classifyLastHeard(snap))
	out.Peers = peersFrom(classifyPeers(snap))
	out.MMDVM = mmdvmFrom(snap.MMDVM)
	out.P25 = p25From(snap.P25)
	out.YSF = ysfFrom(snap.YSF)
	if snap.UptimeSeconds != nil {
		v := *snap.UptimeSeconds
		out.UptimeSeconds = &v
	}
	return out
}

func clientsFrom(d clientsTalking) []model.ClientTalkingRecord {
	switch d.shape {
	case ShapeCombined:
		items := make([]model.ClientTalkingRecord, 0, len(d.combined))
		for _, c := range d.combined {
			items = append(items, model.ClientTalkingRecord{
				Source:    model.Source(c.Source),
				Callsign:  string(c.Callsign),
				Module:    string(c.Module),
				Status:    string(c.Status),
				StartTime: string(c.StartTime),
				EndTime:   string(c.EndTime),
			})
		}
		return items
	case ShapeLegacy:
		callsigns := make([]string, 0, len(d.legacy))
		for callsign := range d.legacy {
			callsigns = append(callsigns, callsign)
		}
		sort.Strings(callsigns)

		items := make([]model.ClientTalkingRecord, 0, len(d.legacy))
		for _, callsign := range callsigns {
			info := d.legacy[callsign]
			items = append(items, model.ClientTalkingRecord{
				Source:    model.SourceM17,
				Callsign:  feed.Text(callsign).Or(model.Placeholder),
				Module:    info.Module.Or(model.Placeholder),
				Status:    info.Status.Or(model.Placeholder),
				StartTime: info.StartTime.Or(model.Placeholder),
				EndTime:   info.EndTime.Or(model.Placeholder),
			})
		}
		return items
	case ShapeEmpty:
		return []model.ClientTalkingRecord{}
	default:
		return nil
	}
}

func lastHeardFrom(d lastHeard) []model.LastHeardRecord {
	switch d.shape {
	case ShapeCombined:
		items := make([]model.LastHeardRecord, 0, len(d.combined))
		for _, c := range d.combined {
			items = append(items, model.LastHeardRecord{
				Source:     model.Source(c.Source),
				Callsign:   string(c.Callsign),
				Protocol:   string(c.Protocol),
				ModuleOrTG: string(c.ModuleOrTG),
				Timestamp:  string(c.Timestamp),
			})
		}
		return items
	case ShapeLegacy:
		items := make([]model.LastHeardRecord, 0, len(d.legacy))
		for _, l := range d.legacy {
			items = append(items, model.LastHeardRecord{
				Source:     model.SourceM17,
				Callsign:   l.Callsign.Or(model.Placeholder),
				Protocol:   l.Protocol.Or(string(model.SourceM17)),
				ModuleOrTG: l.Module.Or(model.Placeholder),
				Timestamp:  l.Timestamp.Or(model.Placeholder),
			})
		}
		return items
	case ShapeEmpty:
		return []model.LastHeardRecord{}
	default:
		return nil
	}
}

func peersFrom(d peers) []model.PeerRecord {
	switch d.shape {
	case ShapeCombined:
		items := make([]model.PeerRecord, 0, len(d.combined))
		for _, c := range d.combined {
			items = append(items, model.PeerRecord{
				Source:     model.Source(c.Source),
				Callsign:   string(c.Callsign),
				Module:     string(c.Module),
				IPOrMaster: string(c.IPOrMaster),
				Timestamp:  string(c.Timestamp),
			})
		}
		return items
	case ShapeLegacy:
		items := make([]model.PeerRecord, 0, len(d.legacy))
		for _, p := range d.legacy {
			items = append(items, model.PeerRecord{
				Source:     model.SourceM17,
				Callsign:   p.Callsign.Or(model.Placeholder),
				Module:     p.Module.Or(model.Placeholder),
				IPOrMaster: p.IP.Or(model.Placeholder),
				Timestamp:  p.Timestamp.Or(model.Placeholder),
			})
		}
		return items
	case ShapeEmpty:
		return []model.PeerRecord{}
	default:
		return nil
	}
}

func mmdvmFrom(raw *feed.MMDVM) *model.MMDVMStatus {
	if raw == nil {
		return nil
	}
	status := &model.MMDVMStatus{
		Master:  raw.Master.Or(model.Placeholder),
		Version: raw.Version.Or(model.Placeholder),
	}
	tx := raw.LastTX
	if tx == nil {
		tx = &feed.MMDVMTX{}
	}
	status.LastTX = model.MMDVMTransmission{
		Timestamp: tx.Timestamp.Or(model.Placeholder),
		Src:       tx.Src.Or(model.Placeholder),
		Dst:       tx.Dst.Or(model.Placeholder),
		Slot:      tx.Slot.Or(model.Placeholder),
		CC:        tx.CC.Or(model.Placeholder),
		Metadata:  tx.Metadata.Or(model.Placeholder),
	}
	return status
}

func p25From(raw *feed.P25) *model.P25Status {
	if raw == nil {
		return nil
	}
	tx := raw.LastTX
	if tx == nil {
		tx = &feed.P25TX{}
	}
	return &model.P25Status{LastTX: model.P25Transmission{
		Timestamp: tx.Timestamp.Or(model.Placeholder),
		At:        tx.At.Or(model.Placeholder),
		RID:       tx.RID.Or(model.Placeholder),
		TG:        tx.TG.Or(model.Placeholder),
	}}
}

func ysfFrom(raw *feed.YSF) *model.YSFStatus {
	if raw == nil {
		return nil
	}
	tx := raw.LastTX
	if tx == nil {
		tx = &feed.YSFTX{}
	}
	status := &model.YSFStatus{
		LastTX: model.YSFTransmission{
			Timestamp: tx.Timestamp.Or(model.Placeholder),
			Callsign:  tx.Callsign.Or(model.Placeholder),
			DGID:      tx.DGID.Or(model.Placeholder),
			Note:      tx.Note.Or(model.Placeholder),
		},
		LastEvent: model.Placeholder,
	}
	if raw.LastEvent != nil {
		status.LastEvent = raw.LastEvent.Msg.Or(model.Placeholder)
	}
	return status
}
