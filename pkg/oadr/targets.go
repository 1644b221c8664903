package oadr

// TargetType names one of the target identifier kinds.
type TargetType string

const (
	TargetGroup    TargetType = "group_id"
	TargetResource TargetType = "resource_id"
	TargetVEN      TargetType = "ven_id"
	TargetParty    TargetType = "party_id"
)

var targetOrder = []TargetType{TargetGroup, TargetResource, TargetVEN, TargetParty}

// Target selects the recipients of an event. A target may set more than one
// identifier.
type Target struct {
	GroupID    string
	ResourceID string
	VenID      string
	PartyID    string
}

func (t Target) field(tt TargetType) string {
	switch tt {
	case TargetGroup:
		return t.GroupID
	case TargetResource:
		return t.ResourceID
	case TargetVEN:
		return t.VenID
	case TargetParty:
		return t.PartyID
	}
	return ""
}

func targetOf(tt TargetType, id string) Target {
	switch tt {
	case TargetGroup:
		return Target{GroupID: id}
	case TargetResource:
		return Target{ResourceID: id}
	case TargetVEN:
		return Target{VenID: id}
	case TargetParty:
		return Target{PartyID: id}
	}
	return Target{}
}

// GroupTargetsByType collects identifiers per type, in input order.
// Types with no identifiers are omitted.
func GroupTargetsByType(targets []Target) map[TargetType][]string {
	out := map[TargetType][]string{}
	for _, t := range targets {
		for _, tt := range targetOrder {
			if id := t.field(tt); id != "" {
				out[tt] = append(out[tt], id)
			}
		}
	}
	return out
}

// UngroupTargetsByType is the inverse of GroupTargetsByType: one Target per
// identifier, ordered by type (group, resource, ven, party) and then by the
// order within each list. Unknown types are skipped.
func UngroupTargetsByType(grouped map[TargetType][]string) []Target {
	var out []Target
	for _, tt := range targetOrder {
		for _, id := range grouped[tt] {
			out = append(out, targetOf(tt, id))
		}
	}
	return out
}
