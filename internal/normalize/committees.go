package normalize

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// CommitteeRecord is one flattened committee or subcommittee row.
// Subcommittee ids compose the parent id with the local id so that
// re-parsing the same manifest always yields the same id scheme.
type CommitteeRecord struct {
	ID       string
	Name     string
	Chamber  *string
	Type     *string
	URL      *string
	ParentID *string
}

// MembershipRecord is one politician's seat in the membership manifest.
type MembershipRecord struct {
	CommitteeID string
	BioguideID  string
	Rank        *int
	Role        string
	Party       *string
}

// committeeNode mirrors one entry of the committee manifest. The manifest's
// "type" key holds the chamber (house/senate/joint) and its "thomas_id" is
// the stable external id.
type committeeNode struct {
	ThomasID      string          `yaml:"thomas_id"`
	Name          string          `yaml:"name"`
	Type          string          `yaml:"type"`
	Chamber       string          `yaml:"chamber"`
	URL           string          `yaml:"url"`
	Subcommittees []committeeNode `yaml:"subcommittees"`
}

// FlattenCommittees parses a committee manifest and flattens each
// committee's subcommittees into independent rows carrying a parent
// reference. Output order follows the manifest, so two parses of the same
// document produce identical rows.
func FlattenCommittees(data []byte) ([]CommitteeRecord, error) {
	var nodes []committeeNode
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parsing committee manifest: %w", err)
	}

	var records []CommitteeRecord
	for _, node := range nodes {
		if node.ThomasID == "" {
			continue
		}
		parent := CommitteeRecord{
			ID:      node.ThomasID,
			Name:    node.Name,
			Chamber: optional(node.Type),
			Type:    optional(node.Chamber),
			URL:     optional(node.URL),
		}
		records = append(records, parent)

		for _, sub := range node.Subcommittees {
			if sub.ThomasID == "" {
				continue
			}
			parentID := node.ThomasID
			records = append(records, CommitteeRecord{
				ID:       node.ThomasID + sub.ThomasID,
				Name:     sub.Name,
				Chamber:  optional(node.Type),
				Type:     optional(node.Chamber),
				URL:      optional(sub.URL),
				ParentID: &parentID,
			})
		}
	}
	return records, nil
}

// membershipEntry mirrors one member of the membership manifest.
type membershipEntry struct {
	Bioguide string `yaml:"bioguide"`
	Rank     *int   `yaml:"rank"`
	Title    string `yaml:"title"`
	Party    string `yaml:"party"`
}

// ParseMemberships parses the membership manifest, a map from committee id
// to member list. Records are ordered by committee id so repeated parses
// are deterministic. Members without a bioguide id are dropped.
func ParseMemberships(data []byte) ([]MembershipRecord, error) {
	var byCommittee map[string][]membershipEntry
	if err := yaml.Unmarshal(data, &byCommittee); err != nil {
		return nil, fmt.Errorf("parsing membership manifest: %w", err)
	}

	committeeIDs := make([]string, 0, len(byCommittee))
	for id := range byCommittee {
		committeeIDs = append(committeeIDs, id)
	}
	sort.Strings(committeeIDs)

	var records []MembershipRecord
	for _, committeeID := range committeeIDs {
		for _, member := range byCommittee[committeeID] {
			if member.Bioguide == "" {
				continue
			}
			role := member.Title
			if role == "" {
				role = "Member"
			}
			records = append(records, MembershipRecord{
				CommitteeID: committeeID,
				BioguideID:  member.Bioguide,
				Rank:        member.Rank,
				Role:        role,
				Party:       optional(member.Party),
			})
		}
	}
	return records, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
