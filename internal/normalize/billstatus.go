package normalize

import (
	"encoding/xml"
	"strings"
)

// BillStatus is the canonical form of one per-bill status document.
// Sponsor, cosponsor and summary sections are each independently optional;
// a bill without any of them is still valid.
type BillStatus struct {
	OfficialNumber  string
	BillType        string
	Congress        int
	IntroducedDate  *string
	SponsorBioguide *string
	Cosponsors      []Cosponsor
	Summary         *string
}

// Cosponsor is one entry of a bill's cosponsor section.
type Cosponsor struct {
	BioguideID      string
	SponsorshipDate *string
	IsOriginal      bool
}

// billStatusDoc mirrors the relevant subset of a billstatus XML document.
type billStatusDoc struct {
	Bill struct {
		Congress       int    `xml:"congress"`
		Type           string `xml:"type"`
		Number         string `xml:"number"`
		IntroducedDate string `xml:"introducedDate"`
		Sponsors       struct {
			Items []struct {
				BioguideID string `xml:"bioguideId"`
			} `xml:"item"`
		} `xml:"sponsors"`
		Cosponsors struct {
			Items []struct {
				BioguideID          string `xml:"bioguideId"`
				SponsorshipDate     string `xml:"sponsorshipDate"`
				IsOriginalCosponsor string `xml:"isOriginalCosponsor"`
			} `xml:"item"`
		} `xml:"cosponsors"`
		Summaries struct {
			Items []struct {
				Text string `xml:"cdata>text"`
			} `xml:"summary"`
		} `xml:"summaries"`
	} `xml:"bill"`
}

// ParseBillStatus extracts a canonical bill status from a billstatus XML
// document. Congress, type and number are mandatory; everything else is
// optional. Returns nil on invalid input.
func ParseBillStatus(data []byte) *BillStatus {
	var doc billStatusDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	b := doc.Bill
	if b.Congress == 0 || b.Type == "" || b.Number == "" {
		return nil
	}

	status := &BillStatus{
		OfficialNumber: b.Type + b.Number,
		BillType:       b.Type,
		Congress:       b.Congress,
	}
	if b.IntroducedDate != "" {
		d := b.IntroducedDate
		status.IntroducedDate = &d
	}
	if len(b.Sponsors.Items) > 0 && b.Sponsors.Items[0].BioguideID != "" {
		id := b.Sponsors.Items[0].BioguideID
		status.SponsorBioguide = &id
	}
	for _, item := range b.Cosponsors.Items {
		if item.BioguideID == "" {
			continue
		}
		c := Cosponsor{
			BioguideID: item.BioguideID,
			IsOriginal: strings.EqualFold(item.IsOriginalCosponsor, "true"),
		}
		if item.SponsorshipDate != "" {
			d := item.SponsorshipDate
			c.SponsorshipDate = &d
		}
		status.Cosponsors = append(status.Cosponsors, c)
	}
	if len(b.Summaries.Items) > 0 {
		// The last summary entry is the most recent version.
		text := strings.TrimSpace(b.Summaries.Items[len(b.Summaries.Items)-1].Text)
		if text != "" {
			status.Summary = &text
		}
	}
	return status
}
