package sync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/legisync/internal/config"
	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/normalize"
	"github.com/TobiSchelling/legisync/internal/resolve"
)

// CommitteesJob ingests the committee and membership manifests. The
// source only publishes the current state, so every run re-parses both
// documents whole; history before the first ingestion is structurally
// unavailable, which is why this job reports Incremental() == false.
type CommitteesJob struct {
	db            *database.DB
	fetcher       Fetcher
	log           *logrus.Logger
	manifestURL   string
	membershipURL string
	congress      int
}

func NewCommitteesJob(db *database.DB, fetcher Fetcher, cfg *config.Config, logger *logrus.Logger) *CommitteesJob {
	return &CommitteesJob{
		db:            db,
		fetcher:       fetcher,
		log:           logger,
		manifestURL:   cfg.Sources.Committees.ManifestURL,
		membershipURL: cfg.Sources.Committees.MembershipURL,
		congress:      cfg.Sources.Legislative.Congress,
	}
}

func (j *CommitteesJob) Entity() string    { return EntityCommittees }
func (j *CommitteesJob) Incremental() bool { return false }

func (j *CommitteesJob) Run(ctx context.Context) *Result {
	res := newResult(EntityCommittees)

	manifest, err := j.fetcher.Get(ctx, j.manifestURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("fetching committee manifest: %w", err)
		return res
	}
	committees, err := normalize.FlattenCommittees(manifest)
	if err != nil {
		res.Err = err
		return res
	}

	for _, committee := range committees {
		inserted, err := j.db.UpsertCommittee(&database.Committee{
			ID:       committee.ID,
			Name:     committee.Name,
			Chamber:  committee.Chamber,
			Type:     committee.Type,
			URL:      committee.URL,
			ParentID: committee.ParentID,
		})
		if err != nil {
			res.Err = fmt.Errorf("upserting committee %s: %w", committee.ID, err)
			return res
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	j.log.WithField("committees", len(committees)).Info("committee manifest merged")

	membership, err := j.fetcher.Get(ctx, j.membershipURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("fetching membership manifest: %w", err)
		return res
	}
	members, err := normalize.ParseMemberships(membership)
	if err != nil {
		res.Err = err
		return res
	}

	resolver, err := resolve.NewResolver(j.db)
	if err != nil {
		res.Err = err
		return res
	}

	for _, member := range members {
		politicianID, ok := resolver.Politician(member.BioguideID)
		if !ok {
			res.skip("unknown_politician")
			continue
		}
		exists, err := j.db.CommitteeExists(member.CommitteeID)
		if err != nil {
			res.Err = err
			return res
		}
		if !exists {
			res.skip("unknown_committee")
			continue
		}

		inserted, err := j.db.UpsertAssignment(&database.Assignment{
			PoliticianID: politicianID,
			CommitteeID:  member.CommitteeID,
			Congress:     j.congress,
			Rank:         member.Rank,
			Role:         &member.Role,
			Party:        member.Party,
		})
		if err != nil {
			res.Err = fmt.Errorf("upserting assignment %s/%s: %w", member.BioguideID, member.CommitteeID, err)
			return res
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	return res
}
