// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fusion

import "github.com/pdiddy/citation-engine/pkg/types"

// guessRequiredFields must all be present before a guess is attempted.
// Thin records produce noisy votes.
var guessRequiredFields = []string{
	types.FieldEditors,
	types.FieldArticleTitle,
	types.FieldDate,
}

// typeIndicators maps fields whose presence suggests a publication type.
// Each present field casts one vote.
var typeIndicators = []struct {
	field   string
	pubType types.PublicationType
}{
	{types.FieldVolume, types.PublicationJournal},
	{types.FieldIssue, types.PublicationJournal},
	{types.FieldSeason, types.PublicationJournal},
	{types.FieldISSNPrint, types.PublicationJournal},
	{types.FieldISSNElectronic, types.PublicationJournal},
	{types.FieldPMID, types.PublicationJournal},
	{types.FieldEdition, types.PublicationBook},
	{types.FieldChapterTitle, types.PublicationBook},
	{types.FieldISBN, types.PublicationBook},
	{types.FieldPublisherName, types.PublicationBook},
	{types.FieldPublisherLoc, types.PublicationBook},
	{types.FieldConfDate, types.PublicationConfProc},
	{types.FieldConfLoc, types.PublicationConfProc},
	{types.FieldConfName, types.PublicationConfProc},
	{types.FieldConfSponsor, types.PublicationConfProc},
}

// votingOrder fixes the order in which vote counts are compared. Ties are
// detected by count, so this order never decides a winner.
var votingOrder = []types.PublicationType{
	types.PublicationJournal,
	types.PublicationBook,
	types.PublicationConfProc,
}

// GuessPublicationType infers the publication type of d from the fields it
// carries. It reports false (no guess) when d already has a publication
// type, when a required field is missing, when no indicator is present, or
// when two types tie for the most votes.
func GuessPublicationType(d *types.Description) (types.PublicationType, bool) {
	if d.Has(types.FieldPublicationType) {
		return types.PublicationUnknown, false
	}
	for _, name := range guessRequiredFields {
		if !d.Has(name) {
			return types.PublicationUnknown, false
		}
	}

	votes := make(map[types.PublicationType]int, len(votingOrder))
	for _, ind := range typeIndicators {
		if d.Has(ind.field) {
			votes[ind.pubType]++
		}
	}

	best, bestVotes, tied := types.PublicationUnknown, 0, false
	for _, pt := range votingOrder {
		switch n := votes[pt]; {
		case n > bestVotes:
			best, bestVotes, tied = pt, n, false
		case n == bestVotes && n > 0:
			tied = true
		}
	}
	if bestVotes == 0 || tied {
		return types.PublicationUnknown, false
	}
	return best, true
}
