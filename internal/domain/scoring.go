package domain

import (
	"math"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier field is better)
	ScorePositionBonus = 10.0

	// Short usernames are preferred on ties
	ScoreLengthBonus = 5.0

	// Whole query equals the username or email
	ScoreExactIdentityBonus = 200.0
)

// profileField is one searchable attribute with its weight. Fields are listed
// in position order, username first.
type profileField struct {
	value  string
	weight float64
}

func searchableFields(p *Profile) []profileField {
	return []profileField{
		{value: p.Username, weight: 1.0},
		{value: p.FirstName, weight: 0.8},
		{value: p.LastName, weight: 0.8},
		{value: emailLocalPart(p.Email), weight: 0.6},
	}
}

// ScoredProfile is a search candidate with its match score.
type ScoredProfile struct {
	Profile Profile
	Score   float64
}

// ScoreProfile scores a profile against a query. Every fragment must match at
// least one field, otherwise the score is zero.
func ScoreProfile(query SearchQuery, p *Profile) float64 {
	if query.IsEmpty() || p == nil {
		return 0.0
	}

	if query.Raw == strings.ToLower(p.Username) || query.Raw == strings.ToLower(p.Email) {
		return ScoreExactMatch + ScoreExactIdentityBonus
	}

	fields := searchableFields(p)
	var total float64
	for _, frag := range query.Fragments {
		best := 0.0
		for i, f := range fields {
			if s := scoreFragment(frag, f.value, i) * f.weight; s > best {
				best = s
			}
		}
		if best == 0.0 {
			return 0.0
		}
		total += best
	}

	if len(p.Username) < 10 {
		total += ScoreLengthBonus
	}
	return total
}

// scoreFragment scores a single query fragment against a field value.
func scoreFragment(queryFrag, value string, position int) float64 {
	queryFrag = normalizeFragment(queryFrag)
	value = normalizeFragment(value)

	if queryFrag == "" || value == "" {
		return 0.0
	}

	if queryFrag == value {
		return ScoreExactMatch + calculatePositionBonus(position)
	}

	if strings.HasPrefix(value, queryFrag) {
		return ScorePrefixMatch + calculatePositionBonus(position)
	}

	if index := strings.Index(value, queryFrag); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(value)))
		return ScoreSubstringMatch + substringBonus
	}

	similarity := calculateSimilarity(queryFrag, value)
	if similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// calculatePositionBonus gives bonus for earlier fields
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity is the ratio of query characters present in s2.
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches := 0
	for _, c := range s1 {
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(len([]rune(s1)))
}

// RankProfiles scores candidates, drops non-matches and returns at most limit
// profiles, best first. Equal scores keep ascending ID order. limit <= 0 means
// no limit.
func RankProfiles(query SearchQuery, candidates []Profile, limit int) []ScoredProfile {
	scored := make([]ScoredProfile, 0, len(candidates))
	for i := range candidates {
		s := ScoreProfile(query, &candidates[i])
		if s == 0.0 {
			continue
		}
		scored = append(scored, ScoredProfile{Profile: candidates[i], Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Profile.ID < scored[j].Profile.ID
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
