package match

import "github.com/rs/zerolog/log"

// canonicalize merges album groups that resolved to the same release. A
// manually approved group wins over an auto-approved one, which wins over
// one awaiting review; within a rank the group backing the most files wins,
// ties to the first encountered. Every other member takes over its match. After this runs a release id has
// exactly one corrected name in results.
func canonicalize(results []AlbumResult) []CanonicalGroup {
	var order []string
	byRelease := make(map[string][]int)

	for i := range results {
		r := &results[i]
		if !r.Usable() || r.ProviderID == "" {
			continue
		}
		if _, ok := byRelease[r.ProviderID]; !ok {
			order = append(order, r.ProviderID)
		}
		byRelease[r.ProviderID] = append(byRelease[r.ProviderID], i)
	}

	var groups []CanonicalGroup
	for _, id := range order {
		members := byRelease[id]
		if len(members) < 2 {
			continue
		}

		canon := members[0]
		for _, i := range members[1:] {
			if outranks(&results[i], &results[canon]) {
				canon = i
			}
		}

		src := &results[canon]
		src.CanonicalKey = src.Key
		group := CanonicalGroup{ReleaseID: id, CanonicalKey: src.Key}
		for _, i := range members {
			group.Members = append(group.Members, results[i].Key)
			if i == canon {
				continue
			}
			dst := &results[i]
			dst.Corrected = src.Corrected
			dst.Candidate = src.Candidate
			dst.ProviderID = src.ProviderID
			dst.ReleaseDate = src.ReleaseDate
			dst.Status = src.Status
			dst.Category = src.Category
			dst.Confidence = src.Confidence
			dst.Method = src.Method
			dst.CanonicalKey = src.Key
		}

		log.Debug().Str("release_id", id).Str("canonical", src.Key).
			Strs("members", group.Members).Msg("canonicalized album group")
		groups = append(groups, group)
	}
	return groups
}

func outranks(a, b *AlbumResult) bool {
	if ra, rb := acceptRank(&a.Result), acceptRank(&b.Result); ra != rb {
		return ra > rb
	}
	return a.FileCount > b.FileCount
}

func acceptRank(r *Result) int {
	switch {
	case r.Status == StatusApproved:
		return 2
	case r.Accepted():
		return 1
	default:
		return 0
	}
}
