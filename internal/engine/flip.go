package engine

// RequiredCopies returns how many rank-0 copies are consumed building one
// copy at maxRank: rank r costs r+1 copies on top of the previous rank, so
// the total is the triangular number (max+1)(max+2)/2. A rank-5 arcane
// takes 21 copies.
func RequiredCopies(maxRank int) int {
	return (maxRank + 1) * (maxRank + 2) / 2
}

// FlipMargin compares building a max-rank copy out of rank-0 copies against
// buying it outright:
//
//	RequiredCopies(maxRank)*rank0Price - maxPrice
//
// The margin is only defined when both endpoint prices are known and
// positive; otherwise it is 0.
func FlipMargin(maxRank int, rank0Price, maxPrice float64) float64 {
	if rank0Price <= 0 || maxPrice <= 0 {
		return 0
	}
	return float64(RequiredCopies(maxRank))*rank0Price - maxPrice
}
