package grid

import "sort"

// LessByCenterY orders candidates top-to-bottom by vertical center.
// Named (rather than inlined) so the tie-break semantics of row assembly
// stay auditable and testable in isolation.
func LessByCenterY(a, b Candidate) bool {
	return a.Center().Y < b.Center().Y
}

// LessByCenterX orders candidates left-to-right by horizontal center,
// which assigns option indexes within a row.
func LessByCenterX(a, b Candidate) bool {
	return a.Center().X < b.Center().X
}

// Sequence arranges qualified candidates into a row-major grid of question
// rows. Candidates are sorted top-to-bottom, partitioned into consecutive
// chunks of numOptions, and each chunk is sorted left-to-right so that
// chunk position i corresponds to option letter 'A'+i. A trailing partial
// chunk is dropped, and the chunk sequence is truncated to numQuestions.
// Question numbers are assigned by position in the returned slice (row 0 is
// question 1), not by any position recorded in the image.
func Sequence(cands []Candidate, numQuestions, numOptions int) [][]Candidate {
	if numQuestions <= 0 || numOptions <= 0 {
		return nil
	}

	sorted := append([]Candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool { return LessByCenterY(sorted[i], sorted[j]) })

	numRows := len(sorted) / numOptions
	if numRows > numQuestions {
		numRows = numQuestions
	}

	rows := make([][]Candidate, 0, numRows)
	for r := 0; r < numRows; r++ {
		row := append([]Candidate(nil), sorted[r*numOptions:(r+1)*numOptions]...)
		sort.SliceStable(row, func(i, j int) bool { return LessByCenterX(row[i], row[j]) })
		rows = append(rows, row)
	}
	return rows
}
