package grade

// Average computes the coefficient-weighted mean of `grades`:
// sum(score * coefficient) / sum(coefficient).
// It is 0 when the coefficients do not add up to a positive weight (e.g. no grades).
func Average(grades []Grade) float64 {
	var (
		points float64
		coefs  int
	)
	for _, g := range grades {
		points += g.Score * float64(g.Subject.Coefficient)
		coefs += g.Subject.Coefficient
	}
	if coefs <= 0 {
		return 0
	}
	return points / float64(coefs)
}
