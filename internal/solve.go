package internal

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var ErrRankDeficient = errors.New("least squares system has rank zero")

// SolveLeastSquares returns X minimizing ||A*X - B|| column by column; when A
// is rank-deficient the minimum-norm solution is returned. Singular values
// below rcond times the largest one are treated as zero. The effective rank
// is returned alongside.
func SolveLeastSquares(a mat.Matrix, b *mat.Dense, rcond float64) (*mat.Dense, int, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, 0, errors.New("svd factorization failed")
	}

	rank := svd.Rank(rcond)
	if rank == 0 {
		return nil, 0, ErrRankDeficient
	}

	var x mat.Dense
	svd.SolveTo(&x, b, rank)

	return &x, rank, nil
}
