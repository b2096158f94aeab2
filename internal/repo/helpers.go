package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const defaultLimit = 100

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// page applies offset/limit to n items and returns the slice bounds.
func page(n int, offset, limit *int) (int, int) {
	start := 0
	if offset != nil {
		start = clamp(*offset, 0, n)
	}

	end := n
	if limit != nil && *limit > 0 {
		end = clamp(start+*limit, start, n)
	}
	return start, end
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isOutOfRange reports an INTEGER overflow, such as a restock past the
// column's maximum.
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}
