package address

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAddressNotFound = errors.New("address not found")

type Address struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Receiver string `json:"receiver"`
	Detail   string `json:"detail"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`
}

type Repo struct{ DB *pgxpool.Pool }

// BelongsTo reports whether the address exists and is owned by the user.
func (r *Repo) BelongsTo(ctx context.Context, addressID, userID int64) (bool, error) {
	var one int
	err := r.DB.QueryRow(ctx,
		`SELECT 1 FROM addresses WHERE id=$1 AND user_id=$2`, addressID, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]Address, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, receiver, detail, zip, phone
		FROM addresses WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Receiver, &a.Detail, &a.Zip, &a.Phone); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
