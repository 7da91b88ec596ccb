package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// PhoneDirectory resolves the opaque phone identifier the matching core
// sends through into the user id the websocket hub registers connections
// under.
type PhoneDirectory struct {
	db *pgxpool.Pool
}

func NewPhoneDirectory(db *pgxpool.Pool) *PhoneDirectory {
	return &PhoneDirectory{db: db}
}

func (d *PhoneDirectory) ResolveByPhone(ctx context.Context, phone string) (uuid.UUID, error) {
	const op = "PhoneDirectory.ResolveByPhone"
	query := `SELECT id FROM users WHERE attrs->>'phone' = $1;`

	var id uuid.UUID
	if err := TxorDB(ctx, d.db).QueryRow(ctx, query, phone).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, types.ErrUserNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return uuid.Nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return id, nil
}
