package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// DriverMatchingRepo is the matching core's DriverQueryRepository port: a
// read model joined from drivers, coordinates and the driver's geo-fence
// zone assignments, distinct from DriverRepo's CRUD-and-status surface.
type DriverMatchingRepo struct {
	db *pgxpool.Pool
}

func NewDriverMatchingRepo(db *pgxpool.Pool) *DriverMatchingRepo {
	return &DriverMatchingRepo{db: db}
}

const driverMatchingSelect = `
	SELECT
		d.id, d.name, d.rating,
		u.attrs->>'phone',
		(d.status = $%d) AS is_available,
		(d.status != $%d) AS is_online,
		d.is_verified,
		d.is_active,
		COALESCE(array_agg(z.zone) FILTER (WHERE z.zone IS NOT NULL), '{}') AS zones,
		c.latitude, c.longitude,
		d.last_seen_at,
		d.vehicle_attrs
	FROM drivers d
	JOIN users u ON u.id = d.id
	LEFT JOIN coordinates c ON c.entity_id = d.id AND c.entity_type = 'driver'
	LEFT JOIN driver_zones z ON z.driver_id = d.id
`

// EligibleDrivers returns every candidate driver not in excludeIDs. Final
// eligibility (isAvailable/isOnline/isVerified/isActive) and zone/distance
// filtering are applied by the Selector; this query only narrows by
// exclusion and groups the joined rows.
func (r *DriverMatchingRepo) EligibleDrivers(ctx context.Context, excludeIDs []uuid.UUID) ([]models.MatchingDriver, error) {
	const op = "DriverMatchingRepo.EligibleDrivers"
	query := fmt.Sprintf(driverMatchingSelect, 1, 3) + `
		WHERE ($2::uuid[] IS NULL OR NOT d.id = ANY($2))
		GROUP BY d.id, u.attrs, c.latitude, c.longitude;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, types.StatusDriverAvailable, excludeIDs, types.StatusDriverOffline)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var out []models.MatchingDriver
	for rows.Next() {
		d, err := scanMatchingDriver(rows)
		if err != nil {
			ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DriverMatchingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MatchingDriver, error) {
	const op = "DriverMatchingRepo.GetByID"
	query := fmt.Sprintf(driverMatchingSelect, 1, 3) + `
		WHERE d.id = $2
		GROUP BY d.id, u.attrs, c.latitude, c.longitude;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, types.StatusDriverAvailable, id, types.StatusDriverOffline)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		return nil, types.ErrMatchingDriverNotFound
	}
	d, err := scanMatchingDriver(rows)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
	}
	return &d, nil
}

func scanMatchingDriver(rows pgx.Rows) (models.MatchingDriver, error) {
	var d models.MatchingDriver
	var vehicleAttrs []byte
	err := rows.Scan(
		&d.ID, &d.Name, &d.Rating,
		&d.Phone,
		&d.IsAvailable, &d.IsOnline, &d.IsVerified, &d.IsActive,
		&d.Zones,
		&d.Lat, &d.Lon,
		&d.LastSeenAt,
		&vehicleAttrs,
	)
	if err != nil {
		return d, err
	}
	if len(vehicleAttrs) > 0 {
		if err := json.Unmarshal(vehicleAttrs, &d.Vehicle); err != nil {
			return d, fmt.Errorf("unmarshal vehicle_attrs: %w", err)
		}
	}
	return d, nil
}
