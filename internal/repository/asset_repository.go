package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AssetFilter narrows asset lists and searches.
type AssetFilter struct {
	Type         *domain.AssetType
	Status       *domain.AssetStatus
	AssignedToID *string
	// SearchTerm matches name, serial number and notes.
	SearchTerm *string
	Limit      int
}

// AssetRepository persists assets and their links to tickets.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)

	// LinkTicket fails with a unique violation when the link already exists.
	LinkTicket(ctx context.Context, ticketID, assetID string) error
	UnlinkTicket(ctx context.Context, ticketID, assetID string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Asset, error)
	ListTicketIDs(ctx context.Context, assetID string) ([]string, error)
}

type assetRepository struct {
	db Querier
}

// NewAssetRepository returns a Postgres-backed implementation.
func NewAssetRepository(db Querier) AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `
        a.id, a.name, a.asset_type, a.serial_number, a.purchase_date, a.warranty_expiry,
        a.notes, a.status, a.assigned_to_id, a.created_at, a.updated_at`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (name, asset_type, serial_number, purchase_date, warranty_expiry, notes, status,
            assigned_to_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
        RETURNING id, updated_at`
	return r.db.QueryRow(ctx, query,
		asset.Name,
		string(asset.Type),
		asset.SerialNumber,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Notes,
		string(asset.Status),
		asset.AssignedToID,
		asset.CreatedAt,
	).Scan(&asset.ID, &asset.UpdatedAt)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET name=$1, asset_type=$2, serial_number=$3, purchase_date=$4, warranty_expiry=$5,
            notes=$6, status=$7, assigned_to_id=$8, updated_at=$9
        WHERE id=$10`
	return expectOne(r.db.Exec(ctx, query,
		asset.Name,
		string(asset.Type),
		asset.SerialNumber,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Notes,
		string(asset.Status),
		asset.AssignedToID,
		asset.UpdatedAt,
		asset.ID,
	))
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `DELETE FROM assets WHERE id=$1`, id))
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return scanAsset(r.db.QueryRow(ctx, `SELECT`+assetColumns+` FROM assets a WHERE a.id=$1`, id))
}

func (r *assetRepository) List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error) {
	if filter.AssignedToID != nil {
		if err := checkIDs(*filter.AssignedToID); err != nil {
			return nil, nil
		}
	}
	where, args := buildAssetWhere(filter)
	query := `SELECT` + assetColumns + ` FROM assets a WHERE ` + where + ` ORDER BY a.name`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

func (r *assetRepository) LinkTicket(ctx context.Context, ticketID, assetID string) error {
	if err := checkIDs(ticketID, assetID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `INSERT INTO ticket_assets (ticket_id, asset_id) VALUES ($1,$2)`, ticketID, assetID)
	return err
}

func (r *assetRepository) UnlinkTicket(ctx context.Context, ticketID, assetID string) error {
	if err := checkIDs(ticketID, assetID); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `DELETE FROM ticket_assets WHERE ticket_id=$1 AND asset_id=$2`, ticketID, assetID))
}

func (r *assetRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Asset, error) {
	if err := checkIDs(ticketID); err != nil {
		return nil, nil
	}
	query := `SELECT` + assetColumns + `
        FROM assets a JOIN ticket_assets ta ON ta.asset_id = a.id
        WHERE ta.ticket_id=$1 ORDER BY a.name`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

func (r *assetRepository) ListTicketIDs(ctx context.Context, assetID string) ([]string, error) {
	if err := checkIDs(assetID); err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT ticket_id FROM ticket_assets WHERE asset_id=$1`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func buildAssetWhere(filter AssetFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		clauses = append(clauses, fmt.Sprintf("a.asset_type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("a.status=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("a.assigned_to_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(a.name) LIKE %[1]s OR LOWER(a.serial_number) LIKE %[1]s OR LOWER(a.notes) LIKE %[1]s)", p))
	}
	return strings.Join(clauses, " AND "), args
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	var typ, status string
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&typ,
		&a.SerialNumber,
		&a.PurchaseDate,
		&a.WarrantyExpiry,
		&a.Notes,
		&status,
		&a.AssignedToID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Type = domain.AssetType(typ)
	a.Status = domain.AssetStatus(status)
	return &a, nil
}

func scanAssets(rows pgx.Rows) ([]domain.Asset, error) {
	var result []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *asset)
	}
	return result, rows.Err()
}
