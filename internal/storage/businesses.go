package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/model"
)

// GetBusiness loads a business profile, or common.ErrNotFound.
func (s *SQLiteStorage) GetBusiness(ctx context.Context, id string) (*model.BusinessContext, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, industry, stage, has_prior_revenue
		FROM businesses WHERE id = ?`, id)

	var b model.BusinessContext
	var bType, industry sql.NullString
	var stage string
	err := row.Scan(&b.ID, &b.Name, &bType, &industry, &stage, &b.HasPriorRevenue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: business %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}

	b.Type = bType.String
	b.Industry = industry.String
	b.Stage = model.BusinessStage(stage)
	return &b, nil
}

// SaveBusiness inserts or replaces a business profile.
func (s *SQLiteStorage) SaveBusiness(ctx context.Context, business *model.BusinessContext) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if business == nil {
		return fmt.Errorf("%w: business", ErrNilParameter)
	}
	if err := validateString(business.ID, "business.ID"); err != nil {
		return err
	}
	if err := validateString(business.Name, "business.Name"); err != nil {
		return err
	}

	stage := business.Stage
	if stage == "" {
		stage = model.StageEarly
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO businesses (id, name, type, industry, stage, has_prior_revenue)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			industry = excluded.industry,
			stage = excluded.stage,
			has_prior_revenue = excluded.has_prior_revenue`,
		business.ID, business.Name, business.Type, business.Industry,
		string(stage), business.HasPriorRevenue)
	if err != nil {
		return fmt.Errorf("failed to save business: %w", err)
	}
	return nil
}
