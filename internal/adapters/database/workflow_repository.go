package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

// PostgresWorkflowRepository stores workflow definitions as JSONB documents
// keyed by id, with the timestamps broken out for listing.
type PostgresWorkflowRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresWorkflowRepository(pool *pgxpool.Pool) ports.WorkflowRepository {
	return &PostgresWorkflowRepository{pool: pool}
}

func (r *PostgresWorkflowRepository) CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	definition, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO workflows (id, definition, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		workflow.ID, definition, workflow.CreatedAt, workflow.UpdatedAt)
	return err
}

func (r *PostgresWorkflowRepository) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	var definition []byte
	err := r.pool.QueryRow(ctx,
		`SELECT definition FROM workflows WHERE id = $1`, id).Scan(&definition)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}

	var workflow domain.Workflow
	if err := json.Unmarshal(definition, &workflow); err != nil {
		return nil, fmt.Errorf("unmarshal workflow %s: %w", id, err)
	}
	return &workflow, nil
}

func (r *PostgresWorkflowRepository) ReplaceWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	definition, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE workflows SET definition = $2, updated_at = $3 WHERE id = $1`,
		workflow.ID, definition, workflow.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

func (r *PostgresWorkflowRepository) DeleteWorkflow(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

func (r *PostgresWorkflowRepository) ListWorkflows(ctx context.Context, page, limit int) ([]*domain.Workflow, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workflows`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT definition FROM workflows ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workflows []*domain.Workflow
	for rows.Next() {
		var definition []byte
		if err := rows.Scan(&definition); err != nil {
			return nil, 0, err
		}
		var workflow domain.Workflow
		if err := json.Unmarshal(definition, &workflow); err != nil {
			return nil, 0, fmt.Errorf("unmarshal workflow: %w", err)
		}
		workflows = append(workflows, &workflow)
	}
	return workflows, total, rows.Err()
}
