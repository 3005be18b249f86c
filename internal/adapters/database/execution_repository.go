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

// PostgresExecutionRepository stores execution records as JSONB documents.
// Updates overwrite the whole document; the tracker serializes writers so
// last-write-wins is safe here.
type PostgresExecutionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresExecutionRepository(pool *pgxpool.Pool) ports.ExecutionRepository {
	return &PostgresExecutionRepository{pool: pool}
}

func (r *PostgresExecutionRepository) CreateExecution(ctx context.Context, execution *domain.Execution) error {
	document, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("marshal execution: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO executions (id, workflow_id, status, document, start_time) VALUES ($1, $2, $3, $4, $5)`,
		execution.ID, execution.WorkflowID, string(execution.Status), document, execution.StartTime)
	return err
}

func (r *PostgresExecutionRepository) UpdateExecution(ctx context.Context, execution *domain.Execution) error {
	document, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("marshal execution: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE executions SET status = $2, document = $3 WHERE id = $1`,
		execution.ID, string(execution.Status), document)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExecutionNotFound
	}
	return nil
}

func (r *PostgresExecutionRepository) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	var document []byte
	err := r.pool.QueryRow(ctx,
		`SELECT document FROM executions WHERE id = $1`, id).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExecutionNotFound
	}
	if err != nil {
		return nil, err
	}

	var execution domain.Execution
	if err := json.Unmarshal(document, &execution); err != nil {
		return nil, fmt.Errorf("unmarshal execution %s: %w", id, err)
	}
	return &execution, nil
}
