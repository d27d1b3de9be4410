package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/brocketdesign/chatlamix/internal/store"
)

// taskColumns is the select list shared by every task query, in scan order.
const taskColumns = `id, task_id, placeholder_id, kind, owner_id, conversation_id,
	source_artifact_id, status, result, failure_reason, created_at, updated_at`

// correlationPredicate matches a task by either correlation key, with the
// empty string never matching anything. $1 is the task ID, $2 the
// placeholder ID.
const correlationPredicate = `((task_id = $1 AND $1 <> '') OR (placeholder_id = $2 AND $2 <> ''))`

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
type PostgresTaskStore struct {
	db store.DBTX
}

// Ensure PostgresTaskStore implements store.TaskStore.
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := marshalResult(task.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, task_id, placeholder_id, kind, owner_id, conversation_id,
			source_artifact_id, status, result, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.TaskID,
		task.PlaceholderID,
		task.Kind,
		task.OwnerID,
		task.ConversationID,
		task.SourceArtifactID,
		task.Status,
		result,
		task.FailureReason,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			"task_id", task.TaskID,
			"kind", task.Kind,
			"error", err)
		return mapEntityError(err, store.ErrTaskNotFound, store.ErrDuplicateTask)
	}

	return nil
}

// GetByCorrelation implements store.TaskStore.GetByCorrelation.
func (s *PostgresTaskStore) GetByCorrelation(ctx context.Context, taskID, placeholderID string) (*domain.Task, error) {
	if taskID == "" && placeholderID == "" {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrMissingCorrelationKey)
	}

	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE ` + correlationPredicate + `
		ORDER BY created_at DESC
		LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, taskID, placeholderID)
	task, err := scanTask(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrTaskNotFound, store.ErrDuplicateTask)
	}

	return task, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus. Terminal rows are
// never modified; the WHERE clause filters them out, and a zero row count
// is only an error when the task does not exist at all.
func (s *PostgresTaskStore) UpdateStatus(ctx context.Context, sel store.TaskSelector, status domain.TaskStatus, reason string) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE tasks
		SET status = $3, failure_reason = $4, updated_at = $5
		WHERE ` + correlationPredicate + `
		  AND status NOT IN ('completed', 'failed')`

	result, err := s.db.ExecContext(ctx, query,
		sel.TaskID, sel.PlaceholderID, status, reason, time.Now().UTC())
	if err != nil {
		log.Error("failed to update task status",
			"task_id", sel.TaskID,
			"placeholder_id", sel.PlaceholderID,
			"status", status,
			"error", err)
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either the task does not exist or it is already terminal.
		// The two cases have different contracts, so look the row up.
		if _, getErr := s.GetByCorrelation(ctx, sel.TaskID, sel.PlaceholderID); getErr != nil {
			return getErr
		}
		log.Debug("status update skipped for terminal task",
			"task_id", sel.TaskID,
			"placeholder_id", sel.PlaceholderID)
	}

	return nil
}

// CompleteOnce implements store.TaskStore.CompleteOnce. The conditional
// WHERE clause makes the completed transition first-writer-wins: under
// concurrent duplicate signals exactly one caller observes true.
func (s *PostgresTaskStore) CompleteOnce(ctx context.Context, sel store.TaskSelector, taskResult *domain.TaskResult) (bool, error) {
	log := logger.FromContext(ctx)

	result, err := marshalResult(taskResult)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE tasks
		SET status = 'completed', result = $3, failure_reason = '', updated_at = $4
		WHERE ` + correlationPredicate + `
		  AND status <> 'completed'`

	res, err := s.db.ExecContext(ctx, query,
		sel.TaskID, sel.PlaceholderID, result, time.Now().UTC())
	if err != nil {
		log.Error("failed to complete task",
			"task_id", sel.TaskID,
			"placeholder_id", sel.PlaceholderID,
			"error", err)
		return false, MapError(err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, getErr := s.GetByCorrelation(ctx, sel.TaskID, sel.PlaceholderID); getErr != nil {
			return false, getErr
		}
		return false, nil
	}

	return true, nil
}

// FindIncomplete implements store.TaskStore.FindIncomplete.
func (s *PostgresTaskStore) FindIncomplete(ctx context.Context, kind domain.TaskKind) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE kind = $1
		  AND status NOT IN ('completed', 'failed')
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, MapError(scanErr)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		resultRaw []byte
	)

	err := row.Scan(
		&task.ID,
		&task.TaskID,
		&task.PlaceholderID,
		&task.Kind,
		&task.OwnerID,
		&task.ConversationID,
		&task.SourceArtifactID,
		&task.Status,
		&resultRaw,
		&task.FailureReason,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(resultRaw) > 0 {
		var result domain.TaskResult
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task result: %w", err)
		}
		task.Result = &result
	}

	return &task, nil
}

// marshalResult renders the result for the jsonb column; a nil result
// stores SQL NULL.
func marshalResult(result *domain.TaskResult) (any, error) {
	if result == nil {
		return nil, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task result: %w", err)
	}
	return raw, nil
}
