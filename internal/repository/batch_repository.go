package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"liquor-analytics/internal/models"
	"liquor-analytics/pkg/database"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

// BatchRepository provides data access for LOT batch records. The
// prediction pipeline only reads records; writes come from data entry.
type BatchRepository interface {
	CreateRecord(ctx context.Context, rec *models.BatchRecord) error
	UpdateRecord(ctx context.Context, rec *models.BatchRecord) error
	GetRecord(ctx context.Context, id int64) (*models.BatchRecord, error)
	GetLatestByLot(ctx context.Context, lotNumber string) (*models.BatchRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]*models.BatchRecord, int, error)
	ListAllRecords(ctx context.Context) ([]*models.BatchRecord, error)
	ListLotNumbers(ctx context.Context) ([]string, error)

	HealthCheck(ctx context.Context) error
}

// RecordFilter defines filters for querying batch records
type RecordFilter struct {
	LotNumber    *string
	AnalysisType *models.AnalysisType
	Limit        int
	Offset       int
}

// batchRepository implements BatchRepository
type batchRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewBatchRepository creates a new batch record repository
func NewBatchRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) BatchRepository {
	return &batchRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

const recordColumns = `
	id, lot_number, product_name, analysis_type,
	alcohol_content, acidity, sugar_content, tannin_level, ester_concentration, aldehyde_level,
	aroma_score, taste_score, finish_score, overall_score,
	production_date, entry_date, notes, created_at, updated_at
`

// CreateRecord inserts a newly entered batch record
func (r *batchRepository) CreateRecord(ctx context.Context, rec *models.BatchRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.EntryDate.IsZero() {
		rec.EntryDate = now
	}

	query := `
		INSERT INTO lot_records (
			lot_number, product_name, analysis_type,
			alcohol_content, acidity, sugar_content, tannin_level, ester_concentration, aldehyde_level,
			aroma_score, taste_score, finish_score, overall_score,
			production_date, entry_date, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		rec.LotNumber,
		rec.ProductName,
		rec.AnalysisType,
		rec.AlcoholContent,
		rec.Acidity,
		rec.SugarContent,
		rec.TanninLevel,
		rec.EsterConcentration,
		rec.AldehydeLevel,
		rec.AromaScore,
		rec.TasteScore,
		rec.FinishScore,
		rec.OverallScore,
		rec.ProductionDate,
		rec.EntryDate,
		rec.Notes,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&rec.ID)

	if err != nil {
		return fmt.Errorf("failed to create batch record: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_RECORD] Batch record created", logging.Fields{
		"id":            rec.ID,
		"lot_number":    rec.LotNumber,
		"analysis_type": string(rec.AnalysisType),
	})

	return nil
}

// UpdateRecord corrects an existing record. Updates are for fixing entry
// errors only; a model already trained on the prior values remains a
// frozen artifact and is not retroactively invalidated.
func (r *batchRepository) UpdateRecord(ctx context.Context, rec *models.BatchRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	rec.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE lot_records SET
			lot_number = $1, product_name = $2, analysis_type = $3,
			alcohol_content = $4, acidity = $5, sugar_content = $6,
			tannin_level = $7, ester_concentration = $8, aldehyde_level = $9,
			aroma_score = $10, taste_score = $11, finish_score = $12, overall_score = $13,
			production_date = $14, notes = $15, updated_at = $16
		WHERE id = $17
	`

	result, err := r.db.ExecContext(ctx, "update_record", query,
		rec.LotNumber,
		rec.ProductName,
		rec.AnalysisType,
		rec.AlcoholContent,
		rec.Acidity,
		rec.SugarContent,
		rec.TanninLevel,
		rec.EsterConcentration,
		rec.AldehydeLevel,
		rec.AromaScore,
		rec.TasteScore,
		rec.FinishScore,
		rec.OverallScore,
		rec.ProductionDate,
		rec.Notes,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: "lot_record", ID: fmt.Sprintf("%d", rec.ID)}
	}

	return nil
}

// GetRecord retrieves a batch record by ID
func (r *batchRepository) GetRecord(ctx context.Context, id int64) (*models.BatchRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM lot_records WHERE id = $1`

	var rec models.BatchRecord
	err := r.db.GetContext(ctx, "get_record", &rec, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "lot_record", ID: fmt.Sprintf("%d", id)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch record: %w", err)
	}

	return &rec, nil
}

// GetLatestByLot retrieves the most recent analysis of a LOT
func (r *batchRepository) GetLatestByLot(ctx context.Context, lotNumber string) (*models.BatchRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM lot_records
		WHERE lot_number = $1
		ORDER BY entry_date DESC, id DESC
		LIMIT 1
	`

	var rec models.BatchRecord
	err := r.db.GetContext(ctx, "get_latest_by_lot", &rec, query, lotNumber)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "lot_record", ID: lotNumber}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest record for lot: %w", err)
	}

	return &rec, nil
}

// ListRecords retrieves batch records with filtering and pagination
func (r *batchRepository) ListRecords(ctx context.Context, filter RecordFilter) ([]*models.BatchRecord, int, error) {
	query := `SELECT ` + recordColumns + ` FROM lot_records WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.LotNumber != nil {
		query += fmt.Sprintf(" AND lot_number = $%d", argNum)
		args = append(args, *filter.LotNumber)
		argNum++
	}

	if filter.AnalysisType != nil {
		query += fmt.Sprintf(" AND analysis_type = $%d", argNum)
		args = append(args, *filter.AnalysisType)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_records", &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count batch records: %w", err)
	}

	query += " ORDER BY entry_date DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var records []*models.BatchRecord
	if err := r.db.SelectContext(ctx, "list_records", &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list batch records: %w", err)
	}

	return records, totalCount, nil
}

// ListAllRecords returns the full record collection ordered by entry
// date, the training pipeline's input
func (r *batchRepository) ListAllRecords(ctx context.Context) ([]*models.BatchRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM lot_records ORDER BY entry_date, id`

	var records []*models.BatchRecord
	if err := r.db.SelectContext(ctx, "list_all_records", &records, query); err != nil {
		return nil, fmt.Errorf("failed to list batch records: %w", err)
	}

	return records, nil
}

// ListLotNumbers returns the distinct LOT identifiers
func (r *batchRepository) ListLotNumbers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT lot_number FROM lot_records ORDER BY lot_number`

	var lots []string
	if err := r.db.SelectContext(ctx, "list_lot_numbers", &lots, query); err != nil {
		return nil, fmt.Errorf("failed to list lot numbers: %w", err)
	}

	return lots, nil
}

// HealthCheck verifies database connectivity
func (r *batchRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsTransient returns false as not found errors are permanent
func (e *NotFoundError) IsTransient() bool {
	return false
}
