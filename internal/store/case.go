package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/utils"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const caseTableName = "cases"

var caseColumns = utils.StructTagValues(types.Case{})

type CaseRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{pool: pool, now: time.Now}
}

func (r *CaseRepository) CreateCase(ctx context.Context, c *types.Case) error {
	query, args, err := insertCaseQuery(c)
	if err != nil {
		return fmt.Errorf("failed to generate insert case query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if isDuplicateSession(err) {
		return fmt.Errorf("failed to create case: %w", errors.Join(types.ErrDuplicateSession, err))
	}
	return utils.ErrorWrapOrNil(err, "failed to create case")
}

// isDuplicateSession reports a unique violation on the voice session index.
// Collisions on other unique columns stay ordinary insert errors.
func isDuplicateSession(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == types.VapiSessionConstraint
}

func (r *CaseRepository) UpdateCase(ctx context.Context, caseID string, patch map[string]any) (*types.Case, error) {
	query, args, err := updateCaseQuery(caseID, patch, r.now().UTC())
	if err != nil {
		return nil, err
	}

	var c types.Case
	err = pgxscan.Get(ctx, r.pool, &c, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to update case %s: %w", caseID, err)
	}

	return &c, nil
}

func (r *CaseRepository) Cases(ctx context.Context, filter types.CaseFilter) ([]*types.Case, error) {
	query, args, err := casesQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cases query: %w", err)
	}

	var cases = make([]*types.Case, 0)
	err = pgxscan.Select(ctx, r.pool, &cases, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cases: %w", err)
	}

	return cases, nil
}

func (r *CaseRepository) CaseByTrackingCode(ctx context.Context, trackingCode string) (*types.Case, error) {
	return r.caseBy(ctx, "tracking_code", trackingCode)
}

func (r *CaseRepository) CaseBySessionID(ctx context.Context, sessionID string) (*types.Case, error) {
	return r.caseBy(ctx, "vapi_session_id", sessionID)
}

func (r *CaseRepository) caseBy(ctx context.Context, column, value string) (*types.Case, error) {
	query, args, err := caseByQuery(column, value)
	if err != nil {
		return nil, fmt.Errorf("failed to generate case query: %w", err)
	}

	var c types.Case
	err = pgxscan.Get(ctx, r.pool, &c, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to fetch case by %s: %w", column, err)
	}

	return &c, nil
}

func caseByQuery(column, value string) (string, []any, error) {
	return psql().
		Select(caseColumns...).
		From(caseTableName).
		Where(sq.Eq{column: value}).
		Limit(1).
		ToSql()
}

func insertCaseQuery(c *types.Case) (string, []any, error) {
	return psql().Insert(caseTableName).SetMap(utils.StructToMap(c)).ToSql()
}

func updateCaseQuery(caseID string, patch map[string]any, now time.Time) (string, []any, error) {
	if err := types.ValidateCasePatch(patch, caseColumns); err != nil {
		return "", nil, fmt.Errorf("update case %s: %w", caseID, err)
	}

	set := make(map[string]any, len(patch)+1)
	for column, value := range patch {
		set[column] = value
	}
	set["updated_at"] = now

	query, args, err := psql().
		Update(caseTableName).
		SetMap(set).
		Where(sq.Eq{"case_id": caseID}).
		Suffix("RETURNING " + strings.Join(caseColumns, ", ")).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate update case query for case %s: %w", caseID, err)
	}

	return query, args, nil
}

func casesQuery(filter types.CaseFilter) (string, []any, error) {
	where := sq.Eq{}
	if filter.Status != "" {
		where["status"] = filter.Status
	}
	if filter.Category != "" {
		where["category"] = filter.Category
	}
	if filter.Priority != "" {
		where["priority"] = filter.Priority
	}
	if filter.ReportSource != "" {
		where["report_source"] = filter.ReportSource
	}

	builder := psql().
		Select(caseColumns...).
		From(caseTableName).
		OrderBy("created_at desc")
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return builder.ToSql()
}
