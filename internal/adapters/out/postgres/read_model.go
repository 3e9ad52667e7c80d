package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ReadModel serves batch listings with raw SQL over the cached totals. It
// reads committed rows outside any unit of work.
type ReadModel struct {
	db *gorm.DB
}

func NewReadModel(db *gorm.DB) *ReadModel {
	return &ReadModel{db: db}
}

const batchColumns = `
	id,
	code,
	status,
	origin_office_id,
	destination_office_id,
	max_weight_grams,
	total_weight_grams,
	order_count,
	created_at,
	updated_at`

const orderColumns = `
	id,
	tracking_number,
	weight_grams,
	origin_office_id,
	destination_office_id,
	status,
	created_at`

func (m *ReadModel) GetBatch(ctx context.Context, id kernel.UUID, includeOrders bool) (ports.BatchView, error) {
	if err := id.Validate(); err != nil {
		return ports.BatchView{}, err
	}
	return m.getOne(ctx, "id = ?", id.Bytes(), errs.NewObjectNotFoundError("batch", id.String()), includeOrders)
}

func (m *ReadModel) GetBatchByCode(ctx context.Context, code batch.Code, includeOrders bool) (ports.BatchView, error) {
	return m.getOne(ctx, "code = ?", code.String(), errs.NewObjectNotFoundError("batchCode", code.String()), includeOrders)
}

func (m *ReadModel) getOne(
	ctx context.Context,
	where string,
	arg any,
	notFound error,
	includeOrders bool,
) (ports.BatchView, error) {
	row := m.db.WithContext(ctx).Raw(`SELECT `+batchColumns+` FROM batches WHERE `+where, arg).Row()
	v, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.BatchView{}, notFound
	}
	if err != nil {
		return ports.BatchView{}, err
	}

	if includeOrders {
		views := []*ports.BatchView{&v}
		if err = m.attachOrders(ctx, views); err != nil {
			return ports.BatchView{}, err
		}
	}
	return v, nil
}

func (m *ReadModel) ListBatches(ctx context.Context, filter ports.BatchListFilter) (ports.Page[ports.BatchView], error) {
	var (
		conds []string
		args  []any
	)
	if filter.OriginOfficeID != nil {
		conds = append(conds, "origin_office_id = ?")
		args = append(args, filter.OriginOfficeID.Bytes())
	}
	if filter.DestinationOfficeID != nil {
		conds = append(conds, "destination_office_id = ?")
		args = append(args, filter.DestinationOfficeID.Bytes())
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, int(*filter.Status))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := m.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM batches`+where, args...).Scan(&total).Error; err != nil {
		return ports.Page[ports.BatchView]{}, err
	}

	rows, err := m.db.WithContext(ctx).Raw(
		`SELECT `+batchColumns+` FROM batches`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, filter.Size, filter.Page*filter.Size)...,
	).Rows()
	if err != nil {
		return ports.Page[ports.BatchView]{}, err
	}
	defer rows.Close()

	items := make([]ports.BatchView, 0, filter.Size)
	for rows.Next() {
		v, scanErr := scanBatch(rows)
		if scanErr != nil {
			return ports.Page[ports.BatchView]{}, scanErr
		}
		items = append(items, v)
	}
	if err = rows.Err(); err != nil {
		return ports.Page[ports.BatchView]{}, err
	}

	if filter.IncludeOrders && len(items) > 0 {
		views := make([]*ports.BatchView, 0, len(items))
		for i := range items {
			views = append(views, &items[i])
		}
		if err = m.attachOrders(ctx, views); err != nil {
			return ports.Page[ports.BatchView]{}, err
		}
	}

	return ports.NewPage(items, filter.Page, filter.Size, total), nil
}

func (m *ReadModel) UnbatchedOrders(ctx context.Context, filter ports.EligibleOrdersFilter) ([]ports.OrderView, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = ? AND batch_id IS NULL`
	args := []any{int(order.Created)}
	if filter.OriginOfficeID != nil {
		query += ` AND origin_office_id = ?`
		args = append(args, filter.OriginOfficeID.Bytes())
	}
	if filter.DestinationOfficeID != nil {
		query += ` AND destination_office_id = ?`
		args = append(args, filter.DestinationOfficeID.Bytes())
	}

	rows, err := m.db.WithContext(ctx).Raw(query+` ORDER BY created_at, id`, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.OrderView, 0)
	for rows.Next() {
		v, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (m *ReadModel) DestinationsWithUnbatchedOrders(
	ctx context.Context,
	originOfficeID *kernel.UUID,
) ([]ports.DestinationSummary, error) {
	var origin any
	if originOfficeID != nil {
		origin = originOfficeID.Bytes()
	}

	rows, err := m.db.WithContext(ctx).Raw(`
		SELECT
			o.destination_office_id,
			COUNT(*),
			SUM(o.weight_grams)::bigint,
			MIN(o.created_at),
			(
				SELECT COUNT(*)
				FROM batches b
				WHERE b.destination_office_id = o.destination_office_id
					AND b.status = @open
					AND (CAST(@origin AS uuid) IS NULL OR b.origin_office_id = @origin)
			)
		FROM orders o
		WHERE o.status = @created
			AND o.batch_id IS NULL
			AND (CAST(@origin AS uuid) IS NULL OR o.origin_office_id = @origin)
		GROUP BY o.destination_office_id
		ORDER BY MIN(o.created_at), o.destination_office_id
	`,
		sql.Named("open", int(batch.Open)),
		sql.Named("created", int(order.Created)),
		sql.Named("origin", origin),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.DestinationSummary, 0)
	for rows.Next() {
		var (
			destination uuid.UUID
			count       int
			grams       int64
			oldest      time.Time
			openBatches int
		)
		if err = rows.Scan(&destination, &count, &grams, &oldest, &openBatches); err != nil {
			return nil, err
		}

		destinationID, idErr := kernel.UUIDFromBytes(destination[:])
		if idErr != nil {
			return nil, idErr
		}
		total, weightErr := kernel.RestoreWeight(grams)
		if weightErr != nil {
			return nil, weightErr
		}

		out = append(out, ports.DestinationSummary{
			DestinationOfficeID: destinationID,
			OrderCount:          count,
			TotalWeight:         total,
			OpenBatchCount:      openBatches,
			OldestCreatedAt:     oldest.UTC(),
		})
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// attachOrders loads the members of every view in one query.
func (m *ReadModel) attachOrders(ctx context.Context, views []*ports.BatchView) error {
	ids := make([]string, 0, len(views))
	byID := make(map[kernel.UUID]*ports.BatchView, len(views))
	for _, v := range views {
		v.Orders = make([]ports.OrderView, 0, v.OrderCount)
		ids = append(ids, v.ID.String())
		byID[v.ID] = v
	}

	rows, err := m.db.WithContext(ctx).Raw(`
		SELECT o.batch_id, `+prefixed("o", orderColumns)+`
		FROM orders o
		JOIN batch_members bm ON bm.order_id = o.id AND bm.batch_id = o.batch_id
		WHERE bm.batch_id = ANY(?::uuid[])
		ORDER BY o.created_at, o.id
	`, pq.Array(ids)).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var batchRaw uuid.UUID
		v, scanErr := scanOrder(rows, &batchRaw)
		if scanErr != nil {
			return scanErr
		}
		batchID, idErr := kernel.UUIDFromBytes(batchRaw[:])
		if idErr != nil {
			return idErr
		}
		if view, ok := byID[batchID]; ok {
			view.Orders = append(view.Orders, v)
		}
	}

	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(s scanner) (ports.BatchView, error) {
	var (
		id, origin, destination uuid.UUID
		code                    string
		status                  int
		maxGrams, totalGrams    int64
		orderCount              int
		createdAt, updatedAt    time.Time
	)
	if err := s.Scan(&id, &code, &status, &origin, &destination, &maxGrams, &totalGrams, &orderCount, &createdAt, &updatedAt); err != nil {
		return ports.BatchView{}, err
	}

	batchID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return ports.BatchView{}, err
	}
	originID, err := kernel.UUIDFromBytes(origin[:])
	if err != nil {
		return ports.BatchView{}, err
	}
	destinationID, err := kernel.UUIDFromBytes(destination[:])
	if err != nil {
		return ports.BatchView{}, err
	}
	maxWeight, err := kernel.RestoreWeight(maxGrams)
	if err != nil {
		return ports.BatchView{}, err
	}
	totalWeight, err := kernel.RestoreWeight(totalGrams)
	if err != nil {
		return ports.BatchView{}, err
	}

	return ports.BatchView{
		ID:                  batchID,
		Code:                batch.Code(code),
		Status:              batch.Status(status),
		OriginOfficeID:      originID,
		DestinationOfficeID: destinationID,
		MaxWeight:           maxWeight,
		TotalWeight:         totalWeight,
		OrderCount:          orderCount,
		CreatedAt:           createdAt.UTC(),
		UpdatedAt:           updatedAt.UTC(),
	}, nil
}

// scanOrder reads orderColumns, preceded by any extra leading columns.
func scanOrder(s scanner, leading ...any) (ports.OrderView, error) {
	var (
		id, origin, destination uuid.UUID
		tracking                string
		grams                   int64
		status                  int
		createdAt               time.Time
	)
	dest := append(leading, &id, &tracking, &grams, &origin, &destination, &status, &createdAt)
	if err := s.Scan(dest...); err != nil {
		return ports.OrderView{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return ports.OrderView{}, err
	}
	originID, err := kernel.UUIDFromBytes(origin[:])
	if err != nil {
		return ports.OrderView{}, err
	}
	destinationID, err := kernel.UUIDFromBytes(destination[:])
	if err != nil {
		return ports.OrderView{}, err
	}
	weight, err := kernel.NewWeightFromGrams(grams)
	if err != nil {
		return ports.OrderView{}, err
	}

	return ports.OrderView{
		ID:                  orderID,
		TrackingNumber:      tracking,
		Weight:              weight,
		OriginOfficeID:      originID,
		DestinationOfficeID: destinationID,
		Status:              order.Status(status),
		CreatedAt:           createdAt.UTC(),
	}, nil
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
