package postgres

import (
	"context"
	"errors"
	"time"

	"daliah-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, product_id, farmer_address, distributor_address, quantity, price_per_unit,
	total_price, marketplace_fee, acceptance_status, acceptance_reason, payment_status,
	is_cancelled, is_refund_requested, is_refund_approved,
	carrier_address, carrier_name, car_plate_number, vehicle_temperature, vehicle_temp_proof_hash,
	pickup_at, pickup_proof_hash, delivered_at, delivered_proof_hash, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.ProductID, &o.FarmerAddress, &o.DistributorAddress, &o.Quantity, &o.PricePerUnit,
		&o.TotalPrice, &o.MarketplaceFee, &o.AcceptanceStatus, &o.AcceptanceReason, &o.PaymentStatus,
		&o.IsCancelled, &o.IsRefundRequested, &o.IsRefundApproved,
		&o.Carrier.CarrierAddress, &o.Carrier.CarrierName, &o.Carrier.CarPlateNumber,
		&o.Carrier.VehicleTemperature, &o.Carrier.VehicleTempProofHash,
		&o.Carrier.PickupTimestamp, &o.Carrier.PickupProofHash,
		&o.Carrier.DeliveredTimestamp, &o.Carrier.DeliveredProofHash,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	q := queryFrom(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO orders (
			product_id, farmer_address, distributor_address, quantity, price_per_unit,
			total_price, marketplace_fee, acceptance_status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		order.ProductID, order.FarmerAddress, order.DistributorAddress, order.Quantity,
		order.PricePerUnit, order.TotalPrice, order.MarketplaceFee,
		order.AcceptanceStatus, order.PaymentStatus,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	q := queryFrom(ctx, r.db)
	order, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("order", id)
	}
	return order, err
}

// GetByIDForUpdate locks the order row until the surrounding transaction
// ends. This is the serialization point for all state-changing operations on
// a single order.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	q := queryFrom(ctx, r.db)
	order, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("order", id)
	}
	return order, err
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	q := queryFrom(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1 = '' OR farmer_address = $1)
		  AND ($2 = '' OR distributor_address = $2)
		  AND ($3 = '' OR carrier_address = $3)
		  AND ($4 = '' OR payment_status = $4)
		ORDER BY id DESC
		LIMIT $5 OFFSET $6`,
		filter.FarmerAddress, filter.DistributorAddress, filter.CarrierAddress,
		filter.PaymentStatus, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) UpdateAcceptance(ctx context.Context, id int64, status string, reason *string) error {
	return r.exec(ctx, `
		UPDATE orders SET acceptance_status = $2, acceptance_reason = $3, updated_at = now()
		WHERE id = $1`, id, status, reason)
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	return r.exec(ctx, `UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1`, id, status)
}

func (r *orderRepository) MarkCancelled(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE orders SET is_cancelled = true, updated_at = now() WHERE id = $1`, id)
}

func (r *orderRepository) MarkRefundRequested(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE orders SET is_refund_requested = true, updated_at = now() WHERE id = $1`, id)
}

func (r *orderRepository) MarkRefundApproved(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE orders SET is_refund_approved = true, updated_at = now() WHERE id = $1`, id)
}

// --- Carrier leg ---

// The WHERE guards make each setter write-once even if a stale caller races
// past the usecase checks.

func (r *orderRepository) SetCarrierInvite(ctx context.Context, id int64, carrierAddress string) error {
	return r.execOnce(ctx, `
		UPDATE orders SET carrier_address = $2, updated_at = now()
		WHERE id = $1 AND carrier_address = ''`, "carrier already assigned", id, carrierAddress)
}

func (r *orderRepository) SetCarrierAcceptance(ctx context.Context, id int64, name, plateNumber string) error {
	return r.execOnce(ctx, `
		UPDATE orders SET carrier_name = $2, car_plate_number = $3, updated_at = now()
		WHERE id = $1 AND carrier_address <> '' AND carrier_name = ''`,
		"invitation already accepted", id, name, plateNumber)
}

func (r *orderRepository) SetVehicleTemperature(ctx context.Context, id int64, temperature float64, proofHash string) error {
	return r.execOnce(ctx, `
		UPDATE orders SET vehicle_temperature = $2, vehicle_temp_proof_hash = $3, updated_at = now()
		WHERE id = $1 AND vehicle_temperature IS NULL`,
		"vehicle temperature already logged", id, temperature, proofHash)
}

func (r *orderRepository) SetPickup(ctx context.Context, id int64, proofHash string, at time.Time) error {
	return r.execOnce(ctx, `
		UPDATE orders SET pickup_at = $2, pickup_proof_hash = $3, updated_at = now()
		WHERE id = $1 AND pickup_at IS NULL`,
		"pickup already recorded", id, at, proofHash)
}

func (r *orderRepository) SetDelivery(ctx context.Context, id int64, proofHash string, at time.Time) error {
	return r.execOnce(ctx, `
		UPDATE orders SET delivered_at = $2, delivered_proof_hash = $3, updated_at = now()
		WHERE id = $1 AND pickup_at IS NOT NULL AND delivered_at IS NULL`,
		"delivery already recorded", id, at, proofHash)
}

// --- Audit log ---

func (r *orderRepository) AppendEvent(ctx context.Context, event *domain.OrderEvent) error {
	q := queryFrom(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO order_events (order_id, actor, action, previous_status, new_status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		event.OrderID, event.Actor, event.Action, event.PreviousStatus, event.NewStatus, event.Reason,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *orderRepository) GetEvents(ctx context.Context, orderID int64) ([]domain.OrderEvent, error) {
	q := queryFrom(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, order_id, actor, action, previous_status, new_status, reason, created_at
		FROM order_events WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var e domain.OrderEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Actor, &e.Action, &e.PreviousStatus,
			&e.NewStatus, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// --- Helpers ---

func (r *orderRepository) exec(ctx context.Context, sql string, args ...any) error {
	q := queryFrom(ctx, r.db)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order", args[0])
	}
	return nil
}

// execOnce treats an unaffected row as a violated write-once guard rather
// than a missing order; callers verify existence beforehand under the row
// lock.
func (r *orderRepository) execOnce(ctx context.Context, sql, guard string, args ...any) error {
	q := queryFrom(ctx, r.db)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Statef("%s", guard)
	}
	return nil
}
