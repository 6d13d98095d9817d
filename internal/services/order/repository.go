package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sip-sunshine/internal/database"
	"sip-sunshine/internal/models"
)

// PostgresRepository stores orders in PostgreSQL.
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// NextOrderSequence returns the next free sequence for order numbers
// matching the given LIKE prefix.
func (r *PostgresRepository) NextOrderSequence(ctx context.Context, numberPrefix string) (int, error) {
	var sequence int
	err := r.db.QueryRow(ctx, database.GetNextOrderNumberSQL, numberPrefix).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to query next order sequence: %w", err)
	}
	return sequence, nil
}

// CreateOrder inserts the order, its items and the initial status log entry
// in one transaction and returns the new order id.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *models.Order) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID int
	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.Number, order.Type, order.GuestName, order.GuestPhone, order.GuestEmail,
		order.TableNumber, order.PreferredPickupTime,
		order.DeliveryAddress, order.DeliveryCity, order.DeliveryPostalCode, order.DeliveryCountry, order.DeliveryInstructions,
		order.PaymentMethod, order.SpecialRequests,
		order.Subtotal, order.Tax, order.DeliveryCharge, order.TotalAmount, order.Status,
	).Scan(&orderID, &order.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, database.InsertOrderItemSQL,
			orderID, item.ItemID, item.Name, item.Price, item.Quantity, item.SpecialInstructions)
		if err != nil {
			return 0, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL,
		orderID, order.Status, "order-service", "initial status")
	if err != nil {
		return 0, fmt.Errorf("failed to insert status log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit order: %w", err)
	}

	order.ID = orderID
	return orderID, nil
}

// GetOrderByNumber loads an order and its items.
func (r *PostgresRepository) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.QueryRow(ctx, database.GetOrderByNumberSQL, number).Scan(
		&order.ID, &order.Number, &order.Type, &order.GuestName, &order.GuestPhone, &order.GuestEmail,
		&order.TableNumber, &order.PreferredPickupTime,
		&order.DeliveryAddress, &order.DeliveryCity, &order.DeliveryPostalCode, &order.DeliveryCountry, &order.DeliveryInstructions,
		&order.PaymentMethod, &order.SpecialRequests,
		&order.Subtotal, &order.Tax, &order.DeliveryCharge, &order.TotalAmount, &order.Status,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	rows, err := r.db.Query(ctx, database.GetOrderItemsSQL, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ItemID, &item.Name, &item.Price, &item.Quantity, &item.SpecialInstructions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}

	return &order, nil
}
