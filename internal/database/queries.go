package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (number, type, guest_name, guest_phone, guest_email,
			table_number, preferred_pickup_time,
			delivery_address, delivery_city, delivery_postal_code, delivery_country, delivery_instructions,
			payment_method, special_requests,
			subtotal, tax, delivery_charge, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, item_id, name, price, quantity, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6)`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	GetOrderByNumberSQL = `
		SELECT id, number, type, guest_name, guest_phone, guest_email,
			   table_number, preferred_pickup_time,
			   delivery_address, delivery_city, delivery_postal_code, delivery_country, delivery_instructions,
			   payment_method, special_requests,
			   subtotal, tax, delivery_charge, total_amount, status, created_at, updated_at
		FROM orders WHERE number = $1`

	GetOrderItemsSQL = `
		SELECT item_id, name, price, quantity, special_instructions
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`

	GetNextOrderNumberSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM 'ORD_[0-9]{8}_([0-9]{3})') AS INTEGER)), 0) + 1
		FROM orders
		WHERE number LIKE $1`
)
