package database

import (
	"database/sql"
	"time"

	"github.com/servihub/servihub/internal/types"
	"github.com/teris-io/shortid"
)

func scanLocation(lat, lng sql.NullFloat64) *types.Location {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &types.Location{Lat: lat.Float64, Lng: lng.Float64}
}

func (db *PgMarketRepository) GetUserById(id string) (types.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, phone, lat, lng, created_at, updated_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var (
		user     types.User
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.Email,
		&user.Phone,
		&lat,
		&lng,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	user.Location = scanLocation(lat, lng)
	return user, err
}

func (db *PgMarketRepository) UpdateUser(params UpdateUserParams) (types.User, error) {
	row := db.conn.QueryRow(
		"UPDATE users SET username = COALESCE(NULLIF($2, ''), username), "+
			"email = COALESCE(NULLIF($3, ''), email), "+
			"phone = COALESCE(NULLIF($4, ''), phone), "+
			"updated_at = $5 "+
			"WHERE id = $1 RETURNING id, username, email, phone, created_at, updated_at",
		params.UserId,
		params.Username,
		params.Email,
		params.Phone,
		time.Now().UTC(),
	)

	var user types.User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgMarketRepository) DeleteUser(id string) error {
	res, err := db.conn.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgMarketRepository) UpdateUserLocation(userId string, lat, lng float64) (types.User, error) {
	row := db.conn.QueryRow(
		"UPDATE users SET lat = $2, lng = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, username, lat, lng",
		userId,
		lat,
		lng,
		time.Now().UTC(),
	)

	var (
		user         types.User
		dbLat, dbLng sql.NullFloat64
	)
	err := row.Scan(
		&user.Id,
		&user.Username,
		&dbLat,
		&dbLng,
	)

	user.Location = scanLocation(dbLat, dbLng)
	return user, err
}

func (db *PgMarketRepository) CreateService(params CreateServiceParams) (types.Service, error) {
	id, err := shortid.Generate()
	if err != nil {
		return types.Service{}, err
	}

	row := db.conn.QueryRow(
		"INSERT INTO services (id, owner_id, title, description, category, price, lat, lng, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) "+
			"RETURNING id, owner_id, title, description, category, price, lat, lng, created_at",
		id,
		params.OwnerId,
		params.Title,
		params.Description,
		params.Category,
		params.Price,
		params.Lat,
		params.Lng,
		time.Now().UTC(),
	)

	return scanService(row)
}

func (db *PgMarketRepository) GetServiceById(id string) (types.Service, error) {
	row := db.conn.QueryRow(
		"SELECT id, owner_id, title, description, category, price, lat, lng, created_at FROM services "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	return scanService(row)
}

func (db *PgMarketRepository) UpdateService(params UpdateServiceParams) (types.Service, error) {
	row := db.conn.QueryRow(
		"UPDATE services SET title = COALESCE(NULLIF($2, ''), title), "+
			"description = COALESCE(NULLIF($3, ''), description), "+
			"category = COALESCE(NULLIF($4, ''), category), "+
			"price = CASE WHEN $5 > 0 THEN $5 ELSE price END, "+
			"updated_at = $6 "+
			"WHERE id = $1 RETURNING id, owner_id, title, description, category, price, lat, lng, created_at",
		params.ServiceId,
		params.Title,
		params.Description,
		params.Category,
		params.Price,
		time.Now().UTC(),
	)

	return scanService(row)
}

func (db *PgMarketRepository) DeleteService(id string) error {
	res, err := db.conn.Exec("DELETE FROM services WHERE id = $1", id)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListServicesNear returns services within radiusKm of the given point,
// nearest first, using a haversine distance computed in SQL.
func (db *PgMarketRepository) ListServicesNear(lat, lng, radiusKm float64) ([]types.Service, error) {
	query := `
		SELECT id, owner_id, title, description, category, price, lat, lng, created_at
		FROM (
			SELECT *, 6371 * acos(
				least(1.0, cos(radians($1)) * cos(radians(lat)) * cos(radians(lng) - radians($2)) +
				sin(radians($1)) * sin(radians(lat)))
			) AS distance_km
			FROM services
			WHERE lat IS NOT NULL AND lng IS NOT NULL
		) s
		WHERE s.distance_km <= $3
		ORDER BY s.distance_km`

	rows, err := db.conn.Query(query, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []types.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}

	return services, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (types.Service, error) {
	var (
		svc      types.Service
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&svc.Id,
		&svc.OwnerId,
		&svc.Title,
		&svc.Description,
		&svc.Category,
		&svc.Price,
		&lat,
		&lng,
		&svc.CreatedAt,
	)

	svc.Location = scanLocation(lat, lng)
	return svc, err
}

func (db *PgMarketRepository) CreateMessage(params CreateMessageParams) (types.ChatMessage, error) {
	id, err := shortid.Generate()
	if err != nil {
		return types.ChatMessage{}, err
	}

	row := db.conn.QueryRow(
		"INSERT INTO messages (id, sender_id, recipient_id, content, read, created_at) "+
			"VALUES ($1, $2, $3, $4, false, $5) "+
			"RETURNING id, sender_id, recipient_id, content, read, created_at",
		id,
		params.SenderId,
		params.RecipientId,
		params.Content,
		time.Now().UTC(),
	)

	return scanMessage(row)
}

func (db *PgMarketRepository) GetMessageById(id string) (types.ChatMessage, error) {
	row := db.conn.QueryRow(
		"SELECT id, sender_id, recipient_id, content, read, created_at FROM messages "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	return scanMessage(row)
}

func (db *PgMarketRepository) MarkMessageRead(id string) (types.ChatMessage, error) {
	row := db.conn.QueryRow(
		"UPDATE messages SET read = true WHERE id = $1 "+
			"RETURNING id, sender_id, recipient_id, content, read, created_at",
		id,
	)

	return scanMessage(row)
}

func scanMessage(row rowScanner) (types.ChatMessage, error) {
	var msg types.ChatMessage
	err := row.Scan(
		&msg.Id,
		&msg.SenderId,
		&msg.RecipientId,
		&msg.Content,
		&msg.Read,
		&msg.CreatedAt,
	)

	return msg, err
}

func (db *PgMarketRepository) CreateReview(params CreateReviewParams) (types.Review, error) {
	id, err := shortid.Generate()
	if err != nil {
		return types.Review{}, err
	}

	row := db.conn.QueryRow(
		"INSERT INTO reviews (id, service_id, author_id, rating, comment, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) "+
			"RETURNING id, service_id, author_id, rating, comment, created_at, updated_at",
		id,
		params.ServiceId,
		params.AuthorId,
		params.Rating,
		params.Comment,
		time.Now().UTC(),
	)

	return scanReview(row)
}

func (db *PgMarketRepository) GetReviewById(id string) (types.Review, error) {
	row := db.conn.QueryRow(
		"SELECT id, service_id, author_id, rating, comment, created_at, updated_at FROM reviews "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	return scanReview(row)
}

func (db *PgMarketRepository) UpdateReview(params UpdateReviewParams) (types.Review, error) {
	row := db.conn.QueryRow(
		"UPDATE reviews SET rating = CASE WHEN $2 > 0 THEN $2 ELSE rating END, "+
			"comment = COALESCE(NULLIF($3, ''), comment), "+
			"updated_at = $4 "+
			"WHERE id = $1 RETURNING id, service_id, author_id, rating, comment, created_at, updated_at",
		params.ReviewId,
		params.Rating,
		params.Comment,
		time.Now().UTC(),
	)

	return scanReview(row)
}

func (db *PgMarketRepository) DeleteReview(id string) error {
	res, err := db.conn.Exec("DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanReview(row rowScanner) (types.Review, error) {
	var (
		review    types.Review
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&review.Id,
		&review.ServiceId,
		&review.AuthorId,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&updatedAt,
	)

	if updatedAt.Valid {
		review.UpdatedAt = updatedAt.Time
	}
	return review, err
}

func (db *PgMarketRepository) CreateContact(params CreateContactParams) (types.Contact, error) {
	id, err := shortid.Generate()
	if err != nil {
		return types.Contact{}, err
	}

	row := db.conn.QueryRow(
		"INSERT INTO contacts (id, user_id, subject, message, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) "+
			"RETURNING id, user_id, subject, message, created_at",
		id,
		params.UserId,
		params.Subject,
		params.Message,
		time.Now().UTC(),
	)

	var contact types.Contact
	err = row.Scan(
		&contact.Id,
		&contact.UserId,
		&contact.Subject,
		&contact.Message,
		&contact.CreatedAt,
	)

	return contact, err
}
