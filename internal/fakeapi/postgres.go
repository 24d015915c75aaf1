package fakeapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/common"
	"github.com/dmitrijs2005/storeadmin/internal/dbx"
	"github.com/dmitrijs2005/storeadmin/internal/fakeapi/migrations"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresStore is a Repository over Postgres. Tables are created by the
// embedded goose migrations (see OpenPostgres).
type PostgresStore struct {
	db         dbx.DBTX
	bcryptCost int
}

func NewPostgresStore(db dbx.DBTX, bcryptCost int) *PostgresStore {
	return &PostgresStore{db: db, bcryptCost: normalizeCost(bcryptCost)}
}

// OpenPostgres connects to dsn through the pgx driver, applies the migrations
// and returns the store together with the connection pool.
func OpenPostgres(ctx context.Context, dsn string, bcryptCost int) (*PostgresStore, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return NewPostgresStore(db, bcryptCost), db, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, id models.Identity, password string) (models.Identity, error) {
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return models.Identity{}, err
	}

	query :=
		`INSERT INTO users (id, first_name, last_name, email, email_key, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email_key) DO NOTHING
		 RETURNING id`

	id.ID = uuid.NewString()
	var got string
	err = s.db.QueryRowContext(ctx, query,
		id.ID, id.FirstName, id.LastName, id.Email, emailKey(id.Email), hash).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, common.ErrorAlreadyExists
		}
		return models.Identity{}, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Authenticate(ctx context.Context, email, password string) (models.Identity, error) {
	query :=
		`SELECT id, first_name, last_name, email, password_hash FROM users
		 WHERE email_key = $1`

	var (
		id   models.Identity
		hash []byte
	)
	err := s.db.QueryRowContext(ctx, query, emailKey(email)).
		Scan(&id.ID, &id.FirstName, &id.LastName, &id.Email, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, common.ErrorInvalidCredentials
		}
		return models.Identity{}, fmt.Errorf("db error: %w", err)
	}
	if !passwordMatches(hash, password) {
		return models.Identity{}, common.ErrorInvalidCredentials
	}
	return id, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	query :=
		`SELECT id, name, description, price, image_url FROM products
		 ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	query :=
		`INSERT INTO products (id, name, description, price, image_url)
		 VALUES ($1, $2, $3, $4, $5)`

	p.ID = uuid.NewString()
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.ImageURL); err != nil {
		return models.Product{}, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, p models.Product) (models.Product, error) {
	query :=
		`UPDATE products SET name = $2, description = $3, price = $4, image_url = $5
		 WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, p.Name, p.Description, p.Price, p.ImageURL)
	if err != nil {
		return models.Product{}, fmt.Errorf("db error: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return models.Product{}, err
	}
	p.ID = id
	return p, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (s *PostgresStore) SaveImage(ctx context.Context, ext, contentType string, data []byte) (string, error) {
	name := uuid.NewString() + ext
	query := `INSERT INTO images (name, content_type, data) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, name, contentType, data); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return name, nil
}

func (s *PostgresStore) Image(ctx context.Context, name string) (contentType string, data []byte, err error) {
	query := `SELECT content_type, data FROM images WHERE name = $1`
	err = s.db.QueryRowContext(ctx, query, name).Scan(&contentType, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, common.ErrorNotFound
		}
		return "", nil, fmt.Errorf("db error: %w", err)
	}
	return contentType, data, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
