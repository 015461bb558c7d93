// Package repository содержит реализацию доступа к заказам в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/cheapplay/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrOrderNotFound возвращается, если заказ не найден.
var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrCodeExists возвращается при попытке создать заказ с уже занятым кодом погашения.
	ErrCodeExists = errors.New("redemption code already exists")
)

const orderColumns = `id, code, email, status, "isRedeemed", "loginInfo", "accessCode", processing, completed, created_at, updated_at`

// PostgresRepository предоставляет доступ к таблице заказов в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Ping проверяет доступность БД.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateOrder сохраняет новый заказ.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	args, err := orderArgs(o)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO "cheap-play-zone" (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		args...,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrCodeExists, o.Code)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetOrderByID возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM "cheap-play-zone" WHERE id = $1`,
		id,
	)
	return scanOrder(row)
}

// GetOrderByCode возвращает заказ по коду погашения.
func (r *PostgresRepository) GetOrderByCode(ctx context.Context, code string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM "cheap-play-zone" WHERE code = $1`,
		code,
	)
	return scanOrder(row)
}

// UpdateOrder записывает изменяемые поля заказа одним запросом.
func (r *PostgresRepository) UpdateOrder(ctx context.Context, o *model.Order) error {
	args, err := orderArgs(o)
	if err != nil {
		return err
	}

	// code и created_at после создания заказа не меняются.
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE "cheap-play-zone"
		 SET email = $2, status = $3, "isRedeemed" = $4, "loginInfo" = $5,
		     "accessCode" = $6, processing = $7, completed = $8, updated_at = $9
		 WHERE id = $1`,
		args[0], args[2], args[3], args[4], args[5], args[6], args[7], args[8], args[10],
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// ListOrders возвращает заказы, начиная с последних. Пустой статус означает все заказы.
func (r *PostgresRepository) ListOrders(ctx context.Context, status model.Status, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM "cheap-play-zone"
		 WHERE ($1::text = '' OR status = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		string(status), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                                            model.Order
		status                                       string
		loginInfo, accessCode, processing, completed []byte
	)

	err := row.Scan(&o.ID, &o.Code, &o.Email, &status, &o.IsRedeemed,
		&loginInfo, &accessCode, &processing, &completed, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if o.Status, err = model.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("order %s: %w", o.ID, err)
	}
	if o.LoginInfo, err = model.ParseLoginInfo(loginInfo); err != nil {
		return nil, fmt.Errorf("order %s: %w", o.ID, err)
	}
	if o.AccessCode, err = model.ParseAccessCode(accessCode); err != nil {
		return nil, fmt.Errorf("order %s: %w", o.ID, err)
	}
	if o.Processing, err = model.ParseStepData("processing", processing); err != nil {
		return nil, fmt.Errorf("order %s: %w", o.ID, err)
	}
	if o.Completed, err = model.ParseStepData("completed", completed); err != nil {
		return nil, fmt.Errorf("order %s: %w", o.ID, err)
	}

	return &o, nil
}

func orderArgs(o *model.Order) ([]any, error) {
	loginInfo, err := jsonb(o.LoginInfo)
	if err != nil {
		return nil, err
	}
	accessCode, err := jsonb(o.AccessCode)
	if err != nil {
		return nil, err
	}
	processing, err := jsonb(o.Processing)
	if err != nil {
		return nil, err
	}
	completed, err := jsonb(o.Completed)
	if err != nil {
		return nil, err
	}

	return []any{
		o.ID, o.Code, o.Email, string(o.Status), o.IsRedeemed,
		loginInfo, accessCode, processing, completed,
		o.CreatedAt, o.UpdatedAt,
	}, nil
}

// jsonb кодирует вложенный объект; nil-указатель записывается как NULL.
func jsonb[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return string(b), nil
}
