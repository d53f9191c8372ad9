package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"go.uber.org/zap"
)

const DefaultChunkSize = 500

// Opener abre una conexión; se reemplaza en tests
type Opener func(ctx context.Context, driver, dsn string) (*sql.DB, error)

// Resolver busca en lt_order los ids de los números de orden extraídos.
// Cada llamada a Resolve abre y cierra su propia conexión.
type Resolver struct {
	driver    string
	dsn       string
	chunkSize int
	open      Opener
	logger    *zap.Logger
}

type Option func(*Resolver)

func WithChunkSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

func WithOpener(open Opener) Option {
	return func(r *Resolver) { r.open = open }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func NewResolver(connectionString string, opts ...Option) (*Resolver, error) {
	driver, dsn, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, apperrors.Database("invalid connection string", err)
	}

	r := &Resolver{
		driver:    driver,
		dsn:       dsn,
		chunkSize: DefaultChunkSize,
		open:      NewDB,
		logger:    zap.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Resolver) Driver() string {
	return r.driver
}

// Resolve devuelve los pares (id, order_no) existentes. Con un set vacío no
// toca la base.
func (r *Resolver) Resolve(ctx context.Context, orders *models.OrderSet) ([]models.OrderRecord, error) {
	if orders.Len() == 0 {
		return nil, nil
	}

	db, err := r.open(ctx, r.driver, r.dsn)
	if err != nil {
		return nil, apperrors.Database("connect", err)
	}
	defer CloseDB(db, r.logger)

	values := orders.Values()
	records := make([]models.OrderRecord, 0, len(values))

	for start := 0; start < len(values); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(values) {
			end = len(values)
		}

		chunk, err := r.queryChunk(ctx, db, values[start:end])
		if err != nil {
			return nil, err
		}
		records = append(records, chunk...)
	}

	r.logger.Info("orders resolved",
		zap.String("driver", r.driver),
		zap.Int("requested", len(values)),
		zap.Int("found", len(records)),
	)

	return records, nil
}

func (r *Resolver) queryChunk(ctx context.Context, db *sql.DB, orderNos []string) ([]models.OrderRecord, error) {
	args := make([]interface{}, len(orderNos))
	for i, v := range orderNos {
		args[i] = v
	}

	rows, err := db.QueryContext(ctx, BuildQuery(r.driver, len(orderNos)), args...)
	if err != nil {
		return nil, apperrors.Database("query", err)
	}
	defer rows.Close()

	var records []models.OrderRecord
	for rows.Next() {
		var rec models.OrderRecord
		if err := rows.Scan(&rec.OrderNo, &rec.ID); err != nil {
			return nil, apperrors.Database("scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database("rows", err)
	}
	return records, nil
}

// BuildQuery arma el SELECT con n placeholders en el formato del driver
func BuildQuery(driver string, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		if driver == DriverPostgres {
			placeholders[i] = "$" + strconv.Itoa(i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf("SELECT order_no, id FROM lt_order WHERE order_no IN (%s)", strings.Join(placeholders, ", "))
}
