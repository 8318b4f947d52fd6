package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"foodshare/internal/models"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Postgres stores each collection as a table of JSONB documents keyed by a
// hex object id, so ids stay interchangeable with the Mongo driver.
type Postgres struct {
	db *sql.DB

	mu          sync.Mutex
	collections map[string]*pgCollection
}

func NewPostgres(uri string) (*Postgres, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("db.NewPostgres: %w", err)
	}
	return &Postgres{db: db, collections: make(map[string]*pgCollection)}, nil
}

func (p *Postgres) Collection(name string) Collection {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.collections[name]
	if !ok {
		c = &pgCollection{db: p.db, name: name, table: pq.QuoteIdentifier(name)}
		p.collections[name] = c
	}
	return c
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close(context.Context) error {
	return p.db.Close()
}

type pgCollection struct {
	db    *sql.DB
	name  string
	table string

	mu    sync.Mutex
	ready bool
}

// pgError keeps the server message and SQLSTATE in the error text.
func pgError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: postgres %s (code %s): %w", op, pqErr.Message, pqErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ensure creates the backing table on first use. A failed attempt is retried
// by the next call.
func (c *pgCollection) ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(24) PRIMARY KEY,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (doc jsonb_path_ops);
	`, c.table, pq.QuoteIdentifier(c.name+"_doc_idx"), c.table)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return pgError("db.postgres.ensure", err)
	}
	c.ready = true
	return nil
}

func decodeRow(id string, raw []byte) (models.Document, error) {
	d := models.Document{}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	d["_id"] = id
	return d, nil
}

func encodeDoc(d models.Document) ([]byte, error) {
	body := make(models.Document, len(d))
	for k, v := range d {
		if k != "_id" {
			body[k] = v
		}
	}
	return json.Marshal(body)
}

func (c *pgCollection) Find(ctx context.Context, filter Filter) ([]models.Document, error) {
	const op = "db.postgres.Find"

	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	if filter == nil {
		filter = Filter{}
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("%s: encode filter: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT id, doc FROM %s WHERE doc @> $1::jsonb ORDER BY created_at, id`, c.table)
	rows, err := c.db.QueryContext(ctx, query, string(raw))
	if err != nil {
		return nil, pgError(op, err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, pgError(op, err)
		}
		d, err := decodeRow(id, doc)
		if err != nil {
			return nil, fmt.Errorf("%s: decode %s: %w", op, id, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, pgError(op, err)
	}

	return docs, nil
}

func (c *pgCollection) EstimatedCount(ctx context.Context) (int64, error) {
	const op = "db.postgres.EstimatedCount"

	if err := c.ensure(ctx); err != nil {
		return 0, err
	}

	var n int64
	if err := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, c.table)).Scan(&n); err != nil {
		return 0, pgError(op, err)
	}
	return n, nil
}

func (c *pgCollection) FindByID(ctx context.Context, id string) (models.Document, error) {
	const op = "db.postgres.FindByID"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	var doc []byte
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, c.table)
	err = c.db.QueryRowContext(ctx, query, oid.Hex()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, pgError(op, err)
	}

	d, err := decodeRow(oid.Hex(), doc)
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return d, nil
}

func (c *pgCollection) Insert(ctx context.Context, doc models.Document) (*models.InsertResult, error) {
	const op = "db.postgres.Insert"

	if doc == nil {
		return nil, fmt.Errorf("%s: nil document", op)
	}
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	var id string
	switch v := doc["_id"].(type) {
	case nil:
		id = primitive.NewObjectID().Hex()
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		oid, err := parseID(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		id = oid.Hex()
	default:
		return nil, fmt.Errorf("%s: %w: unsupported _id type %T", op, ErrInvalidID, v)
	}

	raw, err := encodeDoc(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: encode: %w", op, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, c.table)
	if _, err := c.db.ExecContext(ctx, query, id, string(raw)); err != nil {
		return nil, pgError(op, err)
	}

	return &models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *pgCollection) UpsertByID(ctx context.Context, id string, fields models.Document) (*models.UpdateResult, error) {
	const op = "db.postgres.UpsertByID"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	raw, err := encodeDoc(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: encode: %w", op, err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, pgError(op, err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT true FROM %s WHERE id = $1 FOR UPDATE`, c.table),
		oid.Hex(),
	).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, pgError(op, err)
	}

	res := &models.UpdateResult{Acknowledged: true}
	if !exists {
		query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, c.table)
		if _, err := tx.ExecContext(ctx, query, oid.Hex(), string(raw)); err != nil {
			return nil, pgError(op, err)
		}
		res.UpsertedCount = 1
		res.UpsertedID = oid.Hex()
	} else {
		query := fmt.Sprintf(`
			UPDATE %s SET doc = doc || $2::jsonb
			WHERE id = $1 AND doc || $2::jsonb IS DISTINCT FROM doc`, c.table)
		out, err := tx.ExecContext(ctx, query, oid.Hex(), string(raw))
		if err != nil {
			return nil, pgError(op, err)
		}
		modified, err := out.RowsAffected()
		if err != nil {
			return nil, pgError(op, err)
		}
		res.MatchedCount = 1
		res.ModifiedCount = modified
	}

	if err := tx.Commit(); err != nil {
		return nil, pgError(op, err)
	}
	return res, nil
}

func (c *pgCollection) DeleteByID(ctx context.Context, id string) (*models.DeleteResult, error) {
	const op = "db.postgres.DeleteByID"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	out, err := c.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.table), oid.Hex())
	if err != nil {
		return nil, pgError(op, err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return nil, pgError(op, err)
	}

	return &models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}
