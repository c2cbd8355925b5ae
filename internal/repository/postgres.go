package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"campusguide/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Embedder turns texts into embedding vectors.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// PostgresRepository stores colleges with their embeddings in PostgreSQL
// and serves filtered vector similarity queries over them.
type PostgresRepository struct {
	db       *sqlx.DB
	embedder Embedder
}

// NewPostgresRepository connects to PostgreSQL and ensures the college
// schema exists. dimensions is the embedding vector width.
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int, embedder Embedder, dimensions int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{db: db, embedder: embedder}
	if err := repo.ensureSchema(context.Background(), dimensions); err != nil {
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// ensureSchema creates the vector extension and the colleges table.
func (r *PostgresRepository) ensureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		dimensions = 1536
	}

	if _, err := r.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS colleges (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			city        TEXT NOT NULL DEFAULT '',
			course      TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL DEFAULT '',
			fees        DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_package DOUBLE PRECISION NOT NULL DEFAULT 0,
			ranking     INTEGER NOT NULL DEFAULT 0,
			exam        TEXT NOT NULL DEFAULT '',
			row_hash    TEXT NOT NULL UNIQUE,
			content     TEXT NOT NULL DEFAULT '',
			embedding   vector(%d),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimensions)
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create colleges table: %w", err)
	}

	return nil
}

// queryColumns are the columns selected for search results; the embedding
// itself is never read back.
const queryColumns = `id, name, city, course, type, fees, avg_package, ranking, exam, row_hash, content`

// Query embeds the search text and returns the k nearest colleges by
// cosine similarity, restricted by the metadata predicate when one is
// given and dropping candidates scoring below the threshold.
func (r *PostgresRepository) Query(ctx context.Context, text string, k int, scoreThreshold float64, predicate map[string]any) ([]model.CollegeSearchResult, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	if k <= 0 {
		k = 10
	}

	embeddings, err := r.embedder.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}
	vec := pgvector.NewVector(embeddings[0])

	whereClauses := []string{"embedding IS NOT NULL"}
	args := []interface{}{vec}
	argIndex := 2

	predClauses, predArgs, nextIndex, err := predicateToSQL(predicate, argIndex)
	if err != nil {
		return nil, err
	}
	whereClauses = append(whereClauses, predClauses...)
	args = append(args, predArgs...)
	argIndex = nextIndex

	if scoreThreshold > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("1 - (embedding <=> $1) >= $%d", argIndex))
		args = append(args, scoreThreshold)
	}

	query := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1) AS score
		FROM colleges
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT %d`,
		queryColumns, strings.Join(whereClauses, " AND "), k)

	var results []model.CollegeSearchResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	return results, nil
}

// predicateColumns are the metadata attributes a predicate may constrain.
var predicateColumns = map[string]bool{
	"name":        true,
	"city":        true,
	"course":      true,
	"type":        true,
	"exam":        true,
	"fees":        true,
	"avg_package": true,
	"ranking":     true,
}

// comparisonSQL maps predicate comparison symbols to SQL operators.
var comparisonSQL = map[string]string{
	"$lt":  "<",
	"$lte": "<=",
	"$gt":  ">",
	"$gte": ">=",
	"$eq":  "=",
}

// predicateToSQL translates a generic metadata predicate into SQL WHERE
// clauses with numbered placeholders starting at argIndex. It is the only
// place where the predicate grammar meets the SQL backend; unsupported
// attributes or operators are an error rather than a silent no-op.
func predicateToSQL(predicate map[string]any, argIndex int) (clauses []string, args []interface{}, nextIndex int, err error) {
	keys := make([]string, 0, len(predicate))
	for key := range predicate {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !predicateColumns[key] {
			return nil, nil, 0, fmt.Errorf("unsupported filter attribute: %q", key)
		}

		switch value := predicate[key].(type) {
		case map[string]any:
			ops := make([]string, 0, len(value))
			for op := range value {
				ops = append(ops, op)
			}
			sort.Strings(ops)

			for _, op := range ops {
				if op == "$in" {
					members, err := stringMembers(value[op])
					if err != nil {
						return nil, nil, 0, fmt.Errorf("filter %q: %w", key, err)
					}
					clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", key, argIndex))
					args = append(args, pq.Array(members))
					argIndex++
					continue
				}
				sqlOp, ok := comparisonSQL[op]
				if !ok {
					return nil, nil, 0, fmt.Errorf("filter %q: unsupported operator %q", key, op)
				}
				clauses = append(clauses, fmt.Sprintf("%s %s $%d", key, sqlOp, argIndex))
				args = append(args, value[op])
				argIndex++
			}
		default:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", key, argIndex))
			args = append(args, value)
			argIndex++
		}
	}

	return clauses, args, argIndex, nil
}

// stringMembers coerces an $in membership list to strings.
func stringMembers(value any) ([]string, error) {
	switch list := value.(type) {
	case []string:
		return list, nil
	case []any:
		members := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string $in member %v", item)
			}
			members = append(members, s)
		}
		return members, nil
	default:
		return nil, fmt.Errorf("$in expects a list, got %T", value)
	}
}

// InsertColleges inserts colleges with their embeddings in one transaction.
// Rows whose hash already exists are left untouched.
func (r *PostgresRepository) InsertColleges(ctx context.Context, colleges []model.College) (int, error) {
	if len(colleges) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO colleges (name, city, course, type, fees, avg_package, ranking, exam, row_hash, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (row_hash) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range colleges {
		res, err := stmt.ExecContext(ctx,
			c.Name, c.City, c.Course, c.Type, c.Fees, c.AvgPackage, c.Ranking, c.Exam,
			c.RowHash, c.Content, c.Embedding)
		if err != nil {
			return 0, fmt.Errorf("failed to insert college %q: %w", c.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// ListRowHashes returns the hashes of all indexed rows, used to skip
// already-indexed data during ingestion.
func (r *PostgresRepository) ListRowHashes(ctx context.Context) (map[string]bool, error) {
	var hashes []string
	if err := r.db.SelectContext(ctx, &hashes, `SELECT row_hash FROM colleges`); err != nil {
		return nil, fmt.Errorf("failed to list row hashes: %w", err)
	}

	set := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		set[h] = true
	}
	return set, nil
}

// Count returns the number of indexed colleges.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM colleges`); err != nil {
		return 0, fmt.Errorf("failed to count colleges: %w", err)
	}
	return count, nil
}

// Clear removes all indexed colleges.
func (r *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE colleges`); err != nil {
		return fmt.Errorf("failed to clear colleges: %w", err)
	}
	return nil
}
