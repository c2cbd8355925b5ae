package ingest

import (
	"context"
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"campusguide/internal/model"

	"github.com/pgvector/pgvector-go"
)

// Store is the persistence side of ingestion.
type Store interface {
	ListRowHashes(ctx context.Context) (map[string]bool, error)
	InsertColleges(ctx context.Context, colleges []model.College) (int, error)
}

// Embedder turns college descriptions into embedding vectors.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// collegeColumns are the expected CSV header names.
var collegeColumns = []string{"name", "type", "city", "course", "fees", "avg_package", "ranking", "exam"}

// Record is one raw CSV row keyed by header name.
type Record map[string]string

// LoadCSV reads the college dataset. The header row names the columns;
// missing columns are treated as empty.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{}
		for i, name := range header {
			if i < len(row) {
				rec[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// CanonicalDescription builds the pipe-joined row text that is both the
// embedded content and the input of the row hash. Field order is fixed;
// changing it would re-index every row.
func CanonicalDescription(rec Record) string {
	parts := make([]string, 0, len(collegeColumns))
	for _, col := range collegeColumns {
		parts = append(parts, rec[col])
	}
	return strings.Join(parts, "|")
}

// RowHash is the md5 hex digest of the canonical description.
func RowHash(desc string) string {
	sum := md5.Sum([]byte(desc))
	return hex.EncodeToString(sum[:])
}

// toCollege parses a raw record into a typed college. Unparsable numbers
// stay zero; presentation layers treat zero as "not specified".
func toCollege(rec Record) model.College {
	fees, _ := strconv.ParseFloat(rec["fees"], 64)
	avgPackage, _ := strconv.ParseFloat(rec["avg_package"], 64)
	ranking, _ := strconv.Atoi(rec["ranking"])

	desc := CanonicalDescription(rec)
	return model.College{
		Name:       rec["name"],
		City:       rec["city"],
		Course:     rec["course"],
		Type:       strings.ToLower(rec["type"]),
		Fees:       fees,
		AvgPackage: avgPackage,
		Ranking:    ranking,
		Exam:       rec["exam"],
		RowHash:    RowHash(desc),
		Content:    desc,
	}
}

// IndexCSV loads the dataset and indexes the rows that are not already
// stored, embedding their canonical descriptions in one batched call.
// Returns the number of newly indexed colleges.
func IndexCSV(ctx context.Context, path string, store Store, embedder Embedder) (int, error) {
	records, err := LoadCSV(path)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		log.Printf("Dataset %s is empty, nothing to index", path)
		return 0, nil
	}

	existing, err := store.ListRowHashes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing rows: %w", err)
	}

	colleges := make([]model.College, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		college := toCollege(rec)
		if existing[college.RowHash] || seen[college.RowHash] {
			continue
		}
		seen[college.RowHash] = true
		colleges = append(colleges, college)
	}

	if len(colleges) == 0 {
		log.Printf("All %d dataset rows already indexed", len(records))
		return 0, nil
	}

	texts := make([]string, len(colleges))
	for i, c := range colleges {
		texts[i] = c.Content
	}
	embeddings, err := embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed colleges: %w", err)
	}
	if len(embeddings) != len(colleges) {
		return 0, fmt.Errorf("embedding count mismatch: got %d for %d colleges", len(embeddings), len(colleges))
	}
	for i := range colleges {
		colleges[i].Embedding = pgvector.NewVector(embeddings[i])
	}

	inserted, err := store.InsertColleges(ctx, colleges)
	if err != nil {
		return 0, err
	}

	log.Printf("Indexed %d new colleges (skipped %d already indexed)", inserted, len(records)-inserted)
	return inserted, nil
}
