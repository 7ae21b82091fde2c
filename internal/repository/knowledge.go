package repository

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/dodam-health/glucoquest/internal/database"
	"github.com/dodam-health/glucoquest/internal/domain"
	"gorm.io/gorm"
)

// KnowledgeRepo stores knowledge-base documents with their embedding
// vectors and ranks them by cosine similarity in process.
type KnowledgeRepo struct {
	db *gorm.DB
}

func NewKnowledgeRepo(db *gorm.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Add inserts a document with a precomputed embedding.
func (r *KnowledgeRepo) Add(ctx context.Context, title, category, content string, keywords []string, embedding []float32) error {
	kw, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	doc := database.KnowledgeDocument{
		Title:     title,
		Category:  category,
		Content:   content,
		Keywords:  string(kw),
		Embedding: encodeVector(embedding),
	}
	if err := r.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return fmt.Errorf("failed to save knowledge document: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (r *KnowledgeRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&database.KnowledgeDocument{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count knowledge documents: %w", err)
	}
	return n, nil
}

// Nearest returns the topK documents most similar to the query vector.
func (r *KnowledgeRepo) Nearest(ctx context.Context, query []float32, topK int) ([]domain.KnowledgeSnippet, error) {
	var rows []database.KnowledgeDocument
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load knowledge documents: %w", err)
	}

	type scored struct {
		snippet domain.KnowledgeSnippet
		score   float64
	}
	candidates := make([]scored, 0, len(rows))
	for _, row := range rows {
		vec, err := decodeVector(row.Embedding)
		if err != nil {
			continue
		}
		var keywords []string
		_ = json.Unmarshal([]byte(row.Keywords), &keywords)
		candidates = append(candidates, scored{
			snippet: domain.KnowledgeSnippet{
				Title:    row.Title,
				Category: row.Category,
				Content:  row.Content,
				Keywords: keywords,
				Score:    cosineSimilarity(query, vec),
			},
			score: cosineSimilarity(query, vec),
		})
	}

	// Selection sort for the small topK keeps this dependency-free.
	results := make([]domain.KnowledgeSnippet, 0, topK)
	for len(results) < topK && len(candidates) > 0 {
		best := 0
		for i := 1; i < len(candidates); i++ {
			if candidates[i].score > candidates[best].score {
				best = i
			}
		}
		results = append(results, candidates[best].snippet)
		candidates = append(candidates[:best], candidates[best+1:]...)
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func encodeVector(v []float32) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &v); err != nil {
		return nil, err
	}
	return v, nil
}
