/**
* Name: 			index.go
* Description: 		문서 디렉토리 위의 벡터 인덱스 (chromem-go)
* Workflow: 		저장된 인덱스 로드, 없으면 ./data 전체를 임베딩 후 저장
 */
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"SupabaseAuthPortal/internal/logger"

	chromem "github.com/philippgille/chromem-go"
	"github.com/sirupsen/logrus"
)

const collectionName = "docs"

// 인덱싱 대상 확장자
var docExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".rst": true,
}

type Index struct {
	db      *chromem.DB
	dataDir string
	embed   chromem.EmbeddingFunc

	// Rebuild가 컬렉션을 교체하는 동안 조회가 끼어들지 못하게 막는다
	mu  sync.RWMutex
	col *chromem.Collection
}

// Open은 indexDir의 저장본을 로드하고, 컬렉션이 비어 있으면 dataDir에서 새로 만든다.
func Open(ctx context.Context, dataDir, indexDir, openAIKey string) (*Index, error) {
	embed := chromem.NewEmbeddingFuncOpenAI(openAIKey, chromem.EmbeddingModelOpenAI3Small)
	return OpenWithEmbedding(ctx, dataDir, indexDir, embed)
}

// OpenWithEmbedding은 임베딩 함수를 직접 받는 변형이다.
func OpenWithEmbedding(ctx context.Context, dataDir, indexDir string, embed chromem.EmbeddingFunc) (*Index, error) {
	db, err := chromem.NewPersistentDB(indexDir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open index directory: %w", err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	idx := &Index{db: db, col: col, dataDir: dataDir, embed: embed}

	if col.Count() == 0 {
		logger.Log.WithField("data_dir", dataDir).Info("No persisted index found, building")
		if err := idx.build(ctx); err != nil {
			return nil, err
		}
	} else {
		logger.Log.WithFields(logrus.Fields{
			"index_dir": indexDir,
			"documents": col.Count(),
		}).Info("Loaded persisted index")
	}
	return idx, nil
}

// Rebuild는 컬렉션을 버리고 dataDir에서 다시 만든다.
// 재생성이 끝날 때까지 쓰기 잠금을 잡아 조회와 직렬화된다.
// ctx 데드라인 초과 시 context.DeadlineExceeded를 그대로 반환한다.
func (idx *Index) Rebuild(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := idx.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("failed to reset collection: %w", err)
	}
	col, err := idx.db.GetOrCreateCollection(collectionName, nil, idx.embed)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	idx.col = col
	return idx.build(ctx)
}

func (idx *Index) build(ctx context.Context) error {
	docs, err := readDocuments(idx.dataDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found under %s", idx.dataDir)
	}

	if err := idx.col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to index documents: %w", err)
	}
	logger.Log.WithField("documents", len(docs)).Info("Index built")
	return nil
}

// Retrieve는 질문과 가장 유사한 문서 내용을 반환한다.
func (idx *Index) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if count := idx.col.Count(); count < topK {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := idx.col.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}

	passages := make([]string, 0, len(results))
	for _, r := range results {
		passages = append(passages, r.Content)
	}
	return passages, nil
}

func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.col.Count()
}

func readDocuments(dataDir string) ([]chromem.Document, error) {
	var docs []chromem.Document

	err := filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !docExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if len(strings.TrimSpace(string(content))) == 0 {
			return nil
		}

		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, chromem.Document{
			ID:       rel,
			Content:  string(content),
			Metadata: map[string]string{"source": rel},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read document directory: %w", err)
	}
	return docs, nil
}
