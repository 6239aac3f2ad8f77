// Package search indexes accepted submissions into Elasticsearch so staff can
// find applications by any field. Indexing is best-effort: a failure is
// logged and reported but never blocks the intake flow.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Indexer{client: client, index: index, logger: log}
}

// submissionDocument is the indexed shape: the aggregated record plus the
// reference and session it came from.
type submissionDocument struct {
	Reference string                  `json:"reference"`
	SessionID string                  `json:"sessionId"`
	Record    models.AggregatedRecord `json:"record"`
	IndexedAt string                  `json:"indexedAt"`
}

// IndexSubmission writes one accepted submission, keyed by its application
// reference so re-submissions of the same application overwrite.
func (i *Indexer) IndexSubmission(ctx context.Context, reference, sessionID string, record models.AggregatedRecord) error {
	doc := submissionDocument{
		Reference: reference,
		SessionID: sessionID,
		Record:    record,
		IndexedAt: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode submission document: %w", err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(reference),
		i.client.Index.WithRefresh("false"),
	)
	if err != nil {
		i.logger.Error("Failed to index submission", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
		return errors.NewIndexingFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		i.logger.Error("Elasticsearch rejected submission document", map[string]interface{}{
			"reference": reference,
			"status":    res.Status(),
			"body":      string(raw),
		})
		return errors.NewIndexingFailedError(fmt.Errorf("index request failed: %s", res.Status()))
	}

	i.logger.Debug("Submission indexed", map[string]interface{}{
		"reference": reference,
		"index":     i.index,
	})
	return nil
}
