package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sourcing-negotiation-api/internal/prompts"
	"sourcing-negotiation-api/pkg/gemini"
	"strconv"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

type AnalysisService struct {
	gateway DocumentGateway
	client  *http.Client
}

func NewAnalysisService(gateway DocumentGateway, client *http.Client) *AnalysisService {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	return &AnalysisService{
		gateway: gateway,
		client:  client,
	}
}

// AnalyzeSolicitations fetches every document, stages it to the provider's
// file store and submits one multi-file extraction request. Individual
// download or upload failures are logged and skipped; the batch fails only
// when nothing could be uploaded.
func (s *AnalysisService) AnalyzeSolicitations(ctx context.Context, urls []string) (map[string]interface{}, error) {
	docs := make([]gemini.Document, 0, len(urls))
	for _, url := range urls {
		doc, err := s.fetchAndUpload(ctx, url)
		if err != nil {
			log.Printf("error downloading or uploading file from %s: %v", url, err)
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, ErrNoDocumentsProcessed
	}

	raw, err := s.gateway.CompleteWithDocuments(ctx, prompts.AnalysisInstruction, docs)
	if err != nil {
		return nil, err
	}

	parsed, err := parseAnalysisOutput(raw)
	if err != nil {
		return nil, &AnalysisParseError{RawOutput: raw, Err: err}
	}

	return parsed, nil
}

func (s *AnalysisService) fetchAndUpload(ctx context.Context, url string) (gemini.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gemini.Document{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return gemini.Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return gemini.Document{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "solicitation-*.pdf")
	if err != nil {
		return gemini.Document{}, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return gemini.Document{}, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return gemini.Document{}, err
	}

	return s.gateway.UploadDocument(ctx, tmp, "application/pdf")
}

// parseAnalysisOutput decodes a possibly doubly-encoded JSON reply: an outer
// string wrapper (surrounding quote pair plus backslash escapes) around the
// actual payload. Leniencies like fences or trailing commas go through repair
// before the structured parse.
func parseAnalysisOutput(raw string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(raw)
	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		if unquoted, err := strconv.Unquote(cleaned); err == nil {
			cleaned = unquoted
		}
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return result, nil
	}

	repaired, err := jsonrepair.RepairJSON(cleaned)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return nil, err
	}

	return result, nil
}
