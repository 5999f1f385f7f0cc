package service

import (
	"context"
	"io"
	"sourcing-negotiation-api/internal/entity"
	"sourcing-negotiation-api/internal/repo"
	"sourcing-negotiation-api/pkg/gemini"
)

type Diagnostics interface {
	Ping() error
}

type Negotiation interface {
	StartNegotiation(ctx context.Context, input *entity.StartNegotiationInput) (*entity.SessionOutputModel, error)
	GetSessionById(ctx context.Context, sessionId string) (*entity.SessionOutputModel, error)
	RespondToSupplier(ctx context.Context, sessionId, supplierId string) error
	AcceptQuote(ctx context.Context, sessionId, supplierId string) error
}

type Analysis interface {
	AnalyzeSolicitations(ctx context.Context, urls []string) (map[string]interface{}, error)
}

// TextGenerator is the role-tagged completion capability of the LLM provider.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string, temperature float32) (string, error)
}

// DocumentGateway covers the provider's file store plus multi-file completion.
type DocumentGateway interface {
	UploadDocument(ctx context.Context, r io.Reader, mimeType string) (gemini.Document, error)
	CompleteWithDocuments(ctx context.Context, instruction string, docs []gemini.Document) (string, error)
}

type LLMGateway interface {
	TextGenerator
	DocumentGateway
}

type Services struct {
	Diagnostics Diagnostics
	Negotiation Negotiation
	Analysis    Analysis
}

func NewServices(repos *repo.Repositories, llm LLMGateway) *Services {
	return &Services{
		Diagnostics: NewDiagnosticsService(repos),
		Negotiation: NewNegotiationService(repos, llm),
		Analysis:    NewAnalysisService(llm, nil),
	}
}
