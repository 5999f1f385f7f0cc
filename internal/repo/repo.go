package repo

import (
	"context"
	"sourcing-negotiation-api/internal/entity"
	"sourcing-negotiation-api/internal/repo/pgdb"
	"sourcing-negotiation-api/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

type Session interface {
	// CreateSession persists the session together with all its suppliers and
	// their seeded initial buyer messages in one transaction.
	CreateSession(ctx context.Context, input *entity.CreateSessionInput) (uuid.UUID, error)
	GetSessionById(ctx context.Context, id string) (*entity.NegotiationSession, error)
}

type Supplier interface {
	GetSupplierById(ctx context.Context, id string) (*entity.Supplier, error)
	GetSessionSuppliers(ctx context.Context, sessionId uuid.UUID) ([]entity.Supplier, error)
	// RecordSupplierReply applies one advance transition: the supplier message,
	// any status/price updates, and the optional buyer counter, all in one
	// transaction guarded by an optimistic check on the observed round.
	RecordSupplierReply(ctx context.Context, input *entity.SupplierReplyInput) error
	// CompleteSupplier marks the supplier accepted, overwriting the final
	// price when one is given.
	CompleteSupplier(ctx context.Context, supplierId uuid.UUID, finalPrice *float64) error
}

type Message interface {
	GetSupplierMessages(ctx context.Context, supplierId uuid.UUID) ([]entity.Message, error)
	GetLastSupplierReply(ctx context.Context, supplierId uuid.UUID) (*entity.Message, error)
	CountMessagesBySender(ctx context.Context, supplierId uuid.UUID, sender string) (int, error)
}

type Repositories struct {
	Diagnostics
	Session
	Supplier
	Message
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics: pgdb.NewDiagnosticsRepo(p),
		Session:     pgdb.NewSessionRepo(p),
		Supplier:    pgdb.NewSupplierRepo(p),
		Message:     pgdb.NewMessageRepo(p),
	}
}
