package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"sourcing-negotiation-api/internal/common"
	"sourcing-negotiation-api/internal/entity"
	"sourcing-negotiation-api/internal/repo/repo_errors"
	"sourcing-negotiation-api/pkg/postgres"
	"time"

	"github.com/google/uuid"
)

type SessionRepo struct {
	*postgres.Postgres
}

func NewSessionRepo(pgdb *postgres.Postgres) *SessionRepo {
	return &SessionRepo{pgdb}
}

// CreateSession inserts the session row, every supplier and every seeded
// initial buyer message in one transaction, so a partially populated session
// never becomes visible.
func (r *SessionRepo) CreateSession(ctx context.Context, input *entity.CreateSessionInput) (uuid.UUID, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}

	createSessionSql, args, _ := r.SqlBuilder.
		Insert("negotiation_session").
		Columns("opportunity_id", "opportunity_title", "opportunity_data", "target_price", "extracted_requirements", "status").
		Values(input.OpportunityId, input.OpportunityTitle, input.OpportunityData, input.TargetPrice, input.ExtractedRequirements, common.SessionActive).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	var sessionId uuid.UUID
	err = tx.QueryRow(createSessionSql, args...).Scan(&sessionId)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	for _, supplier := range input.Suppliers {
		createSupplierSql, args, _ := r.SqlBuilder.
			Insert("supplier").
			Columns("session_id", "company_name", "industry", "status").
			Values(sessionId, supplier.CompanyName, supplier.Industry, common.SupplierPending).
			Suffix("RETURNING id").
			RunWith(tx).
			ToSql()

		var supplierId uuid.UUID
		if err = tx.QueryRow(createSupplierSql, args...).Scan(&supplierId); err != nil {
			if e := tx.Rollback(); e != nil {
				return uuid.Nil, e
			}

			return uuid.Nil, err
		}

		createMessageSql, args, _ := r.SqlBuilder.
			Insert("message").
			Columns("supplier_id", "sender", "content").
			Values(supplierId, common.SenderBuyer, supplier.InitialMessage).
			RunWith(tx).
			ToSql()

		if _, err = tx.Exec(createMessageSql, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return uuid.Nil, e
			}

			return uuid.Nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	return sessionId, nil
}

func (r *SessionRepo) GetSessionById(ctx context.Context, id string) (*entity.NegotiationSession, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getSessionSql, args, _ := r.SqlBuilder.
		Select("id", "opportunity_id", "opportunity_title", "opportunity_data", "target_price", "extracted_requirements", "status", "created_at").
		From("negotiation_session").
		Where("id = ?", uuidForm).
		ToSql()

	var session entity.NegotiationSession
	var createdAt time.Time
	row := r.Database.QueryRow(getSessionSql, args...)
	err = row.Scan(&session.Id, &session.OpportunityId, &session.OpportunityTitle, &session.OpportunityData,
		&session.TargetPrice, &session.ExtractedRequirements, &session.Status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	session.CreatedAt = createdAt.Format(time.RFC3339)

	return &session, nil
}
