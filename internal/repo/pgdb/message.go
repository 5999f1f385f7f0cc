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

type MessageRepo struct {
	*postgres.Postgres
}

func NewMessageRepo(pgdb *postgres.Postgres) *MessageRepo {
	return &MessageRepo{pgdb}
}

func (r *MessageRepo) GetSupplierMessages(ctx context.Context, supplierId uuid.UUID) ([]entity.Message, error) {
	getMessagesSql, args, _ := r.SqlBuilder.
		Select("id", "supplier_id", "sender", "content", "price_mentioned", "created_at").
		From("message").
		Where("supplier_id = ?", supplierId).
		OrderBy("created_at ASC", "seq ASC").
		ToSql()

	rows, err := r.Database.Query(getMessagesSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]entity.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return messages, err
		}
		messages = append(messages, *message)
	}
	if err = rows.Err(); err != nil {
		return messages, err
	}

	return messages, nil
}

func (r *MessageRepo) GetLastSupplierReply(ctx context.Context, supplierId uuid.UUID) (*entity.Message, error) {
	getLastReplySql, args, _ := r.SqlBuilder.
		Select("id", "supplier_id", "sender", "content", "price_mentioned", "created_at").
		From("message").
		Where("supplier_id = ?", supplierId).
		Where("sender = ?", common.SenderSupplier).
		OrderBy("created_at DESC", "seq DESC").
		Limit(1).
		ToSql()

	message, err := scanMessage(r.Database.QueryRow(getLastReplySql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return message, nil
}

func (r *MessageRepo) CountMessagesBySender(ctx context.Context, supplierId uuid.UUID, sender string) (int, error) {
	countSql, args, _ := r.SqlBuilder.
		Select("count(id)").
		From("message").
		Where("supplier_id = ?", supplierId).
		Where("sender = ?", sender).
		ToSql()

	var count int
	if err := r.Database.QueryRow(countSql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func scanMessage(row rowScanner) (*entity.Message, error) {
	var message entity.Message
	var priceMentioned sql.NullFloat64
	var createdAt time.Time

	err := row.Scan(&message.Id, &message.SupplierId, &message.Sender, &message.Content, &priceMentioned, &createdAt)
	if err != nil {
		return nil, err
	}

	if priceMentioned.Valid {
		message.PriceMentioned = &priceMentioned.Float64
	}
	message.CreatedAt = createdAt.Format(time.RFC3339)

	return &message, nil
}
