package service

import (
	"fmt"
	"sourcing-negotiation-api/internal/common"
	"sourcing-negotiation-api/internal/entity"

	"github.com/google/uuid"
)

func mapSession(session *entity.NegotiationSession, suppliers []entity.Supplier, messages map[uuid.UUID][]entity.Message) *entity.SessionOutputModel {
	supplierModels := make([]entity.SupplierOutputModel, 0, len(suppliers))
	for _, supplier := range suppliers {
		supplierModels = append(supplierModels, *mapSupplier(&supplier, messages[supplier.Id]))
	}

	return &entity.SessionOutputModel{
		Id:            session.Id.String(),
		OpportunityId: session.OpportunityId,
		Status:        session.Status,
		CreatedAt:     session.CreatedAt,
		Suppliers:     supplierModels,
	}
}

func mapSupplier(supplier *entity.Supplier, messages []entity.Message) *entity.SupplierOutputModel {
	messageModels := make([]entity.MessageOutputModel, 0, len(messages))
	for _, message := range messages {
		messageModels = append(messageModels, *mapMessage(&message))
	}

	return &entity.SupplierOutputModel{
		Id:               supplier.Id.String(),
		CompanyName:      supplier.CompanyName,
		Status:           supplier.Status,
		NegotiationRound: supplier.NegotiationRound,
		Messages:         messageModels,
		Metrics:          supplierMetrics(supplier),
	}
}

func mapMessage(message *entity.Message) *entity.MessageOutputModel {
	return &entity.MessageOutputModel{
		Sender:         message.Sender,
		Content:        message.Content,
		PriceMentioned: message.PriceMentioned,
		CreatedAt:      message.CreatedAt,
	}
}

// supplierMetrics is populated only for completed suppliers with both prices.
func supplierMetrics(supplier *entity.Supplier) *entity.SupplierMetrics {
	if supplier.Status != common.SupplierCompleted || supplier.InitialPrice == nil || supplier.FinalPrice == nil {
		return nil
	}

	savings := *supplier.InitialPrice - *supplier.FinalPrice

	return &entity.SupplierMetrics{
		InitialPrice:   fmt.Sprintf("%.2f", *supplier.InitialPrice),
		FinalPrice:     fmt.Sprintf("%.2f", *supplier.FinalPrice),
		Savings:        fmt.Sprintf("%.2f", savings),
		SavingsPercent: fmt.Sprintf("%.1f", savings / *supplier.InitialPrice*100),
	}
}
