package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sourcing-negotiation-api/internal/common"
	"sourcing-negotiation-api/internal/entity"
	"sourcing-negotiation-api/internal/pricing"
	"sourcing-negotiation-api/internal/prompts"
	"sourcing-negotiation-api/internal/repo"
	"sourcing-negotiation-api/internal/repo/repo_errors"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/google/uuid"
)

type NegotiationService struct {
	sessionRepo  repo.Session
	supplierRepo repo.Supplier
	messageRepo  repo.Message
	llm          TextGenerator
}

func NewNegotiationService(repos *repo.Repositories, llm TextGenerator) *NegotiationService {
	return &NegotiationService{
		sessionRepo:  repos.Session,
		supplierRepo: repos.Supplier,
		messageRepo:  repos.Message,
		llm:          llm,
	}
}

// StartNegotiation extracts requirements once, seeds one outbound buyer
// message per supplier and persists the whole session graph atomically. All
// generation happens before the first insert, so a failed generation leaves
// nothing behind.
func (s *NegotiationService) StartNegotiation(ctx context.Context, input *entity.StartNegotiationInput) (*entity.SessionOutputModel, error) {
	opportunityData, err := json.Marshal(input.Opportunity)
	if err != nil {
		return nil, err
	}

	title := stringField(input.Opportunity, "title")
	if title == "" {
		title = "Government Contract"
	}

	requirements := s.extractRequirements(ctx, string(opportunityData), title)
	requirementsData, err := json.Marshal(requirements)
	if err != nil {
		return nil, err
	}

	names := supplierNames(requirements.SuggestedSuppliers, input.NumSuppliers)
	suppliers := make([]entity.CreateSupplierInput, 0, len(names))
	for _, name := range names {
		p := prompts.InitialRequest(string(opportunityData), requirements, name, input.AdditionalRequirements)
		initialMessage, err := s.llm.Complete(ctx, p.System, p.User, p.Temperature)
		if err != nil {
			return nil, fmt.Errorf("error while generating initial request for `%s`. %w", name, err)
		}

		suppliers = append(suppliers, entity.CreateSupplierInput{
			CompanyName:    name,
			Industry:       requirements.IndustryCategory,
			InitialMessage: initialMessage,
			Status:         common.SupplierPending,
		})
	}

	sessionId, err := s.sessionRepo.CreateSession(ctx, &entity.CreateSessionInput{
		OpportunityId:         stringField(input.Opportunity, "id"),
		OpportunityTitle:      title,
		OpportunityData:       string(opportunityData),
		TargetPrice:           input.TargetPrice,
		ExtractedRequirements: string(requirementsData),
		Suppliers:             suppliers,
		Status:                common.SessionActive,
	})
	if err != nil {
		return nil, err
	}

	return s.GetSessionById(ctx, sessionId.String())
}

func (s *NegotiationService) GetSessionById(ctx context.Context, sessionId string) (*entity.SessionOutputModel, error) {
	session, err := s.sessionRepo.GetSessionById(ctx, sessionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrSessionNotFound
		}

		return nil, err
	}

	suppliers, err := s.supplierRepo.GetSessionSuppliers(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	messages := make(map[uuid.UUID][]entity.Message, len(suppliers))
	for _, supplier := range suppliers {
		supplierMessages, err := s.messageRepo.GetSupplierMessages(ctx, supplier.Id)
		if err != nil {
			return nil, err
		}
		messages[supplier.Id] = supplierMessages
	}

	return mapSession(session, suppliers, messages), nil
}

// RespondToSupplier runs one advance transition: generate the supplier's
// reply for its current round, extract a price from the text, then either
// counter (round < 2) or finalize the price (round 2). Acceptance is a
// separate transition; this one never completes a supplier.
func (s *NegotiationService) RespondToSupplier(ctx context.Context, sessionId, supplierId string) error {
	session, supplier, err := s.getSessionSupplier(ctx, sessionId, supplierId)
	if err != nil {
		return err
	}

	requirements := storedRequirements(session)

	replies, err := s.messageRepo.CountMessagesBySender(ctx, supplier.Id, common.SenderSupplier)
	if err != nil {
		return err
	}

	// First responses always quote at round 0 regardless of the counter.
	round := supplier.NegotiationRound
	if replies == 0 {
		round = 0
	}

	messages, err := s.messageRepo.GetSupplierMessages(ctx, supplier.Id)
	if err != nil {
		return err
	}

	suggested := pricing.SuggestedPrice(supplier.CompanyName, round, session.TargetPrice)
	p := prompts.SupplierReply(supplier.CompanyName, requirements, prompts.FormatHistory(messages), round, suggested)
	content, err := s.llm.Complete(ctx, p.System, p.User, p.Temperature)
	if err != nil {
		return fmt.Errorf("error while generating supplier response. %w", err)
	}

	price, found := pricing.ExtractPrice(content)
	if !found {
		price = suggested
	}

	reply := &entity.SupplierReplyInput{
		SupplierId:     supplier.Id,
		ObservedRound:  supplier.NegotiationRound,
		Content:        content,
		PriceMentioned: price,
	}
	if replies == 0 {
		reply.SetInitialPrice = true
		reply.NewStatus = common.SupplierNegotiating
	}

	if supplier.NegotiationRound < common.MaxNegotiationRound {
		newRound := supplier.NegotiationRound + 1
		history := prompts.FormatHistory(append(messages, entity.Message{
			Sender:  common.SenderSupplier,
			Content: content,
		}))

		bp := prompts.BuyerCounter(history, requirements, newRound)
		buyerContent, err := s.llm.Complete(ctx, bp.System, bp.User, bp.Temperature)
		if err != nil {
			return fmt.Errorf("error while generating buyer response. %w", err)
		}

		reply.NewRound = &newRound
		reply.BuyerContent = buyerContent
	} else {
		reply.FinalPrice = &price
	}

	if err := s.supplierRepo.RecordSupplierReply(ctx, reply); err != nil {
		if errors.Is(err, repo_errors.ErrVersionConflict) {
			return ErrConcurrentAdvance
		}

		return err
	}

	return nil
}

// AcceptQuote completes the supplier. The latest supplier reply's price, when
// present, overwrites whatever final price round-2 finalization may have set.
func (s *NegotiationService) AcceptQuote(ctx context.Context, sessionId, supplierId string) error {
	_, supplier, err := s.getSessionSupplier(ctx, sessionId, supplierId)
	if err != nil {
		return err
	}

	var finalPrice *float64
	lastReply, err := s.messageRepo.GetLastSupplierReply(ctx, supplier.Id)
	if err != nil && !errors.Is(err, repo_errors.ErrNotFound) {
		return err
	}
	if err == nil && lastReply.PriceMentioned != nil {
		finalPrice = lastReply.PriceMentioned
	}

	if err := s.supplierRepo.CompleteSupplier(ctx, supplier.Id, finalPrice); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrSupplierNotFound
		}

		return err
	}

	return nil
}

func (s *NegotiationService) getSessionSupplier(ctx context.Context, sessionId, supplierId string) (*entity.NegotiationSession, *entity.Supplier, error) {
	session, err := s.sessionRepo.GetSessionById(ctx, sessionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}

		return nil, nil, err
	}

	supplier, err := s.supplierRepo.GetSupplierById(ctx, supplierId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, nil, ErrSupplierNotFound
		}

		return nil, nil, err
	}

	if supplier.SessionId != session.Id {
		return nil, nil, ErrSupplierNotFound
	}

	return session, supplier, nil
}

// extractRequirements degrades to the default record when the provider is
// unreachable or replies with something that is not the requested JSON.
func (s *NegotiationService) extractRequirements(ctx context.Context, opportunityData, title string) *entity.ExtractedRequirements {
	p := prompts.ExtractRequirements(opportunityData)
	raw, err := s.llm.Complete(ctx, p.System, p.User, p.Temperature)
	if err != nil {
		return entity.DefaultRequirements(title)
	}

	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		repaired = raw
	}

	var requirements entity.ExtractedRequirements
	if err := json.Unmarshal([]byte(repaired), &requirements); err != nil || requirements.ProductService == "" {
		return entity.DefaultRequirements(title)
	}

	return &requirements
}

// storedRequirements re-reads the record computed at session creation; a
// corrupted row degrades to the default record instead of failing the round.
func storedRequirements(session *entity.NegotiationSession) *entity.ExtractedRequirements {
	var requirements entity.ExtractedRequirements
	if err := json.Unmarshal([]byte(session.ExtractedRequirements), &requirements); err != nil {
		return entity.DefaultRequirements(session.OpportunityTitle)
	}

	return &requirements
}

// supplierNames pads the suggested list with deterministic placeholder names
// when the extraction suggested fewer companies than requested.
func supplierNames(suggested []string, numSuppliers int) []string {
	names := make([]string, 0, numSuppliers)
	if len(suggested) > numSuppliers {
		suggested = suggested[:numSuppliers]
	}
	names = append(names, suggested...)

	for len(names) < numSuppliers {
		names = append(names, fmt.Sprintf("Qualified Contractor #%d", len(names)+1))
	}

	return names
}

func stringField(payload map[string]interface{}, key string) string {
	value, ok := payload[key]
	if !ok || value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprint(value)
}
