package service

import (
	"context"
	"errors"
	"fmt"
	"sourcing-negotiation-api/internal/common"
	"sourcing-negotiation-api/internal/entity"
	"sourcing-negotiation-api/internal/pricing"
	"sourcing-negotiation-api/internal/repo"
	"sourcing-negotiation-api/internal/repo/repo_errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memoryStore implements the session, supplier and message repositories on
// plain maps so state machine transitions can be exercised end to end.
type memoryStore struct {
	sessions      map[uuid.UUID]*entity.NegotiationSession
	suppliers     map[uuid.UUID]*entity.Supplier
	supplierOrder map[uuid.UUID][]uuid.UUID
	messages      map[uuid.UUID][]entity.Message
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions:      make(map[uuid.UUID]*entity.NegotiationSession),
		suppliers:     make(map[uuid.UUID]*entity.Supplier),
		supplierOrder: make(map[uuid.UUID][]uuid.UUID),
		messages:      make(map[uuid.UUID][]entity.Message),
	}
}

func (m *memoryStore) Ping() error { return nil }

func (m *memoryStore) CreateSession(ctx context.Context, input *entity.CreateSessionInput) (uuid.UUID, error) {
	sessionId := uuid.New()
	m.sessions[sessionId] = &entity.NegotiationSession{
		Id:                    sessionId,
		OpportunityId:         input.OpportunityId,
		OpportunityTitle:      input.OpportunityTitle,
		OpportunityData:       input.OpportunityData,
		TargetPrice:           input.TargetPrice,
		ExtractedRequirements: input.ExtractedRequirements,
		Status:                input.Status,
		CreatedAt:             time.Now().Format(time.RFC3339),
	}

	for _, s := range input.Suppliers {
		supplierId := m.addSupplier(sessionId, s.CompanyName, s.Industry)
		m.appendMessage(supplierId, common.SenderBuyer, s.InitialMessage, nil)
	}

	return sessionId, nil
}

func (m *memoryStore) GetSessionById(ctx context.Context, id string) (*entity.NegotiationSession, error) {
	sessionId, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	session, ok := m.sessions[sessionId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return session, nil
}

func (m *memoryStore) GetSupplierById(ctx context.Context, id string) (*entity.Supplier, error) {
	supplierId, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	supplier, ok := m.suppliers[supplierId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *supplier
	return &copied, nil
}

func (m *memoryStore) GetSessionSuppliers(ctx context.Context, sessionId uuid.UUID) ([]entity.Supplier, error) {
	suppliers := make([]entity.Supplier, 0)
	for _, id := range m.supplierOrder[sessionId] {
		suppliers = append(suppliers, *m.suppliers[id])
	}

	return suppliers, nil
}

func (m *memoryStore) RecordSupplierReply(ctx context.Context, input *entity.SupplierReplyInput) error {
	supplier, ok := m.suppliers[input.SupplierId]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if supplier.NegotiationRound != input.ObservedRound {
		return repo_errors.ErrVersionConflict
	}

	price := input.PriceMentioned
	m.appendMessage(supplier.Id, common.SenderSupplier, input.Content, &price)

	if input.SetInitialPrice {
		supplier.InitialPrice = &price
	}
	if input.NewStatus != "" {
		supplier.Status = input.NewStatus
	}
	if input.NewRound != nil {
		supplier.NegotiationRound = *input.NewRound
		m.appendMessage(supplier.Id, common.SenderBuyer, input.BuyerContent, nil)
	}
	if input.FinalPrice != nil {
		supplier.FinalPrice = input.FinalPrice
	}

	return nil
}

func (m *memoryStore) CompleteSupplier(ctx context.Context, supplierId uuid.UUID, finalPrice *float64) error {
	supplier, ok := m.suppliers[supplierId]
	if !ok {
		return repo_errors.ErrNotFound
	}

	supplier.Status = common.SupplierCompleted
	if finalPrice != nil {
		supplier.FinalPrice = finalPrice
	}

	return nil
}

func (m *memoryStore) GetSupplierMessages(ctx context.Context, supplierId uuid.UUID) ([]entity.Message, error) {
	return append([]entity.Message{}, m.messages[supplierId]...), nil
}

func (m *memoryStore) GetLastSupplierReply(ctx context.Context, supplierId uuid.UUID) (*entity.Message, error) {
	messages := m.messages[supplierId]
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == common.SenderSupplier {
			return &messages[i], nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (m *memoryStore) CountMessagesBySender(ctx context.Context, supplierId uuid.UUID, sender string) (int, error) {
	count := 0
	for _, message := range m.messages[supplierId] {
		if message.Sender == sender {
			count++
		}
	}

	return count, nil
}

func (m *memoryStore) addSupplier(sessionId uuid.UUID, companyName, industry string) uuid.UUID {
	supplierId := uuid.New()
	m.suppliers[supplierId] = &entity.Supplier{
		Id:          supplierId,
		SessionId:   sessionId,
		CompanyName: companyName,
		Industry:    industry,
		Status:      common.SupplierPending,
		CreatedAt:   time.Now().Format(time.RFC3339),
	}
	m.supplierOrder[sessionId] = append(m.supplierOrder[sessionId], supplierId)

	return supplierId
}

func (m *memoryStore) appendMessage(supplierId uuid.UUID, sender, content string, price *float64) {
	m.messages[supplierId] = append(m.messages[supplierId], entity.Message{
		Id:             uuid.New(),
		SupplierId:     supplierId,
		Sender:         sender,
		Content:        content,
		PriceMentioned: price,
		CreatedAt:      time.Now().Format(time.RFC3339),
	})
}

// scriptedGenerator routes on the system prompt and replays supplier quotes
// from a queue so consecutive rounds can answer differently.
type scriptedGenerator struct {
	extraction     string
	supplierQuotes []string
}

func (g *scriptedGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	switch {
	case strings.Contains(systemPrompt, "extracting requirements"):
		return g.extraction, nil
	case strings.Contains(systemPrompt, "procurement specialist"):
		return "Dear supplier, please provide a detailed quote. Procurement Team", nil
	case strings.Contains(systemPrompt, "sales representative"):
		if len(g.supplierQuotes) == 0 {
			return "We are pleased to submit our quote.", nil
		}
		quote := g.supplierQuotes[0]
		g.supplierQuotes = g.supplierQuotes[1:]
		return quote, nil
	case strings.Contains(systemPrompt, "procurement negotiator"):
		return "We are evaluating multiple qualified suppliers and have budget constraints.", nil
	}

	return "", fmt.Errorf("unexpected system prompt: %s", systemPrompt)
}

func newTestService(store *memoryStore, gen TextGenerator) *NegotiationService {
	return NewNegotiationService(&repo.Repositories{
		Diagnostics: store,
		Session:     store,
		Supplier:    store,
		Message:     store,
	}, gen)
}

const extractionReply = `{
	"product_service": "Network switches",
	"quantity": "200 units",
	"delivery_location": "Fort Meade, MD",
	"key_requirements": ["TAA compliant", "3-year warranty", "On-site installation"],
	"certifications_needed": ["ISO 9001"],
	"timeline": "90 days after award",
	"industry_category": "tech",
	"suggested_suppliers": ["NetSource Federal", "Capital IT Supply", "Beltway Networks"]
}`

func startSession(t *testing.T, svc *NegotiationService, numSuppliers int) *entity.SessionOutputModel {
	t.Helper()

	session, err := svc.StartNegotiation(context.Background(), &entity.StartNegotiationInput{
		Opportunity:  map[string]interface{}{"id": "SAM-123", "title": "Switch refresh"},
		TargetPrice:  50000,
		NumSuppliers: numSuppliers,
	})
	if err != nil {
		t.Fatalf("StartNegotiation failed: %v", err)
	}

	return session
}

func TestStartNegotiationPadsSupplierNames(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: extractionReply})

	session := startSession(t, svc, 7)

	if len(session.Suppliers) != 7 {
		t.Fatalf("expected 7 suppliers, got %d", len(session.Suppliers))
	}
	if session.Suppliers[0].CompanyName != "NetSource Federal" {
		t.Errorf("expected first AI-suggested name, got %q", session.Suppliers[0].CompanyName)
	}
	for i := 3; i < 7; i++ {
		expected := fmt.Sprintf("Qualified Contractor #%d", i+1)
		if session.Suppliers[i].CompanyName != expected {
			t.Errorf("supplier %d: expected %q, got %q", i, expected, session.Suppliers[i].CompanyName)
		}
	}
	if session.OpportunityId != "SAM-123" {
		t.Errorf("unexpected opportunity id %q", session.OpportunityId)
	}
}

func TestStartNegotiationSeedsOneBuyerMessagePerSupplier(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: extractionReply})

	session := startSession(t, svc, 3)

	for _, supplier := range session.Suppliers {
		if len(supplier.Messages) != 1 {
			t.Fatalf("supplier %q: expected 1 seeded message, got %d", supplier.CompanyName, len(supplier.Messages))
		}
		if supplier.Messages[0].Sender != common.SenderBuyer {
			t.Errorf("seeded message should come from the buyer, got %q", supplier.Messages[0].Sender)
		}
		if supplier.Status != common.SupplierPending {
			t.Errorf("new supplier should be pending, got %q", supplier.Status)
		}
		if supplier.NegotiationRound != 0 {
			t.Errorf("new supplier should start at round 0, got %d", supplier.NegotiationRound)
		}
	}
}

func TestStartNegotiationFallsBackToDefaultRequirements(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: "I could not find any structured data, sorry."})

	session := startSession(t, svc, 5)

	if len(session.Suppliers) != 5 {
		t.Fatalf("expected 5 suppliers, got %d", len(session.Suppliers))
	}
	if session.Suppliers[0].CompanyName != "Federal Contractors Inc" {
		t.Errorf("expected default supplier list, got %q", session.Suppliers[0].CompanyName)
	}
}

func TestRoundProgression(t *testing.T) {
	store := newMemoryStore()
	gen := &scriptedGenerator{
		extraction: extractionReply,
		supplierQuotes: []string{
			"Itemized quote attached. Total: $80,000",
			"We can be flexible. Total: $65,000",
			"Our final best offer. Total: $58,000",
		},
	}
	svc := newTestService(store, gen)

	session := startSession(t, svc, 1)
	supplierId := session.Suppliers[0].Id
	ctx := context.Background()

	// First advance: initial quote at round 0, buyer counters into round 1.
	if err := svc.RespondToSupplier(ctx, session.Id, supplierId); err != nil {
		t.Fatalf("first advance failed: %v", err)
	}

	supplier, _ := store.GetSupplierById(ctx, supplierId)
	if supplier.Status != common.SupplierNegotiating {
		t.Errorf("after first reply status should be negotiating, got %q", supplier.Status)
	}
	if supplier.NegotiationRound != 1 {
		t.Errorf("after first advance round should be 1, got %d", supplier.NegotiationRound)
	}
	if supplier.InitialPrice == nil || *supplier.InitialPrice != 80000 {
		t.Errorf("initial price should be extracted from the first quote, got %v", supplier.InitialPrice)
	}
	if supplier.FinalPrice != nil {
		t.Errorf("final price should not be set yet, got %v", supplier.FinalPrice)
	}

	// Second advance: counter into round 2, still no final price.
	if err := svc.RespondToSupplier(ctx, session.Id, supplierId); err != nil {
		t.Fatalf("second advance failed: %v", err)
	}

	supplier, _ = store.GetSupplierById(ctx, supplierId)
	if supplier.NegotiationRound != 2 {
		t.Errorf("after second advance round should be 2, got %d", supplier.NegotiationRound)
	}
	if supplier.FinalPrice != nil {
		t.Errorf("final price should not be set before the round-2 reply, got %v", supplier.FinalPrice)
	}

	// Third advance: round-2 reply finalizes the price, no further counter.
	if err := svc.RespondToSupplier(ctx, session.Id, supplierId); err != nil {
		t.Fatalf("third advance failed: %v", err)
	}

	supplier, _ = store.GetSupplierById(ctx, supplierId)
	if supplier.NegotiationRound != 2 {
		t.Errorf("round is capped at 2, got %d", supplier.NegotiationRound)
	}
	if supplier.FinalPrice == nil || *supplier.FinalPrice != 58000 {
		t.Errorf("final price should come from the round-2 reply, got %v", supplier.FinalPrice)
	}
	if supplier.Status != common.SupplierNegotiating {
		t.Errorf("advance never completes a supplier, got status %q", supplier.Status)
	}

	messages, _ := store.GetSupplierMessages(ctx, uuid.MustParse(supplierId))
	// Seeded request + 3 supplier replies + 2 buyer counters.
	if len(messages) != 6 {
		t.Errorf("expected 6 messages, got %d", len(messages))
	}
	last := messages[len(messages)-1]
	if last.Sender != common.SenderSupplier {
		t.Errorf("no buyer counter should follow the final reply, last sender %q", last.Sender)
	}
}

func TestAdvanceKeepsReplyBeforeCounter(t *testing.T) {
	store := newMemoryStore()
	gen := &scriptedGenerator{
		extraction: extractionReply,
		supplierQuotes: []string{
			"Total: $80,000",
			"Total: $65,000",
		},
	}
	svc := newTestService(store, gen)

	session := startSession(t, svc, 1)
	supplierId := session.Suppliers[0].Id
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := svc.RespondToSupplier(ctx, session.Id, supplierId); err != nil {
			t.Fatalf("advance %d failed: %v", i+1, err)
		}
	}

	snapshot, err := svc.GetSessionById(ctx, session.Id)
	if err != nil {
		t.Fatalf("GetSessionById failed: %v", err)
	}

	// Each supplier reply must render before the buyer counter that answers it,
	// even though both rows are written in the same transaction.
	expected := []string{
		common.SenderBuyer,
		common.SenderSupplier,
		common.SenderBuyer,
		common.SenderSupplier,
		common.SenderBuyer,
	}
	messages := snapshot.Suppliers[0].Messages
	if len(messages) != len(expected) {
		t.Fatalf("expected %d messages, got %d", len(expected), len(messages))
	}
	for i, sender := range expected {
		if messages[i].Sender != sender {
			t.Errorf("message %d: expected sender %q, got %q", i, sender, messages[i].Sender)
		}
	}
}

func TestRespondFallsBackToSuggestedPrice(t *testing.T) {
	store := newMemoryStore()
	gen := &scriptedGenerator{
		extraction:     extractionReply,
		supplierQuotes: []string{"Pricing to follow in a separate document."},
	}
	svc := newTestService(store, gen)

	session := startSession(t, svc, 1)
	ctx := context.Background()
	if err := svc.RespondToSupplier(ctx, session.Id, session.Suppliers[0].Id); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	supplier, _ := store.GetSupplierById(ctx, session.Suppliers[0].Id)
	expected := pricing.SuggestedPrice(supplier.CompanyName, 0, 50000)
	if supplier.InitialPrice == nil || *supplier.InitialPrice != expected {
		t.Errorf("expected strategy fallback price %f, got %v", expected, supplier.InitialPrice)
	}
}

func TestAcceptOverwritesFinalPrice(t *testing.T) {
	store := newMemoryStore()
	gen := &scriptedGenerator{
		extraction: extractionReply,
		supplierQuotes: []string{
			"Total: $80,000",
			"Total: $65,000",
			"Total: $58,000",
		},
	}
	svc := newTestService(store, gen)

	session := startSession(t, svc, 1)
	supplierId := session.Suppliers[0].Id
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := svc.RespondToSupplier(ctx, session.Id, supplierId); err != nil {
			t.Fatalf("advance %d failed: %v", i+1, err)
		}
	}

	if err := svc.AcceptQuote(ctx, session.Id, supplierId); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	supplier, _ := store.GetSupplierById(ctx, supplierId)
	if supplier.Status != common.SupplierCompleted {
		t.Errorf("accept must complete the supplier, got %q", supplier.Status)
	}
	if supplier.FinalPrice == nil || *supplier.FinalPrice != 58000 {
		t.Errorf("accept should take the latest reply's price, got %v", supplier.FinalPrice)
	}
}

func TestAcceptWithoutAnyReply(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: extractionReply})

	session := startSession(t, svc, 1)
	ctx := context.Background()
	if err := svc.AcceptQuote(ctx, session.Id, session.Suppliers[0].Id); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	supplier, _ := store.GetSupplierById(ctx, session.Suppliers[0].Id)
	if supplier.Status != common.SupplierCompleted {
		t.Errorf("accept must complete the supplier, got %q", supplier.Status)
	}
	if supplier.FinalPrice != nil {
		t.Errorf("no reply means no final price, got %v", supplier.FinalPrice)
	}
}

func TestCompletedSupplierMetrics(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: extractionReply})

	session := startSession(t, svc, 1)
	supplierId := uuid.MustParse(session.Suppliers[0].Id)

	initial, final := 1000.0, 800.0
	store.suppliers[supplierId].InitialPrice = &initial
	store.suppliers[supplierId].FinalPrice = &final
	store.suppliers[supplierId].Status = common.SupplierCompleted

	snapshot, err := svc.GetSessionById(context.Background(), session.Id)
	if err != nil {
		t.Fatalf("GetSessionById failed: %v", err)
	}

	metrics := snapshot.Suppliers[0].Metrics
	if metrics == nil {
		t.Fatal("completed supplier with both prices must expose metrics")
	}
	if metrics.Savings != "200.00" {
		t.Errorf("expected savings 200.00, got %q", metrics.Savings)
	}
	if metrics.SavingsPercent != "20.0" {
		t.Errorf("expected savings percent 20.0, got %q", metrics.SavingsPercent)
	}
}

func TestMetricsAbsentWhileNegotiating(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: extractionReply})

	session := startSession(t, svc, 1)
	if session.Suppliers[0].Metrics != nil {
		t.Error("pending supplier must not expose metrics")
	}
}

func TestRespondUnknownIds(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: extractionReply})
	session := startSession(t, svc, 1)
	ctx := context.Background()

	if err := svc.RespondToSupplier(ctx, uuid.NewString(), session.Suppliers[0].Id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.RespondToSupplier(ctx, session.Id, uuid.NewString()); !errors.Is(err, ErrSupplierNotFound) {
		t.Errorf("expected ErrSupplierNotFound, got %v", err)
	}
}

func TestRespondSupplierFromAnotherSession(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &scriptedGenerator{extraction: extractionReply})

	first := startSession(t, svc, 1)
	second := startSession(t, svc, 1)

	err := svc.RespondToSupplier(context.Background(), first.Id, second.Suppliers[0].Id)
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Errorf("expected ErrSupplierNotFound for cross-session supplier, got %v", err)
	}
}

// conflictingSupplierRepo simulates a row that moved on between the state
// machine's read and its write.
type conflictingSupplierRepo struct {
	repo.Supplier
}

func (r *conflictingSupplierRepo) RecordSupplierReply(ctx context.Context, input *entity.SupplierReplyInput) error {
	return repo_errors.ErrVersionConflict
}

func TestConcurrentAdvanceSurfacesConflict(t *testing.T) {
	store := newMemoryStore()
	gen := &scriptedGenerator{extraction: extractionReply, supplierQuotes: []string{"Total: $80,000"}}
	svc := newTestService(store, gen)
	session := startSession(t, svc, 1)

	svc.supplierRepo = &conflictingSupplierRepo{Supplier: store}

	err := svc.RespondToSupplier(context.Background(), session.Id, session.Suppliers[0].Id)
	if !errors.Is(err, ErrConcurrentAdvance) {
		t.Errorf("expected ErrConcurrentAdvance, got %v", err)
	}
}
