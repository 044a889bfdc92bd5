package ai

import (
	"context"
	"fmt"
	"strings"

	"eventura/models"

	"go.uber.org/zap"
)

// maxClarifications is how many clarifying questions a search may ask in total.
const maxClarifications = 2

// SearchReply is a validated search answer with its recovery trace.
type SearchReply struct {
	Result   *models.VendorSearchResult
	Attempts []RecoveryAttempt
}

// VendorSearchService asks the model to recommend vendors from a marketplace snapshot.
type VendorSearchService struct {
	llm         LLMClient
	snapshot    VendorSnapshot
	dates       *DateNormalizer
	parser      *StructuredParser
	vendorLimit int
	logger      *zap.Logger
}

// NewVendorSearchService creates the service. vendorLimit caps the vendors sent to the model.
func NewVendorSearchService(llm LLMClient, snapshot VendorSnapshot, dates *DateNormalizer, vendorLimit int, logger *zap.Logger) *VendorSearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dates == nil {
		dates = NewDateNormalizer(nil)
	}
	if vendorLimit <= 0 {
		vendorLimit = 50
	}
	return &VendorSearchService{
		llm:         llm,
		snapshot:    snapshot,
		dates:       dates,
		parser:      NewStructuredParser(logger),
		vendorLimit: vendorLimit,
		logger:      logger,
	}
}

// Search runs one recommendation round. Vendors booked on the requested date are never
// returned, whatever the model answered.
func (s *VendorSearchService) Search(ctx context.Context, req models.VendorSearchRequest) (*SearchReply, error) {
	date := s.dates.Normalize(req.Date)
	req.Budget = models.FlexString(NormalizeBudget(string(req.Budget)))

	vendors, err := s.snapshot.ListVendors(ctx, models.VendorFilter{
		Types: []string{models.VendorTypeVendor, models.VendorTypeOrganizer},
		Limit: s.vendorLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}
	ids := make([]int, 0, len(vendors))
	for _, v := range vendors {
		ids = append(ids, v.ID)
	}
	services, err := s.snapshot.ListServices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	prompt, err := buildVendorSearchPrompt(req, date, vendorPromptData(vendors, services, date))
	if err != nil {
		return nil, err
	}

	completion, err := s.llm.Complete(ctx, []models.ConversationTurn{models.UserTurn(prompt)}, "")
	if err != nil {
		return nil, AsUpstream(err)
	}
	if strings.TrimSpace(completion.Text) == "" {
		return nil, newStructuredOutputError("", nil, ErrEmptyCompletion)
	}

	var result models.VendorSearchResult
	attempts, err := s.parser.Parse(completion.Text, VendorSearchResultShape, &result)
	if err != nil {
		return nil, err
	}

	result.Vendors = dropUnavailable(result.Vendors, vendors, date)
	if req.ClarificationCount >= maxClarifications {
		noMore := false
		result.NeedsClarification = &noMore
		result.ClarificationQuestion = ""
	}
	if result.Vendors == nil {
		result.Vendors = []models.VendorMatch{}
	}
	if result.EstimatedCosts == nil {
		result.EstimatedCosts = []models.CostEstimate{}
	}

	s.logger.Info("Vendor search completed",
		zap.Int("candidates", len(vendors)),
		zap.Int("recommended", len(result.Vendors)),
		zap.String("date", date))
	return &SearchReply{Result: &result, Attempts: attempts}, nil
}

// dropUnavailable removes matches whose vendor calendar holds date. Unknown vendor ids
// have no calendar to check and are kept.
func dropUnavailable(matches []models.VendorMatch, vendors []models.Vendor, date string) []models.VendorMatch {
	booked := make(map[int]bool, len(vendors))
	for _, v := range vendors {
		if v.IsBookedOn(date) {
			booked[v.ID] = true
		}
	}
	kept := matches[:0]
	for _, m := range matches {
		if !booked[m.VendorID] {
			kept = append(kept, m)
		}
	}
	return kept
}
