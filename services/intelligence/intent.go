package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"eventura/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntentState is a step of the chat turn state machine.
type IntentState string

const (
	StateIdle             IntentState = "Idle"
	StateAwaitingLLM      IntentState = "AwaitingLLM"
	StateToolCallReceived IntentState = "ToolCallReceived"
	StateFreeTextReceived IntentState = "FreeTextReceived"
	StateNoSignal         IntentState = "NoSignal"
	StateExtracted        IntentState = "Extracted"
	StatePassThrough      IntentState = "PassThrough"
)

const (
	bookingAcknowledgement = "Хорошо, перехожу к оформлению бронирования."
	followUpQuestion       = "Расскажите подробнее о мероприятии: тип, дата, количество гостей, бюджет и город."
)

var (
	jsonObjectHintRe = regexp.MustCompile(`(?s)\{.*\}`)
	fencedBlockRe    = regexp.MustCompile("(?s)```([a-zA-Z]*)(.*?)```")
	jsonKeyRe        = regexp.MustCompile(`(?s)\{.*?"[^"]*"\s*:`)
	blankLinesRe     = regexp.MustCompile(`\n{3,}`)
)

// IntentReply is the outcome of one chat turn.
type IntentReply struct {
	SessionID   string
	Message     string
	BookingData *models.BookingIntent
	State       IntentState // StateExtracted or StatePassThrough
	Signal      IntentState // which reply form the model used
	Attempts    []RecoveryAttempt
}

// IntentPipeline turns a chat turn into an assistant message and, when the user asked
// to book, a fully populated BookingIntent.
type IntentPipeline struct {
	llm       LLMClient
	store     ConversationStore
	extractor FieldExtractor
	dates     *DateNormalizer
	parser    *StructuredParser
	logger    *zap.Logger
}

// NewIntentPipeline wires the pipeline. dates supplies "today" for relative dates.
func NewIntentPipeline(llm LLMClient, store ConversationStore, dates *DateNormalizer, logger *zap.Logger) *IntentPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dates == nil {
		dates = NewDateNormalizer(nil)
	}
	return &IntentPipeline{
		llm:       llm,
		store:     store,
		extractor: NewHistoryExtractor(dates),
		dates:     dates,
		parser:    NewStructuredParser(logger),
		logger:    logger,
	}
}

// WithFieldExtractor replaces the history fallback.
func (p *IntentPipeline) WithFieldExtractor(extractor FieldExtractor) *IntentPipeline {
	p.extractor = extractor
	return p
}

// Process handles one user message. An empty sessionID starts a new session. Model
// failures come back as *UpstreamError and never carry booking data.
func (p *IntentPipeline) Process(ctx context.Context, sessionID, message string) (*IntentReply, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := p.logger.With(zap.String("sessionId", sessionID))

	prior, err := p.store.ReadAll(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	userTurn := models.UserTurn(message)
	transcript := append(prior, userTurn)

	logger.Debug("Intent state", zap.String("state", string(StateAwaitingLLM)))
	completion, err := p.llm.Complete(ctx, transcript, sessionID)
	if err != nil {
		return nil, AsUpstream(err)
	}

	reply := &IntentReply{SessionID: sessionID, Signal: StateNoSignal}
	llmIntent := p.inspect(completion, reply, logger)

	wantsBooking := containsAny(message, bookingKeywords) ||
		(llmIntent != nil && llmIntent.ShouldBook) ||
		containsAny(completion.Text, assistantBookingHints)

	visible := visibleText(completion.Text)
	if wantsBooking {
		reply.State = StateExtracted
		reply.BookingData = p.finalize(llmIntent, transcript)
		reply.Message = visible
		if reply.Message == "" {
			reply.Message = bookingAcknowledgement
		}
	} else {
		reply.State = StatePassThrough
		reply.Message = visible
		if reply.Message == "" {
			reply.Message = followUpQuestion
		}
	}
	intentOutcomes.WithLabelValues(string(reply.State), string(reply.Signal)).Inc()
	logger.Info("Chat turn processed",
		zap.String("state", string(reply.State)), zap.String("signal", string(reply.Signal)))

	if err := p.store.Append(ctx, sessionID, userTurn, models.AssistantTurn(reply.Message)); err != nil {
		logger.Error("Failed to persist conversation", zap.Error(err))
	}
	return reply, nil
}

// inspect classifies the model reply and returns the booking data it carried, if any.
func (p *IntentPipeline) inspect(completion *Completion, reply *IntentReply, logger *zap.Logger) *models.BookingIntent {
	if supportsTools(p.llm) {
		for _, call := range completion.ToolCalls {
			if call.Name == BookingToolName {
				reply.Signal = StateToolCallReceived
				return intentFromArgs(call.Args)
			}
		}
	}

	if !looksLikeJSON(completion.Text) {
		return nil
	}
	var parsed models.BookingIntent
	attempts, err := p.parser.Parse(completion.Text, BookingIntentShape, &parsed)
	reply.Attempts = attempts
	if err != nil {
		logger.Warn("Reply mentioned JSON but held no booking data", zap.Error(err))
		return nil
	}
	reply.Signal = StateFreeTextReceived
	return &parsed
}

// finalize merges model fields with the history fallback and normalizes once.
func (p *IntentPipeline) finalize(fromLLM *models.BookingIntent, transcript []models.ConversationTurn) *models.BookingIntent {
	out := &models.BookingIntent{ShouldBook: true}
	if fromLLM != nil {
		out.EventType = canonicalEventType(fromLLM.EventType)
		out.Date = strings.TrimSpace(fromLLM.Date)
		out.GuestsCount = normalizeGuests(fromLLM.GuestsCount)
		out.Budget = strings.TrimSpace(fromLLM.Budget)
		out.City = canonicalCity(fromLLM.City)
		out.Description = strings.TrimSpace(fromLLM.Description)
		out.Dishes = strings.TrimSpace(fromLLM.Dishes)
		out.OtherDetails = strings.TrimSpace(fromLLM.OtherDetails)
	}

	if out.EventType == "" || out.Date == "" || out.GuestsCount == "" || out.Budget == "" || out.City == "" {
		history := p.extractor.Extract(transcript)
		backfill(&out.EventType, history.EventType)
		backfill(&out.Date, history.Date)
		backfill(&out.GuestsCount, history.GuestsCount)
		backfill(&out.Budget, history.Budget)
		backfill(&out.City, history.City)
	}

	out.Date = p.dates.Normalize(out.Date)
	out.Budget = NormalizeBudget(out.Budget)
	return out
}

func backfill(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func looksLikeJSON(text string) bool {
	return strings.Contains(strings.ToLower(text), "json") || jsonObjectHintRe.MatchString(text)
}

// intentFromArgs reads tool arguments, accepting numbers where strings are expected.
func intentFromArgs(args map[string]interface{}) *models.BookingIntent {
	return &models.BookingIntent{
		ShouldBook:   boolArg(args["shouldBook"]),
		EventType:    stringArg(args["eventType"]),
		Date:         stringArg(args["date"]),
		GuestsCount:  stringArg(args["guestsCount"]),
		Budget:       stringArg(args["budget"]),
		City:         stringArg(args["city"]),
		Description:  stringArg(args["description"]),
		Dishes:       stringArg(args["dishes"]),
		OtherDetails: stringArg(args["otherDetails"]),
	}
}

func stringArg(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func boolArg(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	}
	return false
}

// visibleText removes JSON code fences and JSON objects from a reply. Other fenced
// blocks are content and stay. Text without residue is returned unchanged.
func visibleText(text string) string {
	stripped := stripJSONResidue(fencedBlockRe.ReplaceAllStringFunc(text, func(block string) string {
		m := fencedBlockRe.FindStringSubmatch(block)
		if strings.EqualFold(m[1], "json") || jsonKeyRe.MatchString(m[2]) {
			return ""
		}
		return block
	}))
	if stripped == text {
		return text
	}
	return strings.TrimSpace(blankLinesRe.ReplaceAllString(stripped, "\n\n"))
}

// stripJSONResidue drops every top-level {...} span that contains a key, including an
// object left unclosed at the end of the text.
func stripJSONResidue(s string) string {
	var b strings.Builder
	depth, start, last := 0, -1, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && strings.Contains(s[start:i+1], `":`) {
				b.WriteString(s[last:start])
				last = i + 1
			}
		}
	}
	if depth > 0 && strings.Contains(s[start:], `":`) {
		b.WriteString(s[last:start])
		last = len(s)
	}
	b.WriteString(s[last:])
	return b.String()
}
