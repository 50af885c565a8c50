// Package chat owns the per-client picker session: the selected products,
// the transcript and the round trip to the completion service.
package chat

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"skincarechat/internal/ai"
	"skincarechat/internal/catalog"
	"skincarechat/internal/msgfmt"
	"skincarechat/internal/store"
)

const (
	GreetingReturning = "👋 Welcome back! Your saved products are still selected."
	GreetingNew       = "💄 Hello! Select a category to start exploring L’Oréal products."

	NoSelectionHint = "Please select at least one product before generating your routine!"
	RoutineRequest  = "Generate my skincare routine"
	RoutineWorking  = "✨ Working on your personalized routine..."

	UnreachableNotice = "❌ Unable to reach AI service. Check your Worker URL or API key."
	noReplyNotice     = "⚠️ No AI reply. Worker returned an unexpected response. Debug (truncated): "
	previewLimit      = 1000
)

var ErrEmptyMessage = errors.New("message is empty")

type DisplayMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Label     string    `json:"label"`
	Text      string    `json:"text"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}

type Deps struct {
	Store        store.Store
	Catalog      *catalog.Catalog
	AI           ai.Client
	Formatter    *msgfmt.Formatter
	HistoryLimit int
	Logger       zerolog.Logger
}

type Service struct {
	store        store.Store
	catalog      *catalog.Catalog
	ai           ai.Client
	formatter    *msgfmt.Formatter
	historyLimit int
	log          zerolog.Logger

	// Sessions are serialized on one of a fixed set of mutexes picked by
	// hashing the client id. Unrelated clients may share a stripe.
	lockSeed maphash.Seed
	locks    [lockStripes]sync.Mutex
}

const lockStripes = 64

func New(deps Deps) *Service {
	formatter := deps.Formatter
	if formatter == nil {
		formatter = msgfmt.New(deps.Logger)
	}
	limit := deps.HistoryLimit
	if limit <= 0 {
		limit = 50
	}
	return &Service{
		store:        deps.Store,
		catalog:      deps.Catalog,
		ai:           deps.AI,
		formatter:    formatter,
		historyLimit: limit,
		log:          deps.Logger,
		lockSeed:     maphash.MakeSeed(),
	}
}

func (s *Service) lockFor(clientID string) *sync.Mutex {
	return &s.locks[maphash.String(s.lockSeed, clientID)%lockStripes]
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Session returns the handle for one client. Calls on sessions for the same
// client are serialized.
func (s *Service) Session(clientID string) *Session {
	return &Session{
		svc:      s,
		clientID: clientID,
		mu:       s.lockFor(clientID),
		log:      s.log.With().Str("client_id", clientID).Logger(),
	}
}

type Session struct {
	svc      *Service
	clientID string
	mu       *sync.Mutex
	log      zerolog.Logger
}

func (s *Session) ClientID() string {
	return s.clientID
}

func (s *Session) Greeting(ctx context.Context) (DisplayMessage, error) {
	ids, err := s.svc.store.Selection(ctx, s.clientID)
	if err != nil {
		return DisplayMessage{}, err
	}
	text := GreetingNew
	if len(ids) > 0 {
		text = GreetingReturning
	}
	return s.display(store.Message{Sender: string(msgfmt.Bot), Text: text, Notice: true}), nil
}

func (s *Session) Selected(ctx context.Context) ([]catalog.Product, error) {
	ids, err := s.svc.store.Selection(ctx, s.clientID)
	if err != nil {
		return nil, err
	}
	return s.svc.catalog.Resolve(ids), nil
}

// ToggleProduct selects id when it is not selected and deselects it
// otherwise. It reports whether the product is selected afterwards.
func (s *Session) ToggleProduct(ctx context.Context, id int) (bool, []catalog.Product, error) {
	if _, ok := s.svc.catalog.Find(id); !ok {
		return false, nil, catalog.ErrUnknownProduct
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.svc.store.Selection(ctx, s.clientID)
	if err != nil {
		return false, nil, err
	}
	next, removed := without(ids, id)
	if !removed {
		next = append(next, id)
	}
	if err := s.svc.store.SaveSelection(ctx, s.clientID, next); err != nil {
		return false, nil, err
	}
	return !removed, s.svc.catalog.Resolve(next), nil
}

func (s *Session) RemoveProduct(ctx context.Context, id int) ([]catalog.Product, error) {
	if _, ok := s.svc.catalog.Find(id); !ok {
		return nil, catalog.ErrUnknownProduct
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.svc.store.Selection(ctx, s.clientID)
	if err != nil {
		return nil, err
	}
	next, removed := without(ids, id)
	if removed {
		if err := s.svc.store.SaveSelection(ctx, s.clientID, next); err != nil {
			return nil, err
		}
	}
	return s.svc.catalog.Resolve(next), nil
}

// Send records text as a user turn and asks the completion service for a
// reply. It returns the messages added to the transcript.
func (s *Session) Send(ctx context.Context, text string) ([]DisplayMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.append(ctx, store.Message{Sender: string(msgfmt.User), Text: text})
	if err != nil {
		return nil, err
	}
	reply, err := s.complete(ctx)
	if err != nil {
		return nil, err
	}
	return []DisplayMessage{user, reply}, nil
}

func (s *Session) GenerateRoutine(ctx context.Context) ([]DisplayMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.svc.store.Selection(ctx, s.clientID)
	if err != nil {
		return nil, err
	}
	products := s.svc.catalog.Resolve(ids)
	if len(products) == 0 {
		hint, err := s.append(ctx, store.Message{Sender: string(msgfmt.Bot), Text: NoSelectionHint, Notice: true})
		if err != nil {
			return nil, err
		}
		return []DisplayMessage{hint}, nil
	}

	request, err := s.append(ctx, store.Message{
		Sender: string(msgfmt.User),
		Text:   RoutineRequest,
		Prompt: RoutinePrompt(products),
	})
	if err != nil {
		return nil, err
	}
	working, err := s.append(ctx, store.Message{Sender: string(msgfmt.Bot), Text: RoutineWorking, Notice: true})
	if err != nil {
		return nil, err
	}
	reply, err := s.complete(ctx)
	if err != nil {
		return nil, err
	}
	return []DisplayMessage{request, working, reply}, nil
}

func (s *Session) History(ctx context.Context) ([]DisplayMessage, error) {
	items, err := s.svc.store.Messages(ctx, s.clientID, s.svc.historyLimit)
	if err != nil {
		return nil, err
	}
	out := make([]DisplayMessage, 0, len(items))
	for _, item := range items {
		out = append(out, s.display(item))
	}
	return out, nil
}

func (s *Session) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.store.ClearMessages(ctx, s.clientID)
}

func (s *Session) Direction(ctx context.Context) (string, error) {
	return s.svc.store.Direction(ctx, s.clientID)
}

func (s *Session) SetDirection(ctx context.Context, direction string) (string, error) {
	normalized, err := store.NormalizeDirection(direction)
	if err != nil {
		return "", err
	}
	if err := s.svc.store.SaveDirection(ctx, s.clientID, normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// RoutinePrompt asks for a routine built from products.
func RoutinePrompt(products []catalog.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join([]string{
		"You are a professional skincare advisor for L'Oréal.",
		"Using these selected products, create a personalized skincare routine.",
		"Products: " + strings.Join(names, ", ") + ".",
		"Describe the order of use, time of day (AM/PM), and quick skincare tips.",
	}, "\n")
}

// complete sends the conversation so far and records the reply, or a notice
// describing why there is none. Callers hold s.mu.
func (s *Session) complete(ctx context.Context) (DisplayMessage, error) {
	history, err := s.svc.store.Messages(ctx, s.clientID, s.svc.historyLimit)
	if err != nil {
		return DisplayMessage{}, err
	}
	turns := make([]ai.Message, 0, len(history))
	for _, item := range history {
		if item.Notice {
			continue
		}
		role := ai.RoleUser
		if item.Sender == string(msgfmt.Bot) {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Message{Role: role, Content: item.ConversationText()})
	}

	resp, err := s.svc.ai.Complete(ctx, ai.NewConversation(turns))
	if err != nil {
		s.log.Error().Err(err).Msg("completion request failed")
		return s.append(ctx, store.Message{Sender: string(msgfmt.Bot), Text: UnreachableNotice, Notice: true})
	}
	if !resp.OK() {
		s.log.Warn().Int("status", resp.Status).Str("body", ai.Preview(resp.Body, previewLimit)).Msg("completion service error")
		return s.append(ctx, store.Message{
			Sender: string(msgfmt.Bot),
			Text:   fmt.Sprintf("⚠️ Worker error: %d", resp.Status),
			Notice: true,
		})
	}
	reply, ok := ai.ExtractReply(resp.Body)
	if !ok {
		preview := ai.Preview(resp.Body, previewLimit)
		s.log.Warn().Str("body", preview).Msg("completion response had no reply")
		return s.append(ctx, store.Message{
			Sender: string(msgfmt.Bot),
			Text:   noReplyNotice + preview,
			Notice: true,
		})
	}
	return s.append(ctx, store.Message{Sender: string(msgfmt.Bot), Text: reply})
}

func (s *Session) append(ctx context.Context, msg store.Message) (DisplayMessage, error) {
	stored, err := s.svc.store.AppendMessage(ctx, s.clientID, msg)
	if err != nil {
		return DisplayMessage{}, err
	}
	return s.display(stored), nil
}

func (s *Session) display(msg store.Message) DisplayMessage {
	sender := msgfmt.Sender(msg.Sender)
	label := "You"
	if sender == msgfmt.Bot {
		label = "Bot"
	}
	return DisplayMessage{
		ID:        msg.ID,
		Sender:    msg.Sender,
		Label:     label,
		Text:      msg.Text,
		HTML:      s.svc.formatter.Format(sender, msg.Text),
		CreatedAt: msg.CreatedAt,
	}
}

func without(ids []int, id int) ([]int, bool) {
	out := make([]int, 0, len(ids))
	removed := false
	for _, existing := range ids {
		if existing == id {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}
