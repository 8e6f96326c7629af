package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/model/chat"
	"github.com/chemassist/assistant/backend/internal/model/compound"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidMenuChoice = errors.New("invalid menu choice")
)

const defaultSessionTTL = 2 * time.Hour

// Selector answers one CID input for the attribute it serves.
type Selector interface {
	HandleUserInput(ctx context.Context, cid string) ([]chat.Message, error)
}

// Prompter is implemented by selectors that carry an input prompt.
type Prompter interface {
	PromptText() string
}

// Config tunes the session loop.
type Config struct {
	// MenuCommand returns an attribute-mode session to the menu. Empty
	// disables the transition.
	MenuCommand string
	SessionTTL  time.Duration
	Logger      *zap.Logger
}

// Turn is the outcome of one submitted input.
type Turn struct {
	SessionID string         `json:"sessionId"`
	Mode      chat.Mode      `json:"mode"`
	Entries   []chat.Message `json:"entries"`
	Notice    string         `json:"notice,omitempty"`
	Prompt    string         `json:"prompt"`
	Err       error          `json:"-"`
}

// sessionState is the per-session context: mode plus transcript, guarded by
// its own lock so each session processes one input at a time.
type sessionState struct {
	mu       sync.Mutex
	session  chat.Session
	messages []chat.Message
}

// Service encapsulates conversation state management.
type Service struct {
	sessions    *cache.Cache
	ttl         time.Duration
	selectors   map[compound.Attribute]Selector
	menuCommand string
	logger      *zap.Logger
}

// NewService bootstraps the in-memory session loop. Idle sessions expire
// after cfg.SessionTTL.
func NewService(selectors map[compound.Attribute]Selector, cfg Config) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	return &Service{
		sessions:    cache.New(ttl, cleanup),
		ttl:         ttl,
		selectors:   selectors,
		menuCommand: strings.TrimSpace(cfg.MenuCommand),
		logger:      logging.OrNop(cfg.Logger),
	}
}

// CreateSession provisions an anonymous session in menu mode.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		Mode:      chat.ModeMenu,
		CreatedAt: time.Now().UTC(),
	}

	state := &sessionState{
		session:  session,
		messages: make([]chat.Message, 0, 16),
	}
	s.sessions.Set(session.ID, state, s.ttl)

	s.logger.Info("session created", zap.String("session", session.ID))
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	state, err := s.load(sessionID)
	if err != nil {
		return chat.Session{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.session, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	state, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	copied := make([]chat.Message, len(state.messages))
	copy(copied, state.messages)
	return copied, nil
}

// Submit feeds one input to the session state machine. Inline problems
// (invalid menu choice, failed lookup) are reported through Turn.Notice and
// Turn.Err; the returned error is reserved for unknown sessions.
func (s *Service) Submit(ctx context.Context, sessionID, input string) (Turn, error) {
	state, err := s.load(sessionID)
	if err != nil {
		return Turn{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	input = strings.TrimSpace(input)
	turn := Turn{SessionID: sessionID, Entries: []chat.Message{}}

	switch {
	case input == "":
	case state.session.Mode == chat.ModeMenu:
		s.selectMode(state, input, &turn)
	case s.menuCommand != "" && strings.EqualFold(input, s.menuCommand):
		state.session.Mode = chat.ModeMenu
		turn.Notice = returnedToMenuText
		s.logger.Debug("session returned to menu", zap.String("session", sessionID))
	default:
		s.dispatch(ctx, state, input, &turn)
	}

	turn.Mode = state.session.Mode
	turn.Prompt = s.promptFor(state.session.Mode)
	return turn, nil
}

// Prompt returns the input prompt for a mode.
func (s *Service) Prompt(mode chat.Mode) string {
	return s.promptFor(mode)
}

// MenuCommand is the configured return-to-menu input, possibly empty.
func (s *Service) MenuCommand() string {
	return s.menuCommand
}

func (s *Service) selectMode(state *sessionState, input string, turn *Turn) {
	mode, ok := chat.ModeForChoice(input)
	if !ok {
		turn.Notice = invalidChoiceText
		turn.Err = ErrInvalidMenuChoice
		return
	}

	turn.Entries = append(turn.Entries, state.append(chat.UserMessage(input)))
	state.session.Mode = mode
	s.logger.Debug("session mode selected", zap.String("session", state.session.ID), zap.String("mode", string(mode)))
}

func (s *Service) dispatch(ctx context.Context, state *sessionState, input string, turn *Turn) {
	attr, _ := state.session.Mode.Attribute()
	selector, ok := s.selectors[attr]
	if !ok {
		turn.Notice = "This service is not available right now."
		turn.Err = errors.New("no selector for mode " + string(state.session.Mode))
		s.logger.Error("selector missing", zap.String("mode", string(state.session.Mode)))
		return
	}

	entries, err := selector.HandleUserInput(ctx, input)
	for _, entry := range entries {
		turn.Entries = append(turn.Entries, state.append(entry))
	}

	if err != nil {
		turn.Err = err
		turn.Notice = noticeFor(err)
		s.logger.Info("lookup turn failed",
			zap.String("session", state.session.ID),
			zap.String("mode", string(state.session.Mode)),
			zap.Error(err),
		)
	}
}

func (s *Service) promptFor(mode chat.Mode) string {
	if mode == chat.ModeMenu {
		return menuPrompt
	}
	attr, _ := mode.Attribute()
	if p, ok := s.selectors[attr].(Prompter); ok {
		return p.PromptText()
	}
	return "Enter the CID number:"
}

func (s *Service) load(sessionID string) (*sessionState, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	value, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	// Touch the entry so expiry measures idle time.
	s.sessions.Set(sessionID, value, s.ttl)
	return value.(*sessionState), nil
}

// append stamps and stores a message; callers hold st.mu.
func (st *sessionState) append(message chat.Message) chat.Message {
	message.ID = uuid.NewString()
	message.SessionID = st.session.ID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	st.messages = append(st.messages, message)
	return message
}

func noticeFor(err error) string {
	var lookupErr *compound.LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Reason()
	}
	return err.Error()
}
