package chat_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/chemassist/assistant/backend/internal/model/chat"
	"github.com/chemassist/assistant/backend/internal/model/compound"
	chat "github.com/chemassist/assistant/backend/internal/service/chat"
	compoundsvc "github.com/chemassist/assistant/backend/internal/service/compound"
)

type stubSource struct {
	mu      sync.Mutex
	records map[string]compound.Record
	calls   int
}

func (s *stubSource) Lookup(_ context.Context, cid string, _ compound.Attribute) (compound.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	record, ok := s.records[cid]
	if !ok {
		return compound.Record{}, fmt.Errorf("%w: %s", compound.ErrNotFound, cid)
	}
	return record, nil
}

func newService(t *testing.T, cfg chat.Config) (*chat.Service, *stubSource) {
	t.Helper()

	source := &stubSource{records: map[string]compound.Record{
		"3": {CID: "3", MolecularWeight: 46.07, MolecularFormula: "C2H6O", IUPACName: "ethanol"},
	}}
	selectors := make(map[compound.Attribute]chat.Selector)
	for attr, selector := range compoundsvc.NewSelectors(compoundsvc.NewService(source, nil)) {
		selectors[attr] = selector
	}
	return chat.NewService(selectors, cfg), source
}

func TestServiceGetSession(t *testing.T) {
	svc, _ := newService(t, chat.Config{})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, model.ModeMenu, got.Mode)
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc, _ := newService(t, chat.Config{})

	_, err := svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)

	_, err = svc.Submit(context.Background(), "missing", "1")
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}

func TestMenuChoiceSelectsMode(t *testing.T) {
	cases := map[string]model.Mode{
		"1": model.ModeFormula,
		"2": model.ModeWeight,
		"3": model.ModeSMILES,
		"4": model.ModeName,
	}
	for choice, mode := range cases {
		svc, _ := newService(t, chat.Config{})
		ctx := context.Background()
		session, _ := svc.CreateSession(ctx)

		turn, err := svc.Submit(ctx, session.ID, choice)
		require.NoError(t, err)
		assert.Equal(t, mode, turn.Mode)
		assert.Empty(t, turn.Notice)
		require.Len(t, turn.Entries, 1)
		assert.Equal(t, choice, turn.Entries[0].Content)
		assert.Equal(t, model.RoleUser, turn.Entries[0].Role)
	}
}

func TestInvalidMenuChoiceLeavesTranscript(t *testing.T) {
	svc, _ := newService(t, chat.Config{})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)

	turn, err := svc.Submit(ctx, session.ID, "5")
	require.NoError(t, err)
	assert.Equal(t, model.ModeMenu, turn.Mode)
	assert.ErrorIs(t, turn.Err, chat.ErrInvalidMenuChoice)
	assert.Equal(t, "Invalid choice. Please enter a number between 1 and 4.", turn.Notice)
	assert.Empty(t, turn.Entries)

	transcript, err := svc.LoadTranscript(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestWeightScenario(t *testing.T) {
	svc, _ := newService(t, chat.Config{})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)

	_, err := svc.Submit(ctx, session.ID, "2")
	require.NoError(t, err)

	turn, err := svc.Submit(ctx, session.ID, "3")
	require.NoError(t, err)
	assert.Equal(t, model.ModeWeight, turn.Mode)
	assert.Empty(t, turn.Notice)
	assert.Equal(t, "Enter the CID number to find the Molecular Weight:", turn.Prompt)

	transcript, err := svc.LoadTranscript(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 3)
	assert.Equal(t, "3", transcript[1].Content)
	assert.Equal(t, model.RoleUser, transcript[1].Role)
	assert.Equal(t, "The molecular weight for CID 3 is 46.07 g/mol.", transcript[2].Content)
	assert.Equal(t, model.RoleAssistant, transcript[2].Role)
	assert.Equal(t, session.ID, transcript[2].SessionID)
}

func TestUnknownCIDKeepsOnlyUserEntry(t *testing.T) {
	for _, choice := range []string{"1", "2", "3", "4"} {
		svc, _ := newService(t, chat.Config{})
		ctx := context.Background()
		session, _ := svc.CreateSession(ctx)
		_, _ = svc.Submit(ctx, session.ID, choice)

		before, _ := svc.GetSession(ctx, session.ID)
		turn, err := svc.Submit(ctx, session.ID, "999999999")
		require.NoError(t, err)

		assert.ErrorIs(t, turn.Err, compound.ErrNotFound)
		assert.NotEmpty(t, turn.Notice)
		require.Len(t, turn.Entries, 1)
		assert.Equal(t, model.RoleUser, turn.Entries[0].Role)
		assert.Equal(t, before.Mode, turn.Mode)

		transcript, _ := svc.LoadTranscript(ctx, session.ID)
		require.Len(t, transcript, 2)
		assert.Equal(t, "999999999", transcript[1].Content)
	}
}

func TestRepeatedLookupIsNotDeduplicated(t *testing.T) {
	svc, source := newService(t, chat.Config{})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)
	_, _ = svc.Submit(ctx, session.ID, "1")

	_, _ = svc.Submit(ctx, session.ID, "3")
	_, _ = svc.Submit(ctx, session.ID, "3")

	transcript, _ := svc.LoadTranscript(ctx, session.ID)
	require.Len(t, transcript, 5)
	assert.Equal(t, transcript[1].Content, transcript[3].Content)
	assert.Equal(t, transcript[2].Content, transcript[4].Content)
	assert.NotEqual(t, transcript[2].ID, transcript[4].ID)
	assert.Equal(t, 2, source.calls)
}

func TestAttributeModeTreatsEveryInputAsCID(t *testing.T) {
	svc, _ := newService(t, chat.Config{MenuCommand: ""})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)
	_, _ = svc.Submit(ctx, session.ID, "1")

	for _, input := range []string{"menu", "2", "abc"} {
		turn, err := svc.Submit(ctx, session.ID, input)
		require.NoError(t, err)
		assert.Equal(t, model.ModeFormula, turn.Mode)
		require.Len(t, turn.Entries, 1)
		assert.Equal(t, input, turn.Entries[0].Content)
	}
}

func TestMenuCommandReturnsToMenu(t *testing.T) {
	svc, _ := newService(t, chat.Config{MenuCommand: "menu"})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)
	_, _ = svc.Submit(ctx, session.ID, "4")

	turn, err := svc.Submit(ctx, session.ID, " MENU ")
	require.NoError(t, err)
	assert.Equal(t, model.ModeMenu, turn.Mode)
	assert.Empty(t, turn.Entries)
	assert.Equal(t, "Please enter the service number (1, 2, 3, or 4):", turn.Prompt)

	transcript, _ := svc.LoadTranscript(ctx, session.ID)
	assert.Len(t, transcript, 1)

	turn, _ = svc.Submit(ctx, session.ID, "3")
	assert.Equal(t, model.ModeSMILES, turn.Mode)
}

func TestEmptyInputIsIgnored(t *testing.T) {
	svc, _ := newService(t, chat.Config{})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)

	turn, err := svc.Submit(ctx, session.ID, "   ")
	require.NoError(t, err)
	assert.Empty(t, turn.Entries)
	assert.Empty(t, turn.Notice)
	assert.Equal(t, model.ModeMenu, turn.Mode)
}

func TestSessionsAreIndependent(t *testing.T) {
	svc, _ := newService(t, chat.Config{})
	ctx := context.Background()
	first, _ := svc.CreateSession(ctx)
	second, _ := svc.CreateSession(ctx)

	_, _ = svc.Submit(ctx, first.ID, "2")

	got, _ := svc.GetSession(ctx, second.ID)
	assert.Equal(t, model.ModeMenu, got.Mode)

	transcript, _ := svc.LoadTranscript(ctx, second.ID)
	assert.Empty(t, transcript)
}

func TestConcurrentSubmitsKeepTranscriptConsistent(t *testing.T) {
	svc, _ := newService(t, chat.Config{})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)
	_, _ = svc.Submit(ctx, session.ID, "2")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Submit(ctx, session.ID, "3")
		}()
	}
	wg.Wait()

	transcript, _ := svc.LoadTranscript(ctx, session.ID)
	require.Len(t, transcript, 21)
	for i := 1; i < len(transcript); i += 2 {
		assert.Equal(t, model.RoleUser, transcript[i].Role)
		assert.Equal(t, model.RoleAssistant, transcript[i+1].Role)
	}
}

func TestLoadTranscriptReturnsCopy(t *testing.T) {
	svc, _ := newService(t, chat.Config{})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)
	_, _ = svc.Submit(ctx, session.ID, "1")

	transcript, _ := svc.LoadTranscript(ctx, session.ID)
	transcript[0].Content = "edited"

	again, _ := svc.LoadTranscript(ctx, session.ID)
	assert.Equal(t, "1", again[0].Content)
}

func TestIdleSessionsExpire(t *testing.T) {
	svc, _ := newService(t, chat.Config{SessionTTL: 50 * time.Millisecond})
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)

	// Polling would refresh the idle timer, so wait once.
	time.Sleep(150 * time.Millisecond)

	_, err := svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}
