// Package testutil provides fixtures shared by handler and console tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chemassist/assistant/backend/internal/app"
	"github.com/chemassist/assistant/backend/internal/config"
	"github.com/chemassist/assistant/backend/internal/model/compound"
)

// StaticSource serves compound records from memory.
type StaticSource struct {
	mu      sync.Mutex
	records map[string]compound.Record
	calls   int
}

// NewStaticSource returns a source preloaded with records keyed by CID.
func NewStaticSource(records ...compound.Record) *StaticSource {
	byCID := make(map[string]compound.Record, len(records))
	for _, r := range records {
		byCID[r.CID] = r
	}
	return &StaticSource{records: byCID}
}

// Lookup implements the compound source; unknown CIDs are not found.
func (s *StaticSource) Lookup(_ context.Context, cid string, _ compound.Attribute) (compound.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	record, ok := s.records[cid]
	if !ok {
		return compound.Record{}, fmt.Errorf("%w: no CID %s", compound.ErrNotFound, cid)
	}
	return record, nil
}

// Calls reports how many lookups were made.
func (s *StaticSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Ethanol is the CID 3 fixture used across tests.
func Ethanol() compound.Record {
	return compound.Record{
		CID:              "3",
		MolecularWeight:  46.07,
		MolecularFormula: "C2H6O",
		CanonicalSMILES:  "CCO",
		IUPACName:        "ethanol",
	}
}

// Config returns a configuration suitable for tests, with assets under dir.
func Config(dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Addr: ":0"},
		Chat:   config.ChatConfig{MenuCommand: "menu", SessionTTL: time.Hour},
		Assets: config.AssetConfig{
			Dir:           dir,
			Portrait:      "portrait.png",
			CV:            "cv.pdf",
			Sponsors:      []string{"sponsor1.png"},
			Title:         "About Me",
			Bio:           "Researcher",
			CVLabel:       "Download CV",
			CVDownloadAs:  "cv.pdf",
			AssistantName: "Chemistry Assistant",
		},
		Log: config.LogConfig{Level: "info", Format: "console"},
	}
}

// Services builds application services backed by a StaticSource holding
// the ethanol fixture.
func Services(dir string) (*app.Services, *StaticSource) {
	source := NewStaticSource(Ethanol())
	return app.NewWithSource(Config(dir), source, nil), source
}
