package compound

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/model/compound"
)

// Source is the remote compound database.
type Source interface {
	Lookup(ctx context.Context, cid string, attr compound.Attribute) (compound.Record, error)
}

// NameSource extracts one candidate name from a record.
type NameSource struct {
	Label string
	Pick  func(compound.Record) string
}

// NameSources is the name resolution priority list: the IUPAC name first,
// then the first listed synonym.
var NameSources = []NameSource{
	{Label: "iupac", Pick: func(r compound.Record) string { return r.IUPACName }},
	{Label: "synonym", Pick: func(r compound.Record) string {
		if len(r.Synonyms) == 0 {
			return ""
		}
		return r.Synonyms[0]
	}},
}

// ResolveName walks NameSources and returns the first non-empty name.
func ResolveName(record compound.Record) (string, bool) {
	for _, source := range NameSources {
		if name := strings.TrimSpace(source.Pick(record)); name != "" {
			return name, true
		}
	}
	return "", false
}

// Service is the lookup adapter in front of the compound database.
type Service struct {
	source Source
	logger *zap.Logger
}

// NewService wraps a Source.
func NewService(source Source, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logging.OrNop(logger)}
}

// FetchAttribute performs one lookup and returns the requested attribute
// formatted as text. Every failure comes back as a *compound.LookupError.
func (s *Service) FetchAttribute(ctx context.Context, cid string, attr compound.Attribute) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("compound lookup panicked", zap.String("cid", cid), zap.Any("panic", r))
			value = ""
			err = compound.NewLookupError(compound.KindTransport, cid, attr, fmt.Errorf("%w: %v", compound.ErrTransport, r))
		}
	}()

	record, lookupErr := s.source.Lookup(ctx, cid, attr)
	if lookupErr != nil {
		failure := compound.AsLookupError(lookupErr, cid, attr)
		s.logger.Info("compound lookup failed",
			zap.String("cid", cid),
			zap.String("attribute", string(attr)),
			zap.String("kind", string(failure.Kind)),
			zap.Error(lookupErr),
		)
		return "", failure
	}

	value, ok := extract(record, attr)
	if !ok {
		s.logger.Info("compound attribute missing", zap.String("cid", cid), zap.String("attribute", string(attr)))
		return "", compound.NewLookupError(compound.KindMissingAttribute, cid, attr, nil)
	}
	return value, nil
}

// extract reads only the field belonging to attr.
func extract(record compound.Record, attr compound.Attribute) (string, bool) {
	switch attr {
	case compound.Weight:
		if record.MolecularWeight <= 0 {
			return "", false
		}
		return strconv.FormatFloat(record.MolecularWeight, 'f', -1, 64), true
	case compound.Formula:
		return nonEmpty(record.MolecularFormula)
	case compound.SMILES:
		return nonEmpty(record.CanonicalSMILES)
	case compound.Name:
		return ResolveName(record)
	default:
		return "", false
	}
}

func nonEmpty(value string) (string, bool) {
	value = strings.TrimSpace(value)
	return value, value != ""
}
