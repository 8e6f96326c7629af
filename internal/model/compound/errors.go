package compound

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("compound not found")
	ErrTransport        = errors.New("compound service unavailable")
	ErrMissingAttribute = errors.New("attribute missing from compound record")
)

// ErrorKind classifies a failed lookup.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindTransport        ErrorKind = "transport"
	KindMissingAttribute ErrorKind = "missing_attribute"
)

// LookupError is the failure value returned for every unsuccessful lookup.
// It unwraps to one of the sentinel errors above and to the underlying cause.
type LookupError struct {
	Kind      ErrorKind
	CID       string
	Attribute Attribute
	Err       error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s lookup for CID %s: %s", e.Attribute, e.CID, e.Kind)
	}
	return fmt.Sprintf("%s lookup for CID %s: %v", e.Attribute, e.CID, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *LookupError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Reason is the message shown inline to the user.
func (e *LookupError) Reason() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("Error retrieving %s for CID %s: no compound matches this CID.", e.Attribute.Label(), e.CID)
	case KindMissingAttribute:
		return fmt.Sprintf("Error retrieving %s for CID %s: the record has no %s.", e.Attribute.Label(), e.CID, e.Attribute.Label())
	default:
		if e.Err != nil {
			return fmt.Sprintf("Error retrieving %s for CID %s: %v", e.Attribute.Label(), e.CID, e.Err)
		}
		return fmt.Sprintf("Error retrieving %s for CID %s: service unavailable.", e.Attribute.Label(), e.CID)
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindMissingAttribute:
		return ErrMissingAttribute
	default:
		return ErrTransport
	}
}

// NewLookupError builds a LookupError of the given kind.
func NewLookupError(kind ErrorKind, cid string, attr Attribute, cause error) *LookupError {
	return &LookupError{Kind: kind, CID: cid, Attribute: attr, Err: cause}
}

// AsLookupError converts any error into a LookupError, treating unknown
// failures as transport errors.
func AsLookupError(err error, cid string, attr Attribute) *LookupError {
	if err == nil {
		return nil
	}
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NewLookupError(KindNotFound, cid, attr, err)
	case errors.Is(err, ErrMissingAttribute):
		return NewLookupError(KindMissingAttribute, cid, attr, err)
	default:
		return NewLookupError(KindTransport, cid, attr, err)
	}
}
