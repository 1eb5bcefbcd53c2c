package report

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/utils"
)

type IdentifierKind int

const (
	KindCaseID IdentifierKind = iota
	KindReportID
	KindTrackingCode
	KindSecretCode
	KindCaseNumber
)

func (k IdentifierKind) String() string {
	switch k {
	case KindCaseID:
		return "case_id"
	case KindReportID:
		return "report_id"
	case KindTrackingCode:
		return "tracking_code"
	case KindSecretCode:
		return "secret_code"
	case KindCaseNumber:
		return "case_number"
	}
	return fmt.Sprintf("IdentifierKind(%d)", int(k))
}

// ParseIdentifierKind is the inverse of IdentifierKind.String.
func ParseIdentifierKind(s string) (IdentifierKind, error) {
	for _, k := range []IdentifierKind{KindCaseID, KindReportID, KindTrackingCode, KindSecretCode, KindCaseNumber} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown identifier kind %q", s)
}

// Length is the number of symbols in a random code of this kind. Case numbers
// have a fixed format instead and report 0.
func (k IdentifierKind) Length() int {
	switch k {
	case KindReportID, KindTrackingCode:
		return 10
	case KindCaseID, KindSecretCode:
		return 12
	}
	return 0
}

// RandomSource draws size symbols uniformly from alphabet.
type RandomSource interface {
	Code(alphabet string, size int) (string, error)
}

// SecureSource reads from crypto/rand through go-nanoid.
type SecureSource struct{}

func (SecureSource) Code(alphabet string, size int) (string, error) {
	return utils.NanoID(alphabet, size)
}

// Identifiers is one full set of identifiers for a new case.
type Identifiers struct {
	CaseID       string
	ReportID     string
	TrackingCode string
	SecretCode   string
	CaseNumber   string
}

type Generator struct {
	source RandomSource
	intn   func(n int) int
	now    func() time.Time
}

type GeneratorOption func(*Generator)

// WithRandomSource replaces the source used for every code except the case
// number.
func WithRandomSource(src RandomSource) GeneratorOption {
	return func(g *Generator) { g.source = src }
}

// WithDisplayRandom replaces the non-cryptographic source behind case numbers.
func WithDisplayRandom(intn func(n int) int) GeneratorOption {
	return func(g *Generator) { g.intn = intn }
}

func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		source: SecureSource{},
		intn:   rand.IntN,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Generate(kind IdentifierKind) (string, error) {
	if kind == KindCaseNumber {
		return fmt.Sprintf("WB-%d-%04d", g.now().Year(), g.intn(10000)), nil
	}

	size := kind.Length()
	if size == 0 {
		return "", fmt.Errorf("unknown identifier kind %s", kind)
	}

	code, err := g.source.Code(utils.CodeAlphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", kind, err)
	}

	return code, nil
}

// Identifiers generates one of each kind. No uniqueness check is made against
// stored cases.
func (g *Generator) Identifiers() (Identifiers, error) {
	var ids Identifiers
	targets := []struct {
		kind IdentifierKind
		dst  *string
	}{
		{KindCaseID, &ids.CaseID},
		{KindReportID, &ids.ReportID},
		{KindCaseNumber, &ids.CaseNumber},
		{KindSecretCode, &ids.SecretCode},
		{KindTrackingCode, &ids.TrackingCode},
	}

	for _, t := range targets {
		v, err := g.Generate(t.kind)
		if err != nil {
			return Identifiers{}, err
		}
		*t.dst = v
	}

	return ids, nil
}
