// Package requirements maps the upstream deal-requirements payload, in any
// of its observed shapes, onto one canonical model.Requirements record.
//
// Each canonical field owns an ordered list of candidate source paths
// (flat snake_case, flat camelCase, then nested objects). The first path
// holding a non-empty value wins. Normalization never fails: missing or
// malformed input degrades to the field's zero value.
package requirements

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"contractpilot/internal/model"
)

// FallbackRecorder is told when a structured sub-record could not be
// decoded and was replaced by its zero value
type FallbackRecorder interface {
	NormalizationFallback(field string)
}

// Normalizer turns raw payloads into Requirements
type Normalizer struct {
	logger   zerolog.Logger
	recorder FallbackRecorder
}

// NewNormalizer creates a normalizer. recorder may be nil.
func NewNormalizer(logger zerolog.Logger, recorder FallbackRecorder) *Normalizer {
	return &Normalizer{
		logger:   logger.With().Str("component", "normalizer").Logger(),
		recorder: recorder,
	}
}

// Normalize is a convenience for callers that need neither logging nor metrics
func Normalize(raw map[string]any) model.Requirements {
	return NewNormalizer(zerolog.Nop(), nil).Normalize(raw)
}

// nests are the container objects observed upstream, most specific first
var (
	dealNests    = []string{"requirements", "metadata"}
	companyNests = []string{"customer", "requirements", "metadata"}
)

type stringField struct {
	name  string
	paths []string
	set   func(r *model.Requirements, v string)
}

// candidatePaths expands a camelCase name into its ordered probe list
func candidatePaths(camel string, nests ...string) []string {
	snake := toSnake(camel)
	paths := []string{snake, camel}
	for _, n := range nests {
		paths = append(paths, n+"."+camel)
		if snake != camel {
			paths = append(paths, n+"."+snake)
		}
	}
	return paths
}

var stringFields = []stringField{
	{"companyName", candidatePaths("companyName", companyNests...), func(r *model.Requirements, v string) { r.CompanyName = v }},
	{"companySize", candidatePaths("companySize", companyNests...), func(r *model.Requirements, v string) { r.CompanySize = v }},
	{"industry", candidatePaths("industry", companyNests...), func(r *model.Requirements, v string) { r.Industry = v }},
	{"region", candidatePaths("region", companyNests...), func(r *model.Requirements, v string) { r.Region = v }},

	{"numberOfBidders", candidatePaths("numberOfBidders", dealNests...), func(r *model.Requirements, v string) { r.NumberOfBidders = v }},
	{"decisionTimeline", candidatePaths("decisionTimeline", dealNests...), func(r *model.Requirements, v string) { r.DecisionTimeline = v }},
	{"incumbentStatus", candidatePaths("incumbentStatus", dealNests...), func(r *model.Requirements, v string) { r.IncumbentStatus = v }},
	{"switchingCosts", candidatePaths("switchingCosts", dealNests...), func(r *model.Requirements, v string) { r.SwitchingCosts = v }},
	{"marketPosition", candidatePaths("marketPosition", dealNests...), func(r *model.Requirements, v string) { r.MarketPosition = v }},

	{"serviceRequired", candidatePaths("serviceRequired", dealNests...), func(r *model.Requirements, v string) { r.ServiceRequired = v }},
	{"serviceCriticality", candidatePaths("serviceCriticality", dealNests...), func(r *model.Requirements, v string) { r.ServiceCriticality = v }},
	{"dealValue", candidatePaths("dealValue", dealNests...), func(r *model.Requirements, v string) { r.DealValue = v }},

	{"alternativeOptions", candidatePaths("alternativeOptions", dealNests...), func(r *model.Requirements, v string) { r.AlternativeOptions = v }},
	{"inHouseCapability", candidatePaths("inHouseCapability", dealNests...), func(r *model.Requirements, v string) { r.InHouseCapability = v }},
	{"walkAwayPoint", candidatePaths("walkAwayPoint", dealNests...), func(r *model.Requirements, v string) { r.WalkAwayPoint = v }},
	{"budgetFlexibility", candidatePaths("budgetFlexibility", dealNests...), func(r *model.Requirements, v string) { r.BudgetFlexibility = v }},
}

var (
	contractPositionPaths = candidatePaths("contractPositions", "requirements")
	priorityPaths         = candidatePaths("priorities", "requirements")
	pathwayPaths          = append(candidatePaths("pathway", "metadata"), candidatePaths("pathwayId", "metadata")...)
)

// Normalize maps raw onto Requirements. raw may be nil.
func (n *Normalizer) Normalize(raw map[string]any) model.Requirements {
	var req model.Requirements
	for _, f := range stringFields {
		f.set(&req, firstString(raw, f.paths))
	}
	req.ContractPositions = n.contractPositions(raw)
	req.Priorities = n.priorities(raw)
	return req
}

// Pathway extracts the optional pathway token carried in the payload
func Pathway(raw map[string]any) string {
	return firstString(raw, pathwayPaths)
}

func (n *Normalizer) contractPositions(raw map[string]any) model.ContractPositions {
	obj, ok := n.subRecord(raw, "contractPositions", contractPositionPaths)
	if !ok {
		return model.ContractPositions{}
	}
	return model.ContractPositions{
		LiabilityCap:      firstNumber(obj, candidatePaths("liabilityCap")),
		PaymentTerms:      int(firstNumber(obj, candidatePaths("paymentTerms"))),
		SLATarget:         firstNumber(obj, candidatePaths("slaTarget")),
		TerminationNotice: int(firstNumber(obj, candidatePaths("terminationNotice"))),
	}
}

func (n *Normalizer) priorities(raw map[string]any) model.Priorities {
	obj, ok := n.subRecord(raw, "priorities", priorityPaths)
	if !ok {
		return model.Priorities{}
	}
	return model.Priorities{
		Cost:           int(firstNumber(obj, candidatePaths("cost"))),
		Quality:        int(firstNumber(obj, candidatePaths("quality"))),
		Speed:          int(firstNumber(obj, candidatePaths("speed"))),
		Innovation:     int(firstNumber(obj, candidatePaths("innovation"))),
		RiskMitigation: int(firstNumber(obj, candidatePaths("riskMitigation"))),
	}
}

// subRecord finds the first non-empty candidate and decodes it into an
// object. A present but undecodable value is logged and reported.
func (n *Normalizer) subRecord(raw map[string]any, field string, paths []string) (map[string]any, bool) {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok || isEmpty(v) {
			continue
		}
		obj, ok := asObject(v)
		if !ok {
			n.logger.Warn().Str("field", field).Str("path", p).Msg("undecodable sub-record, using defaults")
			if n.recorder != nil {
				n.recorder.NormalizationFallback(field)
			}
			return nil, false
		}
		return obj, true
	}
	return nil, false
}

// lookup walks a dotted path. Intermediate values that are JSON text are
// decoded on the way down.
func lookup(raw map[string]any, path string) (any, bool) {
	cur := raw
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if cur == nil {
			return nil, false
		}
		v, ok := cur[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := asObject(v)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// asObject accepts a structured object or its JSON text, tolerating one
// extra level of string encoding
func asObject(v any) (map[string]any, bool) {
	for depth := 0; depth < 3; depth++ {
		switch t := v.(type) {
		case map[string]any:
			return t, true
		case string:
			var decoded any
			if err := json.Unmarshal([]byte(strings.TrimSpace(t)), &decoded); err != nil {
				return nil, false
			}
			v = decoded
		default:
			return nil, false
		}
	}
	return nil, false
}

func firstString(raw map[string]any, paths []string) string {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

func firstNumber(obj map[string]any, paths []string) float64 {
	for _, p := range paths {
		v, ok := lookup(obj, p)
		if !ok || isEmpty(v) {
			continue
		}
		if f, ok := scalarNumber(v); ok {
			return f
		}
	}
	return 0
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// scalarString renders a scalar JSON value as text. Objects and arrays
// are not scalars and yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func scalarNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimSuffix(s, "%")
		s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "days"))
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func toSnake(camel string) string {
	var b strings.Builder
	for i, r := range camel {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
