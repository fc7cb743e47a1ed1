package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var ErrEmptyDocument = errors.New("document is empty")
var ErrNoJSONObject = errors.New("no JSON object in model reply")

// FinancialRecord is the flat set of figures extracted from one annual
// report. Every decimal field is optional; nil means the model did not
// report it.
type FinancialRecord struct {
	CompanyID   *decimal.Decimal `json:"companyId,omitempty"`
	CompanyName string           `json:"companyName,omitempty"`

	GrossProfit                    *decimal.Decimal `json:"grossProfit,omitempty"`
	StaffCosts                     *decimal.Decimal `json:"staffCosts,omitempty"`
	OtherOperatingExpenses         *decimal.Decimal `json:"otherOperatingExpenses,omitempty"`
	Depreciation                   *decimal.Decimal `json:"depreciation,omitempty"`
	ProfitBeforeInterest           *decimal.Decimal `json:"profitBeforeInterest,omitempty"`
	FinancialIncome                *decimal.Decimal `json:"financialIncome,omitempty"`
	FinancialExpenses              *decimal.Decimal `json:"financialExpenses,omitempty"`
	ProfitBeforeExtraordinaryItems *decimal.Decimal `json:"profitBeforeExtraordinaryItems,omitempty"`
	ExtraordinaryItems             *decimal.Decimal `json:"extraordinaryItems,omitempty"`
	ProfitBeforeTax                *decimal.Decimal `json:"profitBeforeTax,omitempty"`
	Tax                            *decimal.Decimal `json:"tax,omitempty"`
	ProfitAfterTax                 *decimal.Decimal `json:"profitAfterTax,omitempty"`
	AnnualResult                   *decimal.Decimal `json:"annualResult,omitempty"`

	FixedAssets   *decimal.Decimal `json:"fixedAssets,omitempty"`
	CurrentAssets *decimal.Decimal `json:"currentAssets,omitempty"`
	TotalAssets   *decimal.Decimal `json:"totalAssets,omitempty"`

	Equity               *decimal.Decimal `json:"equity,omitempty"`
	Provisions           *decimal.Decimal `json:"provisions,omitempty"`
	LongTermLiabilities  *decimal.Decimal `json:"longTermLiabilities,omitempty"`
	ShortTermLiabilities *decimal.Decimal `json:"shortTermLiabilities,omitempty"`
	TotalLiabilities     *decimal.Decimal `json:"totalLiabilities,omitempty"`
	EquityAndLiabilities *decimal.Decimal `json:"equityAndLiabilities,omitempty"`

	AlreadyInThousands bool `json:"alreadyInThousands"`
}

// decimalField binds a JSON field name to its accessor pair. The table is
// keyed case-insensitively and declared once; no runtime reflection.
type decimalField struct {
	name string
	get  func(*FinancialRecord) *decimal.Decimal
	set  func(*FinancialRecord, decimal.Decimal)
}

var decimalFields = []decimalField{
	{"companyId", func(r *FinancialRecord) *decimal.Decimal { return r.CompanyID }, func(r *FinancialRecord, v decimal.Decimal) { r.CompanyID = &v }},
	{"grossProfit", func(r *FinancialRecord) *decimal.Decimal { return r.GrossProfit }, func(r *FinancialRecord, v decimal.Decimal) { r.GrossProfit = &v }},
	{"staffCosts", func(r *FinancialRecord) *decimal.Decimal { return r.StaffCosts }, func(r *FinancialRecord, v decimal.Decimal) { r.StaffCosts = &v }},
	{"otherOperatingExpenses", func(r *FinancialRecord) *decimal.Decimal { return r.OtherOperatingExpenses }, func(r *FinancialRecord, v decimal.Decimal) { r.OtherOperatingExpenses = &v }},
	{"depreciation", func(r *FinancialRecord) *decimal.Decimal { return r.Depreciation }, func(r *FinancialRecord, v decimal.Decimal) { r.Depreciation = &v }},
	{"profitBeforeInterest", func(r *FinancialRecord) *decimal.Decimal { return r.ProfitBeforeInterest }, func(r *FinancialRecord, v decimal.Decimal) { r.ProfitBeforeInterest = &v }},
	{"financialIncome", func(r *FinancialRecord) *decimal.Decimal { return r.FinancialIncome }, func(r *FinancialRecord, v decimal.Decimal) { r.FinancialIncome = &v }},
	{"financialExpenses", func(r *FinancialRecord) *decimal.Decimal { return r.FinancialExpenses }, func(r *FinancialRecord, v decimal.Decimal) { r.FinancialExpenses = &v }},
	{"profitBeforeExtraordinaryItems", func(r *FinancialRecord) *decimal.Decimal { return r.ProfitBeforeExtraordinaryItems }, func(r *FinancialRecord, v decimal.Decimal) { r.ProfitBeforeExtraordinaryItems = &v }},
	{"extraordinaryItems", func(r *FinancialRecord) *decimal.Decimal { return r.ExtraordinaryItems }, func(r *FinancialRecord, v decimal.Decimal) { r.ExtraordinaryItems = &v }},
	{"profitBeforeTax", func(r *FinancialRecord) *decimal.Decimal { return r.ProfitBeforeTax }, func(r *FinancialRecord, v decimal.Decimal) { r.ProfitBeforeTax = &v }},
	{"tax", func(r *FinancialRecord) *decimal.Decimal { return r.Tax }, func(r *FinancialRecord, v decimal.Decimal) { r.Tax = &v }},
	{"profitAfterTax", func(r *FinancialRecord) *decimal.Decimal { return r.ProfitAfterTax }, func(r *FinancialRecord, v decimal.Decimal) { r.ProfitAfterTax = &v }},
	{"annualResult", func(r *FinancialRecord) *decimal.Decimal { return r.AnnualResult }, func(r *FinancialRecord, v decimal.Decimal) { r.AnnualResult = &v }},
	{"fixedAssets", func(r *FinancialRecord) *decimal.Decimal { return r.FixedAssets }, func(r *FinancialRecord, v decimal.Decimal) { r.FixedAssets = &v }},
	{"currentAssets", func(r *FinancialRecord) *decimal.Decimal { return r.CurrentAssets }, func(r *FinancialRecord, v decimal.Decimal) { r.CurrentAssets = &v }},
	{"totalAssets", func(r *FinancialRecord) *decimal.Decimal { return r.TotalAssets }, func(r *FinancialRecord, v decimal.Decimal) { r.TotalAssets = &v }},
	{"equity", func(r *FinancialRecord) *decimal.Decimal { return r.Equity }, func(r *FinancialRecord, v decimal.Decimal) { r.Equity = &v }},
	{"provisions", func(r *FinancialRecord) *decimal.Decimal { return r.Provisions }, func(r *FinancialRecord, v decimal.Decimal) { r.Provisions = &v }},
	{"longTermLiabilities", func(r *FinancialRecord) *decimal.Decimal { return r.LongTermLiabilities }, func(r *FinancialRecord, v decimal.Decimal) { r.LongTermLiabilities = &v }},
	{"shortTermLiabilities", func(r *FinancialRecord) *decimal.Decimal { return r.ShortTermLiabilities }, func(r *FinancialRecord, v decimal.Decimal) { r.ShortTermLiabilities = &v }},
	{"totalLiabilities", func(r *FinancialRecord) *decimal.Decimal { return r.TotalLiabilities }, func(r *FinancialRecord, v decimal.Decimal) { r.TotalLiabilities = &v }},
	{"equityAndLiabilities", func(r *FinancialRecord) *decimal.Decimal { return r.EquityAndLiabilities }, func(r *FinancialRecord, v decimal.Decimal) { r.EquityAndLiabilities = &v }},
}

var decimalFieldIndex = func() map[string]decimalField {
	m := make(map[string]decimalField, len(decimalFields))
	for _, f := range decimalFields {
		m[strings.ToLower(f.name)] = f
	}
	return m
}()

var thousand = decimal.NewFromInt(1000)

// Normalize divides every positive decimal field by 1000 and marks the record
// as scaled to thousands. A record already carrying the flag is left
// untouched, so a second invocation is a no-op.
func (r *FinancialRecord) Normalize() {
	if r.AlreadyInThousands {
		return
	}
	for _, f := range decimalFields {
		if v := f.get(r); v != nil && v.IsPositive() {
			f.set(r, v.Div(thousand))
		}
	}
	r.AlreadyInThousands = true
}

// ParseFinancialReply converts the model's textual reply into a
// FinancialRecord. The reply may carry commentary around the JSON object;
// only the substring between the first '{' and the last '}' is parsed.
// Unmatched field names are ignored and per-field parse failures are logged
// and skipped, never aborting the whole parse.
func ParseFinancialReply(reply string, log zerolog.Logger) (*FinancialRecord, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return nil, ErrNoJSONObject
	}

	dec := json.NewDecoder(strings.NewReader(reply[start : end+1]))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}

	rec := &FinancialRecord{}
	for name, value := range raw {
		key := strings.ToLower(name)

		switch key {
		case "alreadyinthousands":
			if b, ok := value.(bool); ok {
				rec.AlreadyInThousands = b
			} else {
				log.Warn().Str("field", name).Msg("expected boolean value")
			}
			continue
		case "companyname":
			if s, ok := value.(string); ok {
				rec.CompanyName = s
			} else {
				log.Warn().Str("field", name).Msg("expected string value")
			}
			continue
		}

		field, ok := decimalFieldIndex[key]
		if !ok {
			continue
		}

		switch v := value.(type) {
		case json.Number:
			d, err := decimal.NewFromString(v.String())
			if err != nil {
				log.Warn().Err(err).Str("field", name).Msg("unparsable number")
				continue
			}
			field.set(rec, d)
		case string:
			d, err := parseDecimalString(key, v)
			if err != nil {
				log.Warn().Err(err).Str("field", name).Msg("unparsable value")
				continue
			}
			field.set(rec, d)
		default:
			log.Warn().Str("field", name).Msg("unexpected value type")
		}
	}
	return rec, nil
}

// parseDecimalString handles the model's string-typed numeric values. The
// company id keeps digits only; everything else treats '.' as a thousands
// separator (the convention of the source locale) and strips it before
// parsing.
func parseDecimalString(key, value string) (decimal.Decimal, error) {
	if key == "companyid" {
		digits := keepDigits(value)
		if digits == "" {
			return decimal.Decimal{}, fmt.Errorf("no digits in %q", value)
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromInt(n), nil
	}
	return decimal.NewFromString(strings.ReplaceAll(value, ".", ""))
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
