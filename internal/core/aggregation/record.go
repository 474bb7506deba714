package aggregation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Columns is the fixed column order of partition and merged feature tables.
var Columns = []string{
	"user_id",
	"product_id",
	"order_number",
	"days_since_prod",
	"days_since_aisle",
	"days_since_department",
	"order_aisle_displacement",
	"orders_since_prod",
	"avg_prod_disp",
	"avg_aisle_disp",
	"avg_dept_disp",
	"prod_support",
	"aisle_support",
	"dept_support",
	"streak_length",
	"target",
}

// Values renders the record in Columns order. Undefined values render as "".
func (r FeatureRecord) Values() []string {
	return []string{
		strconv.FormatInt(r.UserID, 10),
		strconv.FormatInt(r.ProductID, 10),
		strconv.Itoa(r.OrderNumber),
		formatNull(r.DaysSinceProduct),
		formatNull(r.DaysSinceAisle),
		formatNull(r.DaysSinceDepartment),
		formatNull(r.OrderAisleDisplacement),
		formatNull(r.OrdersSinceProduct),
		formatNull(r.AvgProductDisplacement),
		formatNull(r.AvgAisleDisplacement),
		formatNull(r.AvgDepartmentDisplacement),
		strconv.Itoa(r.ProductSupport),
		strconv.Itoa(r.AisleSupport),
		strconv.Itoa(r.DepartmentSupport),
		strconv.Itoa(r.StreakLength),
		strconv.Itoa(r.Target),
	}
}

// ParseRecord is the inverse of Values.
func ParseRecord(values []string) (FeatureRecord, error) {
	if len(values) != len(Columns) {
		return FeatureRecord{}, fmt.Errorf("feature record: expected %d columns, got %d", len(Columns), len(values))
	}

	p := recordParser{values: values}
	rec := FeatureRecord{
		UserID:                    p.int64(0),
		ProductID:                 p.int64(1),
		OrderNumber:               p.int(2),
		DaysSinceProduct:          p.null(3),
		DaysSinceAisle:            p.null(4),
		DaysSinceDepartment:       p.null(5),
		OrderAisleDisplacement:    p.null(6),
		OrdersSinceProduct:        p.null(7),
		AvgProductDisplacement:    p.null(8),
		AvgAisleDisplacement:      p.null(9),
		AvgDepartmentDisplacement: p.null(10),
		ProductSupport:            p.int(11),
		AisleSupport:              p.int(12),
		DepartmentSupport:         p.int(13),
		StreakLength:              p.int(14),
		Target:                    p.int(15),
	}
	if p.err != nil {
		return FeatureRecord{}, p.err
	}
	return rec, nil
}

// Checksum is the hex SHA-256 of the records rendered in Columns order, one line per
// record. Stores use it to validate a persisted partition table.
func Checksum(records []FeatureRecord) string {
	h := sha256.New()
	for _, r := range records {
		h.Write([]byte(strings.Join(r.Values(), ",")))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// recordParser keeps the first parse error so columns can be decoded in one expression.
type recordParser struct {
	values []string
	err    error
}

func (p *recordParser) fail(i int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("feature record: column %s: %w", Columns[i], err)
	}
}

func (p *recordParser) int64(i int) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(p.values[i]), 10, 64)
	if err != nil {
		p.fail(i, err)
	}
	return v
}

func (p *recordParser) int(i int) int {
	v, err := strconv.Atoi(strings.TrimSpace(p.values[i]))
	if err != nil {
		p.fail(i, err)
	}
	return v
}

func (p *recordParser) null(i int) decimal.NullDecimal {
	raw := strings.TrimSpace(p.values[i])
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.fail(i, err)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
