package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aevon-lab/reorder-features/internal/core/history"
	"github.com/go-playground/validator/v10"
)

// Input columns of the flat assembly table. Extra columns are ignored, including the
// unnamed leading index column pandas writes.
const (
	colOrderID             = "order_id"
	colProductID           = "product_id"
	colUserID              = "user_id"
	colOrderNumber         = "order_number"
	colAddToCartOrder      = "add_to_cart_order"
	colReordered           = "reordered"
	colDaysSincePriorOrder = "days_since_prior_order"
	colEvalSet             = "eval_set"
	colOrderDOW            = "order_dow"
	colOrderHourOfDay      = "order_hour_of_day"
	colOrderNumberMax      = "order_number_max"
	colOrderSize           = "ord_size"
	colAisleID             = "aisle_id"
	colDepartmentID        = "department_id"
	colTarget              = "target"
)

var requiredColumns = []string{
	colOrderID,
	colProductID,
	colUserID,
	colOrderNumber,
	colAddToCartOrder,
	colReordered,
	colDaysSincePriorOrder,
	colEvalSet,
	colOrderDOW,
	colOrderHourOfDay,
	colOrderNumberMax,
	colOrderSize,
	colAisleID,
	colDepartmentID,
	colTarget,
}

var validate = validator.New()

// Reader decodes the flat (order, product) table into history rows.
type Reader struct {
	csv     *csv.Reader
	index   map[string]int
	line    int
	started bool
}

func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr}
}

// Next returns the next row, or io.EOF once the table is exhausted.
func (r *Reader) Next() (history.Row, error) {
	if !r.started {
		if err := r.readHeader(); err != nil {
			return history.Row{}, err
		}
		r.started = true
	}

	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return history.Row{}, io.EOF
		}
		return history.Row{}, fmt.Errorf("read input: %w", err)
	}
	r.line++

	row, err := r.decode(record)
	if err != nil {
		return history.Row{}, fmt.Errorf("input line %d: %w", r.line, err)
	}
	if err := validate.Struct(row); err != nil {
		return history.Row{}, fmt.Errorf("input line %d: invalid row: %w", r.line, err)
	}
	return row, nil
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("read input header: empty input")
		}
		return fmt.Errorf("read input header: %w", err)
	}
	r.line = 1

	r.index = make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		r.index[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := r.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("read input header: missing columns %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *Reader) decode(record []string) (history.Row, error) {
	d := fieldDecoder{record: record, index: r.index}
	row := history.Row{
		OrderID:             d.int64(colOrderID),
		ProductID:           d.int64(colProductID),
		UserID:              d.int64(colUserID),
		OrderNumber:         d.int(colOrderNumber),
		AddToCartOrder:      d.int(colAddToCartOrder),
		Reordered:           d.int(colReordered),
		DaysSincePriorOrder: d.float(colDaysSincePriorOrder),
		EvalSet:             d.string(colEvalSet),
		OrderDOW:            d.int(colOrderDOW),
		OrderHourOfDay:      d.int(colOrderHourOfDay),
		OrderNumberMax:      d.int(colOrderNumberMax),
		OrderSize:           d.int(colOrderSize),
		AisleID:             d.int64(colAisleID),
		DepartmentID:        d.int64(colDepartmentID),
		Target:              d.int(colTarget),
	}
	return row, d.err
}

// ReadAll drains the reader.
func ReadAll(r io.Reader) ([]history.Row, error) {
	reader := NewReader(r)
	var rows []history.Row
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// LoadFile reads every row of the CSV at path.
func LoadFile(path string) ([]history.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("[Ingestion] Loaded input table", "path", path, "rows", len(rows))
	return rows, nil
}

// fieldDecoder keeps the first conversion error so decode reads as a flat struct literal.
type fieldDecoder struct {
	record []string
	index  map[string]int
	err    error
}

func (d *fieldDecoder) raw(col string) string {
	i := d.index[col]
	if i >= len(d.record) {
		return ""
	}
	return strings.TrimSpace(d.record[i])
}

func (d *fieldDecoder) string(col string) string {
	return d.raw(col)
}

// float returns NaN for an empty cell. pandas writes missing values as "" or "nan".
func (d *fieldDecoder) float(col string) float64 {
	s := d.raw(col)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		d.fail(col, s)
		return math.NaN()
	}
	return v
}

// int64 accepts integral floats such as "3.0", which pandas emits for integer
// columns that held a missing value before the join.
func (d *fieldDecoder) int64(col string) int64 {
	s := d.raw(col)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		d.fail(col, s)
		return 0
	}
	return int64(f)
}

func (d *fieldDecoder) int(col string) int {
	return int(d.int64(col))
}

func (d *fieldDecoder) fail(col, value string) {
	if d.err == nil {
		d.err = fmt.Errorf("column %s: invalid number %q", col, value)
	}
}
