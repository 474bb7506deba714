package ingestion

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aevon-lab/reorder-features/internal/core/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = ",order_id,product_id,user_id,order_number,add_to_cart_order,reordered,days_since_prior_order,eval_set,order_dow,order_hour_of_day,order_number_max,ord_size,aisle_id,department_id,target\n"

func TestReadAll_DecodesPandasExport(t *testing.T) {
	input := header +
		"0,100,11,7,1,1,0,,prior,2,8,3,2,5,9,1\n" +
		"1,100,12,7,1,2,0,,prior,2,8,3,2,6,9,0\n" +
		"2,101,11,7,2,1.0,1,15.0,prior,3,10,3,1,5,9,1\n" +
		"3,102,11,7,3,,,7.0,train,4,9,3,,5,9,1\n"

	rows, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	first := rows[0]
	assert.Equal(t, int64(100), first.OrderID)
	assert.Equal(t, int64(11), first.ProductID)
	assert.Equal(t, int64(7), first.UserID)
	assert.Equal(t, 1, first.OrderNumber)
	assert.True(t, math.IsNaN(first.DaysSincePriorOrder))
	assert.Equal(t, history.EvalSetPrior, first.EvalSet)
	assert.Equal(t, 3, first.OrderNumberMax)
	assert.Equal(t, 2, first.OrderSize)
	assert.Equal(t, int64(5), first.AisleID)
	assert.Equal(t, int64(9), first.DepartmentID)
	assert.Equal(t, 1, first.Target)

	assert.Equal(t, 1, rows[2].AddToCartOrder)
	assert.Equal(t, 15.0, rows[2].DaysSincePriorOrder)

	query := rows[3]
	assert.True(t, query.IsQuery())
	assert.Equal(t, 0, query.AddToCartOrder)
	assert.Equal(t, 0, query.OrderSize)
	assert.Equal(t, 7.0, query.DaysSincePriorOrder)
}

func TestReadAll_HeaderWithoutIndexColumn(t *testing.T) {
	input := strings.TrimPrefix(header, ",") +
		"100,11,7,1,1,0,,prior,2,8,1,1,5,9,0\n"

	rows, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(11), rows[0].ProductID)
}

func TestReadAll_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: "empty input",
		},
		{
			name:    "missing columns",
			input:   "order_id,product_id,user_id\n1,2,3\n",
			wantErr: "missing columns order_number",
		},
		{
			name:    "bad number",
			input:   header + "0,100,abc,7,1,1,0,,prior,2,8,1,1,5,9,0\n",
			wantErr: "input line 2: column product_id",
		},
		{
			name:    "fractional id",
			input:   header + "0,100,11.5,7,1,1,0,,prior,2,8,1,1,5,9,0\n",
			wantErr: "input line 2: column product_id",
		},
		{
			name:    "unknown eval set",
			input:   header + "0,100,11,7,1,1,0,,holdout,2,8,1,1,5,9,0\n",
			wantErr: "input line 2: invalid row",
		},
		{
			name:    "target out of range",
			input:   header + "0,100,11,7,1,1,0,,prior,2,8,1,1,5,9,3\n",
			wantErr: "input line 2: invalid row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAll(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReader_NextStopsAtEOF(t *testing.T) {
	r := NewReader(strings.NewReader(header + "0,100,11,7,1,1,0,,prior,2,8,1,1,5,9,0\n"))

	_, err := r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"0,100,11,7,1,1,0,,prior,2,8,1,1,5,9,0\n"), 0o644))

	rows, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
