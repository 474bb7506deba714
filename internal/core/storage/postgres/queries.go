package postgres

import "github.com/lib/pq"

// featureColumns mirrors aggregation.Columns.
var featureColumns = []string{
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

const (
	queryTablesExist = `
		SELECT COUNT(*) = 5
		FROM information_schema.tables
		WHERE table_name IN ('assignment_meta', 'partition_assignments', 'partition_results', 'partition_markers', 'merged_features')
	`

	queryLoadAssignmentCount = `SELECT partition_count FROM assignment_meta WHERE id = 1`

	queryLoadAssignment = `
		SELECT partition_id, user_id
		FROM partition_assignments
		ORDER BY partition_id ASC, position ASC
	`

	queryDeleteAssignment     = `DELETE FROM partition_assignments`
	queryDeleteAssignmentMeta = `DELETE FROM assignment_meta`

	queryInsertAssignmentMeta = `
		INSERT INTO assignment_meta (id, partition_count, created_at)
		VALUES (1, $1, $2)
	`

	queryDeleteMarker  = `DELETE FROM partition_markers WHERE partition_id = $1`
	queryDeleteResults = `DELETE FROM partition_results WHERE partition_id = $1`

	queryInsertMarker = `
		INSERT INTO partition_markers (partition_id, run_id, row_count, checksum, completed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	queryReadMarker = `
		SELECT partition_id, run_id, row_count, checksum, completed_at
		FROM partition_markers
		WHERE partition_id = $1
	`

	queryHasPartition = `
		SELECT
			EXISTS (SELECT 1 FROM partition_markers WHERE partition_id = $1)
			OR EXISTS (SELECT 1 FROM partition_results WHERE partition_id = $1)
	`

	queryLoadPartition = `
		SELECT
			user_id, product_id, order_number,
			days_since_prod, days_since_aisle, days_since_department,
			order_aisle_displacement, orders_since_prod,
			avg_prod_disp, avg_aisle_disp, avg_dept_disp,
			prod_support, aisle_support, dept_support, streak_length, target
		FROM partition_results
		WHERE partition_id = $1
		ORDER BY row_seq ASC
	`

	queryTruncateMerged = `TRUNCATE merged_features`

	queryMergedExists = `SELECT EXISTS (SELECT 1 FROM merged_features)`

	queryLoadMerged = `
		SELECT
			user_id, product_id, order_number,
			days_since_prod, days_since_aisle, days_since_department,
			order_aisle_displacement, orders_since_prod,
			avg_prod_disp, avg_aisle_disp, avg_dept_disp,
			prod_support, aisle_support, dept_support, streak_length, target
		FROM merged_features
		ORDER BY row_seq ASC
	`

	queryMergedByUser = `
		SELECT
			user_id, product_id, order_number,
			days_since_prod, days_since_aisle, days_since_department,
			order_aisle_displacement, orders_since_prod,
			avg_prod_disp, avg_aisle_disp, avg_dept_disp,
			prod_support, aisle_support, dept_support, streak_length, target
		FROM merged_features
		WHERE user_id = $1
		ORDER BY row_seq ASC
	`
)

var (
	copyAssignments = pq.CopyIn("partition_assignments", "partition_id", "position", "user_id")
	copyResults     = pq.CopyIn("partition_results", append([]string{"partition_id", "row_seq"}, featureColumns...)...)
	copyMerged      = pq.CopyIn("merged_features", append([]string{"row_seq"}, featureColumns...)...)
)
