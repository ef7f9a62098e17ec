package retail

import (
	"retailetl/internal/schema"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// MinMergeRatio is the merge ratio, in percent, below which a join is
// reported as lossy.
const MinMergeRatio = 90.0

const joinKey = "product_id"

// Merge inner-joins clean sales to clean products on product_id. Every sales
// row matches at most one product; duplicate product ids fail the merge.
func (x *Transformer) Merge(sales, products records.Table) (Result, error) {
	log := x.log("merge_sales_products")
	log.Info("starting merge of sales and products data")

	if err := builtin.ValidateForMerge(log, sales, products, joinKey, "sales", "products"); err != nil {
		return Result{}, err
	}
	if err := builtin.CheckMergeCompatibility(log, sales, products, joinKey, "products"); err != nil {
		return Result{}, err
	}
	q := builtin.AnalyzeMergeQuality(sales, products, records.Table{}, joinKey, "")
	log.Info("sales table", "rows", q.InputLeft, "unique_products", q.UniqueLeft)
	log.Info("products table", "rows", q.InputRight, "unique_products", q.UniqueRight)

	merged, err := builtin.InnerJoinManyToOne(sales, products, joinKey)
	if err != nil {
		return Result{}, err
	}

	q = builtin.AnalyzeMergeQuality(sales, products, merged, joinKey, "sales_id")
	log.Info("merge completed", "rows", q.Output, "merge_ratio", q.Ratio, "keys_merged", q.KeysMerged, "lost_records", q.LostRecords)
	if q.Ratio < MinMergeRatio {
		log.Warn("low merge ratio, check for mismatched product ids", "merge_ratio", q.Ratio)
	}

	out := schema.Validate(log, merged, MergedContract)
	return Result{Table: out.Data, Outcomes: []schema.Outcome{out}}, nil
}
