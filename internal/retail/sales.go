package retail

import (
	"retailetl/internal/schema"
	"retailetl/internal/transformer"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// SalesTimestampLayout is the DD-MM-YY HH:MM form sales timestamps arrive in.
const SalesTimestampLayout = "02-01-06 15:04"

var (
	salesRename = map[string]string{
		"qty":        "quantity",
		"Time stamp": "timestamp",
	}
	salesRequired = []string{"sales_id", "product_id", "region", "quantity", "price", "timestamp", "order_status"}
	salesTypes    = map[string]schema.Type{
		"sales_id":   schema.Int,
		"product_id": schema.Int,
		"quantity":   schema.Int,
		"price":      schema.Float,
		"discount":   schema.Float,
	}
)

// TransformSales cleans raw sales rows into the sales table: typed,
// filtered to positive quantities and prices, past timestamps and known
// order statuses, with discount defaulted and total_sales computed.
func (x *Transformer) TransformSales(raw records.Table) (Result, error) {
	log := x.log("transform_sales")
	now, loc := x.now(), x.location()
	log.Info("starting sales data cleaning and transformation", "rows", raw.Len())

	var res Result
	out, err := run(log, &res, raw, transformer.Chain{
		transformer.Pure("standardize_column_names", func(t records.Table) records.Table {
			return builtin.StandardizeColumnNames(t, salesRename)
		}),
		{Name: "require_columns", Fn: func(t records.Table) (records.Table, error) {
			return t, builtin.RequireColumns(t, salesRequired, "sales data transformation")
		}},
		transformer.Pure("coerce_types", func(t records.Table) records.Table {
			return builtin.Coerce(t, salesTypes)
		}),
		transformer.Pure("filter_positive", func(t records.Table) records.Table {
			return builtin.FilterPositive(log, t, "price", "quantity")
		}),
		transformer.Pure("parse_timestamp", func(t records.Table) records.Table {
			return builtin.SafeDatetime(log, t, "timestamp", SalesTimestampLayout, loc)
		}),
		transformer.Pure("drop_future", func(t records.Table) records.Table {
			return t.Filter(func(r records.Record) bool {
				ts, ok := records.AsTime(r["timestamp"])
				return ok && !ts.After(now)
			})
		}),
		checkpoint(log, &res, "validate_input", SalesInputContract),
		transformer.Pure("drop_nulls", func(t records.Table) records.Table {
			return builtin.DropNulls(t, salesRequired)
		}),
		transformer.Pure("clean_strings", func(t records.Table) records.Table {
			return builtin.CleanStringColumns(t, []string{"region", "order_status"}, builtin.Lower)
		}),
		transformer.Pure("filter_status", func(t records.Table) records.Table {
			return builtin.FilterIn(log, t, "order_status", OrderStatuses)
		}),
		transformer.Pure("default_discount", func(t records.Table) records.Table {
			return builtin.FillNull(t, "discount", 0.0)
		}),
		transformer.Pure("total_sales", func(t records.Table) records.Table {
			return t.WithColumn("total_sales", totalSales)
		}),
		transformer.Pure("drop_duplicates", builtin.DropDuplicates),
		checkpoint(log, &res, "validate_output", SalesOutputContract(now)),
	})
	if err != nil {
		log.Error("sales transformation failed", "error", err)
		return Result{}, err
	}
	log.Info("cleaning and transformation complete", "rows", out.Table.Len())
	return out, nil
}

// totalSales is quantity * price * (1 - discount), or null when an operand
// is not numeric.
func totalSales(r records.Record) any {
	q, ok1 := records.AsFloat(r["quantity"])
	p, ok2 := records.AsFloat(r["price"])
	d, ok3 := records.AsFloat(r["discount"])
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	return q * p * (1 - d)
}
