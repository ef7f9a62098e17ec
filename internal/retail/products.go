package retail

import (
	"retailetl/internal/schema"
	"retailetl/internal/transformer"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

var (
	productsRequired = []string{"product_id", "category", "brand", "rating", "in_stock", "launch_date"}
	productsTypes    = map[string]schema.Type{
		"product_id": schema.Int,
		"rating":     schema.Float,
		"in_stock":   schema.Bool,
	}
	productsCase = builtin.CaseMap{"category": builtin.Lower, "brand": builtin.Upper}
)

// TransformProducts cleans raw product rows: typed, complete, with category
// lower-cased and brand upper-cased, exact duplicates removed.
func (x *Transformer) TransformProducts(raw records.Table) (Result, error) {
	log := x.log("transform_products")
	now, loc := x.now(), x.location()
	log.Info("starting transformation of products data", "rows", raw.Len())

	var res Result
	out, err := run(log, &res, raw, transformer.Chain{
		transformer.Pure("standardize_column_names", func(t records.Table) records.Table {
			return builtin.StandardizeColumnNames(t, nil)
		}),
		transformer.Pure("coerce_types", func(t records.Table) records.Table {
			return builtin.Coerce(t, productsTypes)
		}),
		transformer.Pure("parse_launch_date", func(t records.Table) records.Table {
			return builtin.SafeDatetime(log, t, "launch_date", "", loc)
		}),
		checkpoint(log, &res, "validate_input", ProductsInputContract),
		{Name: "require_columns", Fn: func(t records.Table) (records.Table, error) {
			return t, builtin.RequireColumns(t, productsRequired, "products data transformation")
		}},
		transformer.Pure("drop_nulls", func(t records.Table) records.Table {
			return builtin.DropNulls(t, productsRequired)
		}),
		transformer.Pure("clean_strings", func(t records.Table) records.Table {
			return builtin.CleanStringColumnsMap(t, productsCase)
		}),
		transformer.Pure("drop_duplicates", builtin.DropDuplicates),
		checkpoint(log, &res, "validate_output", ProductsOutputContract(now)),
	})
	if err != nil {
		log.Error("products transformation failed", "error", err)
		return Result{}, err
	}
	log.Info("products transformation complete", "rows", out.Table.Len())
	return out, nil
}
