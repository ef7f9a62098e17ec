package retail

import (
	"time"

	"retailetl/internal/schema"
)

// OrderStatuses are the order states a clean sales row may carry.
var OrderStatuses = []string{"completed", "cancelled", "pending", "returned", "shipped"}

// PerformanceTiers are the allowed product performance labels.
var PerformanceTiers = []string{"Low Performer", "Average", "Bestseller"}

// SalesInputContract checks raw sales after coercion. Every column is
// nullable; it only flags values of the wrong type.
var SalesInputContract = schema.Contract{
	Name: "sales_input",
	Fields: []schema.Field{
		{Name: "sales_id", Type: schema.Int, Nullable: true},
		{Name: "product_id", Type: schema.Int, Nullable: true},
		{Name: "region", Type: schema.String, Nullable: true},
		{Name: "quantity", Type: schema.Int, Nullable: true},
		{Name: "price", Type: schema.Float, Nullable: true},
		{Name: "timestamp", Type: schema.Timestamp, Nullable: true},
		{Name: "discount", Type: schema.Float, Nullable: true, Optional: true},
		{Name: "order_status", Type: schema.String, Nullable: true},
	},
}

// SalesOutputContract is the strict contract for cleaned sales. Timestamps
// must not be after now.
func SalesOutputContract(now time.Time) schema.Contract {
	return schema.Contract{
		Name: "sales_output",
		Fields: []schema.Field{
			{Name: "sales_id", Type: schema.Int, Checks: []schema.Check{schema.GreaterThan(0)}},
			{Name: "product_id", Type: schema.Int, Checks: []schema.Check{schema.GreaterThan(0)}},
			{Name: "region", Type: schema.String},
			{Name: "quantity", Type: schema.Int, Checks: []schema.Check{schema.GreaterOrEqual(0)}},
			{Name: "price", Type: schema.Float, Checks: []schema.Check{schema.GreaterOrEqual(0)}},
			{Name: "timestamp", Type: schema.Timestamp, Checks: []schema.Check{schema.NotAfter(now)}},
			{Name: "discount", Type: schema.Float, Checks: []schema.Check{schema.InRange(0, 1)}},
			{Name: "order_status", Type: schema.String, Checks: []schema.Check{schema.IsIn(OrderStatuses...)}},
		},
	}
}

// ProductsInputContract checks raw products after coercion and date parsing.
var ProductsInputContract = schema.Contract{
	Name: "products_input",
	Fields: []schema.Field{
		{Name: "product_id", Type: schema.Int, Nullable: true},
		{Name: "category", Type: schema.String, Nullable: true},
		{Name: "brand", Type: schema.String, Nullable: true},
		{Name: "rating", Type: schema.Float, Nullable: true},
		{Name: "in_stock", Type: schema.Bool, Nullable: true},
		{Name: "launch_date", Type: schema.Timestamp, Nullable: true},
	},
}

// ProductsOutputContract is the strict contract for cleaned products: cased
// category and brand, rating in [0, 5], launch_date not after now.
func ProductsOutputContract(now time.Time) schema.Contract {
	return schema.Contract{
		Name: "products_output",
		Fields: []schema.Field{
			{Name: "product_id", Type: schema.Int, Checks: []schema.Check{schema.GreaterThan(0)}},
			{Name: "category", Type: schema.String, Checks: []schema.Check{schema.Lowercase()}},
			{Name: "brand", Type: schema.String, Checks: []schema.Check{schema.Uppercase()}},
			{Name: "rating", Type: schema.Float, Checks: []schema.Check{schema.InRange(0, 5)}},
			{Name: "in_stock", Type: schema.Bool},
			{Name: "launch_date", Type: schema.Timestamp, Checks: []schema.Check{schema.NotAfter(now)}},
		},
	}
}

// mergedFields are the columns every joined row carries.
func mergedFields(discountNullable bool) []schema.Field {
	return []schema.Field{
		{Name: "sales_id", Type: schema.Int},
		{Name: "product_id", Type: schema.Int},
		{Name: "region", Type: schema.String},
		{Name: "quantity", Type: schema.Int},
		{Name: "price", Type: schema.Float},
		{Name: "timestamp", Type: schema.Timestamp},
		{Name: "discount", Type: schema.Float, Nullable: discountNullable},
		{Name: "order_status", Type: schema.String},
		{Name: "category", Type: schema.String, Checks: []schema.Check{schema.Lowercase()}},
		{Name: "brand", Type: schema.String, Checks: []schema.Check{schema.Uppercase()}},
		{Name: "rating", Type: schema.Float},
		{Name: "in_stock", Type: schema.Bool},
		{Name: "launch_date", Type: schema.Timestamp},
	}
}

// MergedContract validates the sales/products join. No column may be null.
var MergedContract = schema.Contract{Name: "merged_output", Fields: mergedFields(false)}

// EnrichedContract adds the temporal features and sales bucket to the merged
// columns. Discount may be null here.
var EnrichedContract = schema.Contract{
	Name: "enriched_output",
	Fields: append(mergedFields(true),
		schema.Field{Name: "month", Type: schema.String},
		schema.Field{Name: "weekday", Type: schema.String},
		schema.Field{Name: "hour", Type: schema.Int},
		schema.Field{Name: "sales_bucket", Type: schema.String},
	),
}

// HourlyTrendsContract validates the peak hour per region and category.
var HourlyTrendsContract = schema.Contract{
	Name: "sales_trends_output",
	Fields: []schema.Field{
		{Name: "region", Type: schema.String},
		{Name: "category", Type: schema.String},
		{Name: "peak_hour", Type: schema.Int, Checks: []schema.Check{schema.InRange(0, 23)}},
		{Name: "max_sales", Type: schema.Float, Checks: []schema.Check{schema.GreaterOrEqual(0)}},
	},
}

// ProductPerformanceContract validates per-product revenue, units, rating and
// tier.
var ProductPerformanceContract = schema.Contract{
	Name: "product_performance_output",
	Fields: []schema.Field{
		{Name: "product_id", Type: schema.Int},
		{Name: "category", Type: schema.String},
		{Name: "brand", Type: schema.String},
		{Name: "total_revenue", Type: schema.Float, Checks: []schema.Check{schema.GreaterOrEqual(0)}},
		{Name: "total_units_sold", Type: schema.Int, Checks: []schema.Check{schema.GreaterOrEqual(0)}},
		{Name: "average_rating", Type: schema.Float, Checks: []schema.Check{schema.InRange(0, 5)}},
		{Name: "performance_tier", Type: schema.String, Checks: []schema.Check{schema.IsIn(PerformanceTiers...)}},
	},
}

// SeasonalContract validates quarterly sales per category.
var SeasonalContract = schema.Contract{
	Name: "seasonal_sales_output",
	Fields: []schema.Field{
		{Name: "quarter", Type: schema.String},
		{Name: "category", Type: schema.String},
		{Name: "total_sales", Type: schema.Float},
		{Name: "order_count", Type: schema.Int},
	},
}

// RevenueConcentrationContract validates regional revenue shares. The
// cumulative share may overshoot 1 by float error only.
var RevenueConcentrationContract = schema.Contract{
	Name: "revenue_concentration_output",
	Fields: []schema.Field{
		{Name: "region", Type: schema.String},
		{Name: "total_sales", Type: schema.Float},
		{Name: "revenue_share", Type: schema.Float, Checks: []schema.Check{schema.GreaterOrEqual(0)}},
		{Name: "cumulative_share", Type: schema.Float, Checks: []schema.Check{schema.GreaterOrEqual(0), schema.LessOrEqual(1 + 1e-9)}},
	},
}

// OrderStatusContract validates the weekly status pivot and its three fixed
// columns.
var OrderStatusContract = schema.Contract{
	Name: "order_status_output",
	Fields: []schema.Field{
		{Name: "week", Type: schema.Timestamp},
		{Name: "Pending", Type: schema.Int},
		{Name: "Shipped", Type: schema.Int},
		{Name: "Returned", Type: schema.Int},
	},
}
