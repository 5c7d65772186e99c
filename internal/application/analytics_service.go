package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	dashboardCacheTTL = 5 * time.Minute

	growthWindowDays   = 7
	defaultSeriesDays  = 30
	velocityWindowDays = 14
	funnelWindowDays   = 7
	newCustomerDays    = 30

	lowStockThresholdDays = 7
	marginFloorPercent    = 25.0
	marginQuantityFloor   = 10

	defaultTopN = 5
)

func dashboardCacheKey(tenantID string) string {
	return "dashboard:" + tenantID
}

// Overview is the headline block of the dashboard.
type Overview struct {
	Customers            int64           `json:"customers"`
	Products             int64           `json:"products"`
	Orders               int64           `json:"orders"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	AverageOrderValue    decimal.Decimal `json:"average_order_value"`
	CurrentWeekRevenue   decimal.Decimal `json:"current_week_revenue"`
	PreviousWeekRevenue  decimal.Decimal `json:"previous_week_revenue"`
	RevenueGrowthPercent float64         `json:"revenue_growth_percent"`
}

// DailyBucket is one day of the orders-by-date series. The series is always
// dense: days without orders appear with zero count and revenue.
type DailyBucket struct {
	Date    time.Time       `json:"date"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductSales aggregates line-item sales for one product.
type ProductSales struct {
	ShopifyID int64           `json:"shopify_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// LowStockAlert flags a product projected to run out within the threshold.
type LowStockAlert struct {
	ShopifyID     int64   `json:"shopify_id"`
	Title         string  `json:"title"`
	Inventory     int     `json:"inventory"`
	DailyVelocity float64 `json:"daily_velocity"`
	DaysLeft      int     `json:"days_left"`
}

// MarginSuggestion proposes a price increase for a thin-margin seller.
type MarginSuggestion struct {
	ShopifyID      int64           `json:"shopify_id"`
	Title          string          `json:"title"`
	MarginPercent  float64         `json:"margin_percent"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	RevenueDelta   decimal.Decimal `json:"revenue_delta"`
}

// ProductPerformance is the product block of the dashboard.
type ProductPerformance struct {
	TopByRevenue      []ProductSales     `json:"top_by_revenue"`
	TopByQuantity     []ProductSales     `json:"top_by_quantity"`
	LowStock          []LowStockAlert    `json:"low_stock"`
	MarginSuggestions []MarginSuggestion `json:"margin_suggestions"`
}

// PriceBuckets is the order-value distribution as rounded percentages.
type PriceBuckets struct {
	UpTo500Percent  int `json:"up_to_500_percent"`
	To1000Percent   int `json:"to_1000_percent"`
	Over1000Percent int `json:"over_1000_percent"`
}

// CustomerInsights is the customer block of the dashboard.
type CustomerInsights struct {
	NewCustomers              int          `json:"new_customers"`
	ReturningCustomers        int          `json:"returning_customers"`
	ParetoRevenueSharePercent float64      `json:"pareto_revenue_share_percent"`
	AcquiredThisMonth         int          `json:"acquired_this_month"`
	AcquiredPreviousMonth     int          `json:"acquired_previous_month"`
	PriceBuckets              PriceBuckets `json:"price_buckets"`
}

// CheckoutFunnel reconstructs the cart to order conversion sequence. Tenants
// without event capture report zeros, never an error.
type CheckoutFunnel struct {
	Carts             int64           `json:"carts"`
	Checkouts         int64           `json:"checkouts"`
	CompletedOrders   int64           `json:"completed_orders"`
	Abandoned         int64           `json:"abandoned"`
	RecoveryPotential decimal.Decimal `json:"recovery_potential"`
}

// ProductProfit is one row of the profitability ranking. Only products with a
// known cost appear.
type ProductProfit struct {
	ShopifyID   int64           `json:"shopify_id"`
	Title       string          `json:"title"`
	UnitsSold   int             `json:"units_sold"`
	UnitProfit  decimal.Decimal `json:"unit_profit"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// Dashboard composes every analytics block plus generated advisory lines.
type Dashboard struct {
	Overview      Overview           `json:"overview"`
	OrdersByDate  []DailyBucket      `json:"orders_by_date"`
	Forecast      Forecast           `json:"forecast"`
	Products      ProductPerformance `json:"products"`
	Customers     CustomerInsights   `json:"customers"`
	Funnel        CheckoutFunnel     `json:"funnel"`
	Profitability []ProductProfit    `json:"profitability"`
	Advisories    []string           `json:"advisories"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// AnalyticsService computes read-only, tenant-scoped metrics over the
// ingested store data. It never writes; mid-sync reads see committed rows
// only and simply reflect the data present at call time.
type AnalyticsService struct {
	customers ports.CustomerRepository
	products  ports.ProductRepository
	orders    ports.OrderRepository
	events    ports.EventRepository
	cache     ports.Cache
	recorder  Recorder
	logger    zerolog.Logger
}

// NewAnalyticsService creates the analytics engine. recorder may be nil.
func NewAnalyticsService(
	customers ports.CustomerRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	events ports.EventRepository,
	cache ports.Cache,
	recorder Recorder,
	logger zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		customers: customers,
		products:  products,
		orders:    orders,
		events:    events,
		cache:     cache,
		recorder:  recorder,
		logger:    logger,
	}
}

// growthPercent compares two revenue windows. Both zero reads as no growth;
// growth from a zero base reads as 100 percent.
func growthPercent(previous, current decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	ratio := current.Sub(previous).Div(previous.Abs())
	return round2(ratio.InexactFloat64() * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Overview returns entity counts, revenue totals and the week-over-week
// growth figure.
func (s *AnalyticsService) Overview(ctx context.Context, tenantID string) (*Overview, error) {
	customerCount, err := s.customers.Count(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	productCount, err := s.products.Count(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	orders, err := s.orders.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -growthWindowDays)
	twoWeeksAgo := now.AddDate(0, 0, -2*growthWindowDays)

	var total, currentWeek, previousWeek decimal.Decimal
	for i := range orders {
		o := &orders[i]
		total = total.Add(o.TotalPrice)
		placed := o.PlacedAt()
		switch {
		case !placed.Before(weekAgo):
			currentWeek = currentWeek.Add(o.TotalPrice)
		case !placed.Before(twoWeeksAgo):
			previousWeek = previousWeek.Add(o.TotalPrice)
		}
	}

	averageOrderValue := decimal.Zero
	if len(orders) > 0 {
		averageOrderValue = total.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}

	return &Overview{
		Customers:            customerCount,
		Products:             productCount,
		Orders:               int64(len(orders)),
		TotalRevenue:         total,
		AverageOrderValue:    averageOrderValue,
		CurrentWeekRevenue:   currentWeek,
		PreviousWeekRevenue:  previousWeek,
		RevenueGrowthPercent: growthPercent(previousWeek, currentWeek),
	}, nil
}

// OrdersByDate buckets the tenant's orders into a dense daily series over the
// inclusive [from, to] date range. Zero range values default to the trailing
// 30 days.
func (s *AnalyticsService) OrdersByDate(ctx context.Context, tenantID string, from, to time.Time) ([]DailyBucket, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	to = to.UTC().Truncate(24 * time.Hour)
	if from.IsZero() {
		from = to.AddDate(0, 0, -(defaultSeriesDays - 1))
	}
	from = from.UTC().Truncate(24 * time.Hour)

	orders, err := s.orders.ListInRange(ctx, tenantID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list orders in range: %w", err)
	}

	byDay := make(map[time.Time]*DailyBucket)
	for i := range orders {
		o := &orders[i]
		day := o.PlacedAt().UTC().Truncate(24 * time.Hour)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DailyBucket{Date: day}
			byDay[day] = bucket
		}
		bucket.Count++
		bucket.Revenue = bucket.Revenue.Add(o.TotalPrice)
	}

	var series []DailyBucket
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if bucket, ok := byDay[day]; ok {
			series = append(series, *bucket)
			continue
		}
		series = append(series, DailyBucket{Date: day, Revenue: decimal.Zero})
	}
	return series, nil
}

// RevenueForecast projects revenue for the next daysOut days from the
// trailing 30-day series.
func (s *AnalyticsService) RevenueForecast(ctx context.Context, tenantID string, daysOut int) (*Forecast, error) {
	series, err := s.OrdersByDate(ctx, tenantID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	forecast := LinearForecast(series, daysOut)
	return &forecast, nil
}

// salesTotals aggregates line items per external product id, preserving
// first-seen titles. Keys come back sorted ascending so rankings break ties
// deterministically by external id.
func salesTotals(items []domain.OrderItem) (map[int64]*ProductSales, []int64) {
	totals := make(map[int64]*ProductSales)
	for i := range items {
		item := &items[i]
		if item.ProductShopifyID == 0 {
			continue
		}
		agg, ok := totals[item.ProductShopifyID]
		if !ok {
			agg = &ProductSales{ShopifyID: item.ProductShopifyID, Title: item.Title}
			totals[item.ProductShopifyID] = agg
		}
		agg.Quantity += item.Quantity
		agg.Revenue = agg.Revenue.Add(item.TotalPrice)
	}
	keys := make([]int64, 0, len(totals))
	for id := range totals {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return totals, keys
}

// ProductPerformance ranks products by revenue and quantity, flags projected
// stock-outs from 14-day sales velocity, and suggests price increases for
// thin-margin fast sellers.
func (s *AnalyticsService) ProductPerformance(ctx context.Context, tenantID string, topN int) (*ProductPerformance, error) {
	if topN <= 0 {
		topN = defaultTopN
	}

	items, err := s.orders.ListItemsByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	recentItems, err := s.orders.ListItemsSince(ctx, tenantID, time.Now().UTC().AddDate(0, 0, -velocityWindowDays))
	if err != nil {
		return nil, fmt.Errorf("list recent order items: %w", err)
	}
	products, err := s.products.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	totals, keys := salesTotals(items)
	recentTotals, _ := salesTotals(recentItems)

	ranked := make([]ProductSales, 0, len(keys))
	for _, id := range keys {
		ranked = append(ranked, *totals[id])
	}

	byRevenue := make([]ProductSales, len(ranked))
	copy(byRevenue, ranked)
	sort.SliceStable(byRevenue, func(i, j int) bool {
		return byRevenue[i].Revenue.GreaterThan(byRevenue[j].Revenue)
	})
	byQuantity := make([]ProductSales, len(ranked))
	copy(byQuantity, ranked)
	sort.SliceStable(byQuantity, func(i, j int) bool {
		return byQuantity[i].Quantity > byQuantity[j].Quantity
	})

	perf := &ProductPerformance{
		TopByRevenue:  top(byRevenue, topN),
		TopByQuantity: top(byQuantity, topN),
	}

	for i := range products {
		p := &products[i]
		recent := recentTotals[p.ShopifyID]
		recentQty := 0
		if recent != nil {
			recentQty = recent.Quantity
		}

		// Inventory unknown means no alert; never warn on missing data.
		if p.InventoryQuantity != nil && recentQty > 0 {
			velocity := float64(recentQty) / float64(velocityWindowDays)
			daysLeft := int(math.Ceil(float64(*p.InventoryQuantity) / velocity))
			if daysLeft <= lowStockThresholdDays {
				perf.LowStock = append(perf.LowStock, LowStockAlert{
					ShopifyID:     p.ShopifyID,
					Title:         p.Title,
					Inventory:     *p.InventoryQuantity,
					DailyVelocity: round2(velocity),
					DaysLeft:      daysLeft,
				})
			}
		}

		if p.Cost != nil && p.Price.IsPositive() && recentQty > marginQuantityFloor {
			margin := p.Price.Sub(*p.Cost).Div(p.Price).InexactFloat64() * 100
			if margin < marginFloorPercent {
				suggested := p.Price.Mul(decimal.NewFromFloat(1.05)).Round(2)
				delta := suggested.Sub(p.Price).Mul(decimal.NewFromInt(int64(recentQty)))
				perf.MarginSuggestions = append(perf.MarginSuggestions, MarginSuggestion{
					ShopifyID:      p.ShopifyID,
					Title:          p.Title,
					MarginPercent:  round2(margin),
					SuggestedPrice: suggested,
					RevenueDelta:   delta,
				})
			}
		}
	}
	return perf, nil
}

func top(sales []ProductSales, n int) []ProductSales {
	if len(sales) > n {
		sales = sales[:n]
	}
	return sales
}

// CustomerInsights splits customers into new versus returning by earliest
// order date, measures revenue concentration in the top 20 percent of
// spenders, counts month-over-month acquisition, and distributes order values
// into three fixed price buckets.
func (s *AnalyticsService) CustomerInsights(ctx context.Context, tenantID string) (*CustomerInsights, error) {
	orders, err := s.orders.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	customers, err := s.customers.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -newCustomerDays)

	type spendRow struct {
		earliest time.Time
		spend    decimal.Decimal
	}
	byCustomer := make(map[string]*spendRow)
	var totalRevenue decimal.Decimal
	for i := range orders {
		o := &orders[i]
		totalRevenue = totalRevenue.Add(o.TotalPrice)
		if o.CustomerID == nil {
			continue
		}
		row, ok := byCustomer[*o.CustomerID]
		if !ok {
			row = &spendRow{earliest: o.PlacedAt()}
			byCustomer[*o.CustomerID] = row
		}
		if o.PlacedAt().Before(row.earliest) {
			row.earliest = o.PlacedAt()
		}
		row.spend = row.spend.Add(o.TotalPrice)
	}

	insights := &CustomerInsights{}
	spends := make([]decimal.Decimal, 0, len(byCustomer))
	var attributed decimal.Decimal
	for _, row := range byCustomer {
		if row.earliest.Before(cutoff) {
			insights.ReturningCustomers++
		} else {
			insights.NewCustomers++
		}
		spends = append(spends, row.spend)
		attributed = attributed.Add(row.spend)
	}

	if len(spends) > 0 && attributed.IsPositive() {
		sort.Slice(spends, func(i, j int) bool { return spends[i].GreaterThan(spends[j]) })
		topCount := int(math.Ceil(0.2 * float64(len(spends))))
		if topCount < 1 {
			topCount = 1
		}
		var topSpend decimal.Decimal
		for _, v := range spends[:topCount] {
			topSpend = topSpend.Add(v)
		}
		insights.ParetoRevenueSharePercent = round2(topSpend.Div(attributed).InexactFloat64() * 100)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	previousMonthStart := monthStart.AddDate(0, -1, 0)
	for i := range customers {
		c := &customers[i]
		acquired := c.CreatedAt
		if c.ShopifyCreatedAt != nil {
			acquired = *c.ShopifyCreatedAt
		}
		switch {
		case !acquired.Before(monthStart):
			insights.AcquiredThisMonth++
		case !acquired.Before(previousMonthStart):
			insights.AcquiredPreviousMonth++
		}
	}

	insights.PriceBuckets = priceBuckets(orders)
	return insights, nil
}

// priceBuckets distributes order totals into three fixed price bands as
// rounded percentages. Zero orders yields all zeros.
func priceBuckets(orders []domain.Order) PriceBuckets {
	if len(orders) == 0 {
		return PriceBuckets{}
	}
	low := decimal.NewFromInt(500)
	mid := decimal.NewFromInt(1000)

	var countLow, countMid, countHigh int
	for i := range orders {
		total := orders[i].TotalPrice
		switch {
		case !total.GreaterThan(low):
			countLow++
		case !total.GreaterThan(mid):
			countMid++
		default:
			countHigh++
		}
	}
	n := float64(len(orders))
	return PriceBuckets{
		UpTo500Percent:  int(math.Round(float64(countLow) / n * 100)),
		To1000Percent:   int(math.Round(float64(countMid) / n * 100)),
		Over1000Percent: int(math.Round(float64(countHigh) / n * 100)),
	}
}

// CheckoutFunnel reconstructs the cart to completed-order sequence over the
// trailing 7 days. Abandoned never goes negative and recovery potential is
// the abandoned count times the overall average order value, rounded.
func (s *AnalyticsService) CheckoutFunnel(ctx context.Context, tenantID string) (*CheckoutFunnel, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -funnelWindowDays)

	carts, err := s.events.CountByTypeInRange(ctx, tenantID, domain.EventCartCreated, from, now)
	if err != nil {
		return nil, fmt.Errorf("count cart events: %w", err)
	}
	checkouts, err := s.events.CountByTypeInRange(ctx, tenantID, domain.EventCheckoutStarted, from, now)
	if err != nil {
		return nil, fmt.Errorf("count checkout events: %w", err)
	}
	windowOrders, err := s.orders.ListInRange(ctx, tenantID, from, now)
	if err != nil {
		return nil, fmt.Errorf("list window orders: %w", err)
	}

	abandoned := carts - checkouts
	if abandoned < 0 {
		abandoned = 0
	}

	funnel := &CheckoutFunnel{
		Carts:             carts,
		Checkouts:         checkouts,
		CompletedOrders:   int64(len(windowOrders)),
		Abandoned:         abandoned,
		RecoveryPotential: decimal.Zero,
	}
	if abandoned > 0 {
		aov, err := s.averageOrderValue(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		funnel.RecoveryPotential = aov.Mul(decimal.NewFromInt(abandoned)).Round(0)
	}
	return funnel, nil
}

func (s *AnalyticsService) averageOrderValue(ctx context.Context, tenantID string) (decimal.Decimal, error) {
	orders, err := s.orders.ListByTenant(ctx, tenantID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return decimal.Zero, nil
	}
	var total decimal.Decimal
	for i := range orders {
		total = total.Add(orders[i].TotalPrice)
	}
	return total.Div(decimal.NewFromInt(int64(len(orders)))), nil
}

// Profitability ranks products by total profit, units sold times unit margin.
// Products without a known cost are excluded rather than guessed at.
func (s *AnalyticsService) Profitability(ctx context.Context, tenantID string, topN int) ([]ProductProfit, error) {
	if topN <= 0 {
		topN = defaultTopN
	}

	products, err := s.products.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	items, err := s.orders.ListItemsByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	totals, _ := salesTotals(items)

	var rows []ProductProfit
	for i := range products {
		p := &products[i]
		if p.Cost == nil {
			continue
		}
		units := 0
		if agg := totals[p.ShopifyID]; agg != nil {
			units = agg.Quantity
		}
		unitProfit := p.Price.Sub(*p.Cost)
		rows = append(rows, ProductProfit{
			ShopifyID:   p.ShopifyID,
			Title:       p.Title,
			UnitsSold:   units,
			UnitProfit:  unitProfit,
			TotalProfit: unitProfit.Mul(decimal.NewFromInt(int64(units))),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalProfit.GreaterThan(rows[j].TotalProfit)
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows, nil
}

// FullDashboard composes every analytics block and the advisory list, served
// from the cache when a fresh copy exists. Cache failures degrade to a
// recompute, never to an error.
func (s *AnalyticsService) FullDashboard(ctx context.Context, tenantID string) (*Dashboard, error) {
	key := dashboardCacheKey(tenantID)
	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("tenantId", tenantID).Msg("dashboard cache read failed")
	} else if cached != nil {
		var dashboard Dashboard
		if err := json.Unmarshal(cached, &dashboard); err == nil {
			s.observeCache(true)
			return &dashboard, nil
		}
		s.logger.Warn().Str("tenantId", tenantID).Msg("discarding undecodable cached dashboard")
	}
	s.observeCache(false)

	overview, err := s.Overview(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	series, err := s.OrdersByDate(ctx, tenantID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	performance, err := s.ProductPerformance(ctx, tenantID, defaultTopN)
	if err != nil {
		return nil, err
	}
	insights, err := s.CustomerInsights(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	funnel, err := s.CheckoutFunnel(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	profitability, err := s.Profitability(ctx, tenantID, defaultTopN)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Overview:      *overview,
		OrdersByDate:  series,
		Forecast:      LinearForecast(series, defaultSeriesDays),
		Products:      *performance,
		Customers:     *insights,
		Funnel:        *funnel,
		Profitability: profitability,
		Advisories:    advisories(performance, funnel),
		GeneratedAt:   time.Now().UTC(),
	}

	if encoded, err := json.Marshal(dashboard); err == nil {
		if err := s.cache.Set(ctx, key, encoded, dashboardCacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("tenantId", tenantID).Msg("dashboard cache write failed")
		}
	}
	return dashboard, nil
}

// advisories renders the dashboard's action items. Pure concatenation over
// already-computed blocks.
func advisories(performance *ProductPerformance, funnel *CheckoutFunnel) []string {
	var lines []string
	for _, alert := range performance.LowStock {
		lines = append(lines, fmt.Sprintf(
			"Reorder %s soon: projected to run out in %d days at %.1f sales per day",
			alert.Title, alert.DaysLeft, alert.DailyVelocity))
	}
	for _, suggestion := range performance.MarginSuggestions {
		lines = append(lines, fmt.Sprintf(
			"Raise the price of %s by 5%% to %s; its %.1f%% margin is below target",
			suggestion.Title, suggestion.SuggestedPrice.StringFixed(2), suggestion.MarginPercent))
	}
	if funnel.Abandoned > 0 {
		lines = append(lines, fmt.Sprintf(
			"%d abandoned carts this week are worth about %s in recoverable revenue",
			funnel.Abandoned, funnel.RecoveryPotential.StringFixed(0)))
	}
	return lines
}

func (s *AnalyticsService) observeCache(hit bool) {
	if s.recorder != nil {
		s.recorder.ObserveCache(hit)
	}
}
