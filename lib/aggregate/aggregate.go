package aggregate

import (
	"context"
	"errors"
	"fmt"

	"partquote/lib/pricebreak"
	"partquote/lib/supplier"
	"partquote/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	tracer = otel.Tracer("partquote/aggregate")
	meter  = otel.Meter("partquote/aggregate")
)

const (
	report_aggregator_lookup   = "aggregator.lookup"
	report_aggregator_failures = "aggregator.failures"
)

type Part struct {
	PartNumber  string `json:"part_number" validate:"required"`
	Description string `json:"description"`
}

// Result is the outcome of looking one part up at one source. Exactly one of
// Offer and Err is meaningful.
type Result struct {
	Supplier string
	Offer    supplier.Offer
	Err      error
}

type PartResults struct {
	Part    Part
	Results []Result
}

// Report holds results in the order parts and sources were given.
type Report struct {
	Parts []PartResults
}

type Aggregator struct {
	sources     []supplier.Source
	concurrency int
	tel         telemetry.API
	failures    metric.Int64Counter
}

type Option func(a *Aggregator)

// WithConcurrency bounds the number of lookups in flight.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func WithTelemetry(tel telemetry.API) Option {
	return func(a *Aggregator) {
		a.tel = tel
	}
}

func New(sources []supplier.Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		sources:     sources,
		concurrency: 4,
		tel:         telemetry.SlogAPI{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.tel = telemetry.NewScopedAPI("aggregate", a.tel)

	failures, err := meter.Int64Counter(
		"supplier_lookup_failures_total",
		metric.WithDescription("The total amount of supplier lookups that failed."),
	)
	if err != nil {
		a.tel.ReportWarning("aggregator.new", fmt.Errorf("create counter: %w", err))
	}
	a.failures = failures

	return a
}

func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return names
}

func (a *Aggregator) lookup(ctx context.Context, source supplier.Source, partNumber string) Result {
	ctx, span := tracer.Start(ctx, "Aggregator:lookup")
	defer span.End()
	span.SetAttributes(
		attribute.String("supplier", source.Name()),
		attribute.String("part_number", partNumber),
	)

	offer, err := source.Lookup(ctx, partNumber)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		if a.failures != nil {
			a.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("supplier", source.Name())))
		}
		if !errors.Is(err, supplier.ErrNotFound) {
			a.tel.ReportWarning(report_aggregator_lookup, err, source.Name(), partNumber)
		}
		return Result{Supplier: source.Name(), Err: err}
	}
	if offer.Supplier == "" {
		offer.Supplier = source.Name()
	}
	return Result{Supplier: source.Name(), Offer: offer}
}

// Collect looks every part up at every source. Failed lookups are kept in the
// report, they do not stop the others.
func (a *Aggregator) Collect(ctx context.Context, parts []Part) Report {
	ctx, span := tracer.Start(ctx, "Aggregator:Collect")
	defer span.End()

	report := Report{Parts: make([]PartResults, len(parts))}
	for i, part := range parts {
		report.Parts[i] = PartResults{
			Part:    part,
			Results: make([]Result, len(a.sources)),
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)
	for i, part := range parts {
		for j, source := range a.sources {
			group.Go(func() error {
				// every goroutine owns exactly one slot
				report.Parts[i].Results[j] = a.lookup(groupCtx, source, part.PartNumber)
				return nil
			})
		}
	}
	group.Wait()

	var failed int64
	for _, pr := range report.Parts {
		for _, result := range pr.Results {
			if result.Err != nil {
				failed++
			}
		}
	}
	a.tel.ReportCount(report_aggregator_failures, failed)
	span.SetAttributes(attribute.Int64("failed_lookups", failed))

	return report
}

// SupplierQuote is one supplier's offer for a part with the recommendation
// computed over its prices.
type SupplierQuote struct {
	Result
	Recommendation pricebreak.Recommendation
}

type Quote struct {
	PartNumber string
	Quantity   int
	Suppliers  []SupplierQuote
	// Best indexes into Suppliers, -1 when no supplier had a price.
	Best int
}

func (q Quote) BestQuote() (SupplierQuote, bool) {
	if q.Best < 0 || q.Best >= len(q.Suppliers) {
		return SupplierQuote{}, false
	}
	return q.Suppliers[q.Best], true
}

// Quote looks partNumber up at every source and recommends a purchase per
// source, then picks the one with the lowest total cost. Ties go to the
// source listed first.
func (a *Aggregator) Quote(ctx context.Context, partNumber string, quantity int) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, fmt.Errorf("%w: %d", pricebreak.ErrInvalidQuantity, quantity)
	}

	ctx, span := tracer.Start(ctx, "Aggregator:Quote")
	defer span.End()
	span.SetAttributes(
		attribute.String("part_number", partNumber),
		attribute.Int("quantity", quantity),
	)

	report := a.Collect(ctx, []Part{{PartNumber: partNumber}})

	quote := Quote{
		PartNumber: partNumber,
		Quantity:   quantity,
		Best:       -1,
	}
	for _, result := range report.Parts[0].Results {
		sq := SupplierQuote{Result: result}
		if result.Err == nil {
			sq.Recommendation, sq.Err = RecommendOffer(result.Offer, quantity)
		}
		quote.Suppliers = append(quote.Suppliers, sq)
	}

	for i, sq := range quote.Suppliers {
		if sq.Err != nil || !sq.Recommendation.TotalCost.Valid {
			continue
		}
		if quote.Best < 0 {
			quote.Best = i
			continue
		}
		best := quote.Suppliers[quote.Best].Recommendation.TotalCost.Decimal
		if sq.Recommendation.TotalCost.Decimal.LessThan(best) {
			quote.Best = i
		}
	}

	if best, ok := quote.BestQuote(); ok {
		span.AddEvent("best offer", trace.WithAttributes(
			attribute.String("supplier", best.Supplier),
			attribute.Int("units", best.Recommendation.RecommendedUnits),
			attribute.String("total_cost", best.Recommendation.TotalCost.Decimal.String()),
		))
	}

	return quote, nil
}

// RecommendOffer runs the optimizer over the prices of a single offer.
func RecommendOffer(offer supplier.Offer, quantity int) (pricebreak.Recommendation, error) {
	table, err := offer.PriceTable()
	if err != nil {
		return pricebreak.Recommendation{}, fmt.Errorf("%s: %w", offer.Supplier, err)
	}
	return pricebreak.Recommend(table, quantity)
}
