package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tcgmatch/internal/card"
	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/logging"
)

// Catalog is the lookup surface the engine resolves against.
// *catalog.Gateway satisfies it.
type Catalog interface {
	FetchGroups(ctx context.Context, codes []string) (map[string]catalog.Group, error)
	FetchProductsByKey(ctx context.Context, keys []catalog.ProductKey) (map[catalog.ProductKey]catalog.Product, error)
	FetchProductsByName(ctx context.Context, keys []catalog.ProductKey) (map[catalog.ProductKey]catalog.Product, error)
	FetchProductsByCollectorPrefix(ctx context.Context, keys []catalog.ProductKey) (map[catalog.ProductKey]catalog.Product, error)
	FetchVariants(ctx context.Context, keys []catalog.VariantKey) (map[catalog.VariantKey]catalog.Variant, error)
}

// Engine resolves normalized rows against the catalog and aggregates them.
// It keeps no state between calls; concurrent Runs are independent.
type Engine struct {
	catalog Catalog
}

// NewEngine creates an engine over c.
func NewEngine(c Catalog) *Engine {
	return &Engine{catalog: c}
}

// Conversion is the in-memory outcome of one engine run.
type Conversion struct {
	InputRows int
	Rows      []ExportRow     // first-seen variant order
	Failures  []FailureRecord // input order
	Resolved  int             // input rows that reached a bucket
}

// rowState tracks one input row through the stages.
type rowState struct {
	line    int
	card    card.Card
	group   catalog.Group
	plan    LookupPlan
	product catalog.Product
	variant catalog.VariantKey
	matched bool
	failure *FailureRecord
}

func (s *rowState) fail(stage Stage, kind FailureKind, format string, args ...any) {
	s.failure = &FailureRecord{
		Line:   s.line,
		Card:   s.card,
		Stage:  stage,
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (s *rowState) pending() bool {
	return s.failure == nil
}

// Run converts rows. Per-row problems become FailureRecords; any catalog
// failure aborts with a *SystemError and no partial result.
func (e *Engine) Run(ctx context.Context, rows []card.RawRow) (*Conversion, error) {
	log := logging.FromContext(ctx)

	states := make([]*rowState, len(rows))
	for i, raw := range rows {
		c := card.Normalize(raw)
		s := &rowState{line: i + 1, card: c}
		if c.SetCode == "" {
			s.fail(StageSetCode, KindValidation, "missing set code for %s", c.Label())
		}
		states[i] = s
	}

	if err := e.resolveGroups(ctx, states); err != nil {
		return nil, err
	}
	if err := e.resolveProducts(ctx, states); err != nil {
		return nil, err
	}
	variants, err := e.fetchVariants(ctx, states)
	if err != nil {
		return nil, err
	}

	conv := &Conversion{InputRows: len(rows)}
	agg := newAggregator()
	for _, s := range states {
		if !s.pending() {
			conv.Failures = append(conv.Failures, *s.failure)
			continue
		}
		v, ok := variants[s.variant]
		if !ok {
			s.fail(StageVariant, KindLookupMiss,
				"no catalog SKU for %s: product %d (%s), printing %d, condition %d (%s), language %d (%s)",
				s.card.Label(), s.product.ID, s.product.Name,
				s.variant.PrintingID, s.variant.ConditionID, s.card.Condition,
				s.variant.LanguageID, s.card.Language)
			conv.Failures = append(conv.Failures, *s.failure)
			continue
		}
		agg.add(s.card, s.group, s.product, v)
		conv.Resolved++
	}
	conv.Rows = agg.rows()

	log.Debug("conversion resolved",
		"input_rows", conv.InputRows,
		"resolved", conv.Resolved,
		"output_rows", len(conv.Rows),
		"failures", len(conv.Failures),
	)
	return conv, nil
}

func (e *Engine) resolveGroups(ctx context.Context, states []*rowState) error {
	var codes []string
	for _, s := range states {
		if s.pending() {
			codes = append(codes, s.card.SetCode)
		}
	}

	groups, err := e.catalog.FetchGroups(ctx, codes)
	if err != nil {
		return &SystemError{Op: "fetch groups", Err: err}
	}

	for _, s := range states {
		if !s.pending() {
			continue
		}
		g, ok := groups[s.card.SetCode]
		if !ok {
			if s.card.SetCode != strings.ToUpper(s.card.OriginalSetCode) {
				s.fail(StageGroup, KindLookupMiss, "unrecognized set code %q (normalized to %q) for %s",
					s.card.OriginalSetCode, s.card.SetCode, s.card.Label())
			} else {
				s.fail(StageGroup, KindLookupMiss, "unrecognized set code %q for %s",
					s.card.OriginalSetCode, s.card.Label())
			}
			continue
		}
		s.group = g
		s.plan = PlanFor(s.card, g.ID)
		if s.plan.Empty() {
			s.fail(StageProductKey, KindValidation,
				"no product key can be derived for %s: collector number and name are both empty", s.card.Label())
		}
	}
	return nil
}

// productFetches routes keys to the gateway fetch for their strategy.
type productFetches struct {
	byKey, byName, byPrefix []catalog.ProductKey
}

func (f *productFetches) add(k catalog.ProductKey) {
	switch k.Strategy {
	case catalog.ByCollector:
		f.byKey = append(f.byKey, k)
	case catalog.ByName:
		f.byName = append(f.byName, k)
	case catalog.ByCollectorPrefix:
		f.byPrefix = append(f.byPrefix, k)
	}
}

func (e *Engine) resolveProducts(ctx context.Context, states []*rowState) error {
	found := make(map[catalog.ProductKey]catalog.Product)
	fetched := make(map[catalog.ProductKey]bool)

	var first productFetches
	for _, s := range states {
		if !s.pending() {
			continue
		}
		for _, k := range s.plan.Keys {
			first.add(k)
			fetched[k] = true
		}
	}
	if err := e.fetchProducts(ctx, first, found); err != nil {
		return err
	}
	for _, s := range states {
		if s.pending() {
			s.product, s.matched = firstHit(s.plan.Keys, found)
		}
	}

	// Second-chance name lookups for rows the collector pass missed.
	var second productFetches
	for _, s := range states {
		if !s.pending() || s.matched || s.plan.SecondChance == nil {
			continue
		}
		if k := *s.plan.SecondChance; !fetched[k] {
			second.add(k)
			fetched[k] = true
		}
	}
	if err := e.fetchProducts(ctx, second, found); err != nil {
		return err
	}

	for _, s := range states {
		if !s.pending() {
			continue
		}
		if !s.matched && s.plan.SecondChance != nil {
			s.product, s.matched = firstHit([]catalog.ProductKey{*s.plan.SecondChance}, found)
		}
		if !s.matched {
			s.fail(StageProduct, KindLookupMiss, "no catalog product for %s in %s (%s); tried keys: %s",
				s.card.Label(), s.group.Abbreviation, s.group.Name, joinKeys(s.plan.All()))
			continue
		}
		vk, ok := variantKey(s.card, s.product)
		if !ok {
			s.fail(StageVariantKey, KindValidation, "no SKU key can be derived for %s: catalog product %q has no id",
				s.card.Label(), s.product.Name)
			continue
		}
		s.variant = vk
	}
	return nil
}

func (e *Engine) fetchProducts(ctx context.Context, f productFetches, into map[catalog.ProductKey]catalog.Product) error {
	steps := []struct {
		op    string
		keys  []catalog.ProductKey
		fetch func(context.Context, []catalog.ProductKey) (map[catalog.ProductKey]catalog.Product, error)
	}{
		{"fetch products by key", f.byKey, e.catalog.FetchProductsByKey},
		{"fetch products by name", f.byName, e.catalog.FetchProductsByName},
		{"fetch products by collector prefix", f.byPrefix, e.catalog.FetchProductsByCollectorPrefix},
	}

	for _, step := range steps {
		if len(step.keys) == 0 {
			continue
		}
		got, err := step.fetch(ctx, step.keys)
		if err != nil {
			return &SystemError{Op: step.op, Err: err}
		}
		for k, p := range got {
			into[k] = p
		}
	}
	return nil
}

func (e *Engine) fetchVariants(ctx context.Context, states []*rowState) (map[catalog.VariantKey]catalog.Variant, error) {
	var keys []catalog.VariantKey
	for _, s := range states {
		if s.pending() {
			keys = append(keys, s.variant)
		}
	}
	if len(keys) == 0 {
		return map[catalog.VariantKey]catalog.Variant{}, nil
	}

	variants, err := e.catalog.FetchVariants(ctx, keys)
	if err != nil {
		return nil, &SystemError{Op: "fetch variants", Err: err}
	}
	return variants, nil
}

func firstHit(keys []catalog.ProductKey, found map[catalog.ProductKey]catalog.Product) (catalog.Product, bool) {
	for _, k := range keys {
		if p, ok := found[k]; ok {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func joinKeys(keys []catalog.ProductKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}
