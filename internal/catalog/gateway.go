package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/tcgmatch/internal/logging"
)

// Fetch names, used in logs, errors and metrics labels.
const (
	FetchGroups           = "groups"
	FetchProductsByKey    = "products_by_key"
	FetchProductsByName   = "products_by_name"
	FetchProductsByPrefix = "products_by_prefix"
	FetchVariants         = "variants"
)

// Parameters bound per key for each fetch.
const (
	groupParams   = 1
	productParams = 2
	variantParams = 4
)

const (
	groupColumns   = "group_id, name, abbr, is_current"
	productColumns = "product_id, group_id, name, clean_name, image_url, rarity_id, collector_number"
	variantColumns = "sku_id, product_id, language_id, printing_id, condition_id, " +
		"low_price_cents, mid_price_cents, high_price_cents, market_price_cents, direct_low_price_cents"
)

// Observer is notified after every batch the gateway submits.
type Observer func(fetch string, statements int, elapsed time.Duration, err error)

// Gateway runs batched, chunked catalog lookups over a Store.
// It holds no per-call state and is safe for concurrent use.
type Gateway struct {
	store    Store
	observer Observer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithObserver registers a batch observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(g *Gateway) { g.observer = o }
}

// NewGateway creates a Gateway over store.
func NewGateway(store Store, opts ...Option) *Gateway {
	g := &Gateway{store: store}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ping checks that the underlying store is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}

// FetchGroups returns groups keyed by uppercase abbreviation. Codes are
// matched exactly after uppercasing; when two groups share an abbreviation
// the one with the lowest id wins.
func (g *Gateway) FetchGroups(ctx context.Context, codes []string) (map[string]Group, error) {
	upper := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			upper = append(upper, c)
		}
	}

	groups := make(map[string]Group)
	build := func(chunk []string) Statement {
		ph := newPlaceholders(g.store)
		marks := make([]string, len(chunk))
		args := make([]any, len(chunk))
		for i, c := range chunk {
			marks[i] = ph.next()
			args[i] = c
		}
		return Statement{
			SQL: "SELECT " + groupColumns + " FROM groups WHERE abbr IN (" +
				strings.Join(marks, ", ") + ") ORDER BY group_id",
			Args: args,
		}
	}
	scan := func(_ int, row Row) error {
		var gr Group
		if err := row.Scan(&gr.ID, &gr.Name, &gr.Abbreviation, &gr.IsCurrent); err != nil {
			return err
		}
		key := strings.ToUpper(gr.Abbreviation)
		if _, seen := groups[key]; !seen {
			groups[key] = gr
		}
		return nil
	}

	if err := fetchChunked(ctx, g, FetchGroups, upper, groupParams, build, scan); err != nil {
		return nil, err
	}
	return groups, nil
}

// FetchProductsByKey resolves collector-number keys. Candidates sharing a
// (group, collector number) pair are split into the rainbow-foil partition,
// served to keys with Rainbow set, and the rest. Each key then gets the
// preferred candidate of its partition. Keys without a match are absent.
func (g *Gateway) FetchProductsByKey(ctx context.Context, keys []ProductKey) (map[ProductKey]Product, error) {
	return g.fetchProducts(ctx, FetchProductsByKey, keys, ByCollector,
		func(ph *placeholders) string {
			return "(group_id = " + ph.next() + " AND collector_number = " + ph.next() + ")"
		},
		func(t groupValue) []any { return []any{t.GroupID, t.Value} },
		func(p Product) (string, bool) { return p.CollectorNumber, true },
		func(k ProductKey, p Product) bool { return isRainbowFoil(p.Name) == k.Rainbow },
		nil,
	)
}

// FetchProductsByName resolves clean-name keys. Key values must already be
// in CleanName form; the comparison ignores case.
func (g *Gateway) FetchProductsByName(ctx context.Context, keys []ProductKey) (map[ProductKey]Product, error) {
	return g.fetchProducts(ctx, FetchProductsByName, keys, ByName,
		func(ph *placeholders) string {
			return "(group_id = " + ph.next() + " AND lower(clean_name) = lower(" + ph.next() + "))"
		},
		func(t groupValue) []any { return []any{t.GroupID, t.Value} },
		func(p Product) (string, bool) { return p.CleanName, true },
		nil,
		strings.ToLower,
	)
}

// FetchProductsByCollectorPrefix resolves keys whose value is the part of a
// "<prefix>/<total>" collector number before the slash.
func (g *Gateway) FetchProductsByCollectorPrefix(ctx context.Context, keys []ProductKey) (map[ProductKey]Product, error) {
	return g.fetchProducts(ctx, FetchProductsByPrefix, keys, ByCollectorPrefix,
		func(ph *placeholders) string {
			return "(group_id = " + ph.next() + " AND collector_number LIKE " + ph.next() + ` ESCAPE '\')`
		},
		func(t groupValue) []any { return []any{t.GroupID, escapeLike(t.Value) + "/%"} },
		func(p Product) (string, bool) {
			prefix, _, ok := strings.Cut(p.CollectorNumber, "/")
			return prefix, ok
		},
		nil,
		nil,
	)
}

// fetchProducts is the shared body of the product fetches. where renders one
// key's predicate, args binds it, value extracts the matched value from a
// returned row (false drops the row) and partition, when set, filters the
// candidates a key may choose from. fold, when set, maps key and row values
// to the form they are matched in.
func (g *Gateway) fetchProducts(
	ctx context.Context,
	fetch string,
	keys []ProductKey,
	strategy Strategy,
	where func(ph *placeholders) string,
	args func(t groupValue) []any,
	value func(p Product) (string, bool),
	partition func(k ProductKey, p Product) bool,
	fold func(string) string,
) (map[ProductKey]Product, error) {
	if fold == nil {
		fold = func(s string) string { return s }
	}
	matchOn := func(k ProductKey) groupValue {
		t := k.target()
		t.Value = fold(t.Value)
		return t
	}

	targets := make([]groupValue, 0, len(keys))
	for _, k := range keys {
		if k.Strategy != strategy {
			return nil, fmt.Errorf("catalog: %s: key %s has strategy %s", fetch, k, k.Strategy)
		}
		targets = append(targets, matchOn(k))
	}

	candidates := make(map[groupValue][]Product)
	build := func(chunk []groupValue) Statement {
		ph := newPlaceholders(g.store)
		preds := make([]string, len(chunk))
		var bound []any
		for i, t := range chunk {
			preds[i] = where(ph)
			bound = append(bound, args(t)...)
		}
		return Statement{
			SQL: "SELECT " + productColumns + " FROM products WHERE " +
				strings.Join(preds, " OR ") + " ORDER BY product_id",
			Args: bound,
		}
	}
	scan := func(_ int, row Row) error {
		p, err := scanProduct(row)
		if err != nil {
			return err
		}
		v, ok := value(p)
		if !ok {
			return nil
		}
		t := groupValue{GroupID: p.GroupID, Value: fold(v)}
		candidates[t] = append(candidates[t], p)
		return nil
	}

	if err := fetchChunked(ctx, g, fetch, targets, productParams, build, scan); err != nil {
		return nil, err
	}

	found := make(map[ProductKey]Product, len(keys))
	for _, k := range keys {
		pool := candidates[matchOn(k)]
		if partition != nil {
			kept := make([]Product, 0, len(pool))
			for _, p := range pool {
				if partition(k, p) {
					kept = append(kept, p)
				}
			}
			pool = kept
		}
		if p, ok := SelectPreferredProduct(pool, k.hints()); ok {
			found[k] = p
		}
	}
	return found, nil
}

// FetchVariants returns the variants matching keys exactly. When the catalog
// holds duplicates for a key, the lowest SKU id wins.
func (g *Gateway) FetchVariants(ctx context.Context, keys []VariantKey) (map[VariantKey]Variant, error) {
	variants := make(map[VariantKey]Variant, len(keys))
	build := func(chunk []VariantKey) Statement {
		ph := newPlaceholders(g.store)
		preds := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*variantParams)
		for i, k := range chunk {
			preds[i] = "(product_id = " + ph.next() + " AND printing_id = " + ph.next() +
				" AND condition_id = " + ph.next() + " AND language_id = " + ph.next() + ")"
			args = append(args, k.ProductID, k.PrintingID, k.ConditionID, k.LanguageID)
		}
		return Statement{
			SQL: "SELECT " + variantColumns + " FROM skus WHERE " +
				strings.Join(preds, " OR ") + " ORDER BY sku_id",
			Args: args,
		}
	}
	scan := func(_ int, row Row) error {
		var v Variant
		if err := row.Scan(
			&v.SKUID, &v.ProductID, &v.LanguageID, &v.PrintingID, &v.ConditionID,
			&v.LowCents, &v.MidCents, &v.HighCents, &v.MarketCents, &v.DirectLowCents,
		); err != nil {
			return err
		}
		if _, seen := variants[v.Key()]; !seen {
			variants[v.Key()] = v
		}
		return nil
	}

	if err := fetchChunked(ctx, g, FetchVariants, keys, variantParams, build, scan); err != nil {
		return nil, err
	}
	return variants, nil
}

// fetchChunked deduplicates keys (first occurrence wins), splits them into
// chunks that fit the store's parameter ceiling and submits one statement per
// chunk in a single batch. An empty key set never reaches the store.
func fetchChunked[K comparable](
	ctx context.Context,
	g *Gateway,
	fetch string,
	keys []K,
	paramsPerKey int,
	build func(chunk []K) Statement,
	scan ScanFunc,
) error {
	unique := dedupe(keys)
	if len(unique) == 0 {
		return nil
	}

	stmts := make([]Statement, 0)
	for _, chunk := range chunks(unique, max(1, g.store.MaxParams()/paramsPerKey)) {
		stmts = append(stmts, build(chunk))
	}

	start := time.Now()
	err := g.store.QueryBatch(ctx, stmts, scan)
	elapsed := time.Since(start)

	if g.observer != nil {
		g.observer(fetch, len(stmts), elapsed, err)
	}

	logging.FromContext(ctx).Debug("catalog batch",
		"fetch", fetch,
		"keys", len(unique),
		"statements", len(stmts),
		"duration_ms", elapsed.Milliseconds(),
	)

	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", fetch, err)
	}
	return nil
}

func dedupe[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func chunks[K any](keys []K, size int) [][]K {
	out := make([][]K, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		out = append(out, keys[start:end])
	}
	return out
}

func scanProduct(row Row) (Product, error) {
	var (
		p        Product
		image    *string
		rarity   *int64
		number   *string
		cleanRaw *string
	)
	if err := row.Scan(&p.ID, &p.GroupID, &p.Name, &cleanRaw, &image, &rarity, &number); err != nil {
		return Product{}, err
	}
	if cleanRaw != nil {
		p.CleanName = *cleanRaw
	}
	if image != nil {
		p.ImageURL = *image
	}
	if rarity != nil {
		p.RarityID = int(*rarity)
	}
	if number != nil {
		p.CollectorNumber = *number
	}
	return p, nil
}

// placeholders hands out consecutive bind markers for one statement.
type placeholders struct {
	store Store
	n     int
}

func newPlaceholders(s Store) *placeholders {
	return &placeholders{store: s}
}

func (p *placeholders) next() string {
	p.n++
	return p.store.Placeholder(p.n)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
