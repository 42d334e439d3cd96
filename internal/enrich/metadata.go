package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hellogreencow/burch/pkg/httputil"
	"github.com/hellogreencow/burch/pkg/logger"
)

// SiteMetadata is what a single homepage fetch yields.
type SiteMetadata struct {
	FinalURL    string
	Title       string
	Description string
}

// Catalog is a best-effort read of a storefront's product listing.
type Catalog struct {
	ProductCount   int
	MedianPriceUSD float64
}

// Fetcher pulls homepage metadata and storefront catalogs for brand
// enrichment. All fetches are best-effort: a failed fetch degrades the
// signal, it never fails the batch.
type Fetcher struct {
	client *httputil.Client
	log    *logger.Logger
}

func NewFetcher(client *httputil.Client, log *logger.Logger) *Fetcher {
	return &Fetcher{client: client, log: log}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// FetchMetadata loads a site's homepage and extracts its title and meta
// description.
func (f *Fetcher) FetchMetadata(ctx context.Context, siteURL string) (SiteMetadata, error) {
	res, err := f.client.Get(ctx, siteURL)
	if err != nil {
		return SiteMetadata{FinalURL: siteURL}, fmt.Errorf("fetch %s: %w", siteURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return SiteMetadata{FinalURL: siteURL}, fmt.Errorf("fetch %s: status %d", siteURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, 2<<20))
	if err != nil {
		return SiteMetadata{FinalURL: siteURL}, fmt.Errorf("parse %s: %w", siteURL, err)
	}

	meta := SiteMetadata{
		FinalURL: res.Request.URL.String(),
		Title:    cleanText(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta.Description = cleanText(desc)
	}
	if meta.Description == "" {
		if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
			meta.Description = cleanText(desc)
		}
	}
	return meta, nil
}

type shopifyProducts struct {
	Products []struct {
		Variants []struct {
			Price string `json:"price"`
		} `json:"variants"`
	} `json:"products"`
}

// FetchCatalog probes the Shopify products endpoint that many storefronts
// expose. A non-200 response means no observable catalog, not an error.
func (f *Fetcher) FetchCatalog(ctx context.Context, siteURL string) (Catalog, bool) {
	endpoint := strings.TrimRight(siteURL, "/") + "/products.json?limit=250&page=1"
	res, err := f.client.Get(ctx, endpoint)
	if err != nil {
		return Catalog{}, false
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return Catalog{}, false
	}

	var payload shopifyProducts
	if err := json.NewDecoder(io.LimitReader(res.Body, 4<<20)).Decode(&payload); err != nil {
		return Catalog{}, false
	}
	if len(payload.Products) == 0 {
		return Catalog{ProductCount: 0}, true
	}

	var prices []float64
	for _, p := range payload.Products {
		for _, v := range p.Variants {
			price, err := strconv.ParseFloat(v.Price, 64)
			if err == nil && price > 0 {
				prices = append(prices, price)
			}
		}
	}
	sort.Float64s(prices)

	cat := Catalog{ProductCount: len(payload.Products)}
	if len(prices) > 0 {
		cat.MedianPriceUSD = prices[len(prices)/2]
	}
	return cat, true
}
