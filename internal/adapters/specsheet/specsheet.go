package specsheet

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
)

// ErrNoWattage is a domain.ErrNotFound: the page has no usable power row.
var ErrNoWattage = fmt.Errorf("no wattage on page: %w", domain.ErrNotFound)

// labels are matched against the lowercased row label, most specific first.
var labels = []string{"tdp", "max power", "power consumption", "consumption", "wattage", "power"}

type Scraper struct {
	client *http.Client
}

func New() *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewWithClient is used by tests and callers that need their own transport.
func NewWithClient(c *http.Client) *Scraper {
	return &Scraper{client: c}
}

// FetchWattage downloads a product page and returns the value of the first
// power-like row found in its spec tables or definition lists.
func (s *Scraper) FetchWattage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	if v, ok := Extract(doc); ok {
		return v, nil
	}
	return "", ErrNoWattage
}

// Extract walks table rows and dt/dd pairs. A row only counts when its value
// carries a number and a watt unit, either in the value or in the label.
func Extract(doc *goquery.Document) (string, bool) {
	rows := map[string]string{}
	var order []string
	add := func(label, value string) {
		label = strings.ToLower(cleanText(label))
		value = cleanText(value)
		if label == "" || value == "" || !inWatts(label, value) {
			return
		}
		if _, seen := rows[label]; !seen {
			rows[label] = value
			order = append(order, label)
		}
	}

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() >= 2 {
			add(cells.First().Text(), cells.Eq(1).Text())
		}
	})
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		add(dt.Text(), dt.NextFiltered("dd").Text())
	})

	for _, want := range labels {
		for _, label := range order {
			if strings.Contains(label, want) {
				return rows[label], true
			}
		}
	}
	return "", false
}

func inWatts(label, value string) bool {
	if power.ParseWatt(value) == 0 {
		return false
	}
	v := strings.ToLower(value)
	return strings.Contains(v, "w") || strings.Contains(label, "watt") || strings.Contains(label, "(w)")
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
