package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
)

const (
	insightModel   = "gemini-2.0-flash-001"
	reasoningModel = "gemini-1.5-pro"

	// 2 retries after the first attempt, doubling delay each time.
	maxRetries       = 2
	baseBackoff      = 500 * time.Millisecond
	perCallTimeout   = 30 * time.Second
	forecastFallback = "Unable to generate prediction at this time."
)

// Generator is the transport to the model endpoint. Injectable so tests can
// fake it deterministically instead of hitting a live Gemini key.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, jsonResponse bool) (string, error)
}

type geminiGenerator struct {
	apiKey string
}

func (g *geminiGenerator) Generate(ctx context.Context, modelName, prompt string, jsonResponse bool) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	if jsonResponse {
		model.ResponseMIMEType = "application/json"
	}
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}
	return "", fmt.Errorf("no text in model response")
}

// Insight is one advisory card for the automation hub.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"` // 'warning', 'info', 'success'
}

// Segment is one customer group identified by the model.
type Segment struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PotentialValue string `json:"potentialValue"`
}

// Upsell is one concrete sales opportunity.
type Upsell struct {
	CustomerName       string `json:"customerName"`
	RecommendedProduct string `json:"recommendedProduct"`
	Reason             string `json:"reason"`
}

// CustomerIntelligence bundles segments and upsell opportunities.
type CustomerIntelligence struct {
	Segments            []Segment `json:"segments"`
	UpsellOpportunities []Upsell  `json:"upsellOpportunities"`
}

// Service calls the generative model with a size-bounded summary of the
// aggregate. Every method absorbs its own failures: after exhausted retries
// the caller receives a deterministic fallback, never an error. Each result
// carries a monotonic request token so callers can discard stale responses
// when several requests are in flight.
type Service struct {
	gen Generator
	seq atomic.Uint64
}

// NewService builds a Service backed by Gemini.
func NewService(apiKey string) *Service {
	return &Service{gen: &geminiGenerator{apiKey: apiKey}}
}

// NewServiceWithGenerator builds a Service over a custom transport (tests).
func NewServiceWithGenerator(gen Generator) *Service {
	return &Service{gen: gen}
}

func (s *Service) generateWithRetry(ctx context.Context, model, prompt string, jsonResponse bool) (string, error) {
	delay := baseBackoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
		out, err := s.gen.Generate(callCtx, model, prompt, jsonResponse)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// GetInsights asks for three key insights or automation suggestions over a
// business summary. Fallback: empty list.
func (s *Service) GetInsights(ctx context.Context, snap *models.AppState) ([]Insight, uint64) {
	token := s.seq.Add(1)

	var lowStock []string
	for _, p := range ledger.LowStockAlerts(snap) {
		lowStock = append(lowStock, p.Name)
	}
	recent := snap.Sales
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	recentTotal := snapTotal(recent)

	prompt := fmt.Sprintf(`As an expert ERP Business Consultant, analyze the following business data and provide 3 key insights or automation suggestions.
Format your response as a JSON array of objects with 'title', 'description', and 'type' (warning, info, or success).

Data Summary:
- Current Cash Balance: %s %s
- Total Products: %d
- Total Sales Records: %d
- Inventory Alerts: %s
- Recent Total Sales: %s %s`,
		snap.Settings.Currency, snap.CashBalance.StringFixed(ledger.MoneyPrecision),
		len(snap.Products),
		len(snap.Sales),
		strings.Join(lowStock, ", "),
		snap.Settings.Currency, recentTotal,
	)

	out, err := s.generateWithRetry(ctx, insightModel, prompt, true)
	if err != nil {
		log.Printf("Insight service unavailable, serving fallback: %v", err)
		return []Insight{}, token
	}
	var insights []Insight
	if err := json.Unmarshal([]byte(out), &insights); err != nil {
		log.Printf("Insight response unparseable, serving fallback: %v", err)
		return []Insight{}, token
	}
	for i := range insights {
		switch insights[i].Type {
		case "warning", "info", "success":
		default:
			insights[i].Type = "info"
		}
	}
	return insights, token
}

// PredictNextPeriod asks for a 30-day sales forecast over the last 20 sales.
// Fallback: a fixed "unavailable" sentence.
func (s *Service) PredictNextPeriod(ctx context.Context, snap *models.AppState) (string, uint64) {
	token := s.seq.Add(1)

	history := snap.Sales
	if len(history) > 20 {
		history = history[len(history)-20:]
	}
	type point struct {
		Timestamp time.Time `json:"timestamp"`
		Total     string    `json:"total"`
		Items     int       `json:"items"`
	}
	points := make([]point, 0, len(history))
	for _, sale := range history {
		points = append(points, point{
			Timestamp: sale.Timestamp,
			Total:     sale.TotalAmount.StringFixed(ledger.MoneyPrecision),
			Items:     len(sale.Items),
		})
	}
	historyJSON, _ := json.Marshal(points)

	prompt := fmt.Sprintf(`Analyze historical sales: %s.
Predict the total sales volume for the next 30 days based on trends. Provide a short textual explanation.`, historyJSON)

	text, err := s.generateWithRetry(ctx, insightModel, prompt, false)
	if err != nil {
		log.Printf("Forecast unavailable, serving fallback: %v", err)
		return forecastFallback, token
	}
	return text, token
}

// GetCustomerIntelligence asks for behavior patterns and upsell opportunities.
// Fallback: empty segments and opportunities.
func (s *Service) GetCustomerIntelligence(ctx context.Context, snap *models.AppState) (CustomerIntelligence, uint64) {
	token := s.seq.Add(1)
	fallback := CustomerIntelligence{Segments: []Segment{}, UpsellOpportunities: []Upsell{}}

	type saleRow struct {
		Customer string   `json:"customer,omitempty"`
		Total    string   `json:"total"`
		Items    []string `json:"items"`
	}
	sales := snap.Sales
	if len(sales) > 50 {
		sales = sales[len(sales)-50:]
	}
	rows := make([]saleRow, 0, len(sales))
	for _, sale := range sales {
		row := saleRow{Customer: sale.CustomerName, Total: sale.TotalAmount.StringFixed(ledger.MoneyPrecision)}
		for _, item := range sale.Items {
			row.Items = append(row.Items, item.Name)
		}
		rows = append(rows, row)
	}
	salesJSON, _ := json.Marshal(rows)

	type productRow struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Price    string `json:"price"`
	}
	prods := make([]productRow, 0, len(snap.Products))
	for _, p := range snap.Products {
		prods = append(prods, productRow{Name: p.Name, Category: p.Category, Price: p.Price.StringFixed(ledger.MoneyPrecision)})
	}
	productsJSON, _ := json.Marshal(prods)

	prompt := fmt.Sprintf(`Analyze the following sales data and customer list to identify behavior patterns, purchase frequency, and specific upselling opportunities.
Sales Data: %s
Product List: %s

Return a JSON object with:
- 'segments': Array of objects with 'name', 'description', and 'potentialValue'.
- 'upsellOpportunities': Array of objects with 'customerName', 'recommendedProduct', and 'reason'.`, salesJSON, productsJSON)

	out, err := s.generateWithRetry(ctx, reasoningModel, prompt, true)
	if err != nil {
		log.Printf("Customer intelligence unavailable, serving fallback: %v", err)
		return fallback, token
	}
	var result CustomerIntelligence
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		log.Printf("Customer intelligence response unparseable, serving fallback: %v", err)
		return fallback, token
	}
	if result.Segments == nil {
		result.Segments = []Segment{}
	}
	if result.UpsellOpportunities == nil {
		result.UpsellOpportunities = []Upsell{}
	}
	return result, token
}

func snapTotal(sales []models.Sale) string {
	sum := decimal.Zero
	for _, sale := range sales {
		sum = sum.Add(sale.TotalAmount)
	}
	return sum.StringFixed(ledger.MoneyPrecision)
}
