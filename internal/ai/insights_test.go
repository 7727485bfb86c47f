package ai_test

import (
	"context"
	"errors"
	"testing"

	"go-erp-agent/internal/ai"
	"go-erp-agent/internal/models"

	"github.com/shopspring/decimal"
)

// fakeGen serves scripted responses in order. Once the script runs out the
// last entry repeats.
type fakeGen struct {
	calls  int
	script []func() (string, error)
}

func (f *fakeGen) Generate(ctx context.Context, model, prompt string, jsonResponse bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.calls++
	i := f.calls - 1
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	return f.script[i]()
}

func ok(out string) func() (string, error) {
	return func() (string, error) { return out, nil }
}

func fail() (string, error) {
	return "", errors.New("model overloaded")
}

func insightState() *models.AppState {
	return &models.AppState{
		Products: []models.Product{
			{ID: "p1", Name: "Premium Coffee Beans", Price: decimal.RequireFromString("45.000"), Stock: 15, MinStockLevel: 20},
		},
		Sales: []models.Sale{
			{ID: "s1", TotalAmount: decimal.RequireFromString("94.500"), Items: []models.SaleItem{{Name: "Premium Coffee Beans", Quantity: 2}}},
		},
		CashBalance: decimal.RequireFromString("2500"),
		Settings:    models.AppSettings{Currency: "OMR", Language: "en"},
	}
}

func TestGetInsightsNormalizesTypes(t *testing.T) {
	gen := &fakeGen{script: []func() (string, error){
		ok(`[{"title":"Reorder coffee","description":"Stock below minimum","type":"warning"},
		    {"title":"Cash healthy","description":"...","type":"celebration"}]`),
	}}
	svc := ai.NewServiceWithGenerator(gen)

	insights, _ := svc.GetInsights(context.Background(), insightState())
	if len(insights) != 2 {
		t.Fatalf("insights = %d, want 2", len(insights))
	}
	if insights[0].Type != "warning" {
		t.Errorf("type = %q, want warning", insights[0].Type)
	}
	if insights[1].Type != "info" {
		t.Errorf("unknown type not normalized: %q", insights[1].Type)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}

func TestRetryThenSuccess(t *testing.T) {
	gen := &fakeGen{script: []func() (string, error){
		fail,
		fail,
		ok(`[{"title":"t","description":"d","type":"info"}]`),
	}}
	svc := ai.NewServiceWithGenerator(gen)

	insights, _ := svc.GetInsights(context.Background(), insightState())
	if gen.calls != 3 {
		t.Errorf("calls = %d, want 3 (1 attempt + 2 retries)", gen.calls)
	}
	if len(insights) != 1 {
		t.Errorf("insights = %d, want the retried result", len(insights))
	}
}

func TestFallbackAfterExhaustedRetries(t *testing.T) {
	state := insightState()

	t.Run("insights", func(t *testing.T) {
		gen := &fakeGen{script: []func() (string, error){fail}}
		insights, _ := ai.NewServiceWithGenerator(gen).GetInsights(context.Background(), state)
		if gen.calls != 3 {
			t.Errorf("calls = %d, want 3", gen.calls)
		}
		if insights == nil || len(insights) != 0 {
			t.Errorf("fallback = %v, want empty non-nil list", insights)
		}
	})

	t.Run("forecast", func(t *testing.T) {
		gen := &fakeGen{script: []func() (string, error){fail}}
		text, _ := ai.NewServiceWithGenerator(gen).PredictNextPeriod(context.Background(), state)
		if text != "Unable to generate prediction at this time." {
			t.Errorf("fallback = %q", text)
		}
	})

	t.Run("customer intelligence", func(t *testing.T) {
		gen := &fakeGen{script: []func() (string, error){fail}}
		ci, _ := ai.NewServiceWithGenerator(gen).GetCustomerIntelligence(context.Background(), state)
		if ci.Segments == nil || ci.UpsellOpportunities == nil {
			t.Errorf("fallback has nil slices: %+v", ci)
		}
		if len(ci.Segments) != 0 || len(ci.UpsellOpportunities) != 0 {
			t.Errorf("fallback not empty: %+v", ci)
		}
	})
}

func TestUnparseableResponseFallsBack(t *testing.T) {
	gen := &fakeGen{script: []func() (string, error){
		ok(`the model decided to answer in prose instead of JSON`),
	}}
	svc := ai.NewServiceWithGenerator(gen)

	insights, _ := svc.GetInsights(context.Background(), insightState())
	if insights == nil || len(insights) != 0 {
		t.Errorf("unparseable response = %v, want empty fallback", insights)
	}
	// No retry on a parse failure, only on transport errors
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}

func TestRequestTokensAreMonotonic(t *testing.T) {
	gen := &fakeGen{script: []func() (string, error){ok(`[]`)}}
	svc := ai.NewServiceWithGenerator(gen)
	state := insightState()
	ctx := context.Background()

	_, t1 := svc.GetInsights(ctx, state)
	_, t2 := svc.PredictNextPeriod(ctx, state)
	_, t3 := svc.GetCustomerIntelligence(ctx, state)

	if !(t1 < t2 && t2 < t3) {
		t.Errorf("tokens not strictly increasing: %d, %d, %d", t1, t2, t3)
	}
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	gen := &fakeGen{script: []func() (string, error){fail}}
	svc := ai.NewServiceWithGenerator(gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text, _ := svc.PredictNextPeriod(ctx, insightState())
	if text != "Unable to generate prediction at this time." {
		t.Errorf("fallback = %q", text)
	}
	if gen.calls > 1 {
		t.Errorf("kept retrying a dead context: %d calls", gen.calls)
	}
}
