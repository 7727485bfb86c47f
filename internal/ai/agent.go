package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"
	"go-erp-agent/internal/state"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
)

// maxToolRounds bounds the tool-call loop so a confused model cannot spin.
const maxToolRounds = 5

// Agent is the conversational operations assistant. It answers questions by
// calling tools over the live aggregate, and can record expenses on request.
type Agent struct {
	mgr    *state.Manager
	apiKey string
}

func NewAgent(mgr *state.Manager, apiKey string) *Agent {
	return &Agent{mgr: mgr, apiKey: apiKey}
}

// Ask runs one agent turn: system prompt + user message, then tool calls
// until the model produces text.
func (a *Agent) Ask(ctx context.Context, userMessage string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(insightModel)

	today := time.Now().Format("2006-01-02")
	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the operations assistant for a small-business ERP.

RULES:
1. READ: If the user asks about PRICE, COST, STOCK, or DETAILS of a product, call 'check_inventory' and read the JSON to answer. Do NOT say you cannot get it.
2. REPORTS: For revenue, profit, expenses or salaries over a period, call 'get_financial_report' with the date range. Default to the last 30 days when the user names none.
3. REORDER: For anything about running low or reordering, call 'low_stock_alerts'.
4. WRITE: Only 'record_expense' changes data. Confirm the amount and category in your answer after recording.

USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Price, Cost, or Stock.",
				},
				{
					Name:        "get_financial_report",
					Description: "Get the P&L roll-up (revenue, COGS, expenses, salaries, net profit) for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "low_stock_alerts",
					Description: "List every product at or below its reorder threshold.",
				},
				{
					Name:        "record_expense",
					Description: "Record an expense transaction against the cash balance.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"amount":      {Type: genai.TypeNumber, Description: "Expense amount"},
							"category":    {Type: genai.TypeString, Description: "One of: General, Rent, Salary, Utilities, Tax, Stock, Marketing, Bank Deposit, Sales"},
							"description": {Type: genai.TypeString, Description: "What the expense was for"},
						},
						Required: []string{"amount", "category", "description"},
					},
				},
			},
		},
	}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		call := findFunctionCall(resp)
		if call == nil {
			return printResponse(resp), nil
		}
		result := a.executeTool(*call)
		resp, err = session.SendMessage(ctx, genai.FunctionResponse{
			Name:     call.Name,
			Response: result,
		})
		if err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

func (a *Agent) executeTool(call genai.FunctionCall) map[string]any {
	snap := a.mgr.Snapshot()

	switch call.Name {
	case "check_inventory":
		type row struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Stock int    `json:"stock"`
			Price string `json:"price"`
			Cost  string `json:"cost"`
		}
		rows := make([]row, 0, len(snap.Products))
		for _, p := range snap.Products {
			rows = append(rows, row{
				ID:    p.ID,
				Name:  p.Name,
				Stock: p.Stock,
				Price: p.Price.StringFixed(ledger.MoneyPrecision),
				Cost:  p.CostPrice.StringFixed(ledger.MoneyPrecision),
			})
		}
		jsonBytes, _ := json.Marshal(rows)
		return map[string]any{"inventory": string(jsonBytes)}

	case "get_financial_report":
		startStr, _ := call.Args["start_date"].(string)
		endStr, _ := call.Args["end_date"].(string)
		start, err1 := time.Parse("2006-01-02", startStr)
		end, err2 := time.Parse("2006-01-02", endStr)
		if err1 != nil || err2 != nil {
			return map[string]any{"error": "dates must be in YYYY-MM-DD format"}
		}
		fin := ledger.ComputePeriodFinancials(snap, start, end)
		return map[string]any{
			"revenue":      fin.Revenue.StringFixed(ledger.MoneyPrecision),
			"cogs":         fin.COGS.StringFixed(ledger.MoneyPrecision),
			"expenses":     fin.Expenses.StringFixed(ledger.MoneyPrecision),
			"salaries":     fin.Salaries.StringFixed(ledger.MoneyPrecision),
			"gross_profit": fin.GrossProfit.StringFixed(ledger.MoneyPrecision),
			"net_profit":   fin.NetProfit.StringFixed(ledger.MoneyPrecision),
			"days":         fin.Days,
		}

	case "low_stock_alerts":
		type row struct {
			Name          string `json:"name"`
			Stock         int    `json:"stock"`
			MinStockLevel int    `json:"min_stock_level"`
		}
		var rows []row
		for _, p := range ledger.LowStockAlerts(snap) {
			rows = append(rows, row{Name: p.Name, Stock: p.Stock, MinStockLevel: p.MinStockLevel})
		}
		jsonBytes, _ := json.Marshal(rows)
		return map[string]any{"low_stock": string(jsonBytes)}

	case "record_expense":
		amount, _ := call.Args["amount"].(float64)
		category, _ := call.Args["category"].(string)
		description, _ := call.Args["description"].(string)
		_, err := a.mgr.Dispatch(ledger.RecordTransactionCmd{Tx: models.Transaction{
			Type:        models.TxExpense,
			Category:    category,
			Amount:      decimal.NewFromFloat(amount),
			Description: description,
		}})
		if err != nil {
			return map[string]any{"status": "failed", "error": err.Error()}
		}
		return map[string]any{"status": "recorded", "amount": amount, "category": category}

	default:
		return map[string]any{"error": "unknown tool " + call.Name}
	}
}

func findFunctionCall(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			return &funcCall
		}
	}
	return nil
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
