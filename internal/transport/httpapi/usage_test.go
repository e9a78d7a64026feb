package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUsage_DayDefault(t *testing.T) {
	env := newTestEnv(t)
	env.budget.dailyLimit = 1000
	env.budget.dailyUsed = 400
	env.budget.remainingDaily = 600
	env.budget.dailyReqs = 3

	rr := env.do(httptest.NewRequest("GET", "/api/v1/usage", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody[usageResponse](t, rr)
	if resp.Period != "day" {
		t.Errorf("period = %q, want day", resp.Period)
	}
	if resp.Usage.Tokens != 400 || resp.Usage.OracleRequests != 3 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Budget.TokensLimit != 1000 || resp.Budget.TokensRemaining != 600 {
		t.Errorf("budget = %+v", resp.Budget)
	}
	if resp.Budget.IsExhausted {
		t.Error("budget must not be exhausted")
	}
	if resp.PeriodStartAt == nil || resp.PeriodEndAt == nil {
		t.Fatal("expected period bounds for day")
	}
	if !resp.PeriodEndAt.After(*resp.PeriodStartAt) {
		t.Errorf("period end %v must follow start %v", resp.PeriodEndAt, resp.PeriodStartAt)
	}
	if resp.Budget.ResetsAt == nil {
		t.Error("expected resets_at for day")
	}
}

func TestUsage_Month(t *testing.T) {
	env := newTestEnv(t)
	env.budget.monthlyLimit = 50000
	env.budget.monthlyUsed = 12000
	env.budget.remainingMonthly = 38000
	env.budget.monthlyReqs = 87

	rr := env.do(httptest.NewRequest("GET", "/api/v1/usage?period=month", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeBody[usageResponse](t, rr)
	if resp.Period != "month" {
		t.Errorf("period = %q, want month", resp.Period)
	}
	if resp.Usage.Tokens != 12000 || resp.Usage.OracleRequests != 87 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestUsage_Total_NoBounds(t *testing.T) {
	env := newTestEnv(t)
	env.budget.monthlyUsed = 9000
	env.budget.monthlyReqs = 64

	rr := env.do(httptest.NewRequest("GET", "/api/v1/usage?period=total", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeBody[usageResponse](t, rr)
	if resp.Period != "total" {
		t.Errorf("period = %q, want total", resp.Period)
	}
	if resp.PeriodStartAt != nil || resp.PeriodEndAt != nil {
		t.Error("total period must carry no bounds")
	}
	if resp.Budget.ResetsAt != nil {
		t.Error("total period must carry no resets_at")
	}
	if resp.Usage.Tokens != 9000 {
		t.Errorf("tokens = %d, want 9000", resp.Usage.Tokens)
	}
}

func TestUsage_Exhausted(t *testing.T) {
	env := newTestEnv(t)
	env.budget.dailyLimit = 100
	env.budget.dailyUsed = 100
	env.budget.remainingDaily = 0

	rr := env.do(httptest.NewRequest("GET", "/api/v1/usage?period=day", http.NoBody))
	resp := decodeBody[usageResponse](t, rr)
	if !resp.Budget.IsExhausted {
		t.Error("expected exhausted budget")
	}
}

func TestUsage_BadPeriod_400(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest("GET", "/api/v1/usage?period=week", http.NoBody))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeValidationFailed {
		t.Errorf("code = %q, want %q", resp.Code, codeValidationFailed)
	}
}
