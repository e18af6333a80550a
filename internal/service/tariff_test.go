package service

import "testing"

func TestTariffBill(t *testing.T) {
	tariff := Tariff{CostPerKWh: 2500, CostPerMinute: 100, AdminFee: 2000}

	bill := tariff.Bill(5, 30)
	if bill.CostTotal != 15500 {
		t.Fatalf("expected cost total 15500, got %v", bill.CostTotal)
	}
	if bill.BillingTotal != 17500 {
		t.Fatalf("expected billing total 17500, got %v", bill.BillingTotal)
	}
}

func TestTariffBillZeroInputs(t *testing.T) {
	tariff := Tariff{CostPerKWh: 2500, CostPerMinute: 100, AdminFee: 2000}

	bill := tariff.Bill(0, 0)
	if bill.CostTotal != 0 {
		t.Fatalf("expected zero cost total, got %v", bill.CostTotal)
	}
	if bill.BillingTotal != 2000 {
		t.Fatalf("expected billing total to equal admin fee, got %v", bill.BillingTotal)
	}
}

func TestTariffBillNegativeInputsPassThrough(t *testing.T) {
	tariff := Tariff{CostPerKWh: 1000, CostPerMinute: 10, AdminFee: 500}

	bill := tariff.Bill(-2, -10)
	if bill.CostTotal != -2100 {
		t.Fatalf("expected cost total -2100, got %v", bill.CostTotal)
	}
}

func TestRounding(t *testing.T) {
	if got := round2(60.004999); got != 60.0 {
		t.Fatalf("round2: expected 60.0, got %v", got)
	}
	if got := round2(12.346); got != 12.35 {
		t.Fatalf("round2: expected 12.35, got %v", got)
	}
	if got := round3(6.999501); got != 7.0 {
		t.Fatalf("round3: expected 7.0, got %v", got)
	}
}
