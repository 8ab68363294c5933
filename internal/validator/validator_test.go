package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/phenrril/psucalc/internal/domain"
)

func intp(v int) *int { return &v }

func TestEstimateRequestRanges(t *testing.T) {
	val := New()

	ok := domain.EstimateRequest{CPU: "i5", RAMModules: intp(4), MarginPct: intp(10)}
	if err := val.Struct(ok); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if err := val.Struct(domain.EstimateRequest{}); err != nil {
		t.Fatalf("defaults must be valid, got %v", err)
	}

	bad := domain.EstimateRequest{RAMModules: intp(0), MarginPct: intp(51)}
	err := val.Struct(bad)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	if fields["ram_modules"] != "min" || fields["power_margin"] != "max" {
		t.Fatalf("unexpected field errors: %+v", verr.Fields)
	}
	if !strings.Contains(err.Error(), "power_margin: max=50") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestEstimateRequestStorageLimit(t *testing.T) {
	val := New()
	req := domain.EstimateRequest{Storages: make([]string, 17)}
	if err := val.Struct(req); err == nil {
		t.Fatalf("expected too many storages to fail")
	}
}
