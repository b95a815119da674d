package view

import (
	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func accountRecord(id, name, code, branch, rep, wsType, debit, credit string) domain.Record {
	return domain.Record{
		WorkshopID:   id,
		WorkshopName: name,
		Code:         code,
		WorkshopType: wsType,
		Branch:       branch,
		BranchName:   branch + " Branch",
		SalesRep:     rep,
		Values: map[string]decimal.Decimal{
			"debit":  dec(debit),
			"credit": dec(credit),
		},
	}
}

func sampleAccounts() []domain.Record {
	return []domain.Record{
		accountRecord("w1", "Acme Motors", "A-001", "North", "Rina", "Dealer", "100.50", "20"),
		accountRecord("w2", "Bolt Garage", "B-002", "South", "Budi", "Retail", "50", "5.25"),
		accountRecord("w3", "Crank Works", "C-003", "North", "Budi", "Dealer", "10", "0"),
		accountRecord("w1", "Acme Motors", "A-001", "North", "Rina", "Dealer", "1.10", "1"),
	}
}
