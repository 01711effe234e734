package fixtures

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/shopspring/decimal"
)

var (
	TestStreet1 = model.Street{
		ID:   1,
		Name: "Pentekoste",
	}

	TestStreet2 = model.Street{
		ID:   2,
		Name: "Galilaya",
	}
)

func Pledges(ahadi, shukrani, majengo string) model.PledgeSet {
	return model.PledgeSet{
		Ahadi:    decimal.RequireFromString(ahadi),
		Shukrani: decimal.RequireFromString(shukrani),
		Majengo:  decimal.RequireFromString(majengo),
	}
}

func NewTestCard(streetID int64, number int, code string) *model.OfferingCard {
	return &model.OfferingCard{
		StreetID:  streetID,
		Number:    number,
		Code:      code,
		CreatedAt: time.Now(),
	}
}

func NewTestAssignment(cardID int64, memberID *int64, holder string, year int, pledges model.PledgeSet) *model.CardAssignment {
	return &model.CardAssignment{
		CardID:   cardID,
		MemberID: memberID,
		FullName: holder,
		Year:     year,
		Pledges:  pledges,
		Active:   true,
	}
}

func AssignRequest(cardID, memberID int64, year int) model.AssignRequest {
	return model.AssignRequest{
		CardID:   cardID,
		MemberID: &memberID,
		Year:     year,
		Pledges:  Pledges("120000", "50000", "30000"),
	}
}

func ApplicationRequest(memberID int64, year int, preferred *int) model.ApplicationCreateRequest {
	return model.ApplicationCreateRequest{
		MemberID:        memberID,
		Year:            year,
		PreferredNumber: preferred,
		Pledges:         Pledges("120000", "50000", "30000"),
	}
}

func EntryRequest(cardID int64, entryType, amount, serviceDate string) model.EntryCreateRequest {
	return model.EntryCreateRequest{
		CardID:      cardID,
		EntryType:   entryType,
		Amount:      decimal.RequireFromString(amount),
		ServiceDate: serviceDate,
		RecordedBy:  "test-clerk",
	}
}

func BatchRequest(streetID int64, serviceDate, massType string, entries ...model.BatchEntryInput) model.BatchCreateRequest {
	return model.BatchCreateRequest{
		StreetID:    streetID,
		ServiceDate: serviceDate,
		MassType:    massType,
		RecordedBy:  "test-clerk",
		Entries:     entries,
	}
}

func BatchEntry(cardID int64, entryType, amount string) model.BatchEntryInput {
	return model.BatchEntryInput{
		CardID:    cardID,
		EntryType: entryType,
		Amount:    decimal.RequireFromString(amount),
	}
}

var ValidEntryTypes = []string{
	model.EntryTypeAhadi,
	model.EntryTypeShukrani,
	model.EntryTypeMajengo,
}

var ValidMassTypes = []string{
	model.MassTypeMajor,
	model.MassTypeMorningGlory,
	model.MassTypeEveningGlory,
	model.MassTypeSeli,
}
