package model

import "github.com/shopspring/decimal"

// PledgeSet groups the three pledge lines a card assignment carries.
// Ahadi is the general annual pledge, shukrani the thanksgiving pledge
// and majengo the building-fund pledge.
type PledgeSet struct {
	Ahadi    decimal.Decimal `json:"ahadi"`
	Shukrani decimal.Decimal `json:"shukrani"`
	Majengo  decimal.Decimal `json:"majengo"`
}

func (p PledgeSet) Total() decimal.Decimal {
	return p.Ahadi.Add(p.Shukrani).Add(p.Majengo)
}

func (p PledgeSet) IsZero() bool {
	return p.Ahadi.IsZero() && p.Shukrani.IsZero() && p.Majengo.IsZero()
}

// Valid reports whether no pledge line is negative.
func (p PledgeSet) Valid() bool {
	return p.Ahadi.Sign() >= 0 && p.Shukrani.Sign() >= 0 && p.Majengo.Sign() >= 0
}
