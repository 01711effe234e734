package repository

import (
	"context"
	"testing"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntry(t *testing.T, db *testDB, cardID int64, entryType, amount string, serviceDate time.Time) *EntryEntity {
	entry := &EntryEntity{
		CardID:      cardID,
		EntryType:   entryType,
		Amount:      decimal.RequireFromString(amount),
		ServiceDate: serviceDate,
		RecordedBy:  "clerk",
	}
	require.NoError(t, db.rawDB.Create(entry).Error)
	return entry
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestOfferingRepository_CreateEntry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferingRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	card := seedCard(t, db, street.ID, 7, "PE-007")

	created, err := repo.CreateEntry(ctx, &model.OfferingEntry{
		CardID:      card.ID,
		EntryType:   model.EntryTypeAhadi,
		Amount:      decimal.RequireFromString("10000"),
		ServiceDate: date(2026, time.March, 1),
		RecordedBy:  "clerk",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.GetEntry(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EntryTypeAhadi, got.EntryType)
	require.NotNil(t, got.Card)
	assert.Equal(t, "PE-007", got.Card.Code)

	_, err = repo.GetEntry(ctx, 999)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestOfferingRepository_SumsByCard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferingRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	card := seedCard(t, db, street.ID, 7, "PE-007")

	seedEntry(t, db, card.ID, model.EntryTypeAhadi, "10000", date(2026, time.February, 1))
	seedEntry(t, db, card.ID, model.EntryTypeAhadi, "5000", date(2026, time.March, 1))
	seedEntry(t, db, card.ID, model.EntryTypeShukrani, "2000", date(2026, time.March, 1))
	// Previous year, must not count.
	seedEntry(t, db, card.ID, model.EntryTypeAhadi, "99999", date(2025, time.December, 31))

	sums, err := repo.SumsByCard(ctx, card.ID, 2026)
	require.NoError(t, err)
	assert.True(t, sums.Ahadi.Equal(decimal.RequireFromString("15000")))
	assert.True(t, sums.Shukrani.Equal(decimal.RequireFromString("2000")))
	assert.True(t, sums.Majengo.IsZero())
}

func TestOfferingRepository_SumsByCards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferingRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	c1 := seedCard(t, db, street.ID, 1, "PE-001")
	c2 := seedCard(t, db, street.ID, 2, "PE-002")

	seedEntry(t, db, c1.ID, model.EntryTypeAhadi, "10000", date(2026, time.February, 1))
	seedEntry(t, db, c2.ID, model.EntryTypeMajengo, "3000", date(2026, time.February, 8))

	sums, err := repo.SumsByCards(ctx, []int64{c1.ID, c2.ID}, 2026)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.True(t, sums[c1.ID].Ahadi.Equal(decimal.RequireFromString("10000")))
	assert.True(t, sums[c2.ID].Majengo.Equal(decimal.RequireFromString("3000")))

	empty, err := repo.SumsByCards(ctx, nil, 2026)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOfferingRepository_CollectedTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferingRepository(db.DB)
	ctx := context.Background()

	street1 := seedStreet(t, db, "Pentekoste")
	street2 := seedStreet(t, db, "Galilaya")
	c1 := seedCard(t, db, street1.ID, 1, "PE-001")
	c2 := seedCard(t, db, street2.ID, 1, "GA-001")

	seedEntry(t, db, c1.ID, model.EntryTypeAhadi, "10000", date(2026, time.February, 1))
	seedEntry(t, db, c2.ID, model.EntryTypeAhadi, "7000", date(2026, time.February, 1))

	t.Run("all streets", func(t *testing.T) {
		totals, err := repo.CollectedTotals(ctx, 2026, nil)
		require.NoError(t, err)
		assert.True(t, totals.Ahadi.Equal(decimal.RequireFromString("17000")))
	})

	t.Run("single street", func(t *testing.T) {
		totals, err := repo.CollectedTotals(ctx, 2026, &street2.ID)
		require.NoError(t, err)
		assert.True(t, totals.Ahadi.Equal(decimal.RequireFromString("7000")))
	})
}

func TestOfferingRepository_ActiveCardCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferingRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	c1 := seedCard(t, db, street.ID, 1, "PE-001")
	c2 := seedCard(t, db, street.ID, 2, "PE-002")
	seedCard(t, db, street.ID, 3, "PE-003")

	seedEntry(t, db, c1.ID, model.EntryTypeAhadi, "1000", date(2026, time.February, 1))
	seedEntry(t, db, c1.ID, model.EntryTypeAhadi, "1000", date(2026, time.March, 1))
	seedEntry(t, db, c2.ID, model.EntryTypeShukrani, "500", date(2026, time.March, 1))

	count, err := repo.ActiveCardCount(ctx, 2026, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	other := seedStreet(t, db, "Galilaya")
	count, err = repo.ActiveCardCount(ctx, 2026, &other.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOfferingRepository_LeastActiveCard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferingRepository(db.DB)
	ctx := context.Background()

	t.Run("no entries at all", func(t *testing.T) {
		code, err := repo.LeastActiveCard(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, code)
	})

	street1 := seedStreet(t, db, "Pentekoste")
	street2 := seedStreet(t, db, "Galilaya")
	c1 := seedCard(t, db, street1.ID, 1, "PE-001")
	c2 := seedCard(t, db, street1.ID, 2, "PE-002")
	c3 := seedCard(t, db, street2.ID, 1, "GA-001")
	// PE-003 has no entries and never competes.
	seedCard(t, db, street1.ID, 3, "PE-003")

	seedEntry(t, db, c1.ID, model.EntryTypeAhadi, "10000", date(2026, time.February, 1))
	seedEntry(t, db, c2.ID, model.EntryTypeAhadi, "500", date(2025, time.June, 1))
	seedEntry(t, db, c2.ID, model.EntryTypeShukrani, "500", date(2026, time.February, 1))
	seedEntry(t, db, c3.ID, model.EntryTypeAhadi, "2000", date(2026, time.February, 1))

	t.Run("minimum lifetime sum wins", func(t *testing.T) {
		code, err := repo.LeastActiveCard(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "PE-002", code)
	})

	t.Run("street scoped", func(t *testing.T) {
		code, err := repo.LeastActiveCard(ctx, &street2.ID)
		require.NoError(t, err)
		assert.Equal(t, "GA-001", code)
	})

	t.Run("tie broken by lowest card id", func(t *testing.T) {
		// Bring PE-002 up to the same lifetime sum as GA-001.
		seedEntry(t, db, c2.ID, model.EntryTypeMajengo, "1000", date(2026, time.March, 1))
		code, err := repo.LeastActiveCard(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "PE-002", code)
	})
}

func TestOfferingRepository_EntriesForMember(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferingRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	member := seedMember(t, db, "Neema Mushi", "neema@example.com", &street.ID)
	other := seedMember(t, db, "Baraka John", "baraka@example.com", &street.ID)
	card := seedCard(t, db, street.ID, 7, "PE-007")
	otherCard := seedCard(t, db, street.ID, 8, "PE-008")

	assignment := &AssignmentEntity{CardID: card.ID, MemberID: &member.ID, FullName: member.FullName, Year: 2026, Active: true}
	require.NoError(t, db.rawDB.Create(assignment).Error)
	otherAssignment := &AssignmentEntity{CardID: otherCard.ID, MemberID: &other.ID, FullName: other.FullName, Year: 2026, Active: true}
	require.NoError(t, db.rawDB.Create(otherAssignment).Error)

	seedEntry(t, db, card.ID, model.EntryTypeAhadi, "10000", date(2026, time.February, 1))
	seedEntry(t, db, card.ID, model.EntryTypeShukrani, "2000", date(2026, time.March, 1))
	seedEntry(t, db, otherCard.ID, model.EntryTypeAhadi, "5000", date(2026, time.February, 1))

	items, err := repo.EntriesForMember(ctx, member.ID, 2026)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first.
	assert.Equal(t, model.EntryTypeShukrani, items[0].EntryType)
	assert.Equal(t, "PE-007", items[0].CardCode)
	assert.Equal(t, model.EntryTypeAhadi, items[1].EntryType)
}
