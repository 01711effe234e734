package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStreet(t *testing.T, db *testDB, name string) *StreetEntity {
	street := &StreetEntity{Name: name}
	require.NoError(t, db.rawDB.Create(street).Error)
	return street
}

func seedMember(t *testing.T, db *testDB, name, email string, streetID *int64) *MemberEntity {
	member := &MemberEntity{
		FullName: name,
		Email:    email,
		Role:     "CHURCH_MEMBER",
		StreetID: streetID,
	}
	require.NoError(t, db.rawDB.Create(member).Error)
	return member
}

func seedCard(t *testing.T, db *testDB, streetID int64, number int, code string) *CardEntity {
	card := &CardEntity{StreetID: streetID, Number: number, Code: code}
	require.NoError(t, db.rawDB.Create(card).Error)
	return card
}

func TestCardRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")

	t.Run("create card successfully", func(t *testing.T) {
		card := &model.OfferingCard{
			StreetID: street.ID,
			Number:   7,
			Code:     "PE-007",
		}

		created, err := repo.Create(ctx, card)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "PE-007", created.Code)
		assert.False(t, created.IsTaken)
	})

	t.Run("duplicate number on same street rejected", func(t *testing.T) {
		card := &model.OfferingCard{
			StreetID: street.ID,
			Number:   7,
			Code:     "PE-007-B",
		}

		created, err := repo.Create(ctx, card)
		assert.ErrorIs(t, err, ErrDuplicateCard)
		assert.Nil(t, created)
	})

	t.Run("same number allowed on another street", func(t *testing.T) {
		other := seedStreet(t, db, "Galilaya")
		card := &model.OfferingCard{
			StreetID: other.ID,
			Number:   7,
			Code:     "GA-007",
		}

		created, err := repo.Create(ctx, card)
		require.NoError(t, err)
		assert.Equal(t, "GA-007", created.Code)
	})
}

func TestCardRepository_GetByStreetAndNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	seedCard(t, db, street.ID, 12, "PE-012")

	card, err := repo.GetByStreetAndNumber(ctx, street.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, "PE-012", card.Code)

	_, err = repo.GetByStreetAndNumber(ctx, street.ID, 99)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestCardRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	for i := 1; i <= 5; i++ {
		seedCard(t, db, street.ID, i, codeFor("PE", i))
	}
	require.NoError(t, repo.SetOccupancy(ctx, 2, nil, true))

	t.Run("list all", func(t *testing.T) {
		cards, total, err := repo.List(ctx, model.CardFilter{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, cards, 5)
	})

	t.Run("filter by taken", func(t *testing.T) {
		taken := true
		cards, total, err := repo.List(ctx, model.CardFilter{Taken: &taken, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, cards, 1)
		assert.Equal(t, 2, cards[0].Number)
	})

	t.Run("search by code", func(t *testing.T) {
		cards, total, err := repo.List(ctx, model.CardFilter{Search: "pe-003", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, cards, 1)
		assert.Equal(t, "PE-003", cards[0].Code)
	})

	t.Run("pagination", func(t *testing.T) {
		cards, total, err := repo.List(ctx, model.CardFilter{Limit: 2, Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, cards, 2)
	})
}

func codeFor(prefix string, number int) string {
	return fmt.Sprintf("%s-%03d", prefix, number)
}

func TestCardRepository_FindAvailableNear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	seedCard(t, db, street.ID, 47, "PE-047")
	seedCard(t, db, street.ID, 48, "PE-048")
	seedCard(t, db, street.ID, 50, "PE-050")
	seedCard(t, db, street.ID, 53, "PE-053")
	taken := seedCard(t, db, street.ID, 51, "PE-051")
	require.NoError(t, repo.SetOccupancy(ctx, taken.ID, nil, true))

	numbers, err := repo.FindAvailableNear(ctx, street.ID, 50, 10, 5)
	require.NoError(t, err)

	// Closest first, ties resolved by the lower number. 51 is taken
	// and the wanted number itself is excluded.
	assert.Equal(t, []int{48, 47, 53}, numbers)
}

func TestCardRepository_GetFreeForYear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	member := seedMember(t, db, "Neema Mushi", "neema@example.com", &street.ID)
	card := seedCard(t, db, street.ID, 7, "PE-007")

	t.Run("free card is returned", func(t *testing.T) {
		got, err := repo.GetFreeForYear(ctx, &street.ID, 7, 2026)
		require.NoError(t, err)
		assert.Equal(t, card.ID, got.ID)
	})

	t.Run("card assigned for the year is not free", func(t *testing.T) {
		assignment := &AssignmentEntity{CardID: card.ID, MemberID: &member.ID, FullName: member.FullName, Year: 2026, Active: true}
		require.NoError(t, db.rawDB.Create(assignment).Error)

		_, err := repo.GetFreeForYear(ctx, &street.ID, 7, 2026)
		assert.ErrorIs(t, err, ErrCardNotFound)
	})

	t.Run("assignment in another year does not block", func(t *testing.T) {
		got, err := repo.GetFreeForYear(ctx, &street.ID, 7, 2027)
		require.NoError(t, err)
		assert.Equal(t, card.ID, got.ID)
	})
}

func TestCardRepository_FirstFreeForYear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	home := seedStreet(t, db, "Pentekoste")
	other := seedStreet(t, db, "Galilaya")
	member := seedMember(t, db, "Neema Mushi", "neema@example.com", &home.ID)

	homeCard := seedCard(t, db, home.ID, 5, "PE-005")
	otherCard := seedCard(t, db, other.ID, 1, "GA-001")

	t.Run("lowest number on the street wins", func(t *testing.T) {
		got, err := repo.FirstFreeForYear(ctx, &home.ID, 2026)
		require.NoError(t, err)
		assert.Equal(t, homeCard.ID, got.ID)
	})

	t.Run("exhausted street never borrows from another", func(t *testing.T) {
		assignment := &AssignmentEntity{CardID: homeCard.ID, MemberID: &member.ID, FullName: member.FullName, Year: 2026, Active: true}
		require.NoError(t, db.rawDB.Create(assignment).Error)

		// GA-001 is still free, but the search is scoped to Pentekoste.
		_, err := repo.FirstFreeForYear(ctx, &home.ID, 2026)
		assert.ErrorIs(t, err, ErrNoFreeCard)
	})

	t.Run("unscoped search covers every street", func(t *testing.T) {
		got, err := repo.FirstFreeForYear(ctx, nil, 2026)
		require.NoError(t, err)
		assert.Equal(t, otherCard.ID, got.ID)
	})
}

func TestCardRepository_SetOccupancy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	member := seedMember(t, db, "Neema Mushi", "neema@example.com", &street.ID)
	card := seedCard(t, db, street.ID, 1, "PE-001")

	t.Run("taking records the holder", func(t *testing.T) {
		require.NoError(t, repo.SetOccupancy(ctx, card.ID, &member.ID, true))

		got, err := repo.GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.True(t, got.IsTaken)
		require.NotNil(t, got.AssignedMemberID)
		assert.Equal(t, member.ID, *got.AssignedMemberID)
		assert.NotNil(t, got.AssignedAt)
	})

	t.Run("freeing clears the holder", func(t *testing.T) {
		require.NoError(t, repo.SetOccupancy(ctx, card.ID, nil, false))

		got, err := repo.GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.False(t, got.IsTaken)
		assert.Nil(t, got.AssignedMemberID)
		assert.Nil(t, got.AssignedAt)
	})

	t.Run("unknown card", func(t *testing.T) {
		err := repo.SetOccupancy(ctx, 999, nil, true)
		assert.ErrorIs(t, err, ErrCardNotFound)
	})
}

func TestCardRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db.DB)
	ctx := context.Background()

	street := seedStreet(t, db, "Pentekoste")
	other := seedStreet(t, db, "Galilaya")
	seedCard(t, db, street.ID, 1, "PE-001")
	c2 := seedCard(t, db, street.ID, 2, "PE-002")
	seedCard(t, db, other.ID, 1, "GA-001")
	require.NoError(t, repo.SetOccupancy(ctx, c2.ID, nil, true))

	total, taken, err := repo.Counts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), taken)

	total, taken, err = repo.Counts(ctx, &other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(0), taken)
}
