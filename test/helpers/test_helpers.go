package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/makonda/offering-cards/internal/repository"
	"github.com/makonda/offering-cards/pkg/pg"
	"github.com/makonda/offering-cards/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.StreetEntity{},
		&repository.MemberEntity{},
		&repository.CardEntity{},
		&repository.AssignmentEntity{},
		&repository.ApplicationEntity{},
		&repository.WindowEntity{},
		&repository.BatchEntity{},
		&repository.EntryEntity{},
		&repository.ActivityEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	adapter, err := redis.NewRedisAdapter("test", "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestStreet(t *testing.T, db *pg.DB, name string) *repository.StreetEntity {
	ctx := context.Background()
	street := &repository.StreetEntity{
		Name: name,
	}
	err := db.Write(ctx).Create(street).Error
	require.NoError(t, err)
	return street
}

func CreateTestMember(t *testing.T, db *pg.DB, name, email, phone string, streetID *int64) *repository.MemberEntity {
	ctx := context.Background()
	member := &repository.MemberEntity{
		FullName:    name,
		Email:       email,
		PhoneNumber: phone,
		StreetID:    streetID,
		Role:        "CHURCH_MEMBER",
	}
	err := db.Write(ctx).Create(member).Error
	require.NoError(t, err)
	return member
}

func CreateTestCard(t *testing.T, db *pg.DB, streetID int64, number int, code string) *repository.CardEntity {
	ctx := context.Background()
	card := &repository.CardEntity{
		StreetID: streetID,
		Number:   number,
		Code:     code,
	}
	err := db.Write(ctx).Create(card).Error
	require.NoError(t, err)
	return card
}

func CreateTestAssignment(t *testing.T, db *pg.DB, card *repository.CardEntity, member *repository.MemberEntity, year int, ahadi string) *repository.AssignmentEntity {
	ctx := context.Background()
	assignment := &repository.AssignmentEntity{
		CardID:      card.ID,
		MemberID:    &member.ID,
		FullName:    member.FullName,
		PhoneNumber: member.PhoneNumber,
		Year:        year,
		AhadiPledge: decimal.RequireFromString(ahadi),
		Active:      true,
	}
	err := db.Write(ctx).Create(assignment).Error
	require.NoError(t, err)
	return assignment
}

func CreateTestEntry(t *testing.T, db *pg.DB, cardID int64, entryType, amount string, serviceDate time.Time) *repository.EntryEntity {
	ctx := context.Background()
	entry := &repository.EntryEntity{
		CardID:      cardID,
		EntryType:   entryType,
		Amount:      decimal.RequireFromString(amount),
		ServiceDate: serviceDate,
		RecordedBy:  "test",
	}
	err := db.Write(ctx).Create(entry).Error
	require.NoError(t, err)
	return entry
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
