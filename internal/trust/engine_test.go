package trust_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/bellastudio/booking-api/internal/db"
	infraRepo "github.com/bellastudio/booking-api/internal/infra/repository"
	"github.com/bellastudio/booking-api/internal/models"
	"github.com/bellastudio/booking-api/internal/retry"
	"github.com/bellastudio/booking-api/internal/trust"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func newEngine(t *testing.T, db *gorm.DB, cfg trust.Config) (*trust.Engine, trust.Repository) {
	t.Helper()

	ex := retry.NewExecutor(zap.NewNop())
	ex.BaseDelay = time.Millisecond
	ex.MaxDelay = 5 * time.Millisecond

	repo := infraRepo.NewTrustGormRepository(db)
	return trust.NewEngine(repo, ex, cfg, zap.NewNop()), repo
}

func seedClient(t *testing.T, db *gorm.DB, email string) *models.Client {
	t.Helper()

	client := models.Client{
		FirstName: "Ana",
		LastName:  "Souza",
		Email:     email,
		Phone:     "+55 11 98888-0001",
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	return &client
}

func seedAppointment(t *testing.T, db *gorm.DB, client *models.Client, slot time.Time) *models.Appointment {
	t.Helper()

	svc := models.Service{
		Category: models.Category{Name: fmt.Sprintf("Cat %s %d", t.Name(), slot.Unix())},
		Name:     "Cut",
		Price:    100,
		Active:   true,
	}
	if err := db.Create(&svc).Error; err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}

	ap := models.Appointment{
		ClientID:       client.ID,
		ServiceID:      svc.ID,
		ScheduledAt:    slot,
		IdempotencyKey: fmt.Sprintf("key-%s-%d-%d", t.Name(), svc.ID, slot.Unix()),
		Status:         "scheduled",
	}
	if err := db.Create(&ap).Error; err != nil {
		t.Fatalf("failed to seed appointment: %v", err)
	}
	return &ap
}

func pastSignal(client *models.Client, ap *models.Appointment) trust.Signal {
	return trust.Signal{
		Kind:          trust.SignalAppointmentCreated,
		ClientID:      client.ID,
		AppointmentID: ap.ID,
		ScheduledAt:   time.Now().UTC().Add(-time.Hour),
		OccurredAt:    time.Now().UTC(),
	}
}

func TestEngine_PastSlotRaisesPendingFlag(t *testing.T) {
	db := newTestDB(t)
	engine, repo := newEngine(t, db, trust.DefaultConfig())
	client := seedClient(t, db, "past@example.com")
	ap := seedAppointment(t, db, client, time.Now().UTC().Add(-time.Hour))

	if err := engine.HandleSignal(context.Background(), pastSignal(client, ap)); err != nil {
		t.Fatalf("signal handling failed: %v", err)
	}

	flags, err := repo.ListFlags(context.Background(), models.FlagStatusPending, client.ID)
	if err != nil {
		t.Fatalf("list flags failed: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	if flags[0].AutoFlagCount != 1 {
		t.Errorf("auto_flag_count = %d, want 1", flags[0].AutoFlagCount)
	}
}

func TestEngine_RepeatViolationIncrementsInsteadOfDuplicating(t *testing.T) {
	db := newTestDB(t)
	engine, repo := newEngine(t, db, trust.DefaultConfig())
	client := seedClient(t, db, "repeat@example.com")
	ap := seedAppointment(t, db, client, time.Now().UTC().Add(-time.Hour))

	for i := 0; i < 2; i++ {
		if err := engine.HandleSignal(context.Background(), pastSignal(client, ap)); err != nil {
			t.Fatalf("signal %d failed: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.ClientReviewFlag{}).Where("client_id = ?", client.ID).Count(&count)
	if count != 1 {
		t.Fatalf("flag rows = %d, want 1", count)
	}

	flags, _ := repo.ListFlags(context.Background(), "", client.ID)
	if flags[0].AutoFlagCount != 2 {
		t.Errorf("auto_flag_count = %d, want 2", flags[0].AutoFlagCount)
	}
}

func TestEngine_AutoBanAtThreshold(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newEngine(t, db, trust.Config{BanThreshold: 3})
	client := seedClient(t, db, "banned@example.com")

	past := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		ap := seedAppointment(t, db, client, past.Add(time.Duration(i)*time.Minute))
		if err := engine.HandleSignal(context.Background(), pastSignal(client, ap)); err != nil {
			t.Fatalf("signal %d failed: %v", i, err)
		}
	}

	banned, err := engine.IsClientBanned(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("derived ban check failed: %v", err)
	}
	if !banned {
		t.Errorf("client not banned after reaching the unresolved-flag threshold")
	}

	var bannedFlags int64
	db.Model(&models.ClientReviewFlag{}).
		Where("client_id = ? AND status = ?", client.ID, models.FlagStatusBanned).
		Count(&bannedFlags)
	if bannedFlags != 1 {
		t.Errorf("banned flags = %d, want 1 (siblings keep their own status)", bannedFlags)
	}
}

func TestEngine_BelowThresholdNotBanned(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newEngine(t, db, trust.Config{BanThreshold: 3})
	client := seedClient(t, db, "fine@example.com")

	past := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 2; i++ {
		ap := seedAppointment(t, db, client, past.Add(time.Duration(i)*time.Minute))
		if err := engine.HandleSignal(context.Background(), pastSignal(client, ap)); err != nil {
			t.Fatalf("signal %d failed: %v", i, err)
		}
	}

	banned, err := engine.IsClientBanned(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("derived ban check failed: %v", err)
	}
	if banned {
		t.Errorf("client banned below the threshold")
	}
}

func TestEngine_BookingVelocityRule(t *testing.T) {
	db := newTestDB(t)
	engine, repo := newEngine(t, db, trust.Config{
		BanThreshold: 10,
		Window:       24 * time.Hour,
		MaxInWindow:  2,
	})
	client := seedClient(t, db, "burst@example.com")

	future := time.Now().UTC().Add(48 * time.Hour)
	var last *models.Appointment
	for i := 0; i < 3; i++ {
		last = seedAppointment(t, db, client, future.Add(time.Duration(i)*time.Hour))
	}

	sig := trust.Signal{
		Kind:          trust.SignalAppointmentCreated,
		ClientID:      client.ID,
		AppointmentID: last.ID,
		ScheduledAt:   last.ScheduledAt,
		OccurredAt:    time.Now().UTC(),
	}
	if err := engine.HandleSignal(context.Background(), sig); err != nil {
		t.Fatalf("signal handling failed: %v", err)
	}

	flags, err := repo.ListFlags(context.Background(), models.FlagStatusPending, client.ID)
	if err != nil {
		t.Fatalf("list flags failed: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1 (velocity above window limit)", len(flags))
	}
}

func TestEngine_ContactBurstFlagsLatestAppointment(t *testing.T) {
	db := newTestDB(t)
	engine, repo := newEngine(t, db, trust.Config{
		BanThreshold:  10,
		ContactWindow: time.Hour,
		ContactBurst:  3,
	})
	client := seedClient(t, db, "noisy@example.com")
	ap := seedAppointment(t, db, client, time.Now().UTC().Add(48*time.Hour))

	for i := 0; i < 3; i++ {
		msg := models.ContactMessage{
			Name:    "Noisy",
			Email:   client.Email,
			Message: "hello again",
		}
		if err := db.Create(&msg).Error; err != nil {
			t.Fatalf("failed to seed contact message: %v", err)
		}
	}

	sig := trust.Signal{
		Kind:       trust.SignalContactSubmitted,
		Email:      client.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := engine.HandleSignal(context.Background(), sig); err != nil {
		t.Fatalf("signal handling failed: %v", err)
	}

	flags, err := repo.ListFlags(context.Background(), models.FlagStatusPending, client.ID)
	if err != nil {
		t.Fatalf("list flags failed: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	if flags[0].AppointmentID != ap.ID {
		t.Errorf("flag references appointment %d, want latest %d", flags[0].AppointmentID, ap.ID)
	}
}

func TestEngine_ContactBurstWithoutClientIsIgnored(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newEngine(t, db, trust.Config{ContactBurst: 1})

	msg := models.ContactMessage{
		Name:    "Stranger",
		Email:   "stranger@example.com",
		Message: "never booked anything",
	}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("failed to seed contact message: %v", err)
	}

	sig := trust.Signal{
		Kind:       trust.SignalContactSubmitted,
		Email:      "stranger@example.com",
		OccurredAt: time.Now().UTC(),
	}
	if err := engine.HandleSignal(context.Background(), sig); err != nil {
		t.Fatalf("signal handling failed: %v", err)
	}

	var count int64
	db.Model(&models.ClientReviewFlag{}).Count(&count)
	if count != 0 {
		t.Errorf("flags = %d, want 0", count)
	}
}
