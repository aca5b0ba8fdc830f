package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
)

type stubEventsRepo struct {
	events       map[uuid.UUID]*models.RaffleEvent
	settings     map[uuid.UUID]*models.EventSettings
	current      *models.RaffleEvent
	lastUpdates  map[string]any
	savedSetting *models.EventSettings
}

func newStubEventsRepo() *stubEventsRepo {
	return &stubEventsRepo{
		events:   map[uuid.UUID]*models.RaffleEvent{},
		settings: map[uuid.UUID]*models.EventSettings{},
	}
}

func (s *stubEventsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubEventsRepo) Create(ctx context.Context, event *models.RaffleEvent) (*models.RaffleEvent, error) {
	event.ID = uuid.New()
	s.events[event.ID] = event
	return event, nil
}

func (s *stubEventsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.RaffleEvent, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return event, nil
}

func (s *stubEventsRepo) FindCurrent(ctx context.Context, now time.Time) (*models.RaffleEvent, error) {
	if s.current == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.current, nil
}

func (s *stubEventsRepo) List(ctx context.Context) ([]models.RaffleEvent, error) {
	out := make([]models.RaffleEvent, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, *event)
	}
	return out, nil
}

func (s *stubEventsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.lastUpdates = updates
	return nil
}

func (s *stubEventsRepo) FindSettings(ctx context.Context, eventID uuid.UUID) (*models.EventSettings, error) {
	settings, ok := s.settings[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return settings, nil
}

func (s *stubEventsRepo) UpsertSettings(ctx context.Context, settings *models.EventSettings) error {
	s.settings[settings.EventID] = settings
	s.savedSetting = settings
	return nil
}

func (s *stubEventsRepo) FindDueForActivation(ctx context.Context, now time.Time) ([]models.RaffleEvent, error) {
	return nil, nil
}

func (s *stubEventsRepo) FindDueForCompletion(ctx context.Context, now time.Time) ([]models.RaffleEvent, error) {
	return nil, nil
}

func (s *stubEventsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error {
	return nil
}

func buildEventsService(t *testing.T, repo *stubEventsRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedEvent(repo *stubEventsRepo) *models.RaffleEvent {
	event := &models.RaffleEvent{
		ID:        uuid.New(),
		Name:      "Fall Fundraiser",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		Status:    enums.EventStatusActive,
	}
	repo.events[event.ID] = event
	return event
}

func TestCurrentMapsMissingEvent(t *testing.T) {
	svc := buildEventsService(t, newStubEventsRepo())

	_, err := svc.Current(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != "no active event" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	repo := newStubEventsRepo()
	svc := buildEventsService(t, repo)

	created, err := svc.Create(context.Background(), CreateEventInput{
		Name:      "Fall Fundraiser",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != enums.EventStatusDraft {
		t.Fatalf("expected draft default, got %s", created.Status)
	}
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	svc := buildEventsService(t, newStubEventsRepo())

	_, err := svc.Create(context.Background(), CreateEventInput{
		Name:      "Backwards",
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "end date must be after start date" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := buildEventsService(t, newStubEventsRepo())

	_, err := svc.Create(context.Background(), CreateEventInput{
		Name:      "Fall Fundraiser",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(time.Hour),
		Status:    enums.EventStatus("archived"),
	})
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateValidatesMergedWindow(t *testing.T) {
	repo := newStubEventsRepo()
	svc := buildEventsService(t, repo)
	event := seedEvent(repo)

	badEnd := event.StartDate.Add(-time.Hour)
	_, err := svc.Update(context.Background(), event.ID, UpdateEventInput{EndDate: &badEnd})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("moving the end before the existing start must fail, got %v", err)
	}
}

func TestUpdateNoFieldsIsANoOp(t *testing.T) {
	repo := newStubEventsRepo()
	svc := buildEventsService(t, repo)
	event := seedEvent(repo)

	got, err := svc.Update(context.Background(), event.ID, UpdateEventInput{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != event.ID {
		t.Fatal("expected the unchanged event back")
	}
	if repo.lastUpdates != nil {
		t.Fatal("no write expected for an empty update")
	}
}

func TestUpsertSettingsRequiresEvent(t *testing.T) {
	svc := buildEventsService(t, newStubEventsRepo())

	_, err := svc.UpsertSettings(context.Background(), uuid.New(), SettingsInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetHeaderImageCreatesSettingsOnDemand(t *testing.T) {
	repo := newStubEventsRepo()
	svc := buildEventsService(t, repo)
	event := seedEvent(repo)

	settings, err := svc.SetHeaderImage(context.Background(), event.ID, "https://cdn.example.com/header.png")
	if err != nil {
		t.Fatalf("set header image: %v", err)
	}
	if settings.HeaderImageURL == nil || *settings.HeaderImageURL != "https://cdn.example.com/header.png" {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if repo.savedSetting == nil || repo.savedSetting.EventID != event.ID {
		t.Fatal("settings row should be created for the event")
	}
}

func TestSetHeaderImagePreservesExistingFlags(t *testing.T) {
	repo := newStubEventsRepo()
	svc := buildEventsService(t, repo)
	event := seedEvent(repo)
	repo.settings[event.ID] = &models.EventSettings{
		EventID:                  event.ID,
		AllowInternationalOrders: true,
	}

	settings, err := svc.SetHeaderImage(context.Background(), event.ID, "https://cdn.example.com/header.png")
	if err != nil {
		t.Fatalf("set header image: %v", err)
	}
	if !settings.AllowInternationalOrders {
		t.Fatal("existing policy flags must survive a header change")
	}
}

func TestSetHeaderImageRequiresURL(t *testing.T) {
	svc := buildEventsService(t, newStubEventsRepo())

	_, err := svc.SetHeaderImage(context.Background(), uuid.New(), "")
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
}
