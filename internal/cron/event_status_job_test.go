package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/davidquint/raffle-backend/pkg/outbox"
)

type stubEventStatusRepo struct {
	dueActivation []models.RaffleEvent
	dueCompletion []models.RaffleEvent
	updateErrs    map[uuid.UUID]error
	updated       map[uuid.UUID]enums.EventStatus
}

func newStubEventStatusRepo() *stubEventStatusRepo {
	return &stubEventStatusRepo{
		updateErrs: map[uuid.UUID]error{},
		updated:    map[uuid.UUID]enums.EventStatus{},
	}
}

func (s *stubEventStatusRepo) FindDueForActivation(ctx context.Context, now time.Time) ([]models.RaffleEvent, error) {
	return s.dueActivation, nil
}

func (s *stubEventStatusRepo) FindDueForCompletion(ctx context.Context, now time.Time) ([]models.RaffleEvent, error) {
	return s.dueCompletion, nil
}

func (s *stubEventStatusRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error {
	if err := s.updateErrs[id]; err != nil {
		return err
	}
	s.updated[id] = status
	return nil
}

type stubEventOutbox struct {
	emitted []outbox.DomainEvent
}

func (s *stubEventOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.emitted = append(s.emitted, event)
	return nil
}

func cronTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func buildEventStatusJob(t *testing.T, repo *stubEventStatusRepo, emitter *stubEventOutbox) Job {
	t.Helper()
	job, err := NewEventStatusJob(EventStatusJobParams{
		Logger:     cronTestLogger(),
		DB:         &gorm.DB{},
		Repository: repo,
		Outbox:     emitter,
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}
	return job
}

func TestEventStatusJobActivatesAndCompletes(t *testing.T) {
	repo := newStubEventStatusRepo()
	emitter := &stubEventOutbox{}
	job := buildEventStatusJob(t, repo, emitter)

	toActivate := models.RaffleEvent{ID: uuid.New(), Name: "Fall Fundraiser", Status: enums.EventStatusScheduled}
	toComplete := models.RaffleEvent{ID: uuid.New(), Name: "Spring Fundraiser", Status: enums.EventStatusActive}
	repo.dueActivation = []models.RaffleEvent{toActivate}
	repo.dueCompletion = []models.RaffleEvent{toComplete}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.updated[toActivate.ID] != enums.EventStatusActive {
		t.Fatalf("expected activation, got %s", repo.updated[toActivate.ID])
	}
	if repo.updated[toComplete.ID] != enums.EventStatusCompleted {
		t.Fatalf("expected completion, got %s", repo.updated[toComplete.ID])
	}
	if len(emitter.emitted) != 2 {
		t.Fatalf("expected two outbox events, got %d", len(emitter.emitted))
	}
	if emitter.emitted[0].EventType != enums.EventRaffleEventActivated {
		t.Fatalf("unexpected first event %s", emitter.emitted[0].EventType)
	}
	if emitter.emitted[1].EventType != enums.EventRaffleEventCompleted {
		t.Fatalf("unexpected second event %s", emitter.emitted[1].EventType)
	}
}

func TestEventStatusJobContinuesPastFailures(t *testing.T) {
	repo := newStubEventStatusRepo()
	emitter := &stubEventOutbox{}
	job := buildEventStatusJob(t, repo, emitter)

	broken := models.RaffleEvent{ID: uuid.New(), Status: enums.EventStatusScheduled}
	healthy := models.RaffleEvent{ID: uuid.New(), Status: enums.EventStatusScheduled}
	repo.dueActivation = []models.RaffleEvent{broken, healthy}
	repo.updateErrs[broken.ID] = errors.New("update failed")

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected the failure to surface")
	}
	if repo.updated[healthy.ID] != enums.EventStatusActive {
		t.Fatal("a failing event must not block the rest of the batch")
	}
}

func TestEventStatusJobNoWorkIsQuiet(t *testing.T) {
	job := buildEventStatusJob(t, newStubEventStatusRepo(), &stubEventOutbox{})
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("empty run should succeed, got %v", err)
	}
}
