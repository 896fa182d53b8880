package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"takeaway-backend/models"
)

type HoursSource interface {
	GetOpeningHours(ctx context.Context, dayOfWeek int) ([]models.OpeningHours, error)
	GetHolidays(ctx context.Context, date string) ([]models.Holiday, error)
}

type ConfigLoader interface {
	GetStoreConfig(ctx context.Context, id uuid.UUID) (*models.StoreConfig, error)
}

// Service resolves "now" in the store's time zone, loads the store's hours and
// holidays and runs the calculator over them. It never returns an error;
// lookup failures come back as a closed status or an empty slot list.
type Service struct {
	hours   HoursSource
	configs ConfigLoader
	storeID uuid.UUID
	loc     *time.Location
	clock   func() time.Time
	logger  *zap.Logger
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func NewService(hours HoursSource, configs ConfigLoader, storeID uuid.UUID, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		hours:   hours,
		configs: configs,
		storeID: storeID,
		loc:     loc,
		clock:   time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the current wall-clock time at the store.
func (s *Service) Now() time.Time {
	return s.clock().In(s.loc)
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) IsOpen(ctx context.Context) Status {
	now := s.Now()

	hours, holidays, err := s.load(ctx, now)
	if err != nil {
		s.logger.Error("failed to load opening hours", zap.Time("now", now), zap.Error(err))
		return Status{IsOpen: false, Reason: ReasonHoursUnavailable}
	}
	return IsOpenNow(hours, holidays, now)
}

func (s *Service) CollectionTimes(ctx context.Context, date string) Slots {
	return s.slots(ctx, date, models.ModeCollection)
}

func (s *Service) DeliveryTimes(ctx context.Context, date string) Slots {
	return s.slots(ctx, date, models.ModeDelivery)
}

func (s *Service) slots(ctx context.Context, date string, mode models.FulfilmentMode) Slots {
	day, err := ParseDate(date, s.loc)
	if err != nil {
		return Slots{Times: []string{}, Reason: ReasonInvalidDate}
	}

	cfg, err := s.configs.GetStoreConfig(ctx, s.storeID)
	if err != nil || cfg == nil {
		s.logger.Error("failed to load store configuration", zap.Stringer("store_id", s.storeID), zap.Error(err))
		return Slots{Times: []string{}, Reason: ReasonHoursUnavailable}
	}

	hours, holidays, err := s.load(ctx, day)
	if err != nil {
		s.logger.Error("failed to load opening hours", zap.String("date", date), zap.Error(err))
		return Slots{Times: []string{}, Reason: ReasonHoursUnavailable}
	}

	lead, buffer := cfg.CollectionLeadTimeMinutes, cfg.CollectionBufferMinutes
	if mode == models.ModeDelivery {
		lead, buffer = cfg.DeliveryLeadTimeMinutes, cfg.DeliveryBufferMinutes
	}
	return AvailableSlots(hours, holidays, day, lead, buffer, s.Now())
}

func (s *Service) load(ctx context.Context, day time.Time) ([]models.OpeningHours, []models.Holiday, error) {
	var (
		hours    []models.OpeningHours
		holidays []models.Holiday
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hours, err = s.hours.GetOpeningHours(gctx, int(day.Weekday()))
		return err
	})
	g.Go(func() error {
		var err error
		holidays, err = s.hours.GetHolidays(gctx, DateKey(day))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return hours, holidays, nil
}
