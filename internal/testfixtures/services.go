package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/club-reservations/internal/application"
	"github.com/example/club-reservations/internal/calendar"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers, clocks and calendars.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Calendar    *calendar.Calendar
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults: the shared
// reference clock and a UTC calendar, so fixtures and services agree on
// "today".
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Calendar == nil {
		factory.Calendar = calendar.New(time.UTC, factory.Clock.NowFunc())
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithCalendar overrides the calendar used by the factory.
func WithCalendar(cal *calendar.Calendar) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Calendar = cal
	}
}

// AvailabilityServiceDeps captures dependencies for an availability service.
type AvailabilityServiceDeps struct {
	Resources    application.ResourceCatalog
	Reservations application.ReservationSource
	Blackouts    application.BlackoutSource
	HorizonCount int
	ResultCap    int
	Logger       *slog.Logger
}

// NewAvailabilityService builds an availability service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewAvailabilityService(deps AvailabilityServiceDeps) *application.AvailabilityService {
	return application.NewAvailabilityService(
		deps.Resources,
		deps.Reservations,
		deps.Blackouts,
		f.Calendar,
		deps.HorizonCount,
		deps.ResultCap,
		deps.Logger,
	)
}

// ReservationServiceDeps captures dependencies for a reservation service.
type ReservationServiceDeps struct {
	Store       application.ReservationStore
	Resources   application.ResourceCatalog
	Blackouts   application.BlackoutSource
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewReservationService builds a reservation service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewReservationService(deps ReservationServiceDeps) *application.ReservationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewReservationService(
		deps.Store,
		deps.Resources,
		deps.Blackouts,
		f.Calendar,
		idGen,
		now,
		deps.Logger,
	)
}

// BlackoutServiceDeps captures dependencies for a blackout service.
type BlackoutServiceDeps struct {
	Store       application.BlackoutStore
	Resources   application.ResourceCatalog
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBlackoutService builds a blackout service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewBlackoutService(deps BlackoutServiceDeps) *application.BlackoutService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBlackoutService(deps.Store, deps.Resources, idGen, now, deps.Logger)
}

// ResourceServiceDeps captures dependencies for a resource service.
type ResourceServiceDeps struct {
	Store       application.ResourceStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewResourceService builds a resource service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewResourceService(deps ResourceServiceDeps) *application.ResourceService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewResourceService(deps.Store, idGen, now, deps.Logger)
}
