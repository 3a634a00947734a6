// Package bootstrap assembles repositories and services for the configured
// store driver.
package bootstrap

import (
	"fmt"

	"condobook/internal/bookings/events"
	bookingsrepo "condobook/internal/bookings/repository"
	bookingsservice "condobook/internal/bookings/service"
	bookingsvalidator "condobook/internal/bookings/validator"
	facilitiesrepo "condobook/internal/facilities/repository"
	facilitiesservice "condobook/internal/facilities/service"
	facilitiesvalidator "condobook/internal/facilities/validator"
	"condobook/pkg/config"
)

type Services struct {
	Bookings   bookingsservice.BookingService
	Facilities facilitiesservice.FacilityService
	Publisher  events.Publisher
}

// NewServices expects cfg's store client to be connected.
func NewServices(cfg *config.Config) (*Services, error) {
	var (
		bookingRepo  bookingsrepo.BookingRepository
		facilityRepo facilitiesrepo.FacilityRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMongo:
		bookingRepo = bookingsrepo.NewMongoBookingRepository(cfg)
		facilityRepo = facilitiesrepo.NewMongoFacilityRepository(cfg)
	case config.StorePostgres:
		bookingRepo = bookingsrepo.NewGormBookingRepository(cfg)
		facilityRepo = facilitiesrepo.NewGormFacilityRepository(cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		return nil, err
	}

	facilities := facilitiesservice.NewFacilityService(
		facilityRepo,
		bookingRepo,
		facilitiesvalidator.NewFacilityValidator(cfg.Log),
		cfg,
	)
	bookings := bookingsservice.NewBookingService(
		bookingRepo,
		facilities,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "store_driver", cfg.StoreDriver, "events_broker", cfg.EventsBroker)

	return &Services{
		Bookings:   bookings,
		Facilities: facilities,
		Publisher:  publisher,
	}, nil
}

func (s *Services) Close() error {
	return s.Publisher.Close()
}
