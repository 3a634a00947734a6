package main

import (
	bookingshandler "condobook/internal/bookings/handler"
	"condobook/internal/bootstrap"
	facilitieshandler "condobook/internal/facilities/handler"
	"condobook/pkg/app"
	"condobook/pkg/auth"
	"condobook/pkg/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	services, err := bootstrap.NewServices(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := services.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		bookingshandler.NewBookingHandler(services.Bookings, cfg.Log),
		facilitieshandler.NewFacilityHandler(services.Facilities, cfg.Log),
	)
	serverApp.Run()
}
