package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/confbooking/api"
	"github.com/Domenick1991/confbooking/config"
	"github.com/Domenick1991/confbooking/internal/service/booking"
	"github.com/Domenick1991/confbooking/internal/service/conference"
	"github.com/Domenick1991/confbooking/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, conferenceSvc conference.ConferenceUseCase, userSvc users.UserUseCase, bookingSvc booking.BookingUseCase) error {
	router := gin.Default()

	api.NewConferenceHandler(conferenceSvc).Register(router.Group("/conferences"))
	api.NewUserHandler(userSvc).Register(router.Group("/users"))
	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
