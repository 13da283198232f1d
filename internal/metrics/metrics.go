package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BookingsConfirmed  prometheus.Counter
	BookingsWaitlisted prometheus.Counter
	BookingsCancelled  prometheus.Counter
	OffersSent         prometheus.Counter
	OffersExpired      prometheus.Counter
	SlotsReturned      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		BookingsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confbooking_bookings_confirmed_total",
			Help: "Total number of bookings admitted as confirmed",
		}),

		BookingsWaitlisted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confbooking_bookings_waitlisted_total",
			Help: "Total number of bookings admitted to the waitlist",
		}),

		BookingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confbooking_bookings_cancelled_total",
			Help: "Total number of cancelled bookings",
		}),

		OffersSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confbooking_waitlist_offers_sent_total",
			Help: "Total number of waitlist offers issued",
		}),

		OffersExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confbooking_waitlist_offers_expired_total",
			Help: "Total number of waitlist offers that lapsed",
		}),

		SlotsReturned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confbooking_slots_returned_total",
			Help: "Total number of freed seats returned to the open pool",
		}),
	}
}
