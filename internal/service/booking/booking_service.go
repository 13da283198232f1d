package booking

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/Domenick1991/confbooking/internal/kafka"
	"github.com/Domenick1991/confbooking/internal/metrics"
	"github.com/Domenick1991/confbooking/internal/repository"
	"github.com/Domenick1991/confbooking/internal/scheduler"
	"github.com/jackc/pgx/v5"
)

type BookingUseCase interface {
	BookSlot(ctx context.Context, userID, conferenceName string) (*domain.Booking, error)
	GetBookingStatus(ctx context.Context, bookingID string) (*domain.BookingStatusView, error)
	CancelBooking(ctx context.Context, bookingID string) (*domain.BookingStatusView, error)
	ConfirmBooking(ctx context.Context, bookingID string) (*domain.BookingStatusView, error)
	ExpireOverdueOffers(ctx context.Context) (int, error)
}

// Locker serializes the promotion protocol per conference. Two concurrent
// cancellations for the same conference must not both promote.
type Locker interface {
	AcquirePromotionLock(ctx context.Context, conferenceName string, ttl time.Duration) (bool, error)
	ReleasePromotionLock(ctx context.Context, conferenceName string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

const promotionLockTTL = 10 * time.Second

// promotionGuard collects the per-conference promotion locks taken during
// a transaction. The locks must outlive the commit: released earlier, a
// competing promoter could acquire the lock while this transaction's
// offer is still uncommitted, read the pre-commit waitlist state, and
// issue a second offer for the same seat.
type promotionGuard struct {
	locker Locker
	held   []string
}

func (g *promotionGuard) acquire(ctx context.Context, conferenceName string) error {
	if g.locker == nil {
		return nil
	}
	for _, name := range g.held {
		if name == conferenceName {
			return nil
		}
	}
	ok, err := g.locker.AcquirePromotionLock(ctx, conferenceName, promotionLockTTL)
	if err != nil {
		log.Printf("acquire promotion lock for %s: %v", conferenceName, err)
		return domain.ErrOperationFailed
	}
	if !ok {
		return domain.ErrOperationFailed
	}
	g.held = append(g.held, conferenceName)
	return nil
}

func (g *promotionGuard) release(ctx context.Context) {
	if g.locker == nil {
		return
	}
	for _, name := range g.held {
		if err := g.locker.ReleasePromotionLock(ctx, name); err != nil {
			log.Printf("release promotion lock for %s: %v", name, err)
		}
	}
	g.held = nil
}

type BookingService struct {
	runner             repository.TxRunner
	conferences        repository.ConferenceRepository
	users              repository.UserRepository
	bookings           repository.BookingRepository
	waitlist           repository.WaitlistRepository
	sched              scheduler.Scheduler
	locker             Locker
	producer           Producer
	metrics            *metrics.Metrics
	bookingTopic       string
	notificationsTopic string
	offerWindow        time.Duration
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func NewBookingService(
	runner repository.TxRunner,
	conferences repository.ConferenceRepository,
	users repository.UserRepository,
	bookings repository.BookingRepository,
	waitlist repository.WaitlistRepository,
	sched scheduler.Scheduler,
	locker Locker,
	producer Producer,
	bookingTopic string,
	offerWindow time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		runner:       runner,
		conferences:  conferences,
		users:        users,
		bookings:     bookings,
		waitlist:     waitlist,
		sched:        sched,
		locker:       locker,
		producer:     producer,
		bookingTopic: bookingTopic,
		offerWindow:  offerWindow,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// inTx runs fn inside a transaction and keeps any promotion locks it
// acquired held until after the transaction has committed or rolled back.
func (s *BookingService) inTx(ctx context.Context, fn func(tx pgx.Tx, guard *promotionGuard) error) error {
	guard := &promotionGuard{locker: s.locker}
	err := s.runner.InTx(ctx, func(tx pgx.Tx) error {
		return fn(tx, guard)
	})
	guard.release(ctx)
	return err
}

// BookSlot admits a booking request: confirmed while seats remain, queued
// on the waitlist otherwise.
func (s *BookingService) BookSlot(ctx context.Context, userID, conferenceName string) (*domain.Booking, error) {
	conference, err := s.conferences.GetByName(ctx, conferenceName)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !conference.IsStillOpen(time.Now()) {
		return nil, domain.ErrConferenceStarted
	}

	userBookings, err := s.bookings.ByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAgainstExistingBookings(ctx, *conference, userBookings); err != nil {
		return nil, err
	}

	if conference.HasSlot() {
		return s.admitConfirmed(ctx, user.ID, conference.Name)
	}
	return s.admitWaitlisted(ctx, user.ID, conference.Name)
}

func (s *BookingService) checkAgainstExistingBookings(ctx context.Context, conference domain.Conference, userBookings []domain.Booking) error {
	for _, b := range userBookings {
		if b.ConferenceName == conference.Name {
			return domain.ErrExistingBooking
		}
	}
	// Intervals are compared against the current catalog state, so each
	// referenced conference is fetched again by name.
	for _, b := range userBookings {
		booked, err := s.conferences.GetByName(ctx, b.ConferenceName)
		if err != nil {
			return err
		}
		if conference.Overlaps(*booked) {
			return domain.ErrOverlappingConference
		}
	}
	return nil
}

func (s *BookingService) admitConfirmed(ctx context.Context, userID, conferenceName string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.runner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.conferences.WithTx(tx).DecrementSlot(ctx, conferenceName); err != nil {
			return err
		}
		var err error
		booking, err = s.bookings.WithTx(tx).Create(ctx, userID, conferenceName, domain.BookingStatusConfirmed)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsConfirmed.Inc()
	}
	s.publish(ctx, "booking_confirmed", *booking, nil)
	return booking, nil
}

func (s *BookingService) admitWaitlisted(ctx context.Context, userID, conferenceName string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.runner.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		booking, err = s.bookings.WithTx(tx).Create(ctx, userID, conferenceName, domain.BookingStatusWaitlisted)
		if err != nil {
			return err
		}
		return s.waitlist.WithTx(tx).Enqueue(ctx, *booking)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsWaitlisted.Inc()
	}
	s.publish(ctx, "booking_waitlisted", *booking, nil)
	return booking, nil
}

// GetBookingStatus returns the status view, enriched with offer details
// for waitlisted bookings.
func (s *BookingService) GetBookingStatus(ctx context.Context, bookingID string) (*domain.BookingStatusView, error) {
	booking, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.statusView(ctx, *booking)
}

func (s *BookingService) statusView(ctx context.Context, booking domain.Booking) (*domain.BookingStatusView, error) {
	view := &domain.BookingStatusView{ID: booking.ID, Status: booking.Status}
	if !booking.IsWaitlisted() {
		return view, nil
	}
	record, err := s.waitlist.ByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	view.OfferOutstanding = &record.OfferSent
	view.OfferExpiresAt = record.OfferExpiresAt
	return view, nil
}

// CancelBooking cancels a non-cancelled booking before the conference
// starts. Cancelling a booking that held a seat (confirmed, or waitlisted
// with an outstanding offer) runs the promotion protocol for the freed
// seat.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.BookingStatusView, error) {
	var cancelled domain.Booking
	err := s.inTx(ctx, func(tx pgx.Tx, guard *promotionGuard) error {
		booking, err := s.bookings.WithTx(tx).ByID(ctx, bookingID)
		if err != nil {
			return err
		}
		conference, err := s.conferences.WithTx(tx).GetByName(ctx, booking.ConferenceName)
		if err != nil {
			return err
		}
		if booking.IsCancelled() {
			return domain.WrongRequest("booking is already cancelled")
		}
		if !conference.IsStillOpen(time.Now()) {
			return domain.ErrConferenceStarted
		}

		heldSeat := booking.IsConfirmed()
		if booking.IsWaitlisted() {
			record, err := s.waitlist.WithTx(tx).ByBookingID(ctx, booking.ID)
			if err == nil && record.OfferSent {
				// The outstanding offer reserved a seat; cancelling
				// releases it.
				heldSeat = true
			} else if err != nil && !domain.IsWrongRequest(err) {
				return err
			}
		}

		if err := s.bookings.WithTx(tx).UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled); err != nil {
			return err
		}
		if err := s.waitlist.WithTx(tx).Remove(ctx, booking.ID); err != nil {
			return err
		}
		if heldSeat {
			if err := s.notifyNextWaitlistedUser(ctx, tx, guard, booking.ConferenceName); err != nil {
				return err
			}
		}
		cancelled = *booking
		cancelled.Status = domain.BookingStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCancelled.Inc()
	}
	s.publish(ctx, "booking_cancelled", cancelled, nil)
	return s.GetBookingStatus(ctx, bookingID)
}

// ConfirmBooking accepts an outstanding waitlist offer. The seat was
// already reserved when the offer was issued, so the counter does not
// move; the user's other waitlist entries for time-overlapping
// conferences are settled instead.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string) (*domain.BookingStatusView, error) {
	var confirmed domain.Booking
	err := s.inTx(ctx, func(tx pgx.Tx, guard *promotionGuard) error {
		booking, err := s.bookings.WithTx(tx).ByID(ctx, bookingID)
		if err != nil {
			return err
		}
		record, err := s.waitlist.WithTx(tx).ByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		conference, err := s.conferences.WithTx(tx).GetByName(ctx, booking.ConferenceName)
		if err != nil {
			return err
		}
		if !booking.IsWaitlisted() {
			return domain.WrongRequest("booking is not in waitlisting")
		}
		if !conference.IsStillOpen(time.Now()) {
			return domain.ErrConferenceStarted
		}
		if !record.HasOpenOffer(time.Now()) {
			return domain.WrongRequest("booking is not eligible for confirmation")
		}

		if err := s.bookings.WithTx(tx).UpdateStatus(ctx, booking.ID, domain.BookingStatusConfirmed); err != nil {
			return err
		}
		if err := s.settleOverlappingWaitlistEntries(ctx, tx, guard, *booking, conference.Name); err != nil {
			return err
		}
		confirmed = *booking
		confirmed.Status = domain.BookingStatusConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_confirmed", confirmed, nil)
	return s.GetBookingStatus(ctx, bookingID)
}

// settleOverlappingWaitlistEntries purges the user's waitlist entries for
// every conference overlapping the accepted one. Purged entries cannot
// stay WAITLISTED without a record, so their bookings are cancelled, and
// any outstanding offer they carried hands its seat to the next waiter.
func (s *BookingService) settleOverlappingWaitlistEntries(ctx context.Context, tx pgx.Tx, guard *promotionGuard, booking domain.Booking, conferenceName string) error {
	overlapping, err := s.conferences.WithTx(tx).OverlappingNames(ctx, conferenceName)
	if err != nil {
		return err
	}
	for _, name := range overlapping {
		removed, err := s.waitlist.WithTx(tx).RemoveByUserAndConference(ctx, booking.UserID, name)
		if err != nil {
			return err
		}
		for _, record := range removed {
			if record.BookingID == booking.ID {
				continue
			}
			if err := s.bookings.WithTx(tx).UpdateStatus(ctx, record.BookingID, domain.BookingStatusCancelled); err != nil {
				return err
			}
			if record.OfferSent {
				if err := s.notifyNextWaitlistedUser(ctx, tx, guard, record.ConferenceName); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// notifyNextWaitlistedUser runs the promotion protocol for a freed seat:
// offer it to the oldest pending waitlisted user, or return it to the open
// pool when nobody is waiting. Runs under the per-conference promotion
// lock, which the guard holds until after the transaction commits;
// contention rolls the surrounding transaction back so the caller can
// retry. MarkOffered rejecting an already offered entry is the backstop
// for a promoter that slipped past the lock.
func (s *BookingService) notifyNextWaitlistedUser(ctx context.Context, tx pgx.Tx, guard *promotionGuard, conferenceName string) error {
	if err := guard.acquire(ctx, conferenceName); err != nil {
		return err
	}

	record, err := s.waitlist.WithTx(tx).OldestPending(ctx, conferenceName)
	if err != nil {
		return err
	}
	if record == nil {
		if s.metrics != nil {
			s.metrics.SlotsReturned.Inc()
		}
		return s.conferences.WithTx(tx).IncrementSlot(ctx, conferenceName)
	}

	expiresAt := time.Now().Add(s.offerWindow)
	bookingID := record.BookingID
	s.sched.Schedule(expiresAt, func() {
		s.CheckForAcceptanceOfWaitlist(bookingID, conferenceName)
	})
	if err := s.waitlist.WithTx(tx).MarkOffered(ctx, record.BookingID, expiresAt); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.OffersSent.Inc()
	}
	offered := domain.Booking{ID: record.BookingID, ConferenceName: record.ConferenceName, UserID: record.UserID, Status: domain.BookingStatusWaitlisted}
	s.publish(ctx, "offer_sent", offered, &expiresAt)
	return nil
}

// CheckForAcceptanceOfWaitlist is the scheduler-invoked expiry callback.
// Delivery is at-least-once, so every step tolerates a booking that was
// confirmed, cancelled, or re-offered in the meantime. No caller waits for
// a result; a failure here is fatal and left for the platform to observe.
func (s *BookingService) CheckForAcceptanceOfWaitlist(bookingID, conferenceName string) {
	log.Printf("checking waitlist offer acceptance for booking %s (%s)", bookingID, conferenceName)
	if err := s.checkAcceptance(context.Background(), bookingID, conferenceName); err != nil {
		panic(err)
	}
}

func (s *BookingService) checkAcceptance(ctx context.Context, bookingID, conferenceName string) error {
	var expired *domain.WaitlistRecord
	err := s.inTx(ctx, func(tx pgx.Tx, guard *promotionGuard) error {
		booking, err := s.bookings.WithTx(tx).ByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.IsConfirmed() {
			log.Printf("booking %s accepted the offer in time", bookingID)
			return nil
		}

		record, err := s.waitlist.WithTx(tx).ByBookingID(ctx, bookingID)
		if domain.IsWrongRequest(err) {
			// The booking left the waitlist between scheduling and
			// firing; the seat was settled on that path already.
			return nil
		}
		if err != nil {
			return err
		}
		if !record.OfferSent || record.OfferExpiresAt == nil || record.OfferExpiresAt.After(time.Now()) {
			// Already reset, or a fresh offer is outstanding; this is a
			// stale delivery.
			return nil
		}

		// The offer lapsed: the entry loses its place and goes to the
		// back of the queue, and the seat moves on.
		if err := s.waitlist.WithTx(tx).ResetOffer(ctx, bookingID); err != nil {
			return err
		}
		expired = record
		return s.notifyNextWaitlistedUser(ctx, tx, guard, conferenceName)
	})
	if err != nil {
		return err
	}

	if expired != nil {
		if s.metrics != nil {
			s.metrics.OffersExpired.Inc()
		}
		lapsed := domain.Booking{ID: expired.BookingID, ConferenceName: expired.ConferenceName, UserID: expired.UserID, Status: domain.BookingStatusWaitlisted}
		s.publish(ctx, "offer_expired", lapsed, nil)
	}
	return nil
}

// ExpireOverdueOffers is the worker sweep: it re-drives expiry for offers
// whose deadline passed, covering in-process timers lost to a restart.
// One record failing must not starve the rest of the batch, so failures
// are logged and skipped; the record stays overdue and the next sweep
// picks it up again.
func (s *BookingService) ExpireOverdueOffers(ctx context.Context) (int, error) {
	overdue, err := s.waitlist.ExpiredOffers(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	processed := 0
	for _, record := range overdue {
		if err := s.checkAcceptance(ctx, record.BookingID, record.ConferenceName); err != nil {
			log.Printf("expire offer for booking %s (%s): %v", record.BookingID, record.ConferenceName, err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking domain.Booking, offerExpiresAt *time.Time) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:           eventType,
		BookingID:      booking.ID,
		ConferenceName: booking.ConferenceName,
		UserID:         booking.UserID,
		Status:         string(booking.Status),
		OfferExpiresAt: offerExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, booking.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
