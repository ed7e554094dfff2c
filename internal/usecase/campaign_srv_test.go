package usecase

import (
	"context"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
)

var campaignTestBase = time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)

type campaignFixture struct {
	service     *campaignService
	trips       *fakeTripRepo
	bookings    *fakeBookingRepo
	leads       *fakeLeadRepo
	campaignLog *fakeCampaignLog
	messenger   *fakeMessenger
	now         time.Time
}

func newCampaignFixture(cfg *utils.Config, trips ...*entity.Trip) *campaignFixture {
	tripRepo := newFakeTripRepo(trips...)
	bookingRepo := newFakeBookingRepo()
	leadRepo := &fakeLeadRepo{}
	campaignLog := newFakeCampaignLog()
	messenger := &fakeMessenger{}

	repo := newTestRepository(tripRepo, newFakeSeatLockRepo(), bookingRepo, newFakePaymentRepo(), leadRepo, campaignLog)
	service := NewCampaignService(repo, messenger, cfg, testLogger()).(*campaignService)

	f := &campaignFixture{
		service:     service,
		trips:       tripRepo,
		bookings:    bookingRepo,
		leads:       leadRepo,
		campaignLog: campaignLog,
		messenger:   messenger,
		now:         campaignTestBase,
	}
	service.clock = func() time.Time { return f.now }
	return f
}

func (f *campaignFixture) addConfirmedBooking(tripID uuid.UUID, userID uuid.UUID, seats int) {
	f.bookings.Create(context.Background(), &entity.Booking{
		Base:   entity.Base{ID: uuid.New()},
		UserID: userID,
		TripID: tripID,
		Seats:  seats,
		Status: entity.BookingStatusConfirmed,
	})
}

func (f *campaignFixture) addLead(lead *entity.Lead) {
	f.leads.leads = append(f.leads.leads, lead)
}

func newTestLead(stage entity.LeadStage, source entity.LeadSource, qualification int, interests []string) *entity.Lead {
	engaged := campaignTestBase.Add(-24 * time.Hour)
	return &entity.Lead{
		Base:               entity.Base{ID: uuid.New()},
		FullName:           "Dewi",
		Phone:              "+628123456789",
		Stage:              stage,
		Source:             source,
		QualificationScore: qualification,
		Interests:          interests,
		LastEngagedAt:      &engaged,
	}
}

func TestClassifyOccupancy(t *testing.T) {
	tests := []struct {
		rate float64
		want UrgencyTier
	}{
		{0, TierCritical},
		{29.9, TierCritical},
		{30, TierModerate},
		{49.9, TierModerate},
		{50, TierNone},
		{100, TierNone},
	}

	for _, tt := range tests {
		if got := ClassifyOccupancy(tt.rate); got != tt.want {
			t.Errorf("ClassifyOccupancy(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestOccupancyScanHealthyTripDoesNotTrigger(t *testing.T) {
	trip := newTestTrip(10, 3, 500)
	f := newCampaignFixture(testConfig(), trip)
	f.addConfirmedBooking(trip.ID, uuid.New(), 7)
	f.addLead(newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"}))

	result, err := f.service.RunOccupancyScan(context.Background(), false)
	if err != nil {
		t.Fatalf("RunOccupancyScan returned error: %v", err)
	}

	if result.TripsScanned != 1 {
		t.Errorf("trips scanned = %d, want 1", result.TripsScanned)
	}
	if result.CampaignsTriggered != 0 {
		t.Errorf("campaigns triggered = %d, want 0 at 70%% occupancy", result.CampaignsTriggered)
	}
	if result.Tiers["none"] != 1 {
		t.Errorf("tiers = %v, want none:1", result.Tiers)
	}
	if len(f.messenger.messages) != 0 {
		t.Errorf("messages sent = %d, want 0", len(f.messenger.messages))
	}
}

func TestOccupancyScanCriticalTrip(t *testing.T) {
	trip := newTestTrip(10, 8, 500)
	f := newCampaignFixture(testConfig(), trip)
	f.addConfirmedBooking(trip.ID, uuid.New(), 2)

	strong := newTestLead(entity.LeadStageNegotiating, entity.LeadSourceReferral, 80, []string{"Bromo"})
	noPhone := newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"})
	noPhone.Phone = ""
	rawStage := newTestLead(entity.LeadStageNew, entity.LeadSourceReferral, 80, []string{"Bromo"})

	alreadyBooked := newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"})
	bookedUser := uuid.New()
	alreadyBooked.UserID = &bookedUser
	f.addConfirmedBooking(trip.ID, bookedUser, 0)

	f.addLead(strong)
	f.addLead(noPhone)
	f.addLead(rawStage)
	f.addLead(alreadyBooked)

	result, err := f.service.RunOccupancyScan(context.Background(), false)
	if err != nil {
		t.Fatalf("RunOccupancyScan returned error: %v", err)
	}

	if result.CampaignsTriggered != 1 {
		t.Fatalf("campaigns triggered = %d, want 1 at 20%% occupancy", result.CampaignsTriggered)
	}
	if result.Tiers["critical"] != 1 {
		t.Errorf("tiers = %v, want critical:1", result.Tiers)
	}

	if len(f.messenger.messages) != 1 {
		t.Fatalf("messages sent = %d, want only the strong lead", len(f.messenger.messages))
	}
	msg := f.messenger.messages[0]
	if msg.leadID != strong.ID {
		t.Errorf("message went to lead %s, want %s", msg.leadID, strong.ID)
	}
	if msg.templateKey != "occupancy_critical" {
		t.Errorf("template = %q, want occupancy_critical", msg.templateKey)
	}
	if msg.variables["discount_pct"] != "15" {
		t.Errorf("discount = %q, want 15", msg.variables["discount_pct"])
	}
	if msg.variables["trip_name"] != trip.Name {
		t.Errorf("trip_name = %q, want %q", msg.variables["trip_name"], trip.Name)
	}

	// Critical outreach gets a follow-up task two days out.
	if len(f.messenger.tasks) != 1 {
		t.Fatalf("tasks created = %d, want 1", len(f.messenger.tasks))
	}
	if want := f.now.Add(48 * time.Hour); !f.messenger.tasks[0].dueAt.Equal(want) {
		t.Errorf("task due at = %v, want %v", f.messenger.tasks[0].dueAt, want)
	}

	if tier := f.campaignLog.triggered[trip.ID]; tier != "critical" {
		t.Errorf("campaign log tier = %q, want critical", tier)
	}
}

func TestOccupancyScanModerateTrip(t *testing.T) {
	trip := newTestTrip(10, 6, 500)
	f := newCampaignFixture(testConfig(), trip)
	f.addConfirmedBooking(trip.ID, uuid.New(), 4)

	strong := newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"})
	// No interest match, weak source: 40*0.3 + 3 + 5 = 20, under the
	// moderate bar but over the critical one.
	weak := newTestLead(entity.LeadStageContacted, entity.LeadSourceOther, 40, nil)

	f.addLead(strong)
	f.addLead(weak)

	result, err := f.service.RunOccupancyScan(context.Background(), false)
	if err != nil {
		t.Fatalf("RunOccupancyScan returned error: %v", err)
	}

	if result.Tiers["moderate"] != 1 {
		t.Errorf("tiers = %v, want moderate:1", result.Tiers)
	}
	if len(f.messenger.messages) != 1 {
		t.Fatalf("messages sent = %d, want 1 (weak lead filtered)", len(f.messenger.messages))
	}
	if f.messenger.messages[0].templateKey != "occupancy_moderate" {
		t.Errorf("template = %q, want occupancy_moderate", f.messenger.messages[0].templateKey)
	}
	if f.messenger.messages[0].variables["discount_pct"] != "10" {
		t.Errorf("discount = %q, want 10", f.messenger.messages[0].variables["discount_pct"])
	}
	if len(f.messenger.tasks) != 0 {
		t.Errorf("tasks created = %d, moderate tier takes none", len(f.messenger.tasks))
	}
}

func TestOccupancyScanDedupWindow(t *testing.T) {
	trip := newTestTrip(10, 8, 500)
	f := newCampaignFixture(testConfig(), trip)
	f.addConfirmedBooking(trip.ID, uuid.New(), 2)
	f.addLead(newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"}))

	if _, err := f.service.RunOccupancyScan(context.Background(), false); err != nil {
		t.Fatalf("first scan returned error: %v", err)
	}
	if len(f.messenger.messages) != 1 {
		t.Fatalf("messages after first scan = %d, want 1", len(f.messenger.messages))
	}

	// Still under-booked an hour later, but inside the dedup window.
	f.now = f.now.Add(time.Hour)

	result, err := f.service.RunOccupancyScan(context.Background(), false)
	if err != nil {
		t.Fatalf("second scan returned error: %v", err)
	}
	if result.CampaignsTriggered != 0 {
		t.Errorf("campaigns triggered = %d, want 0 inside dedup window", result.CampaignsTriggered)
	}
	if len(f.messenger.messages) != 1 {
		t.Errorf("messages after second scan = %d, want still 1", len(f.messenger.messages))
	}
}

func TestOccupancyScanDryRun(t *testing.T) {
	trip := newTestTrip(10, 8, 500)
	f := newCampaignFixture(testConfig(), trip)
	f.addConfirmedBooking(trip.ID, uuid.New(), 2)
	f.addLead(newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"}))

	result, err := f.service.RunOccupancyScan(context.Background(), true)
	if err != nil {
		t.Fatalf("RunOccupancyScan returned error: %v", err)
	}

	if !result.DryRun {
		t.Error("result should be flagged as dry run")
	}
	if result.CampaignsTriggered != 1 {
		t.Errorf("campaigns triggered = %d, want 1 counted", result.CampaignsTriggered)
	}
	if result.MessagesQueued != 1 {
		t.Errorf("messages queued = %d, want 1 counted", result.MessagesQueued)
	}

	// Nothing actually leaves the building.
	if len(f.messenger.messages) != 0 {
		t.Errorf("messages sent = %d, want 0 on dry run", len(f.messenger.messages))
	}
	if len(f.messenger.tasks) != 0 {
		t.Errorf("tasks created = %d, want 0 on dry run", len(f.messenger.tasks))
	}
	if len(f.campaignLog.triggered) != 0 {
		t.Error("dry run must not consume the dedup window")
	}

	// A real scan right after still goes through.
	if _, err := f.service.RunOccupancyScan(context.Background(), false); err != nil {
		t.Fatalf("follow-up scan returned error: %v", err)
	}
	if len(f.messenger.messages) != 1 {
		t.Errorf("messages after real scan = %d, want 1", len(f.messenger.messages))
	}
}

func TestOccupancyScanBatchCapRanksLeads(t *testing.T) {
	cfg := testConfig()
	cfg.Campaign.BatchCap = 2

	trip := newTestTrip(10, 8, 500)
	f := newCampaignFixture(cfg, trip)
	f.addConfirmedBooking(trip.ID, uuid.New(), 2)

	top := newTestLead(entity.LeadStageNegotiating, entity.LeadSourceReferral, 90, []string{"Bromo"})
	mid := newTestLead(entity.LeadStageQualified, entity.LeadSourceWhatsApp, 70, []string{"Bromo"})
	low := newTestLead(entity.LeadStageContacted, entity.LeadSourceWebsite, 60, []string{"mountain"})

	f.addLead(low)
	f.addLead(top)
	f.addLead(mid)

	if _, err := f.service.RunOccupancyScan(context.Background(), false); err != nil {
		t.Fatalf("RunOccupancyScan returned error: %v", err)
	}

	if len(f.messenger.messages) != 2 {
		t.Fatalf("messages sent = %d, want the capped 2", len(f.messenger.messages))
	}
	if f.messenger.messages[0].leadID != top.ID {
		t.Errorf("first message went to %s, want the top-scored lead", f.messenger.messages[0].leadID)
	}
	if f.messenger.messages[1].leadID != mid.ID {
		t.Errorf("second message went to %s, want the mid-scored lead", f.messenger.messages[1].leadID)
	}
}

func TestOccupancyScanMessengerFailureKeepsDedupOpen(t *testing.T) {
	trip := newTestTrip(10, 8, 500)
	f := newCampaignFixture(testConfig(), trip)
	f.addConfirmedBooking(trip.ID, uuid.New(), 2)
	f.addLead(newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"}))

	f.messenger.failEnqueue = true
	if _, err := f.service.RunOccupancyScan(context.Background(), false); err != nil {
		t.Fatalf("RunOccupancyScan returned error: %v", err)
	}
	if len(f.campaignLog.triggered) != 0 {
		t.Error("nothing was queued, the dedup window must stay open")
	}

	// Once the broker recovers the next scan delivers.
	f.messenger.failEnqueue = false
	if _, err := f.service.RunOccupancyScan(context.Background(), false); err != nil {
		t.Fatalf("recovery scan returned error: %v", err)
	}
	if len(f.messenger.messages) != 1 {
		t.Errorf("messages after recovery = %d, want 1", len(f.messenger.messages))
	}
	if f.campaignLog.triggered[trip.ID] != "critical" {
		t.Error("recovered scan should record the campaign")
	}
}

func TestOccupancyScanSkipsFarDepartures(t *testing.T) {
	departure := campaignTestBase.Add(200 * 24 * time.Hour)
	trip := newTestTrip(10, 8, 500)
	trip.NextDeparture = &departure

	f := newCampaignFixture(testConfig(), trip)
	f.addLead(newTestLead(entity.LeadStageQualified, entity.LeadSourceReferral, 80, []string{"Bromo"}))

	result, err := f.service.RunOccupancyScan(context.Background(), false)
	if err != nil {
		t.Fatalf("RunOccupancyScan returned error: %v", err)
	}
	if result.TripsScanned != 0 {
		t.Errorf("trips scanned = %d, departures beyond the lookahead are out of scope", result.TripsScanned)
	}
}
