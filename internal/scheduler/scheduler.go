package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/config"
	"github.com/pulsewatch/pulsewatch/internal/notifier"
	"github.com/pulsewatch/pulsewatch/internal/reconcile"
	"github.com/pulsewatch/pulsewatch/internal/statusfeed"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
)

// Scheduler runs one polling loop per poll task. Each loop fetches, reconciles
// against the store, and fans the resulting events out to recipients. Interval
// changes published through the registry take effect without restarting loops.
type Scheduler struct {
	db        *gorm.DB
	client    *statusfeed.Client
	notifier  *notifier.Notifier
	registry  *config.Registry
	incidents *reconcile.IncidentReconciler

	// broadcast is invoked after any pass that produced events, to nudge
	// connected dashboards. Optional.
	broadcast func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(db *gorm.DB, client *statusfeed.Client, n *notifier.Notifier, registry *config.Registry) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		db:        db,
		client:    client,
		notifier:  n,
		registry:  registry,
		incidents: reconcile.NewIncidentReconciler(db),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Scheduler) SetBroadcast(fn func()) {
	s.broadcast = fn
}

// Start launches all polling loops. Each runs an immediate first pass, then
// sleeps for its configured interval.
func (s *Scheduler) Start() {
	for _, poller := range types.AllPollers() {
		s.wg.Add(1)
		go s.run(poller)
	}

	log.Printf("Started %d polling loops", len(types.AllPollers()))
}

// Stop cancels all loops and waits for in-flight passes to finish. A pass that
// already started completes its store writes and deliveries.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) run(poller types.PollerType) {
	defer s.wg.Done()

	for {
		s.runPass(poller)

		if !s.sleep(poller) {
			return
		}
	}
}

// sleep waits out the poller's current interval. Returns false on shutdown.
// An interval change wakes the loop early and the wait restarts with the new
// value.
func (s *Scheduler) sleep(poller types.PollerType) bool {
	for {
		interval, changed := s.registry.Watch(poller)

		timer := time.NewTimer(interval)

		select {
		case <-s.ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
			return true
		case <-changed:
			timer.Stop()
			log.Printf("Interval for %s changed, rescheduling", poller)
		}
	}
}

// runPass executes one fetch-and-reconcile cycle. A failed fetch logs and
// aborts the pass with no store mutation, so omission-based resolution never
// runs against a failed call.
func (s *Scheduler) runPass(poller types.PollerType) {
	var events []types.Event
	var err error

	switch poller {
	case types.PollStatus:
		events, err = s.statusPass()
	case types.PollIncident:
		events, err = s.incidentPass()
	case types.PollMaintenance:
		events, err = s.maintenancePass()
	case types.PollMetrics:
		err = s.metricsPass()
	}

	if err != nil {
		log.Printf("Poll pass %s failed: %v", poller, err)
		return
	}

	if len(events) == 0 {
		return
	}

	recipients := notifier.ResolveRecipients(s.db)
	for _, event := range events {
		sent, skipped := s.notifier.Notify(s.ctx, event, recipients)
		log.Printf("Event %s %s: %d sent, %d skipped", event.Type, event.Reference, sent, skipped)
	}

	if s.broadcast != nil {
		s.broadcast()
	}
}

func (s *Scheduler) statusPass() ([]types.Event, error) {
	summary, err := s.client.Summary(s.ctx)
	if err != nil {
		return nil, err
	}
	return reconcile.Status(s.db, summary)
}

func (s *Scheduler) incidentPass() ([]types.Event, error) {
	feed, err := s.client.UnresolvedIncidents(s.ctx)
	if err != nil {
		return nil, err
	}

	confirmations := config.GetInt(s.db, config.KeyResolveConfirmations, config.DefaultResolveConfirmations)
	return s.incidents.Reconcile(feed, time.Now().UTC(), confirmations)
}

func (s *Scheduler) maintenancePass() ([]types.Event, error) {
	upcoming, err := s.client.UpcomingMaintenances(s.ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.client.ActiveMaintenances(s.ctx)
	if err != nil {
		return nil, err
	}

	return reconcile.Maintenances(s.db, upcoming, active, time.Now().UTC())
}

// metricsPass fetches every metric series. Per-series failures are logged and
// the remaining series still run.
func (s *Scheduler) metricsPass() error {
	for _, metric := range statusfeed.Metrics {
		points, err := s.client.MetricSeries(s.ctx, metric)
		if err != nil {
			log.Printf("Failed to fetch metric %s: %v", metric.Name, err)
			continue
		}

		if _, err := reconcile.Metrics(s.db, metric, points); err != nil {
			log.Printf("Failed to store metric %s: %v", metric.Name, err)
		}
	}

	return nil
}
