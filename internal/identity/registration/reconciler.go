package registration

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
)

const (
	defaultWorkers = 2
	queueBuffer    = 64

	DefaultGrace = 5 * time.Second
	defaultPoll  = 500 * time.Millisecond
)

// Reconciler confirms, off the request path, that a profile row appeared for
// each newly created identity within a grace window. A missing row is logged
// as a provisioning fault and reported to the fault hook. It is never
// repaired here; the profile store's own trigger owns row creation.
type Reconciler struct {
	profiles Profiles
	logger   logging.Logger
	queue    chan string
	workers  int
	grace    time.Duration
	poll     time.Duration
	onFault  func(identityID string)
}

type ReconcilerOption func(*Reconciler)

func WithGrace(d time.Duration) ReconcilerOption { return func(r *Reconciler) { r.grace = d } }
func WithPoll(d time.Duration) ReconcilerOption  { return func(r *Reconciler) { r.poll = d } }
func WithWorkers(n int) ReconcilerOption         { return func(r *Reconciler) { r.workers = n } }

// WithFaultHook is called once per identity whose profile never appeared.
func WithFaultHook(fn func(identityID string)) ReconcilerOption {
	return func(r *Reconciler) { r.onFault = fn }
}

func NewReconciler(profiles Profiles, logger logging.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		profiles: profiles,
		logger:   logger.With("module", "reconciler"),
		queue:    make(chan string, queueBuffer),
		workers:  defaultWorkers,
		grace:    DefaultGrace,
		poll:     defaultPoll,
		onFault:  func(string) {},
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers <= 0 {
		r.workers = defaultWorkers
	}
	return r
}

// Start launches the workers. They stop when ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		go r.run(ctx, i)
	}
}

// Enqueue schedules a check without blocking. It reports false when the
// queue is full and the check was dropped.
func (r *Reconciler) Enqueue(identityID string) bool {
	select {
	case r.queue <- identityID:
		return true
	default:
		r.logger.Warn(context.Background(), "reconcile queue full, check dropped", "identity_id", identityID)
		return false
	}
}

// Check polls the profile store until the row for identityID exists or the
// grace window closes. It returns common.ErrProvisioningInconsistency when
// the row never appeared.
func (r *Reconciler) Check(ctx context.Context, identityID string) error {
	deadline := time.NewTimer(r.grace)
	defer deadline.Stop()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		_, err := r.profiles.Get(ctx, identityID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, common.ErrorNotFound):
		default:
			r.logger.Warn(ctx, "profile lookup failed during reconcile", "identity_id", identityID, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			r.logger.Error(ctx, "provisioning fault: profile row missing after grace window",
				"identity_id", identityID, "grace", r.grace)
			r.onFault(identityID)
			return common.ErrProvisioningInconsistency
		case <-ticker.C:
		}
	}
}

func (r *Reconciler) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case identityID := <-r.queue:
			if err := r.Check(ctx, identityID); err != nil && !errors.Is(err, common.ErrProvisioningInconsistency) {
				r.logger.Debug(ctx, "reconcile aborted", "identity_id", identityID, "worker_id", id, "error", err)
			}
		}
	}
}
