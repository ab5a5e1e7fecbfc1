package jobs

import (
	"context"
	"log"
	"time"

	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"
	"fit-challenge/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// ChallengeCloser periodically activates scheduled challenges, closes
// active challenges whose end time has passed and settles anything left
// unsettled. Settlement itself is idempotent, so a tick that dies halfway
// is retried safely on the next one.
type ChallengeCloser struct {
	repo       *repository.Repository
	settlement *services.SettlementService
	scheduler  gocron.Scheduler
	interval   time.Duration
}

func NewChallengeCloser(
	repo *repository.Repository,
	settlement *services.SettlementService,
	interval time.Duration,
) *ChallengeCloser {
	return &ChallengeCloser{
		repo:       repo,
		settlement: settlement,
		interval:   interval,
	}
}

// Start begins the closing loop
func (cc *ChallengeCloser) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	cc.scheduler = sched

	_, err = sched.NewJob(
		gocron.DurationJob(cc.interval),
		gocron.NewTask(cc.tick),
	)
	if err != nil {
		return err
	}

	sched.Start()
	log.Printf("[ChallengeCloser] Started (interval: %v)", cc.interval)
	return nil
}

// Stop shuts the scheduler down
func (cc *ChallengeCloser) Stop() {
	if cc.scheduler != nil {
		_ = cc.scheduler.Shutdown()
	}
}

func (cc *ChallengeCloser) tick() {
	ctx := context.Background()
	now := time.Now()

	toActivate, err := cc.repo.FindChallengesToActivate(ctx, now, 100)
	if err != nil {
		log.Printf("[ChallengeCloser] Error fetching scheduled challenges: %v", err)
	}
	for _, challenge := range toActivate {
		ok, err := cc.repo.UpdateChallengeStatus(ctx, challenge.ID, models.ChallengeStatusScheduled, models.ChallengeStatusActive)
		if err != nil {
			log.Printf("[ChallengeCloser] Error activating challenge %s: %v", challenge.ID, err)
			continue
		}
		if ok {
			log.Printf("[ChallengeCloser] Activated challenge %s", challenge.ID)
		}
	}

	toClose, err := cc.repo.FindChallengesToClose(ctx, now, 100)
	if err != nil {
		log.Printf("[ChallengeCloser] Error fetching ended challenges: %v", err)
		return
	}
	for _, challenge := range toClose {
		ok, err := cc.repo.UpdateChallengeStatus(ctx, challenge.ID, models.ChallengeStatusActive, models.ChallengeStatusCompleted)
		if err != nil {
			log.Printf("[ChallengeCloser] Error closing challenge %s: %v", challenge.ID, err)
			continue
		}
		if !ok {
			continue
		}
		log.Printf("[ChallengeCloser] Closed challenge %s", challenge.ID)
	}

	unsettled, err := cc.repo.FindUnsettledCompleted(ctx, 100)
	if err != nil {
		log.Printf("[ChallengeCloser] Error fetching unsettled challenges: %v", err)
		return
	}
	for _, challenge := range unsettled {
		payouts, err := cc.settlement.Settle(ctx, challenge.ID)
		if err != nil {
			if err == services.ErrAlreadySettled {
				continue
			}
			log.Printf("[ChallengeCloser] Error settling challenge %s: %v", challenge.ID, err)
			continue
		}
		log.Printf("[ChallengeCloser] Settled challenge %s (%d payouts)", challenge.ID, len(payouts))
	}
}
