package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"discord-giveaway-bot/internal/common/logger"
	"discord-giveaway-bot/internal/features/giveaway/repository"
)

// Maximum number of giveaways concluded concurrently.
const maxConcurrentProcessing = 4

// ExpirationService drives giveaway expiry off the persisted end_time:
// a ticker scans the store and concludes anything that has elapsed. Since
// the record itself is the schedule, pending giveaways survive restarts.
type ExpirationService struct {
	ctx    context.Context
	cancel context.CancelFunc

	engine   GiveawayService
	repo     repository.GiveawayRepository
	interval time.Duration

	processing sync.Map
	sem        chan struct{}
	wg         sync.WaitGroup
	log        zerolog.Logger
}

func NewExpirationService(engine GiveawayService, repo repository.GiveawayRepository, interval time.Duration) *ExpirationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ExpirationService{
		ctx:      ctx,
		cancel:   cancel,
		engine:   engine,
		repo:     repo,
		interval: interval,
		sem:      make(chan struct{}, maxConcurrentProcessing),
		log:      logger.Component("expiration_service"),
	}
}

func (s *ExpirationService) Start() {
	s.log.Info().Dur("interval", s.interval).Msg("Starting expiration service")
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.ProcessExpiredGiveaways(); err != nil {
					s.log.Error().Err(err).Msg("Error processing expired giveaways")
				}
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the scan loop and waits for in-flight giveaways to finish.
func (s *ExpirationService) Stop() {
	s.log.Info().Msg("Stopping expiration service")
	s.cancel()
	s.wg.Wait()
	s.log.Info().Msg("Expiration service stopped")
}

func (s *ExpirationService) ProcessExpiredGiveaways() error {
	now := time.Now().Unix()

	expired, err := s.repo.GetExpired(s.ctx, now)
	if err != nil {
		return err
	}

	for _, giveawayID := range expired {
		// Skip anything already being concluded by a previous tick.
		if _, busy := s.processing.LoadOrStore(giveawayID, struct{}{}); busy {
			continue
		}

		s.wg.Add(1)
		go func(id string) {
			defer s.wg.Done()
			defer s.processing.Delete(id)

			s.sem <- struct{}{}
			defer func() { <-s.sem }()

			winners, err := s.engine.End(s.ctx, id)
			if err != nil {
				s.log.Error().Err(err).
					Str("giveaway_id", id).
					Msg("Failed to conclude giveaway")
				return
			}
			s.log.Debug().
				Str("giveaway_id", id).
				Int("winners", len(winners)).
				Msg("Expired giveaway processed")
		}(giveawayID)
	}

	return nil
}
