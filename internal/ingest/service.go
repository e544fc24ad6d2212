package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reisemkt/dashboard-api/internal/models"
	"github.com/reisemkt/dashboard-api/internal/store"
	"github.com/reisemkt/dashboard-api/internal/utils"
)

// Service runs full load cycles: both datasets fetched concurrently, then
// committed to the store as one snapshot, unless a newer cycle started in
// the meantime.
type Service struct {
	daily *DailyLoader
	crm   *CrmLoader
	st    *store.MemoryStore
	log   *slog.Logger
	obs   *utils.Metrics
}

func NewService(daily *DailyLoader, crm *CrmLoader, st *store.MemoryStore, log *slog.Logger, obs *utils.Metrics) *Service {
	return &Service{daily: daily, crm: crm, st: st, log: log, obs: obs}
}

// Run executes one load cycle. A transport failure on either primary
// dataset fails the cycle and nothing is committed.
func (s *Service) Run(ctx context.Context) error {
	gen := s.st.Begin()

	var (
		wg       sync.WaitGroup
		daily    []models.DailyRecord
		crm      *models.CrmDataset
		dailyErr error
		crmErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		daily, dailyErr = s.daily.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		crm, crmErr = s.crm.Load(ctx)
	}()
	wg.Wait()

	if dailyErr != nil {
		s.obs.IngestRuns.WithLabelValues("error").Inc()
		return dailyErr
	}
	if crmErr != nil {
		s.obs.IngestRuns.WithLabelValues("error").Inc()
		return crmErr
	}

	if !s.st.Commit(gen, store.Snapshot{Daily: daily, Crm: crm, LoadedAt: time.Now()}) {
		s.log.Info("load superseded, result discarded", slog.Uint64("gen", gen))
		s.obs.IngestRuns.WithLabelValues("stale").Inc()
		return nil
	}

	s.obs.IngestRuns.WithLabelValues("ok").Inc()
	s.obs.DatasetRows.WithLabelValues("daily").Set(float64(len(daily)))
	s.obs.DatasetRows.WithLabelValues("crm_orders").Set(float64(len(crm.Orders)))
	s.obs.DatasetRows.WithLabelValues("crm_actions").Set(float64(len(crm.Actions)))
	return nil
}
