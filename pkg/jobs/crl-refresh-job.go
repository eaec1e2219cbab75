package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
	"github.com/veridiapki/veridia/pkg/services"
)

type CRLRefreshMonitor struct {
	logger    *logrus.Entry
	service   services.IssuingPointService
	frequency string
}

func NewCRLRefreshMonitorJob(service services.IssuingPointService, frequency string, logger *logrus.Entry) *CRLRefreshMonitor {
	return &CRLRefreshMonitor{
		service:   service,
		logger:    logger,
		frequency: frequency,
	}
}

func (svc *CRLRefreshMonitor) Run() {
	ctx := helpers.InitContext()
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	now := time.Now()
	lFunc.Info("starting periodic CRL refresh check")

	nextScheduledRun, err := cron.ParseStandard(svc.frequency)
	if err != nil {
		lFunc.Errorf("could not parse frequency %s: %s", svc.frequency, err)
		return
	}

	nextRunTime := nextScheduledRun.Next(now)
	nextRunTimeDelta := nextRunTime.Sub(now)

	svc.service.GetIssuingPoints(ctx, services.GetIssuingPointsInput{
		ListInput: resources.ListInput[models.IssuingPoint]{
			QueryParameters: &resources.QueryParameters{},
			ExhaustiveRun:   true,
			ApplyFunc: func(point models.IssuingPoint) {
				if !point.GenerationEnabled || !point.Initialized {
					return
				}

				lFunc.Infof("checking issuing point %s", point.ID)
				if point.NextUpdate.Before(now) {
					lFunc.Infof("CRL for issuing point %s expired at %s (%s)", point.ID, point.NextUpdate, point.NextUpdate.Sub(now))
					_, err := svc.service.CalculateCRL(context.Background(), services.CalculateCRLInput{
						IssuingPointID: point.ID,
					})
					if err != nil {
						lFunc.Warnf("something went wrong while calculating CRL for issuing point %s: %s", point.ID, err)
					}
				} else if point.NextUpdate.Before(nextRunTime) {
					lFunc.Warnf("CRL for issuing point %s expires at %s, before next check at %s (%s)", point.ID, point.NextUpdate, nextRunTime, nextRunTimeDelta)
				} else {
					lFunc.Infof("CRL for issuing point %s is valid until %s (%s)", point.ID, point.NextUpdate, point.NextUpdate.Sub(now))
				}
			},
		},
	})

	end := time.Now()
	lFunc.Infof("ending check. Took %v", end.Sub(now))
}
