package jobs

import (
	"crypto/x509"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/veridiapki/veridia/pkg/config"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
	svcmock "github.com/veridiapki/veridia/pkg/services/mock"
)

func TestCRLRefreshMonitorRecalculatesExpired(t *testing.T) {
	log := helpers.SetupLogger(config.Info, "Test Case", "CRL Refresh Job")

	points := []models.IssuingPoint{
		{
			ID:                "master-crl",
			GenerationEnabled: true,
			Initialized:       true,
			NextUpdate:        time.Now().Add(-time.Hour),
		},
		{
			ID:                "fresh-crl",
			GenerationEnabled: true,
			Initialized:       true,
			NextUpdate:        time.Now().Add(48 * time.Hour),
		},
		{
			ID:                "disabled-crl",
			GenerationEnabled: false,
			Initialized:       true,
			NextUpdate:        time.Now().Add(-time.Hour),
		},
	}

	mockIssuingPoints := new(svcmock.MockIssuingPointService)
	mockIssuingPoints.On("GetIssuingPoints", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		input := args.Get(1).(services.GetIssuingPointsInput)
		for _, point := range points {
			input.ApplyFunc(point)
		}
	}).Return("", nil)

	mockIssuingPoints.On("CalculateCRL", mock.Anything, services.CalculateCRLInput{
		IssuingPointID: "master-crl",
	}).Return(&x509.RevocationList{}, nil)

	job := NewCRLRefreshMonitorJob(mockIssuingPoints, "0 * * * *", log)
	job.Run()

	mockIssuingPoints.AssertExpectations(t)
	// only the expired, generation-enabled point gets recalculated
	mockIssuingPoints.AssertNumberOfCalls(t, "CalculateCRL", 1)
}

func TestCRLRefreshMonitorBadFrequency(t *testing.T) {
	log := helpers.SetupLogger(config.Info, "Test Case", "CRL Refresh Job")

	mockIssuingPoints := new(svcmock.MockIssuingPointService)

	job := NewCRLRefreshMonitorJob(mockIssuingPoints, "not-a-cron-expression", log)
	job.Run()

	mockIssuingPoints.AssertNotCalled(t, "GetIssuingPoints", mock.Anything, mock.Anything)
}
