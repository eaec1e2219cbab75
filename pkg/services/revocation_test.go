package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

func TestRevokeCertificate(t *testing.T) {
	var testcases = []struct {
		name        string
		run         func(stack *caTestStack) (*models.Request, error)
		resultCheck func(stack *caTestStack, request *models.Request, err error) error
	}{
		{
			name: "OK/AgentRevoke",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-1")
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					Reason:       models.RevocationReasonKeyCompromise,
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if err != nil {
					return fmt.Errorf("should've revoked without error, but got one: %s", err)
				}

				if request.Status != models.RequestStatusComplete {
					return fmt.Errorf("request should be COMPLETE, got %s", request.Status)
				}

				if request.Result != models.ResultSuccess {
					return fmt.Errorf("request result should be RES_SUCCESS, got %s", request.Result)
				}

				revoked, ok := request.ExtData.GetRevoked(models.ExtRevokedCerts)
				if !ok || len(revoked) != 1 {
					return fmt.Errorf("request should carry one revoked certificate entry")
				}

				_, record, err := stack.certsRepo.SelectExistsBySerialNumber(context.Background(), revoked[0].SerialNumber)
				if err != nil {
					return fmt.Errorf("could not read back certificate: %s", err)
				}

				if record.Status != models.StatusRevoked {
					return fmt.Errorf("certificate should be REVOKED, got %s", record.Status)
				}

				if record.RevocationReason != models.RevocationReasonKeyCompromise {
					return fmt.Errorf("certificate should carry keyCompromise, got %s", record.RevocationReason)
				}

				return nil
			},
		},
		{
			name: "Err/AlreadyRevoked",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-2")
				_, err := stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					Reason:       models.RevocationReasonSuperseded,
					RequesterID:  "agent-1",
				})
				if err != nil {
					t.Fatalf("first revocation should succeed: %s", err)
				}

				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					Reason:       models.RevocationReasonSuperseded,
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if !errors.Is(err, errs.ErrCertificateAlreadyRevoked) {
					return fmt.Errorf("expected ErrCertificateAlreadyRevoked, got: %s", err)
				}

				count, countErr := stack.requestsRepo.Count(context.Background())
				if countErr != nil {
					return fmt.Errorf("could not count requests: %s", countErr)
				}

				if count != 1 {
					return fmt.Errorf("second revocation should not create a request, got %d requests", count)
				}

				return nil
			},
		},
		{
			name: "Err/SubjectMismatch",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-3")
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					Reason:       models.RevocationReasonUnspecified,
					SubjectDN:    "CN=someone-else",
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if !errors.Is(err, errs.ErrUnauthorized) {
					return fmt.Errorf("expected ErrUnauthorized, got: %s", err)
				}

				if !errors.Is(err, errs.ErrSubjectMismatch) {
					return fmt.Errorf("expected ErrSubjectMismatch, got: %s", err)
				}

				count, countErr := stack.requestsRepo.Count(context.Background())
				if countErr != nil {
					return fmt.Errorf("could not count requests: %s", countErr)
				}

				if count != 0 {
					return fmt.Errorf("failed validation should not create a request, got %d requests", count)
				}

				return nil
			},
		},
		{
			name: "Err/CACertificateProtected",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.insertCARecord(t)
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					Reason:       models.RevocationReasonCACompromise,
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if !errors.Is(err, errs.ErrUnauthorized) {
					return fmt.Errorf("expected ErrUnauthorized, got: %s", err)
				}

				if !errors.Is(err, errs.ErrCACertificateProtected) {
					return fmt.Errorf("expected ErrCACertificateProtected, got: %s", err)
				}

				return nil
			},
		},
		{
			name: "OK/RevokeCACert",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.insertCARecord(t)
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber:   record.SerialNumber,
					Reason:         models.RevocationReasonCACompromise,
					RequesterID:    "agent-1",
					RevokingCACert: true,
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if err != nil {
					return fmt.Errorf("explicit CA revocation should succeed, got: %s", err)
				}

				if request.Status != models.RequestStatusComplete {
					return fmt.Errorf("request should be COMPLETE, got %s", request.Status)
				}

				return nil
			},
		},
		{
			name: "Err/NotCACertificate",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-4")
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber:   record.SerialNumber,
					Reason:         models.RevocationReasonCACompromise,
					RequesterID:    "agent-1",
					RevokingCACert: true,
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if !errors.Is(err, errs.ErrNotCACertificate) {
					return fmt.Errorf("expected ErrNotCACertificate, got: %s", err)
				}

				return nil
			},
		},
		{
			name: "Err/CertificateNotFound",
			run: func(stack *caTestStack) (*models.Request, error) {
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: "deadbeef",
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if !errors.Is(err, errs.ErrCertificateNotFound) {
					return fmt.Errorf("expected ErrCertificateNotFound, got: %s", err)
				}

				return nil
			},
		},
		{
			name: "Err/EmptySerialNumber",
			run: func(stack *caTestStack) (*models.Request, error) {
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if !errors.Is(err, errs.ErrValidateBadRequest) {
					return fmt.Errorf("expected ErrValidateBadRequest, got: %s", err)
				}

				return nil
			},
		},
		{
			name: "OK/InvalidityDateRecorded",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-5")
				invalidity := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber:   record.SerialNumber,
					Reason:         models.RevocationReasonKeyCompromise,
					InvalidityDate: &invalidity,
					RequesterID:    "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if err != nil {
					return fmt.Errorf("should've revoked without error, but got one: %s", err)
				}

				revoked, _ := request.ExtData.GetRevoked(models.ExtRevokedCerts)
				_, record, readErr := stack.certsRepo.SelectExistsBySerialNumber(context.Background(), revoked[0].SerialNumber)
				if readErr != nil {
					return fmt.Errorf("could not read back certificate: %s", readErr)
				}

				if record.InvalidityDate == nil {
					return fmt.Errorf("invalidity date should be recorded on the certificate")
				}

				return nil
			},
		},
	}

	for _, tc := range testcases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			stack := buildCATestStack(t)

			request, err := tc.run(stack)
			if checkErr := tc.resultCheck(stack, request, err); checkErr != nil {
				t.Fatalf("unexpected result in test case: %s", checkErr)
			}
		})
	}
}

func TestUnrevokeCertificate(t *testing.T) {
	revokeOnHold := func(stack *caTestStack, serialNumber string) {
		_, err := stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
			SerialNumber: serialNumber,
			Reason:       models.RevocationReasonCertificateHold,
			RequesterID:  "agent-1",
		})
		if err != nil {
			t.Fatalf("could not place certificate on hold: %s", err)
		}
	}

	var testcases = []struct {
		name        string
		run         func(stack *caTestStack) (*models.Request, error)
		resultCheck func(stack *caTestStack, request *models.Request, err error) error
	}{
		{
			name: "OK/TakeOffHold",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-1")
				revokeOnHold(stack, record.SerialNumber)

				return stack.revocation.UnrevokeCertificate(context.Background(), UnrevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if err != nil {
					return fmt.Errorf("should've unrevoked without error, but got one: %s", err)
				}

				if request.Status != models.RequestStatusComplete {
					return fmt.Errorf("request should be COMPLETE, got %s", request.Status)
				}

				serials, ok := request.ExtData.GetStrings(models.ExtOldSerials)
				if !ok || len(serials) != 1 {
					return fmt.Errorf("request should carry one serial under OLD_SERIALS")
				}

				_, record, readErr := stack.certsRepo.SelectExistsBySerialNumber(context.Background(), serials[0])
				if readErr != nil {
					return fmt.Errorf("could not read back certificate: %s", readErr)
				}

				if record.Status != models.StatusValid {
					return fmt.Errorf("certificate should be back to VALID, got %s", record.Status)
				}

				if record.RevokedBy != "" || !record.RevocationTimestamp.IsZero() {
					return fmt.Errorf("revocation bookkeeping should be cleared")
				}

				return nil
			},
		},
		{
			name: "Err/NotOnHold",
			run: func(stack *caTestStack) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-2")
				_, err := stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					Reason:       models.RevocationReasonKeyCompromise,
					RequesterID:  "agent-1",
				})
				if err != nil {
					t.Fatalf("could not revoke certificate: %s", err)
				}

				return stack.revocation.UnrevokeCertificate(context.Background(), UnrevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				var svcErr *errs.ServiceError
				if !errors.As(err, &svcErr) {
					return fmt.Errorf("expected a ServiceError for a keyCompromise unrevocation, got: %v", err)
				}

				serials, _ := request.ExtData.GetStrings(models.ExtOldSerials)
				_, record, readErr := stack.certsRepo.SelectExistsBySerialNumber(context.Background(), serials[0])
				if readErr != nil {
					return fmt.Errorf("could not read back certificate: %s", readErr)
				}

				if record.Status != models.StatusRevoked {
					return fmt.Errorf("certificate should stay REVOKED, got %s", record.Status)
				}

				return nil
			},
		},
		{
			name: "Err/CertificateNotFound",
			run: func(stack *caTestStack) (*models.Request, error) {
				return stack.revocation.UnrevokeCertificate(context.Background(), UnrevokeCertificateInput{
					SerialNumber: "deadbeef",
					RequesterID:  "agent-1",
				})
			},
			resultCheck: func(stack *caTestStack, request *models.Request, err error) error {
				if !errors.Is(err, errs.ErrCertificateNotFound) {
					return fmt.Errorf("expected ErrCertificateNotFound, got: %s", err)
				}

				return nil
			},
		},
	}

	for _, tc := range testcases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			stack := buildCATestStack(t)

			request, err := tc.run(stack)
			if checkErr := tc.resultCheck(stack, request, err); checkErr != nil {
				t.Fatalf("unexpected result in test case: %s", checkErr)
			}
		})
	}
}

func TestRevokeCertificateNonces(t *testing.T) {
	var testcases = []struct {
		name        string
		run         func(stack *caTestStack, nonces *NonceManager) (*models.Request, error)
		resultCheck func(err error) error
	}{
		{
			name: "OK/IssuedNonce",
			run: func(stack *caTestStack, nonces *NonceManager) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-1")
				nonce, err := nonces.Issue("session-1", NonceOpRevoke, record.SerialNumber)
				if err != nil {
					t.Fatalf("could not issue nonce: %s", err)
				}

				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					Reason:       models.RevocationReasonSuperseded,
					RequesterID:  "agent-1",
					Nonce:        &nonce,
					SessionID:    "session-1",
				})
			},
			resultCheck: func(err error) error {
				if err != nil {
					return fmt.Errorf("revocation with a valid nonce should succeed, got: %s", err)
				}
				return nil
			},
		},
		{
			name: "Err/MissingNonce",
			run: func(stack *caTestStack, nonces *NonceManager) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-2")
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					RequesterID:  "agent-1",
					SessionID:    "session-1",
				})
			},
			resultCheck: func(err error) error {
				if !errors.Is(err, errs.ErrNonceNotFound) {
					return fmt.Errorf("expected ErrNonceNotFound, got: %s", err)
				}
				return nil
			},
		},
		{
			name: "Err/WrongNonce",
			run: func(stack *caTestStack, nonces *NonceManager) (*models.Request, error) {
				record := stack.issueCertificate(t, "device-3")
				_, err := nonces.Issue("session-1", NonceOpRevoke, record.SerialNumber)
				if err != nil {
					t.Fatalf("could not issue nonce: %s", err)
				}

				wrong := int64(12345)
				return stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
					SerialNumber: record.SerialNumber,
					RequesterID:  "agent-1",
					Nonce:        &wrong,
					SessionID:    "session-1",
				})
			},
			resultCheck: func(err error) error {
				if !errors.Is(err, errs.ErrNonceMismatch) {
					return fmt.Errorf("expected ErrNonceMismatch, got: %s", err)
				}
				return nil
			},
		},
	}

	for _, tc := range testcases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			stack := buildCATestStack(t)
			nonces := NewNonceManager(stack.revocation.(*RevocationServiceBackend).logger, time.Minute, 10)
			stack.revocation.(*RevocationServiceBackend).nonces = nonces

			_, err := tc.run(stack, nonces)
			if checkErr := tc.resultCheck(err); checkErr != nil {
				t.Fatalf("unexpected result in test case: %s", checkErr)
			}
		})
	}
}

func TestRevokeCertificatesByFilter(t *testing.T) {
	stack := buildCATestStack(t)

	for i := 0; i < 4; i++ {
		stack.issueCertificate(t, fmt.Sprintf("fleet-device-%d", i))
	}
	stack.issueCertificate(t, "unrelated-device")

	// an already revoked match is skipped, not fatal to the batch
	held := stack.issueCertificate(t, "fleet-device-held")
	_, err := stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
		SerialNumber: held.SerialNumber,
		Reason:       models.RevocationReasonCertificateHold,
		RequesterID:  "agent-1",
	})
	if err != nil {
		t.Fatalf("could not place hold: %s", err)
	}

	request, err := stack.revocation.RevokeCertificatesByFilter(context.Background(), RevokeCertificatesByFilterInput{
		QueryParameters: &resources.QueryParameters{
			Sort: resources.SortOptions{
				SortMode:  resources.SortModeAsc,
				SortField: "serial_number",
			},
			Filters: []resources.FilterOption{
				{
					Field:           "subject_common_name",
					FilterOperation: resources.StringContains,
					Value:           "fleet-device",
				},
			},
		},
		Reason:      models.RevocationReasonCessationOfOperation,
		RequesterID: "agent-1",
	})
	if err != nil {
		t.Fatalf("could not revoke by filter: %s", err)
	}

	if request.Status != models.RequestStatusComplete {
		t.Fatalf("unexpected request status: %s", request.Status)
	}

	revoked, ok := request.ExtData.GetRevoked(models.ExtRevokedCerts)
	if !ok || len(revoked) != 4 {
		t.Fatalf("expected 4 revoked entries, got %d", len(revoked))
	}

	// the batch preserves the search order (serials ascending)
	for i := 1; i < len(revoked); i++ {
		if revoked[i-1].SerialNumber >= revoked[i].SerialNumber {
			t.Fatalf("revoked entries out of order: %s before %s", revoked[i-1].SerialNumber, revoked[i].SerialNumber)
		}
	}

	for _, entry := range revoked {
		record, err := stack.revocation.GetCertificateBySerialNumber(context.Background(), GetCertificateBySerialNumberInput{SerialNumber: entry.SerialNumber})
		if err != nil {
			t.Fatalf("could not read back certificate %s: %s", entry.SerialNumber, err)
		}
		if record.Status != models.StatusRevoked {
			t.Fatalf("certificate %s not revoked", entry.SerialNumber)
		}
		if entry.SerialNumber == held.SerialNumber {
			t.Fatal("held certificate should have been skipped by the batch")
		}
	}
}

func TestRevokeCertificatesByFilterNoMatch(t *testing.T) {
	stack := buildCATestStack(t)
	stack.issueCertificate(t, "device-1")

	_, err := stack.revocation.RevokeCertificatesByFilter(context.Background(), RevokeCertificatesByFilterInput{
		QueryParameters: &resources.QueryParameters{
			Filters: []resources.FilterOption{
				{
					Field:           "subject_common_name",
					FilterOperation: resources.StringContains,
					Value:           "no-such-device",
				},
			},
		},
		Reason:      models.RevocationReasonSuperseded,
		RequesterID: "agent-1",
	})
	if !errors.Is(err, errs.ErrCertificateNotFound) {
		t.Fatalf("expected ErrCertificateNotFound for an empty match, got: %s", err)
	}
}

type countingEventPublisher struct {
	published int
}

func (p *countingEventPublisher) PublishCloudEvent(ctx context.Context, payload interface{}) {
	p.published++
}

func TestAuditChangeRequestProcessedFilter(t *testing.T) {
	publisher := &countingEventPublisher{}

	proc, err := NewRevocationProcessor(RevocationProcessorBuilder{
		Settings: RevocationSettings{
			Authority:    "test-ca",
			SerialNumber: "64",
			Reason:       models.RevocationReasonUnspecified,
			RequestType:  models.RequestTypeRevocation,
		},
		EventPublisher: publisher,
	})
	if err != nil {
		t.Fatalf("could not build processor: %s", err)
	}

	var testcases = []struct {
		status models.RequestStatus
		emits  bool
	}{
		{status: models.RequestStatusComplete, emits: true},
		{status: models.RequestStatusRejected, emits: true},
		{status: models.RequestStatusCanceled, emits: true},
		{status: models.RequestStatusPending, emits: false},
		{status: models.RequestStatusBegin, emits: false},
		{status: models.RequestStatusSvcPending, emits: false},
	}

	for _, tc := range testcases {
		before := publisher.published
		proc.AuditChangeRequestProcessed(context.Background(), &models.Request{
			ID:     "req-1",
			Status: tc.status,
		}, models.AuditOutcomeSuccess)

		emitted := publisher.published - before
		if tc.emits && emitted != 1 {
			t.Fatalf("status %s should emit exactly one event, got %d", tc.status, emitted)
		}
		if !tc.emits && emitted != 0 {
			t.Fatalf("status %s should not emit, got %d", tc.status, emitted)
		}
	}
}

func TestRevokeCertificateOnHoldDisabled(t *testing.T) {
	stack := buildCATestStack(t)
	backend := stack.revocation.(*RevocationServiceBackend)
	backend.allowOnHold = false

	record := stack.issueCertificate(t, "device-1")

	_, err := stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
		SerialNumber: record.SerialNumber,
		Reason:       models.RevocationReasonCertificateHold,
		RequesterID:  "agent-1",
	})
	if !errors.Is(err, errs.ErrOnHoldNotAllowed) {
		t.Fatalf("expected ErrOnHoldNotAllowed, got: %s", err)
	}
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("hold rejection should be unauthorized, got: %s", err)
	}

	count, err := stack.requestsRepo.Count(context.Background())
	if err != nil {
		t.Fatalf("could not count requests: %s", err)
	}
	if count != 0 {
		t.Fatalf("no request should be created for a disabled hold, got %d", count)
	}

	_, err = stack.revocation.RevokeCertificatesByFilter(context.Background(), RevokeCertificatesByFilterInput{
		QueryParameters: &resources.QueryParameters{},
		Reason:          models.RevocationReasonCertificateHold,
		RequesterID:     "agent-1",
	})
	if !errors.Is(err, errs.ErrOnHoldNotAllowed) {
		t.Fatalf("batch holds should also be rejected, got: %s", err)
	}

	// other reasons stay allowed
	request, err := stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
		SerialNumber: record.SerialNumber,
		Reason:       models.RevocationReasonKeyCompromise,
		RequesterID:  "agent-1",
	})
	if err != nil {
		t.Fatalf("non-hold revocation should pass: %s", err)
	}
	if request.Status != models.RequestStatusComplete {
		t.Fatalf("unexpected request status: %s", request.Status)
	}
}

func TestUnrevokeAllowedWhileHoldsDisabled(t *testing.T) {
	stack := buildCATestStack(t)
	record := stack.issueCertificate(t, "device-1")

	// place the hold while enabled, then disable
	_, err := stack.revocation.RevokeCertificate(context.Background(), RevokeCertificateInput{
		SerialNumber: record.SerialNumber,
		Reason:       models.RevocationReasonCertificateHold,
		RequesterID:  "agent-1",
	})
	if err != nil {
		t.Fatalf("could not place hold: %s", err)
	}

	stack.revocation.(*RevocationServiceBackend).allowOnHold = false

	_, err = stack.revocation.UnrevokeCertificate(context.Background(), UnrevokeCertificateInput{
		SerialNumber: record.SerialNumber,
		RequesterID:  "agent-1",
	})
	if err != nil {
		t.Fatalf("existing holds must stay releasable: %s", err)
	}

	released, err := stack.revocation.GetCertificateBySerialNumber(context.Background(), GetCertificateBySerialNumberInput{SerialNumber: record.SerialNumber})
	if err != nil {
		t.Fatalf("could not read certificate: %s", err)
	}
	if released.Status != models.StatusValid {
		t.Fatalf("certificate should be valid after release, got %s", released.Status)
	}
}
