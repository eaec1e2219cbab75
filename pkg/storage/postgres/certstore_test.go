package postgres

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/veridiapki/veridia/pkg/config"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

func buildCertRepo(t *testing.T) storage.CertificatesRepo {
	log := helpers.SetupLogger(config.Info, "Test Case", "Storage")

	db, err := CreateSQLiteDBConnection(log, config.SQLitePSEConfig{
		DatabasePath: filepath.Join(t.TempDir(), "ca.db"),
	}, "ca")
	if err != nil {
		t.Fatalf("could not create sqlite connection: %s", err)
	}

	repo, err := NewCertificateRepository(log, db)
	if err != nil {
		t.Fatalf("could not initialize certificate storage: %s", err)
	}

	return repo
}

func insertCertificates(t *testing.T, repo storage.CertificatesRepo, count int) []*models.Certificate {
	records := make([]*models.Certificate, 0, count)

	for i := 0; i < count; i++ {
		record, err := repo.Insert(context.Background(), &models.Certificate{
			SerialNumber: fmt.Sprintf("%02x", i),
			Status:       models.StatusValid,
			Subject:      models.Subject{CommonName: fmt.Sprintf("device-%d", i)},
			SubjectDN:    fmt.Sprintf("CN=device-%d", i),
			IssuerDN:     "CN=TestCA",
			ValidFrom:    time.Now(),
			ValidTo:      time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("could not insert certificate: %s", err)
		}

		records = append(records, record)
	}

	return records
}

func TestCertificateCRUD(t *testing.T) {
	repo := buildCertRepo(t)

	inserted := insertCertificates(t, repo, 1)[0]

	exists, record, err := repo.SelectExistsBySerialNumber(context.Background(), inserted.SerialNumber)
	if err != nil {
		t.Fatalf("could not read certificate: %s", err)
	}

	if !exists {
		t.Fatalf("inserted certificate should exist")
	}

	if record.Subject.CommonName != "device-0" {
		t.Fatalf("embedded subject should round-trip, got %q", record.Subject.CommonName)
	}

	record.Status = models.StatusRevoked
	record.RevocationReason = models.RevocationReasonKeyCompromise
	record.RevocationTimestamp = time.Now()

	_, err = repo.Update(context.Background(), record)
	if err != nil {
		t.Fatalf("could not update certificate: %s", err)
	}

	_, reread, err := repo.SelectExistsBySerialNumber(context.Background(), inserted.SerialNumber)
	if err != nil {
		t.Fatalf("could not reread certificate: %s", err)
	}

	if reread.Status != models.StatusRevoked {
		t.Fatalf("status update should persist, got %s", reread.Status)
	}

	if reread.RevocationReason != models.RevocationReasonKeyCompromise {
		t.Fatalf("revocation reason should round-trip through the text serializer, got %s", reread.RevocationReason)
	}

	err = repo.Delete(context.Background(), inserted.SerialNumber)
	if err != nil {
		t.Fatalf("could not delete certificate: %s", err)
	}

	exists, _, err = repo.SelectExistsBySerialNumber(context.Background(), inserted.SerialNumber)
	if err != nil {
		t.Fatalf("could not read certificate after delete: %s", err)
	}

	if exists {
		t.Fatalf("deleted certificate should not exist")
	}
}

func TestCertificatePagination(t *testing.T) {
	repo := buildCertRepo(t)
	insertCertificates(t, repo, 25)

	seen := []string{}
	bookmark := ""
	pages := 0

	for {
		collected := []string{}
		next, err := repo.SelectAll(context.Background(), storage.StorageListRequest[models.Certificate]{
			QueryParams: &resources.QueryParameters{
				PageSize:     10,
				NextBookmark: bookmark,
				Sort: resources.SortOptions{
					SortField: "serial_number",
					SortMode:  resources.SortModeAsc,
				},
			},
			ApplyFunc: func(cert models.Certificate) {
				collected = append(collected, cert.SerialNumber)
			},
		})
		if err != nil {
			t.Fatalf("could not list certificates: %s", err)
		}

		seen = append(seen, collected...)
		pages++

		if next == "" {
			break
		}

		bookmark = next

		if pages > 10 {
			t.Fatalf("pagination did not terminate")
		}
	}

	if len(seen) != 25 {
		t.Fatalf("pagination should visit all 25 certificates, got %d", len(seen))
	}

	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Fatalf("results should be sorted ascending, got %s before %s", seen[i-1], seen[i])
		}
	}
}

func TestCertificateExhaustiveRun(t *testing.T) {
	repo := buildCertRepo(t)
	insertCertificates(t, repo, 25)

	count := 0
	_, err := repo.SelectAll(context.Background(), storage.StorageListRequest[models.Certificate]{
		ExhaustiveRun: true,
		QueryParams:   &resources.QueryParameters{PageSize: 10},
		ApplyFunc: func(cert models.Certificate) {
			count++
		},
	})
	if err != nil {
		t.Fatalf("could not list certificates: %s", err)
	}

	if count != 25 {
		t.Fatalf("exhaustive run should visit all 25 certificates, got %d", count)
	}
}

func TestCertificateFilters(t *testing.T) {
	repo := buildCertRepo(t)
	records := insertCertificates(t, repo, 5)

	records[0].Status = models.StatusRevoked
	if _, err := repo.Update(context.Background(), records[0]); err != nil {
		t.Fatalf("could not update certificate: %s", err)
	}

	revoked := 0
	_, err := repo.SelectByStatus(context.Background(), models.StatusRevoked, storage.StorageListRequest[models.Certificate]{
		ExhaustiveRun: true,
		QueryParams:   &resources.QueryParameters{},
		ApplyFunc: func(cert models.Certificate) {
			revoked++
		},
	})
	if err != nil {
		t.Fatalf("could not list revoked certificates: %s", err)
	}

	if revoked != 1 {
		t.Fatalf("expected one revoked certificate, got %d", revoked)
	}

	matched := 0
	_, err = repo.SelectAll(context.Background(), storage.StorageListRequest[models.Certificate]{
		ExhaustiveRun: true,
		QueryParams: &resources.QueryParameters{
			Filters: []resources.FilterOption{
				{
					Field:           "subject_common_name",
					FilterOperation: resources.StringContains,
					Value:           "device-2",
				},
			},
		},
		ApplyFunc: func(cert models.Certificate) {
			matched++
		},
	})
	if err != nil {
		t.Fatalf("could not filter certificates: %s", err)
	}

	if matched != 1 {
		t.Fatalf("expected one certificate matching the common-name filter, got %d", matched)
	}

	count, err := repo.CountByStatus(context.Background(), models.StatusValid)
	if err != nil {
		t.Fatalf("could not count valid certificates: %s", err)
	}

	if count != 4 {
		t.Fatalf("expected four valid certificates, got %d", count)
	}
}

func TestCertificateColumnRoundTrip(t *testing.T) {
	repo := buildCertRepo(t)

	caCert, caKey, err := helpers.GenerateSelfSignedCA(x509.ECDSA, time.Hour, "TestCA")
	if err != nil {
		t.Fatalf("could not generate CA: %s", err)
	}

	cert, _, err := helpers.GenerateCertificate(caCert, caKey, time.Hour, "device-1")
	if err != nil {
		t.Fatalf("could not issue certificate: %s", err)
	}

	serial := helpers.SerialNumberToHexString(cert.SerialNumber)
	_, err = repo.Insert(context.Background(), &models.Certificate{
		SerialNumber: serial,
		Status:       models.StatusValid,
		Certificate:  (*models.X509Certificate)(cert),
		Subject:      helpers.PkixNameToSubject(cert.Subject),
		SubjectDN:    cert.Subject.String(),
		IssuerDN:     cert.Issuer.String(),
		ValidFrom:    cert.NotBefore,
		ValidTo:      cert.NotAfter,
	})
	if err != nil {
		t.Fatalf("could not insert certificate: %s", err)
	}

	exists, record, err := repo.SelectExistsBySerialNumber(context.Background(), serial)
	if err != nil {
		t.Fatalf("could not read certificate: %s", err)
	}

	if !exists {
		t.Fatal("inserted certificate should exist")
	}

	if record.Certificate == nil {
		t.Fatal("certificate column should round-trip")
	}

	if !bytes.Equal(record.Certificate.Raw, cert.Raw) {
		t.Fatal("certificate DER should survive the text column round trip")
	}

	parsed := (*x509.Certificate)(record.Certificate)
	if parsed.Subject.CommonName != "device-1" {
		t.Fatalf("unexpected common name after round trip: %q", parsed.Subject.CommonName)
	}
}
