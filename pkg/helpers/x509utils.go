package helpers

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/jakehl/goid"
	"github.com/veridiapki/veridia/pkg/models"
)

func GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func GenerateECDSAKey(curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func generateKey(keyType x509.PublicKeyAlgorithm) (crypto.Signer, crypto.PublicKey, error) {
	var key crypto.Signer
	var pubKey crypto.PublicKey

	switch keyType {
	case x509.RSA:
		rsaKey, err := GenerateRSAKey(2048)
		if err != nil {
			return nil, nil, err
		}
		key = rsaKey
		pubKey = &rsaKey.PublicKey
	case x509.ECDSA:
		eccKey, err := GenerateECDSAKey(elliptic.P256())
		if err != nil {
			return nil, nil, err
		}
		key = eccKey
		pubKey = &eccKey.PublicKey
	default:
		return nil, nil, fmt.Errorf("unsupported key type: %s", keyType)
	}

	return key, pubKey, nil
}

func GenerateSelfSignedCA(keyType x509.PublicKeyAlgorithm, expirationTime time.Duration, commonName string) (*x509.Certificate, crypto.Signer, error) {
	key, pubKey, err := generateKey(keyType)
	if err != nil {
		return nil, nil, err
	}

	sn, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 160))
	template := x509.Certificate{
		SerialNumber: sn,
		Subject: pkix.Name{
			CommonName: commonName,
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(expirationTime),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		SubjectKeyId:          []byte(goid.NewV4UUID().String()),
		IsCA:                  true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, pubKey, key)
	if err != nil {
		return nil, nil, err
	}

	cert, err := x509.ParseCertificate(derBytes)
	if err != nil {
		return nil, nil, err
	}

	return cert, key, nil
}

// GenerateCertificate issues a leaf certificate signed by the given CA.
func GenerateCertificate(ca *x509.Certificate, caKey crypto.Signer, expirationTime time.Duration, commonName string) (*x509.Certificate, crypto.Signer, error) {
	key, pubKey, err := generateKey(x509.ECDSA)
	if err != nil {
		return nil, nil, err
	}

	sn, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 160))
	template := x509.Certificate{
		SerialNumber: sn,
		Subject: pkix.Name{
			CommonName: commonName,
		},
		NotBefore:   time.Now(),
		NotAfter:    time.Now().Add(expirationTime),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, ca, pubKey, caKey)
	if err != nil {
		return nil, nil, err
	}

	cert, err := x509.ParseCertificate(derBytes)
	if err != nil {
		return nil, nil, err
	}

	return cert, key, nil
}

func PkixNameToSubject(name pkix.Name) models.Subject {
	subject := models.Subject{
		CommonName: name.CommonName,
	}

	if len(name.Country) > 0 {
		subject.Country = name.Country[0]
	}
	if len(name.Organization) > 0 {
		subject.Organization = name.Organization[0]
	}
	if len(name.OrganizationalUnit) > 0 {
		subject.OrganizationUnit = name.OrganizationalUnit[0]
	}
	if len(name.Locality) > 0 {
		subject.Locality = name.Locality[0]
	}
	if len(name.Province) > 0 {
		subject.State = name.Province[0]
	}

	return subject
}
