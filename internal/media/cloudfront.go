package media

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/cloudfront/sign"

	"streamhub-backend-go/internal/core"
)

// CloudFrontSigner produces canned-policy signed URLs for the CDN
// distribution fronting the HLS bucket.
type CloudFrontSigner struct {
	domain string
	signer *sign.URLSigner
}

// NewCloudFrontSigner loads the RSA private key from privateKeyPath and
// builds a signer for the given distribution domain and key pair id.
func NewCloudFrontSigner(domain, keyPairID, privateKeyPath string) (*CloudFrontSigner, error) {
	pemBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CloudFront private key: %w", err)
	}
	privateKey, err := parseRSAPrivateKey(pemBytes)
	if err != nil {
		return nil, err
	}
	return &CloudFrontSigner{
		domain: strings.TrimSuffix(domain, "/"),
		signer: sign.NewURLSigner(keyPairID, privateKey),
	}, nil
}

var _ core.MediaSigner = (*CloudFrontSigner)(nil)

// SignedStreamURL signs a playback URL valid until expiresAt. path may be a
// bare object path or a full URL on the distribution domain.
func (c *CloudFrontSigner) SignedStreamURL(path string, expiresAt time.Time) (string, error) {
	rawURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		rawURL = fmt.Sprintf("https://%s/%s", c.domain, strings.TrimPrefix(path, "/"))
	}
	signed, err := c.signer.Sign(rawURL, expiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL: %w", err)
	}
	return signed, nil
}

// PassthroughSigner returns URLs unchanged. Wired in local development when
// no CDN key pair is configured.
type PassthroughSigner struct{}

var _ core.MediaSigner = PassthroughSigner{}

func (PassthroughSigner) SignedStreamURL(path string, _ time.Time) (string, error) {
	return path, nil
}

func parseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in CloudFront private key")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CloudFront private key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("CloudFront private key is not RSA")
	}
	return rsaKey, nil
}
