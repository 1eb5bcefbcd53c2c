package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/utils"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultRecordingsPrefix = "recordings/"
	defaultRecordingExt     = ".wav"
	maxRecordingBytes       = 100 << 20
)

var (
	ErrNoRecording   = errors.New("case has no recording")
	ErrRecordingHost = errors.New("recording host is not allowed")
)

// DefaultRecordingHosts is where the voice vendor serves call recordings.
var DefaultRecordingHosts = []string{"storage.vapi.ai"}

// ObjectPutter is the part of the S3 client the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// RecordingArchive copies voice call recordings from the vendor into a
// bucket we control, keyed by case ID. Recordings are only fetched over https
// from an allowed host or one of its subdomains, redirects included.
type RecordingArchive struct {
	client     ObjectPutter
	bucket     string
	prefix     string
	hosts      []string
	httpClient *http.Client
}

// NewRecordingArchive uses DefaultRecordingHosts when allowedHosts is empty.
func NewRecordingArchive(client ObjectPutter, bucket, prefix string, allowedHosts []string) *RecordingArchive {
	if prefix == "" {
		prefix = defaultRecordingsPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var hosts []string
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	if len(hosts) == 0 {
		hosts = DefaultRecordingHosts
	}

	a := &RecordingArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		hosts:  hosts,
	}
	a.httpClient = &http.Client{
		Timeout: 2 * time.Minute,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return a.checkSource(req.URL)
		},
	}

	return a
}

func (a *RecordingArchive) Bucket() string {
	return a.bucket
}

// Archive downloads the case's recording and uploads it, returning the object
// key.
func (a *RecordingArchive) Archive(ctx context.Context, c *types.Case) (string, error) {
	source := utils.PtrString(c.VapiAudioURL)
	if source == "" {
		return "", ErrNoRecording
	}

	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse recording url: %w", err)
	}
	if err := a.checkSource(u); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create recording request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch recording: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordingBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read recording: %w", err)
	}
	if len(data) > maxRecordingBytes {
		return "", fmt.Errorf("recording exceeds %d bytes", maxRecordingBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := a.key(c.CaseID, source)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			"case-number": c.CaseNumber,
			"report-id":   c.ReportID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload recording: %w", err)
	}

	return key, nil
}

func (a *RecordingArchive) checkSource(u *url.URL) error {
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrRecordingHost, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	for _, allowed := range a.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrRecordingHost, host)
}

func (a *RecordingArchive) key(caseID, source string) string {
	ext := defaultRecordingExt
	if u, err := url.Parse(source); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); len(e) > 1 && len(e) <= 5 {
			ext = e
		}
	}
	return a.prefix + caseID + ext
}
