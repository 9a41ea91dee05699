package wallet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/dmitrijs2005/revpay/internal/netx"
	"github.com/google/uuid"
)

// exportHeader is the fixed CSV header row.
var exportHeader = []string{"ID", "TYPE", "STATUS", "AMOUNT", "SENDER", "RECEIVER", "DATE", "NOTE"}

// exportPlaceholder renders a missing counterparty (withdrawals).
const exportPlaceholder = "N/A"

const exportDateLayout = "2006-01-02 15:04:05"

// ExportCSV writes the transaction sequence to w as CSV with the fixed
// header. Missing sender/receiver render as "N/A". Write failures are
// reported as ErrExport.
func ExportCSV(transactions iter.Seq2[*models.Transaction, error], w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("%w: %v", common.ErrExport, err)
	}

	for t, err := range transactions {
		if err != nil {
			return err
		}
		if err := cw.Write(exportRecord(t)); err != nil {
			return fmt.Errorf("%w: %v", common.ErrExport, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrExport, err)
	}
	return nil
}

func exportRecord(t *models.Transaction) []string {
	sender := t.SenderEmail
	if sender == "" {
		sender = exportPlaceholder
	}
	receiver := t.ReceiverEmail
	if receiver == "" {
		receiver = exportPlaceholder
	}
	return []string{
		t.ID,
		string(t.Type),
		string(t.Status),
		t.Amount.StringFixed(2),
		sender,
		receiver,
		t.CreatedAt.Format(exportDateLayout),
		t.Note,
	}
}

// S3Exporter uploads CSV exports to an S3-compatible bucket.
type S3Exporter struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	RootUser     string
	RootPassword string
}

func (e *S3Exporter) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(e.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.RootUser,
			e.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if e.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(e.BaseEndpoint)
		}
	}), nil
}

// Seams for testing uploads without a live bucket.
var (
	presignPutObject = func(ctx context.Context, pc *s3.PresignClient, in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, s3.WithPresignExpires(15*time.Minute))
	}
	uploadToURL = netx.PutToPresignedURL
)

// exportStorageKey produces a per-account, date-partitioned object key.
func exportStorageKey(accountID string) string {
	d := time.Now()
	return fmt.Sprintf("exports/%s/%d/%d/%d/%v.csv", accountID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Upload serializes the transaction sequence to CSV, presigns a PUT for the
// object key, and uploads the file over plain HTTP. Returns the object key.
// Upload failures are reported as ErrExport.
func (e *S3Exporter) Upload(ctx context.Context, accountID string, transactions iter.Seq2[*models.Transaction, error]) (string, error) {
	var buf bytes.Buffer
	if err := ExportCSV(transactions, &buf); err != nil {
		return "", err
	}

	client, err := e.client(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrExport, err)
	}

	key := exportStorageKey(accountID)
	req, err := presignPutObject(ctx, s3.NewPresignClient(client), &s3.PutObjectInput{
		Bucket: aws.String(e.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrExport, err)
	}

	if err := uploadToURL(req.URL, "text/csv", buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrExport, err)
	}
	return key, nil
}
