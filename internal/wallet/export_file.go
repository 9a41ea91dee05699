package wallet

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/filex"
	"github.com/dmitrijs2005/revpay/internal/models"
)

// FileExporter writes CSV exports into a subdirectory of the working
// directory. It is the fallback destination when no object storage is
// configured.
type FileExporter struct {
	Dir string
}

// Upload serializes the transaction sequence to CSV and writes it to a
// timestamped file under Dir, returning the file path. Failures are
// reported as ErrExport.
func (e *FileExporter) Upload(ctx context.Context, accountID string, transactions iter.Seq2[*models.Transaction, error]) (string, error) {
	var buf bytes.Buffer
	if err := ExportCSV(transactions, &buf); err != nil {
		return "", err
	}

	dir, err := filex.EnsureSubDir(e.Dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrExport, err)
	}

	name := fmt.Sprintf("history-%s-%s.csv", accountID, time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o660); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrExport, err)
	}
	return path, nil
}
