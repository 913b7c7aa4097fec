package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/ledger"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
)

// Service streams CSV snapshots of the ledger and the audit trail.
type Service interface {
	StockCSV(ctx context.Context, w io.Writer) error
	LogsCSV(ctx context.Context, w io.Writer, filter auditlog.Filter) error
}

type service struct {
	stock ledger.Service
	audit auditlog.Service
}

// NewService wires the exporter.
func NewService(stock ledger.Service, audit auditlog.Service) (Service, error) {
	if stock == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit log service required")
	}
	return &service{stock: stock, audit: audit}, nil
}

// StockCSV writes every part as one flat row.
func (s *service) StockCSV(ctx context.Context, w io.Writer) error {
	parts, err := s.stock.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "quantity", "rack", "row", "bin", "location"}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, part := range parts {
		row := []string{
			part.ID,
			part.Name,
			strconv.Itoa(part.Quantity),
			part.Location.Rack,
			part.Location.Row,
			part.Location.Bin,
			part.Location.String(),
		}
		if err := cw.Write(row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

// LogsCSV writes the audit trail newest-first, honoring the given filter.
func (s *service) LogsCSV(ctx context.Context, w io.Writer, filter auditlog.Filter) error {
	entries, err := s.audit.List(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "timestamp", "operatorId", "action", "partId", "partName", "quantityChange", "remaining"}
	if err := cw.Write(header); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, entry := range entries {
		row := []string{
			entry.ID,
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.OperatorID,
			entry.Action.String(),
			deref(entry.PartID),
			deref(entry.PartName),
			strconv.Itoa(entry.QuantityChange),
			derefInt(entry.Remaining),
		}
		if err := cw.Write(row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
