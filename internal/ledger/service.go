package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/pkg/db"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/metrics"
	"gorm.io/gorm"
)

// defaultPartName fills in when a part is created without a name.
const defaultPartName = "Unnamed Part"

// resetLogPartID marks the synthetic audit entry written by a full reset.
const (
	resetLogPartID   = "ALL"
	resetLogPartName = "All Stock Reset"
)

// Service is the stock ledger. Every quantity change flows through here and
// commits atomically with its audit log entry.
type Service interface {
	Create(ctx context.Context, actorID string, input CreatePartInput) (*models.Part, error)
	Take(ctx context.Context, operatorID, partID string) (*models.Part, error)
	Restock(ctx context.Context, operatorID, partID string, amount int) (*models.Part, error)
	Update(ctx context.Context, actorID, partID string, input UpdatePartInput) (*models.Part, error)
	Remove(ctx context.Context, actorID, partID string) error
	ResetAll(ctx context.Context, actorID string, quantity int) (int64, error)
	Get(ctx context.Context, partID string) (*models.Part, error)
	List(ctx context.Context) ([]models.Part, error)
	Search(ctx context.Context, query string) ([]models.Part, error)
	PartsAtLocation(ctx context.Context, label string) ([]models.Part, error)
	LowStock(ctx context.Context) ([]models.Part, error)
}

// CreatePartInput describes a new part.
type CreatePartInput struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Image    *string         `json:"image"`
	Location models.Location `json:"location"`
}

// UpdatePartInput carries a partial edit. Nil fields are left untouched.
type UpdatePartInput struct {
	Name        *string          `json:"name"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0"`
	Image       *string          `json:"image"`
	RemoveImage bool             `json:"removeImage"`
	Location    *models.Location `json:"location"`
}

type service struct {
	dbc       *db.Client
	repo      *Repository
	audit     auditlog.Service
	publisher ChangePublisher
	mutations *metrics.MutationMetrics
	logg      *logger.Logger
	threshold int
}

// NewService wires the ledger. The publisher and metrics may be nil.
func NewService(
	dbc *db.Client,
	audit auditlog.Service,
	publisher ChangePublisher,
	mutations *metrics.MutationMetrics,
	logg *logger.Logger,
	lowStockThreshold int,
) (Service, error) {
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit log service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if publisher == nil {
		publisher = NopChangePublisher{}
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}
	return &service{
		dbc:       dbc,
		repo:      NewRepository(dbc.DB()),
		audit:     audit,
		publisher: publisher,
		mutations: mutations,
		logg:      logg,
		threshold: lowStockThreshold,
	}, nil
}

func (s *service) Create(ctx context.Context, actorID string, input CreatePartInput) (*models.Part, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}
	if err := validateLocation(input.Location); err != nil {
		return nil, err
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultPartName
	}

	part := &models.Part{
		ID:       id,
		Name:     name,
		Quantity: input.Quantity,
		Image:    input.Image,
		Location: input.Location,
	}

	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err == nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateID, "part id already exists").WithDetails(id)
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check part id")
		}
		if err := repo.Insert(ctx, part); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeDuplicateID, "part id already exists").WithDetails(id)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert part")
		}
		_, err := s.audit.Record(ctx, tx, auditlog.RecordInput{
			OperatorID:     actorID,
			Action:         enums.LogActionCreate,
			PartID:         &part.ID,
			PartName:       &part.Name,
			QuantityChange: part.Quantity,
			Remaining:      intPtr(part.Quantity),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, enums.LogActionCreate, actorID, part.ID)
	return part, nil
}

func (s *service) Take(ctx context.Context, operatorID, partID string) (*models.Part, error) {
	if operatorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id required")
	}
	if partID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}

	var taken *models.Part
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ok, err := repo.DecrementOne(ctx, partID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "take part")
		}
		if !ok {
			// Distinguish an unknown part from an empty bin. Neither case
			// writes a log entry.
			if _, err := repo.FindByID(ctx, partID); err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
			} else if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load part")
			}
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "out of stock").WithDetails(partID)
		}

		part, err := repo.FindByID(ctx, partID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load part after take")
		}
		taken = part

		_, err = s.audit.Record(ctx, tx, auditlog.RecordInput{
			OperatorID:     operatorID,
			Action:         enums.LogActionTake,
			PartID:         &part.ID,
			PartName:       &part.Name,
			QuantityChange: -1,
			Remaining:      intPtr(part.Quantity),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, enums.LogActionTake, operatorID, partID)
	return taken, nil
}

func (s *service) Restock(ctx context.Context, operatorID, partID string, amount int) (*models.Part, error) {
	if operatorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id required")
	}
	if partID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock amount must be positive")
	}

	var restocked *models.Part
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ok, err := repo.IncrementBy(ctx, partID, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock part")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}

		part, err := repo.FindByID(ctx, partID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load part after restock")
		}
		restocked = part

		_, err = s.audit.Record(ctx, tx, auditlog.RecordInput{
			OperatorID:     operatorID,
			Action:         enums.LogActionRestock,
			PartID:         &part.ID,
			PartName:       &part.Name,
			QuantityChange: amount,
			Remaining:      intPtr(part.Quantity),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, enums.LogActionRestock, operatorID, partID)
	return restocked, nil
}

func (s *service) Update(ctx context.Context, actorID, partID string, input UpdatePartInput) (*models.Part, error) {
	if partID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if input.Location != nil {
		if err := validateLocation(*input.Location); err != nil {
			return nil, err
		}
	}

	var updated *models.Part
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		part, err := repo.FindByID(ctx, partID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load part")
		}

		delta := 0
		if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
			part.Name = strings.TrimSpace(*input.Name)
		}
		if input.Quantity != nil {
			delta = *input.Quantity - part.Quantity
			part.Quantity = *input.Quantity
		}
		if input.RemoveImage {
			part.Image = nil
		} else if input.Image != nil {
			part.Image = input.Image
		}
		if input.Location != nil {
			part.Location = *input.Location
		}

		if err := repo.Save(ctx, part); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save part")
		}
		updated = part

		var remaining *int
		if delta != 0 {
			remaining = intPtr(part.Quantity)
		}
		_, err = s.audit.Record(ctx, tx, auditlog.RecordInput{
			OperatorID:     actorID,
			Action:         enums.LogActionUpdate,
			PartID:         &part.ID,
			PartName:       &part.Name,
			QuantityChange: delta,
			Remaining:      remaining,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, enums.LogActionUpdate, actorID, partID)
	return updated, nil
}

func (s *service) Remove(ctx context.Context, actorID, partID string) error {
	if partID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}

	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		part, err := repo.FindByID(ctx, partID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load part")
		}

		existed, err := repo.Delete(ctx, partID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete part")
		}
		if !existed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}

		// The removal entry records the stock written off with the part.
		_, err = s.audit.Record(ctx, tx, auditlog.RecordInput{
			OperatorID:     actorID,
			Action:         enums.LogActionDelete,
			PartID:         &part.ID,
			PartName:       &part.Name,
			QuantityChange: -part.Quantity,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.afterMutation(ctx, enums.LogActionDelete, actorID, partID)
	return nil
}

func (s *service) ResetAll(ctx context.Context, actorID string, quantity int) (int64, error) {
	if quantity < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	var touched int64
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.SetAllQuantities(ctx, quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset stock")
		}
		touched = count

		_, err = s.audit.Record(ctx, tx, auditlog.RecordInput{
			OperatorID: actorID,
			Action:     enums.LogActionReset,
			PartID:     strPtr(resetLogPartID),
			PartName:   strPtr(resetLogPartName),
			Remaining:  intPtr(quantity),
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	s.afterMutation(ctx, enums.LogActionReset, actorID, resetLogPartID)
	return touched, nil
}

func (s *service) Get(ctx context.Context, partID string) (*models.Part, error) {
	part, err := s.repo.FindByID(ctx, partID)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
	} else if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load part")
	}
	return part, nil
}

func (s *service) List(ctx context.Context) ([]models.Part, error) {
	parts, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list parts")
	}
	return parts, nil
}

func (s *service) Search(ctx context.Context, query string) ([]models.Part, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	parts, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search parts")
	}
	return parts, nil
}

// PartsAtLocation returns parts whose rack-row-bin label matches a scanned
// location code.
func (s *service) PartsAtLocation(ctx context.Context, label string) ([]models.Part, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location label required")
	}
	parts, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list parts")
	}
	matched := make([]models.Part, 0, 4)
	for _, part := range parts {
		if strings.EqualFold(part.Location.String(), label) {
			matched = append(matched, part)
		}
	}
	return matched, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.Part, error) {
	parts, err := s.repo.BelowQuantity(ctx, s.threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list low stock parts")
	}
	return parts, nil
}

// afterMutation runs the post-commit hooks shared by every write path.
func (s *service) afterMutation(ctx context.Context, action enums.LogAction, actorID, partID string) {
	s.publisher.PublishChange(ctx)
	s.mutations.Inc(action.String())

	ctx = s.logg.WithOperatorID(ctx, actorID)
	ctx = s.logg.WithPartID(ctx, partID)
	ctx = s.logg.WithField(ctx, "action", action.String())
	s.logg.Info(ctx, "stock mutation committed")
}

func validateLocation(loc models.Location) error {
	if strings.TrimSpace(loc.Rack) == "" ||
		strings.TrimSpace(loc.Row) == "" ||
		strings.TrimSpace(loc.Bin) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "location rack, row and bin are required")
	}
	return nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
