package crudsvc

import (
	"fmt"

	"github.com/goliatone/go-activities/crudguard"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultMaxBatch bounds the records accepted by one batch request.
const DefaultMaxBatch = 50

const (
	textCodeOperationDisabled = "ACTIVITY_OPERATION_DISABLED"
	textCodeBatchTooLarge     = "ACTIVITY_BATCH_TOO_LARGE"
	textCodeInvalidID         = "ACTIVITY_INVALID_ID"
	textCodeMissingHandler    = "ACTIVITY_HANDLER_MISSING"
)

// GuardAdapter is the part of crudguard.Adapter the services call.
type GuardAdapter interface {
	Enforce(in crudguard.GuardInput) (crudguard.GuardResult, error)
}

type serviceOptions struct {
	logger   types.Logger
	maxBatch int
}

// ServiceOption customizes the activity and reply services.
type ServiceOption func(*serviceOptions)

// WithLogger wires a logger for service diagnostics.
func WithLogger(logger types.Logger) ServiceOption {
	return func(cfg *serviceOptions) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMaxBatch caps CreateBatch and DeleteBatch. Values below 1 keep the
// default.
func WithMaxBatch(limit int) ServiceOption {
	return func(cfg *serviceOptions) {
		if limit > 0 {
			cfg.maxBatch = limit
		}
	}
}

func applyOptions(opts []ServiceOption) serviceOptions {
	cfg := serviceOptions{
		logger:   types.NopLogger{},
		maxBatch: DefaultMaxBatch,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// createEach runs create for every record, stopping at the first failure.
// Each record goes through its own command so counters stay per-record.
func createEach[T any](ctx crud.Context, limit int, records []T, create func(crud.Context, T) (T, error)) ([]T, error) {
	if err := checkBatch(limit, len(records)); err != nil {
		return nil, err
	}
	created := make([]T, 0, len(records))
	for _, record := range records {
		rec, err := create(ctx, record)
		if err != nil {
			return nil, err
		}
		created = append(created, rec)
	}
	return created, nil
}

func deleteEach[T any](ctx crud.Context, limit int, records []T, del func(crud.Context, T) error) error {
	if err := checkBatch(limit, len(records)); err != nil {
		return err
	}
	for _, record := range records {
		if err := del(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func checkBatch(limit, size int) error {
	if limit > 0 && size > limit {
		return goerrors.New(
			fmt.Sprintf("go-activities: batch of %d records exceeds the limit of %d", size, limit),
			goerrors.CategoryValidation,
		).WithCode(goerrors.CodeBadRequest).WithTextCode(textCodeBatchTooLarge)
	}
	return nil
}

func notSupported(op crud.CrudOperation) error {
	return goerrors.New(
		fmt.Sprintf("go-activities: %s is not supported, activities and replies are immutable", op),
		goerrors.CategoryValidation,
	).WithCode(goerrors.CodeBadRequest).WithTextCode(textCodeOperationDisabled)
}

func missingHandler(name string) error {
	return goerrors.New("go-activities: "+name+" missing", goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeMissingHandler)
}

func invalidID(name string) error {
	return goerrors.New("go-activities: invalid "+name, goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(textCodeInvalidID)
}

// WithCommandService is crud.WithService for controllers backed by the
// command/query layer.
func WithCommandService[T any](svc crud.Service[T]) crud.Option[T] {
	return crud.WithService(svc)
}
