package service

import (
	"context"
	"errors"
	"sync"

	vehicleserrors "fleetbook/internal/vehicles/errors"
	"fleetbook/internal/vehicles/repository"
	"fleetbook/internal/vehicles/validator"
	"fleetbook/pkg/config"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
	"fleetbook/pkg/sanitizer"
)

type VehicleService interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	GetAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

type vehicleService struct {
	repo      repository.VehicleRepository
	validator *validator.VehicleValidator
	cfg       *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	validator *validator.VehicleValidator,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *vehicleService) Create(ctx context.Context, vehicle *model.Vehicle) error {
	vehicle.Name = sanitizer.SanitizeName(vehicle.Name)
	if vehicle.Availability == "" {
		vehicle.Availability = model.VehicleAvailable
	}
	// A vehicle never enters the fleet already reserved.
	if vehicle.Availability == model.VehicleReserved {
		return apperrors.InvalidInput("A new vehicle cannot be created in the reserved state")
	}
	vehicle.BookingID = ""
	vehicle.BookedByName = ""

	if err := s.validator.Validate(vehicle); err != nil {
		return apperrors.Validation("Vehicle validation failed", map[string]any{"errors": err.Error()})
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, vehicleserrors.ErrDuplicateRego) {
			return apperrors.Conflict("A vehicle with this registration number already exists")
		}
		s.cfg.Log.Error("Failed to create vehicle", "error", err)
		return apperrors.Internal("Failed to create vehicle", err)
	}

	s.cfg.Log.Info("Vehicle created",
		"id", vehicle.ID,
		"registration_no", vehicle.RegistrationNo,
	)
	return nil
}

func (s *vehicleService) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}

	return vehicle, nil
}

func (s *vehicleService) GetAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Vehicle, int64, error) {
	var count int64
	var vehicles []*model.Vehicle
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, onlyAvailable)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count vehicles", "error", errCount)
			errCount = apperrors.Internal("Failed to count vehicles", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		vehicles, errFind = s.repo.FindAll(ctx, onlyAvailable, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list vehicles", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve vehicles", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return vehicles, count, nil
}

func (s *vehicleService) Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error) {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Vehicle update validation failed", map[string]any{"errors": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.applyUpdates(existing, updates)

	if err := s.validator.Validate(existing); err != nil {
		return nil, apperrors.Validation("Vehicle validation failed", map[string]any{"errors": err.Error()})
	}

	if err := s.repo.Update(ctx, id, existing); err != nil {
		if errors.Is(err, vehicleserrors.ErrDuplicateRego) {
			return nil, apperrors.Conflict("A vehicle with this registration number already exists")
		}
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		s.cfg.Log.Error("Failed to update vehicle", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update vehicle", err)
	}

	return existing, nil
}

func (s *vehicleService) applyUpdates(vehicle *model.Vehicle, updates *model.VehicleUpdate) {
	if updates.Name != "" {
		vehicle.Name = sanitizer.SanitizeName(updates.Name)
	}
	if updates.RegistrationNo != "" {
		vehicle.RegistrationNo = updates.RegistrationNo
	}
	if updates.RatePerKM != nil {
		vehicle.RatePerKM = *updates.RatePerKM
	}
	if updates.RatePerHour != nil {
		vehicle.RatePerHour = *updates.RatePerHour
	}
	// Reserved is never set by hand; it is owned by the booking workflow.
	if updates.Availability != "" && vehicle.Availability != model.VehicleReserved {
		vehicle.Availability = model.VehicleAvailability(updates.Availability)
	}
}

func (s *vehicleService) Delete(ctx context.Context, id string) error {
	vehicle, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if vehicle.Availability == model.VehicleReserved {
		return apperrors.Conflict("Vehicle is reserved by an active booking and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Vehicle", id)
		}
		s.cfg.Log.Error("Failed to delete vehicle", "id", id, "error", err)
		return apperrors.Internal("Failed to delete vehicle", err)
	}

	s.cfg.Log.Info("Vehicle deleted", "id", id)
	return nil
}
