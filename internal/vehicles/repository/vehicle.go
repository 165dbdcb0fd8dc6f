package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	vehicleserrors "fleetbook/internal/vehicles/errors"
	"fleetbook/pkg/config"
	"fleetbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Vehicles"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	FindByID(ctx context.Context, id string) (*model.Vehicle, error)
	FindAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Vehicle, error)
	Count(ctx context.Context, onlyAvailable bool) (int64, error)
	Update(ctx context.Context, id string, vehicle *model.Vehicle) error
	MarkReserved(ctx context.Context, id string, bookingID string, bookedByName string) error
	Release(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type mongoVehicleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoVehicleRepository(cfg *config.Config) VehicleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless the call is already
// running inside a transaction; a SessionContext must not be re-wrapped.
func (r *mongoVehicleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoVehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return vehicleserrors.ErrDuplicateRego
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		vehicle.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVehicleRepository) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	var vehicle model.Vehicle
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, vehicleserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	return &vehicle, nil
}

func (r *mongoVehicleRepository) FindAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Vehicle, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.listFilter(onlyAvailable), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*model.Vehicle
	if err = cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return vehicles, nil
}

func (r *mongoVehicleRepository) Count(ctx context.Context, onlyAvailable bool) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.listFilter(onlyAvailable))
	if err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return count, nil
}

func (r *mongoVehicleRepository) listFilter(onlyAvailable bool) bson.M {
	if onlyAvailable {
		return bson.M{"availability": model.VehicleAvailable}
	}
	return bson.M{}
}

func (r *mongoVehicleRepository) Update(ctx context.Context, id string, vehicle *model.Vehicle) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":            vehicle.Name,
			"registration_no": vehicle.RegistrationNo,
			"rate_per_km":     vehicle.RatePerKM,
			"rate_per_hour":   vehicle.RatePerHour,
			"availability":    vehicle.Availability,
			"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return vehicleserrors.ErrDuplicateRego
		}
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	if result.MatchedCount == 0 {
		return vehicleserrors.ErrNotFound
	}

	return nil
}

// MarkReserved flips an available vehicle to reserved and records which
// reservation holds it. The availability guard lives in the filter, so a
// concurrent reservation of the same vehicle matches zero documents.
func (r *mongoVehicleRepository) MarkReserved(ctx context.Context, id string, bookingID string, bookedByName string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":          objectID,
		"availability": model.VehicleAvailable,
	}
	update := bson.M{
		"$set": bson.M{
			"availability":   model.VehicleReserved,
			"booking_id":     bookingID,
			"booked_by_name": bookedByName,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve vehicle: %w", err)
	}
	if result.MatchedCount == 0 {
		return vehicleserrors.ErrNotAvailable
	}

	return nil
}

// Release returns a vehicle to the available pool and clears the booking
// pointer. Releasing an already-available vehicle is a no-op.
func (r *mongoVehicleRepository) Release(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"availability": model.VehicleAvailable,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
		"$unset": bson.M{
			"booking_id":     "",
			"booked_by_name": "",
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "availability": model.VehicleReserved}, update)
	if err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}
	if result.MatchedCount == 0 {
		// Scheduled reservations never flip availability, so there may be
		// nothing to release.
		return nil
	}

	return nil
}

func (r *mongoVehicleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if result.DeletedCount == 0 {
		return vehicleserrors.ErrNotFound
	}

	return nil
}
