package repository

import (
	"context"
	"errors"

	"murmur/internal/models"

	"gorm.io/gorm"
)

// DeviceRepository defines persistence operations for posting devices.
type DeviceRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Device, error)
	GetByName(ctx context.Context, name string) (*models.Device, error)
	FirstOrCreate(ctx context.Context, name, url string) (*models.Device, error)
	List(ctx context.Context, limit int) ([]models.Device, error)
}

type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository returns a new DeviceRepository implementation.
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Device", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &device, nil
}

// GetByName returns (nil, nil) when no device has that name.
func (r *deviceRepository) GetByName(ctx context.Context, name string) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &device, nil
}

func (r *deviceRepository) FirstOrCreate(ctx context.Context, name, url string) (*models.Device, error) {
	device := models.Device{Name: name}
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Attrs(models.Device{URL: url}).
		FirstOrCreate(&device).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &device, nil
}

func (r *deviceRepository) List(ctx context.Context, limit int) ([]models.Device, error) {
	var devices []models.Device
	if err := r.db.WithContext(ctx).
		Order("notices_count DESC").
		Limit(limit).
		Find(&devices).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return devices, nil
}
